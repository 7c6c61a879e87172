package admin

import (
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest is the body of POST /categories.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CreateCategory adds a category.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.CategoryService.Create(req.Name, req.Description)
	if err != nil {
		respondMappedError(c, err, categoryErrorRules)
		return
	}
	response.Created(c, "category created", category)
}

// UpdateCategoryRequest is the body of PUT /categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateCategory renames or redescribes a category.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.CategoryService.Update(id, service.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondMappedError(c, err, categoryErrorRules)
		return
	}
	response.SuccessWithMsg(c, "category updated", category)
}

// DeleteCategory removes a category; its products become uncategorised.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(id); err != nil {
		respondMappedError(c, err, categoryErrorRules)
		return
	}
	response.SuccessWithMsg(c, "category deleted", nil)
}
