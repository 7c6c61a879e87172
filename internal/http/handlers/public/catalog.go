package public

import (
	"strconv"
	"strings"

	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts lists products. Filters: category_id, in_stock, search.
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	filter := repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.ValidationError(c, "validation failed", []response.FieldError{{Field: "category_id", Message: "category_id must be a positive integer", Value: raw}})
			return
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}
	if raw := strings.TrimSpace(c.Query("in_stock")); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			response.ValidationError(c, "validation failed", []response.FieldError{{Field: "in_stock", Message: "in_stock must be true or false", Value: raw}})
			return
		}
		filter.InStock = &inStock
	}

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondMappedError(c, err, catalogReadErrorRules)
		return
	}
	response.Success(c, product)
}

// ListCategories lists categories.
func (h *Handler) ListCategories(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	categories, total, err := h.CategoryService.List(repository.CategoryListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, categories, response.BuildPagination(page, pageSize, total))
}

// GetCategory returns one category.
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(id)
	if err != nil {
		respondMappedError(c, err, catalogReadErrorRules)
		return
	}
	response.Success(c, category)
}
