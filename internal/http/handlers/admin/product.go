package admin

import (
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the body of POST /products. Price is a decimal
// string so no precision is lost in transit.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *uint           `json:"category_id" binding:"omitempty,gt=0"`
	InStock     *bool           `json:"in_stock"`
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.ProductService.Create(service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		InStock:     req.InStock,
	})
	if err != nil {
		respondMappedError(c, err, productErrorRules)
		return
	}
	response.Created(c, "product created", product)
}

// UpdateProductRequest is the body of PUT /products/:id.
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price"`
	CategoryID    *uint            `json:"category_id" binding:"omitempty,gt=0"`
	ClearCategory bool             `json:"clear_category"`
	InStock       *bool            `json:"in_stock"`
}

// UpdateProduct patches a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.ProductService.Update(id, service.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		InStock:       req.InStock,
	})
	if err != nil {
		respondMappedError(c, err, productErrorRules)
		return
	}
	response.SuccessWithMsg(c, "product updated", product)
}

// DeleteProduct removes a product that no order references.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondMappedError(c, err, productErrorRules)
		return
	}
	response.SuccessWithMsg(c, "product deleted", nil)
}
