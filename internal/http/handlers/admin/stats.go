package admin

import (
	"github.com/catalog-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetStats returns catalog aggregates.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.ProductService.Stats()
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.Success(c, stats)
}
