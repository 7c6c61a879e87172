package admin

import (
	"strings"

	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers lists accounts. Filters: keyword, role, email_verified.
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	verified, ok := parseBoolQuery(c, "email_verified")
	if !ok {
		return
	}

	users, total, err := h.AuthService.ListUsers(repository.UserListFilter{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       strings.TrimSpace(c.Query("keyword")),
		Role:          strings.TrimSpace(c.Query("role")),
		EmailVerified: verified,
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}
