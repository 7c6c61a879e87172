package admin

import (
	"strings"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUserLoginLogs pages through sign-in attempts. Filters: user_id,
// email, status, client_ip, created_from, created_to.
func (h *Handler) ListUserLoginLogs(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	userID, ok := parseUintQuery(c, "user_id")
	if !ok {
		return
	}
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && status != constants.LoginLogStatusSuccess && status != constants.LoginLogStatusFailed {
		invalidQuery(c, "status", "status must be success or failed", status)
		return
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		invalidQuery(c, "created_from", "created_from must be RFC3339 or YYYY-MM-DD", c.Query("created_from"))
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		invalidQuery(c, "created_to", "created_to must be RFC3339 or YYYY-MM-DD", c.Query("created_to"))
		return
	}

	logs, total, err := h.UserLoginLogService.ListForAdmin(repository.UserLoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Email:       strings.TrimSpace(c.Query("email")),
		Status:      status,
		ClientIP:    strings.TrimSpace(c.Query("client_ip")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
