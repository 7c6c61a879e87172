package admin

import (
	"strings"

	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAllOrders lists every order with its owner.
// Filters: status, user_id, created_from, created_to.
func (h *Handler) ListAllOrders(c *gin.Context) {
	page, pageSize := normalizePagination(c)
	userID, ok := parseUintQuery(c, "user_id")
	if !ok {
		return
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		invalidQuery(c, "created_from", "created_from must be a date or RFC3339 time", c.Query("created_from"))
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		invalidQuery(c, "created_to", "created_to must be a date or RFC3339 time", c.Query("created_to"))
		return
	}

	orders, total, err := h.OrderService.ListAllOrders(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// UpdateOrderStatusRequest is the body of PATCH /admin/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order along the status flow.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.AdminUpdateStatus(orderID, req.Status)
	if err != nil {
		respondMappedError(c, err, orderStatusErrorRules)
		return
	}
	response.SuccessWithMsg(c, "order status updated", order)
}
