package public

import (
	"strings"

	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/repository"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest is one line of a new order.
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required,gt=0"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress string             `json:"delivery_address" binding:"max=500"`
	Phone           string             `json:"phone" binding:"max=32"`
	Notes           string             `json:"notes" binding:"max=1000"`
}

// CreateOrder places an order for the caller.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	order, err := h.OrderService.CreateOrder(c.Request.Context(), uid, service.CreateOrderInput{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Notes:           req.Notes,
	})
	if err != nil {
		respondMappedError(c, err, orderCreateErrorRules)
		return
	}
	h.Metrics.IncOrdersCreated()
	response.Created(c, "order created", order)
}

// ListOrders lists the caller's orders.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	h.listOrdersOf(c, uid)
}

// ListUserOrders lists the orders of :user_id. The route is guarded by the
// ownership check.
func (h *Handler) ListUserOrders(c *gin.Context) {
	uid, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	h.listOrdersOf(c, uid)
}

func (h *Handler) listOrdersOf(c *gin.Context, uid uint) {
	page, pageSize := normalizePagination(c)
	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder returns one of the caller's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(uid, orderID)
	if err != nil {
		respondMappedError(c, err, orderErrorRules)
		return
	}
	response.Success(c, order)
}

// ListOrderItems returns the lines of one of the caller's orders.
func (h *Handler) ListOrderItems(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.OrderService.ListOrderItems(uid, orderID)
	if err != nil {
		respondMappedError(c, err, orderErrorRules)
		return
	}
	response.Success(c, items)
}

// UpdateOrderRequest is the body of PATCH /orders/:id.
type UpdateOrderRequest struct {
	DeliveryAddress *string `json:"delivery_address" binding:"omitempty,max=500"`
	Phone           *string `json:"phone" binding:"omitempty,max=32"`
	Notes           *string `json:"notes" binding:"omitempty,max=1000"`
	Status          *string `json:"status"`
}

// UpdateOrder patches one of the caller's orders.
func (h *Handler) UpdateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.OrderService.UpdateOrder(uid, orderID, service.OrderPatch{
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Notes:           req.Notes,
		Status:          req.Status,
	})
	if err != nil {
		respondMappedError(c, err, orderErrorRules)
		return
	}
	response.SuccessWithMsg(c, "order updated", order)
}

// DeleteOrder removes one of the caller's pending orders.
func (h *Handler) DeleteOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.OrderService.DeleteOrder(uid, orderID); err != nil {
		respondMappedError(c, err, orderErrorRules)
		return
	}
	response.SuccessWithMsg(c, "order deleted", nil)
}
