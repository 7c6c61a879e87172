package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultOrderTxTimeout = 10 * time.Second

// OrderService places and manages orders.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	mailQueue   MailTaskQueue
	txTimeout   time.Duration
}

// NewOrderService creates the order service. txTimeout bounds the create
// transaction; zero selects the default.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, mailQueue MailTaskQueue, txTimeout time.Duration) *OrderService {
	if txTimeout <= 0 {
		txTimeout = defaultOrderTxTimeout
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		mailQueue:   mailQueue,
		txTimeout:   txTimeout,
	}
}

// CreateOrderItem is one requested line.
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput is the body of a new order.
type CreateOrderInput struct {
	Items           []CreateOrderItem
	DeliveryAddress string
	Phone           string
	Notes           string
}

// CreateOrder validates every line against the live catalog and stores the
// order with its items in one transaction. Any failure leaves no rows.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, error) {
	if userID == 0 || len(input.Items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return nil, ErrInvalidOrderItems
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var order *models.Order
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		total := models.NewMoneyFromDecimal(decimal.Zero)
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, requested := range input.Items {
			product, err := productRepo.GetByID(requested.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: id %d", ErrProductNotFound, requested.ProductID)
			}
			if !product.InStock {
				return fmt.Errorf("%w: %q", ErrProductOutOfStock, product.Name)
			}
			total = total.Add(product.Price.Mul(requested.Quantity))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  requested.Quantity,
				Price:     product.Price,
			})
		}

		order = &models.Order{
			UserID:          userID,
			Status:          constants.OrderStatusPending,
			TotalAmount:     total,
			DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
			Phone:           strings.TrimSpace(input.Phone),
			Notes:           strings.TrimSpace(input.Notes),
		}
		return orderRepo.Create(order, items)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrOrderTimeout
		}
		return nil, err
	}

	if _, err := enqueueOrderStatusEmailTaskIfEligible(s.orderRepo, s.mailQueue, order.ID, order.Status); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// GetOrder returns an order owned by userID.
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrderItems returns the lines of an owned order with product details.
func (s *OrderService) ListOrderItems(userID, orderID uint) ([]models.OrderItem, error) {
	if _, err := s.GetOrder(userID, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListItems(orderID)
}

// ListOrders pages through the orders of filter.UserID.
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListAllOrders pages through every order with its owner loaded.
func (s *OrderService) ListAllOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.WithUser = true
	return s.orderRepo.ListAdmin(filter)
}

// OrderPatch holds the fields an owner may change. Nil means keep.
type OrderPatch struct {
	DeliveryAddress *string
	Phone           *string
	Notes           *string
	Status          *string
}

// UpdateOrder applies patch to an owned, non-terminal order. Owners may only
// move the status to cancelled.
func (s *OrderService) UpdateOrder(userID, orderID uint, patch OrderPatch) (*models.Order, error) {
	updates := map[string]interface{}{}
	if patch.DeliveryAddress != nil {
		updates["delivery_address"] = strings.TrimSpace(*patch.DeliveryAddress)
	}
	if patch.Phone != nil {
		updates["phone"] = strings.TrimSpace(*patch.Phone)
	}
	if patch.Notes != nil {
		updates["notes"] = strings.TrimSpace(*patch.Notes)
	}
	if patch.Status != nil {
		status := normalizeOrderStatus(*patch.Status)
		if status != constants.OrderStatusCancelled {
			return nil, ErrInvalidOrderStatus
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return nil, ErrEmptyPatch
	}

	current, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if IsTerminalOrderStatus(current.Status) {
		return nil, ErrOrderNotMutable
	}

	updates["updated_at"] = time.Now()
	rows, err := s.orderRepo.UpdateByUser(orderID, userID, terminalOrderStatuses, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// the order left a mutable status between the load and the update
		return nil, ErrOrderNotMutable
	}

	updated, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	if status, ok := updates["status"].(string); ok {
		if _, err := enqueueOrderStatusEmailTaskIfEligible(s.orderRepo, s.mailQueue, orderID, status); err != nil {
			logger.Warnw("order_status_email_enqueue_failed", "order_id", orderID, "error", err)
		}
	}
	return updated, nil
}

// DeleteOrder removes an owned order that is still pending.
func (s *OrderService) DeleteOrder(userID, orderID uint) error {
	current, err := s.GetOrder(userID, orderID)
	if err != nil {
		return err
	}
	if current.Status != constants.OrderStatusPending {
		return ErrOrderNotDeletable
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.WithTx(tx).DeleteByUser(orderID, userID, constants.OrderStatusPending)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrOrderNotDeletable
		}
		return nil
	})
}

// AdminUpdateStatus moves any order along the forward-only status flow.
func (s *OrderService) AdminUpdateStatus(orderID uint, status string) (*models.Order, error) {
	target := normalizeOrderStatus(status)
	if !IsValidOrderStatus(target) {
		return nil, ErrInvalidOrderStatus
	}
	current, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrOrderNotFound
	}
	if IsTerminalOrderStatus(current.Status) {
		return nil, ErrOrderNotMutable
	}
	if !canTransitionOrderStatus(current.Status, target) {
		return nil, ErrInvalidOrderStatus
	}

	rows, err := s.orderRepo.UpdateStatus(orderID, current.Status, target, map[string]interface{}{
		"updated_at": time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrOrderStatusConflict
	}

	if _, err := enqueueOrderStatusEmailTaskIfEligible(s.orderRepo, s.mailQueue, orderID, target); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", orderID, "error", err)
	}
	return s.orderRepo.GetByID(orderID)
}
