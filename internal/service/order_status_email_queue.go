package service

import (
	"strings"

	"github.com/catalog-next/internal/queue"
	"github.com/catalog-next/internal/repository"

	"github.com/hibiken/asynq"
)

// MailTaskQueue schedules mail for the background worker.
type MailTaskQueue interface {
	Enabled() bool
	EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, opts ...asynq.Option) error
	EnqueuePasswordResetEmail(payload queue.PasswordResetEmailPayload, opts ...asynq.Option) error
}

// enqueueOrderStatusEmailTaskIfEligible queues a status mail when the order
// owner has a deliverable address. skipped reports a policy skip.
func enqueueOrderStatusEmailTaskIfEligible(orderRepo repository.OrderRepository, mailQueue MailTaskQueue, orderID uint, status string) (skipped bool, err error) {
	if mailQueue == nil || !mailQueue.Enabled() || orderID == 0 {
		return true, nil
	}
	if orderRepo != nil {
		receiverEmail, lookupErr := orderRepo.ResolveReceiverEmailByOrderID(orderID)
		if lookupErr == nil && strings.TrimSpace(receiverEmail) == "" {
			return true, nil
		}
	}

	if err := mailQueue.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  strings.TrimSpace(status),
	}); err != nil {
		return false, err
	}
	return false, nil
}
