package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/provider"
	"github.com/catalog-next/internal/queue"
	"github.com/catalog-next/internal/service"

	"github.com/hibiken/asynq"
)

const (
	mailOutcomeSent    = "sent"
	mailOutcomeSkipped = "skipped"
	mailOutcomeFailed  = "failed"
)

// Consumer handles queued mail tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task types to handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskPasswordResetEmail, c.handlePasswordResetEmail)
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeFailed)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeSkipped)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeSkipped)
		return nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "user_id", order.UserID)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeSkipped)
		return nil
	}
	if c.Mailer == nil {
		logger.Warnw("worker_order_status_email_skip_mailer_nil", "order_id", order.ID)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeSkipped)
		return nil
	}

	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	subject, body := service.BuildOrderStatusEmail(service.OrderStatusEmailInput{
		OrderID: order.ID,
		Status:  status,
		Amount:  order.TotalAmount,
	})
	if err := c.Mailer.Send(user.Email, subject, body); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"receiver_email", user.Email,
			"status", status,
			"error", err,
		)
		c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeFailed)
		return err
	}
	c.Metrics.IncMailTask(queue.TaskOrderStatusEmail, mailOutcomeSent)
	return nil
}

func (c *Consumer) handlePasswordResetEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_password_reset_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PasswordResetEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_password_reset_email_unmarshal_failed", "error", err)
		c.Metrics.IncMailTask(queue.TaskPasswordResetEmail, mailOutcomeFailed)
		return err
	}
	if payload.UserID == 0 || strings.TrimSpace(payload.Token) == "" {
		logger.Debugw("worker_password_reset_email_skip_invalid_payload", "user_id", payload.UserID)
		c.Metrics.IncMailTask(queue.TaskPasswordResetEmail, mailOutcomeSkipped)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_password_reset_email_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	// The token is bound to the address it was issued for.
	if user == nil || !strings.EqualFold(user.Email, payload.Email) {
		logger.Debugw("worker_password_reset_email_skip_stale", "user_id", payload.UserID)
		c.Metrics.IncMailTask(queue.TaskPasswordResetEmail, mailOutcomeSkipped)
		return nil
	}
	if err := c.AuthService.SendPasswordResetEmail(user.Email, user.Username, payload.Token); err != nil {
		logger.Warnw("worker_password_reset_email_send_failed", "user_id", user.ID, "error", err)
		c.Metrics.IncMailTask(queue.TaskPasswordResetEmail, mailOutcomeFailed)
		return err
	}
	c.Metrics.IncMailTask(queue.TaskPasswordResetEmail, mailOutcomeSent)
	return nil
}
