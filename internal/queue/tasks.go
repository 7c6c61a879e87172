package queue

import (
	"encoding/json"

	"github.com/catalog-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusEmail notifies the owner about an order status.
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskPasswordResetEmail delivers a password reset link.
	TaskPasswordResetEmail = constants.TaskPasswordResetEmail
)

// OrderStatusEmailPayload is the body of TaskOrderStatusEmail.
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// PasswordResetEmailPayload is the body of TaskPasswordResetEmail.
// The token is self-contained, so the worker does not touch the database.
type PasswordResetEmailPayload struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// NewOrderStatusEmailTask builds the task.
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewPasswordResetEmailTask builds the task.
func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordResetEmail, body), nil
}
