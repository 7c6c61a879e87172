package service

import (
	"strings"

	"github.com/catalog-next/internal/constants"
)

var orderStatuses = []string{
	constants.OrderStatusPending,
	constants.OrderStatusProcessing,
	constants.OrderStatusShipped,
	constants.OrderStatusDelivered,
	constants.OrderStatusCompleted,
	constants.OrderStatusCancelled,
}

// terminalOrderStatuses reject every further change.
var terminalOrderStatuses = []string{
	constants.OrderStatusDelivered,
	constants.OrderStatusCompleted,
	constants.OrderStatusCancelled,
}

// orderStatusTransitions is the forward-only flow administrators follow.
var orderStatusTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusProcessing, constants.OrderStatusCompleted, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCompleted, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered, constants.OrderStatusCompleted},
}

func normalizeOrderStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsValidOrderStatus reports whether status is a known order status.
func IsValidOrderStatus(status string) bool {
	return containsStatus(orderStatuses, normalizeOrderStatus(status))
}

// IsTerminalOrderStatus reports whether an order in status is frozen.
func IsTerminalOrderStatus(status string) bool {
	return containsStatus(terminalOrderStatuses, normalizeOrderStatus(status))
}

func canTransitionOrderStatus(from, to string) bool {
	return containsStatus(orderStatusTransitions[normalizeOrderStatus(from)], normalizeOrderStatus(to))
}

func containsStatus(list []string, status string) bool {
	for _, item := range list {
		if item == status {
			return true
		}
	}
	return false
}
