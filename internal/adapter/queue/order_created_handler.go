package queue

import (
	"context"

	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

// Notifier delivers order confirmations to the customer (mail, SMS, ...).
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, msg usecase.CreatedMsg) error
}

// OrderCreatedHandler consumes order.created.q and dispatches the
// confirmation notification.
type OrderCreatedHandler struct {
	notifier Notifier
}

func NewOrderCreatedHandler(n Notifier) *OrderCreatedHandler {
	return &OrderCreatedHandler{notifier: n}
}

// HandleCreate is intended to be used with the JSON adapter (queue.JSONHandler[CreatedMsg]).
func (h *OrderCreatedHandler) HandleCreate(ctx context.Context, msg usecase.CreatedMsg) error {
	return h.notifier.NotifyOrderCreated(ctx, msg)
}
