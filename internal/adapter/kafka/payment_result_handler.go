package kafka

import (
	"context"
	"errors"

	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

// PaymentResultHandler applies gateway settlement results (vnpay/momo/card)
// to the order's payment status.
type PaymentResultHandler struct {
	status *usecase.OrderStatus
}

func NewPaymentResultHandler(status *usecase.OrderStatus) *PaymentResultHandler {
	return &PaymentResultHandler{status: status}
}

func (h *PaymentResultHandler) Handle(ctx context.Context, ev usecase.PaymentResultMsg) error {
	err := h.status.MarkPaymentResult(ctx, ev)
	if errors.Is(err, usecase.ErrNotFound) {
		// Unknown order id: nothing to retry against, drop the message.
		return nil
	}
	return err
}
