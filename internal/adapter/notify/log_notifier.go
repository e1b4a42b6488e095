package notify

import (
	"context"
	"log/slog"

	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

// LogNotifier is the dev stand-in for the mail/SMS channel: it records the
// confirmation instead of sending it.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyOrderCreated(ctx context.Context, msg usecase.CreatedMsg) error {
	n.log.Info("order confirmation",
		"order_id", msg.OrderID,
		"order_number", msg.OrderNumber,
		"user_id", msg.UserID,
		"total_cents", msg.TotalCents,
		"payment_method", msg.PaymentMethod,
	)
	return nil
}
