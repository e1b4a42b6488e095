package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

var statusTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Sanctioned order status transitions applied",
	},
	[]string{"from", "to"},
)

// OrderStatus applies lifecycle transitions. Writes are compare-and-set on the
// current status, so two racing updates cannot both win.
type OrderStatus struct {
	orders OrderRepo
	cache  OrderCache
	table  domain.TransitionTable
}

func NewOrderStatus(orders OrderRepo, cache OrderCache, table domain.TransitionTable) *OrderStatus {
	if table == nil {
		table = domain.DefaultTransitions
	}
	return &OrderStatus{orders: orders, cache: cache, table: table}
}

// Update moves the order to a new status. Setting the current status again is
// an idempotent no-op. Returns the updated aggregate for display.
func (s *OrderStatus) Update(ctx context.Context, id string, to domain.Status) (*domain.Order, error) {
	return s.update(ctx, id, to, "")
}

// Cancel is Update(cancelled) with a human-readable reason attached.
func (s *OrderStatus) Cancel(ctx context.Context, id, reason string) (*domain.Order, error) {
	return s.update(ctx, id, domain.StatusCancelled, reason)
}

func (s *OrderStatus) update(ctx context.Context, id string, to domain.Status, reason string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if from == to {
		return order, nil
	}

	now := time.Now().UTC()
	if err := order.ApplyStatus(to, s.table, now, reason); err != nil {
		return nil, err
	}

	ok, err := s.orders.UpdateStatusIf(ctx, id, from, to, now, order.CancelReason)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Either the order vanished or someone else moved it first.
		if _, err := s.orders.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	statusTransitions.WithLabelValues(string(from), string(to)).Inc()
	if s.cache != nil {
		_ = s.cache.SetStatus(ctx, id, string(to))
	}
	return order, nil
}

// UpdatePayment sets the settlement stage directly. There is no transition
// table for payment status and no coupling to fulfillment status; repeating
// the same value is harmless.
func (s *OrderStatus) UpdatePayment(ctx context.Context, id string, to domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.orders.UpdatePaymentStatus(ctx, id, to); err != nil {
		return nil, err
	}
	order.PaymentStatus = to
	return order, nil
}

// MarkPaymentResult handles a gateway settlement result from Kafka: the
// payment status always moves, and a successful prepaid settlement also
// confirms a still-pending order. A lost confirm race is fine, the payment
// mark is what matters.
func (s *OrderStatus) MarkPaymentResult(ctx context.Context, msg PaymentResultMsg) error {
	to := domain.PaymentFailed
	if msg.Result == "SUCCESS" {
		to = domain.PaymentPaid
	}
	order, err := s.UpdatePayment(ctx, msg.OrderID, to)
	if err != nil {
		return err
	}
	if to == domain.PaymentPaid && order.Status == domain.StatusPending && order.PaymentMethod.Prepaid() {
		if _, err := s.Update(ctx, msg.OrderID, domain.StatusConfirmed); err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return nil
}
