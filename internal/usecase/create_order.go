package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

var ordersCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created, by payment method",
	},
	[]string{"method"},
)

type CreateOrderItem struct {
	ProductID     string
	Name          string
	PriceCents    int64
	DiscountCents int64
	Quantity      int
}

type CreateOrderInput struct {
	UserID         string
	IdempotencyKey string
	PaymentMethod  domain.PaymentMethod
	Items          []CreateOrderItem
	Shipping       domain.ShippingInfo

	// Client-computed money fields, re-verified server-side before persisting.
	SubtotalCents    int64
	DiscountCents    int64
	ShippingFeeCents int64
	TotalCents       int64
}

type CreateOrder struct {
	orders   OrderRepo
	products ProductRepo
	idem     IdempotencyStore
	outbox   OutboxRepo
	events   EventPublisher
}

func NewCreateOrder(orders OrderRepo, products ProductRepo, idem IdempotencyStore, outbox OutboxRepo, events EventPublisher) *CreateOrder {
	return &CreateOrder{orders: orders, products: products, idem: idem, outbox: outbox, events: events}
}

// Execute validates the payload against the live catalog, re-derives the money
// fields, and persists the whole aggregate in one transaction. The submitted
// snapshot prices must match the catalog exactly; the client cannot lower its
// own totals.
func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			return uc.orders.GetByID(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lock held but no mapping: either a create is in flight or the
			// redis mapping expired before the lock. The DB has the truth.
			if existing, err := uc.orders.GetByUserAndIdemKey(ctx, in.UserID, in.IdempotencyKey); err == nil {
				return existing, nil
			}
			return nil, ErrDuplicate
		}
	}

	order, err := uc.buildOrder(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := uc.orders.Create(ctx, order, in.IdempotencyKey); err != nil {
		return nil, err
	}
	ordersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()

	msg := CreatedMsg{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Email:         order.Shipping.Email,
		TotalCents:    order.TotalCents,
		PaymentMethod: string(order.PaymentMethod),
	}
	// Durable record first, broker push best-effort; the order itself is
	// already committed either way.
	if payload, err := json.Marshal(msg); err == nil {
		_ = uc.outbox.InsertOrderCreated(ctx, payload)
	}
	_ = uc.events.PublishCreated(ctx, msg)

	if in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, order.ID)
	}
	return order, nil
}

func (uc *CreateOrder) buildOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrNoItems
	}

	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	catalog, err := uc.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := catalog[it.ProductID]
		if !ok || !p.Active {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, ErrNotFound)
		}
		if p.Stock < it.Quantity {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, ErrStockConflict)
		}
		if it.PriceCents != p.PriceCents || it.DiscountCents != p.DiscountCents {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, ErrPriceMismatch)
		}
		// Snapshot from the catalog record, not the client payload.
		items = append(items, domain.LineItem{
			ProductID:     p.ID,
			Name:          p.Name,
			PriceCents:    p.PriceCents,
			DiscountCents: p.DiscountCents,
			Quantity:      it.Quantity,
		})
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:               uuid.NewString(),
		OrderNumber:      newOrderNumber(now),
		UserID:           in.UserID,
		Items:            items,
		Shipping:         in.Shipping,
		SubtotalCents:    in.SubtotalCents,
		DiscountCents:    in.DiscountCents,
		ShippingFeeCents: in.ShippingFeeCents,
		TotalCents:       in.TotalCents,
		Status:           domain.StatusPending,
		PaymentStatus:    domain.PaymentPending,
		PaymentMethod:    in.PaymentMethod,
		CreatedAt:        now,
	}
	if order.ComputeSubtotal() != in.SubtotalCents {
		return nil, fmt.Errorf("subtotal: %w", ErrPriceMismatch)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// newOrderNumber produces the human-facing order number, e.g.
// ORD-20250901-9F2C41AB. Opaque and unique enough for support tickets.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
