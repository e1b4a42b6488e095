package usecase

import (
	"context"
	"errors"
	"time"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("duplicate idempotency key")
	ErrPriceMismatch = errors.New("submitted prices do not match catalog")
	ErrStockConflict = errors.New("insufficient stock")
	ErrConflict      = errors.New("order changed concurrently")
)

// ListOrdersQuery enumerates the supported filters explicitly; Status and
// UserID are optional and combine with AND.
type ListOrdersQuery struct {
	Status domain.Status // empty = any
	UserID string        // empty = any
	Page   int
	Limit  int
}

// Normalize applies pagination defaults in place and returns the query.
func (q ListOrdersQuery) Normalize() ListOrdersQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	return q
}

func (q ListOrdersQuery) Offset() int { return (q.Page - 1) * q.Limit }

// OrderStats is the admin dashboard aggregate: counts per status plus revenue
// summed over every non-cancelled order.
type OrderStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	ShippedOrders   int64 `json:"shippedOrders"`
	DeliveredOrders int64 `json:"deliveredOrders"`
	CancelledOrders int64 `json:"cancelledOrders"`
	RevenueCents    int64 `json:"revenueCents"`
}

type OrderRepo interface {
	// Create persists the aggregate, its line items and the catalog stock
	// movement as one transaction; nothing is visible on failure.
	Create(ctx context.Context, o *domain.Order, idemKey string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByUserAndIdemKey(ctx context.Context, userID, idemKey string) (*domain.Order, error)
	// List returns one page newest-first plus the total match count.
	List(ctx context.Context, q ListOrdersQuery) ([]domain.Order, int64, error)
	// UpdateStatusIf writes the new status and its timestamp side effect only
	// when the stored status still equals from (compare-and-set).
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, at time.Time, reason string) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id string, to domain.PaymentStatus) error
	Stats(ctx context.Context) (OrderStats, error)
}

type ProductRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	ListActive(ctx context.Context, page, limit int) ([]domain.Product, int64, error)
}

type OutboxRepo interface {
	InsertOrderCreated(ctx context.Context, payload []byte) error
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID string, status string) error
	GetStatus(ctx context.Context, orderID string) (string, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// EventPublisher pushes order lifecycle events to the message broker.
type EventPublisher interface {
	PublishCreated(ctx context.Context, msg CreatedMsg) error
}
