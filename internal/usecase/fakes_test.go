package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

// fakeOrderRepo keeps orders in memory with the same semantics the MySQL repo
// provides: CAS status writes, newest-first listing, aggregate stats.
type fakeOrderRepo struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	idemKeys map[string]string // userID+"\x00"+key -> orderID
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}, idemKeys: map[string]string{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order, idemKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	if idemKey != "" {
		r.idemKeys[o.UserID+"\x00"+idemKey] = o.ID
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) GetByUserAndIdemKey(_ context.Context, userID, idemKey string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.idemKeys[userID+"\x00"+idemKey]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r.orders[id]
	return &cp, nil
}

func (r *fakeOrderRepo) List(_ context.Context, q ListOrdersQuery) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Order
	for _, o := range r.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.UserID != "" && o.UserID != q.UserID {
			continue
		}
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	start := q.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status, at time.Time, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	switch to {
	case domain.StatusShipped:
		o.ShippedAt = &at
	case domain.StatusDelivered:
		o.DeliveredAt = &at
	case domain.StatusCancelled:
		o.CancelledAt = &at
		o.CancelReason = reason
	}
	return true, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, id string, to domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = to
	return nil
}

func (r *fakeOrderRepo) Stats(_ context.Context) (OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s OrderStats
	for _, o := range r.orders {
		s.TotalOrders++
		switch o.Status {
		case domain.StatusPending:
			s.PendingOrders++
		case domain.StatusShipped:
			s.ShippedOrders++
		case domain.StatusDelivered:
			s.DeliveredOrders++
		case domain.StatusCancelled:
			s.CancelledOrders++
		}
		if o.Status != domain.StatusCancelled {
			s.RevenueCents += o.TotalCents
		}
	}
	return s, nil
}

type fakeProductRepo struct {
	products map[string]domain.Product
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListActive(_ context.Context, page, limit int) ([]domain.Product, int64, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeIdemStore struct {
	locks, values map[string]string
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{locks: map[string]string{}, values: map[string]string{}}
}

func (s *fakeIdemStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	k := scope + "\x00" + key
	if _, held := s.locks[k]; held {
		return false, nil
	}
	s.locks[k] = "1"
	return true, nil
}

func (s *fakeIdemStore) Remember(_ context.Context, scope, key, value string) error {
	s.values[scope+"\x00"+key] = value
	return nil
}

func (s *fakeIdemStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	v, ok := s.values[scope+"\x00"+key]
	return v, ok, nil
}

type fakeOutbox struct{ payloads [][]byte }

func (o *fakeOutbox) InsertOrderCreated(_ context.Context, payload []byte) error {
	o.payloads = append(o.payloads, payload)
	return nil
}

type fakePublisher struct{ published []CreatedMsg }

func (p *fakePublisher) PublishCreated(_ context.Context, msg CreatedMsg) error {
	p.published = append(p.published, msg)
	return nil
}

type fakeCache struct{ statuses map[string]string }

func newFakeCache() *fakeCache { return &fakeCache{statuses: map[string]string{}} }

func (c *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	c.statuses[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (string, error) {
	s, ok := c.statuses[orderID]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}
