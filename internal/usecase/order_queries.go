package usecase

import (
	"context"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

// OrderPage is one slice of the order list, newest first.
type OrderPage struct {
	Orders []domain.Order
	Total  int64
	Pages  int64
}

// OrderQueries is the read side of the order service.
type OrderQueries struct {
	orders OrderRepo
}

func NewOrderQueries(orders OrderRepo) *OrderQueries {
	return &OrderQueries{orders: orders}
}

func (q *OrderQueries) List(ctx context.Context, query ListOrdersQuery) (OrderPage, error) {
	query = query.Normalize()
	orders, total, err := q.orders.List(ctx, query)
	if err != nil {
		return OrderPage{}, err
	}
	limit := int64(query.Limit)
	return OrderPage{
		Orders: orders,
		Total:  total,
		Pages:  (total + limit - 1) / limit,
	}, nil
}

func (q *OrderQueries) ListByUser(ctx context.Context, userID string, page, limit int) (OrderPage, error) {
	return q.List(ctx, ListOrdersQuery{UserID: userID, Page: page, Limit: limit})
}

func (q *OrderQueries) Get(ctx context.Context, id string) (*domain.Order, error) {
	return q.orders.GetByID(ctx, id)
}

func (q *OrderQueries) Stats(ctx context.Context) (OrderStats, error) {
	return q.orders.Stats(ctx)
}

// CatalogQueries is the storefront read side over products; in the wired app
// the repo is the Redis read-through wrapper.
type CatalogQueries struct {
	products ProductRepo
}

func NewCatalogQueries(products ProductRepo) *CatalogQueries {
	return &CatalogQueries{products: products}
}

func (q *CatalogQueries) Get(ctx context.Context, id string) (*domain.Product, error) {
	return q.products.GetByID(ctx, id)
}

func (q *CatalogQueries) List(ctx context.Context, page, limit int) ([]domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return q.products.ListActive(ctx, page, limit)
}
