package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)

const orderColumns = `id,order_number,user_id,status,payment_status,payment_method,
subtotal_cents,discount_cents,shipping_fee_cents,total_cents,
ship_name,ship_phone,ship_email,ship_address,ship_city,ship_district,ship_ward,ship_notes,
cancel_reason,created_at,shipped_at,delivered_at,cancelled_at`

// Create stores the order, its line items and the catalog stock movement in
// one transaction. Stock rows are guarded with `stock >= qty` so oversell
// fails the whole transaction instead of going negative.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order, idemKey string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ?, sold = sold + ?, updated_at = NOW()
WHERE id = ? AND stock >= ?`,
			it.Quantity, it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock %s: %w", it.ProductID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("product %s: %w", it.ProductID, usecase.ErrStockConflict)
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id,order_number,user_id,status,payment_status,payment_method,
subtotal_cents,discount_cents,shipping_fee_cents,total_cents,
ship_name,ship_phone,ship_email,ship_address,ship_city,ship_district,ship_ward,ship_notes,
idempotency_key,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,NOW())`,
		o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.SubtotalCents, o.DiscountCents, o.ShippingFeeCents, o.TotalCents,
		o.Shipping.FullName, o.Shipping.Phone, o.Shipping.Email, o.Shipping.Address,
		o.Shipping.City, o.Shipping.District, o.Shipping.Ward, o.Shipping.Notes,
		nullStr(idemKey), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,name,price_cents,discount_cents,quantity,position)
VALUES (?,?,?,?,?,?,?)`,
			o.ID, it.ProductID, it.Name, it.PriceCents, it.DiscountCents, it.Quantity, pos)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.ProductID, err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) GetByUserAndIdemKey(ctx context.Context, userID, idemKey string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? AND idempotency_key = ?`, userID, idemKey)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) List(ctx context.Context, q usecase.ListOrdersQuery) ([]domain.Order, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	if q.Status != "" {
		where += " AND status = ?"
		args = append(args, q.Status)
	}
	if q.UserID != "" {
		where += " AND user_id = ?"
		args = append(args, q.UserID)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, at time.Time, reason string) (bool, error) {
	set := "status = ?, updated_at = NOW()"
	args := []any{to}
	switch to {
	case domain.StatusShipped:
		set += ", shipped_at = ?"
		args = append(args, at)
	case domain.StatusDelivered:
		set += ", delivered_at = ?"
		args = append(args, at)
	case domain.StatusCancelled:
		set += ", cancelled_at = ?, cancel_reason = ?"
		args = append(args, at, reason)
	}
	args = append(args, id, from)

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+set+` WHERE id = ? AND status = ?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// n == 0: not found or the status moved under us; caller disambiguates.
	return n > 0, nil
}

func (r *MySQLOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, to domain.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = ?, updated_at = NOW() WHERE id = ?`, to, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for a no-change update too, so check
		// existence before calling it missing.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return usecase.ErrNotFound
			}
			return err
		}
	}
	return nil
}

func (r *MySQLOrderRepo) Stats(ctx context.Context) (usecase.OrderStats, error) {
	var s usecase.OrderStats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(status = 'pending'), 0),
       COALESCE(SUM(status = 'shipped'), 0),
       COALESCE(SUM(status = 'delivered'), 0),
       COALESCE(SUM(status = 'cancelled'), 0),
       COALESCE(SUM(CASE WHEN status <> 'cancelled' THEN total_cents ELSE 0 END), 0)
FROM orders`).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.ShippedOrders,
		&s.DeliveredOrders, &s.CancelledOrders, &s.RevenueCents)
	if err != nil {
		return usecase.OrderStats{}, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id,name,price_cents,discount_cents,quantity
FROM order_items WHERE order_id = ? ORDER BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.DiscountCents, &it.Quantity); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                                 domain.Order
		notes, reason                     sql.NullString
		shippedAt, deliveredAt, cancelled sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.SubtotalCents, &o.DiscountCents, &o.ShippingFeeCents, &o.TotalCents,
		&o.Shipping.FullName, &o.Shipping.Phone, &o.Shipping.Email, &o.Shipping.Address,
		&o.Shipping.City, &o.Shipping.District, &o.Shipping.Ward, &notes,
		&reason, &o.CreatedAt, &shippedAt, &deliveredAt, &cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrNotFound
		}
		return nil, err
	}
	o.Shipping.Notes = notes.String
	o.CancelReason = reason.String
	if shippedAt.Valid {
		o.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if cancelled.Valid {
		o.CancelledAt = &cancelled.Time
	}
	return &o, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
