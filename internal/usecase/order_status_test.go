package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

func seedOrder(t *testing.T, repo *fakeOrderRepo, id string, status domain.Status, method domain.PaymentMethod, totalCents int64) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Order{
		ID:            id,
		OrderNumber:   "ORD-20250901-" + id,
		UserID:        "u-1",
		Status:        status,
		PaymentStatus: domain.PaymentPending,
		PaymentMethod: method,
		TotalCents:    totalCents,
		CreatedAt:     time.Now(),
	}, "")
	require.NoError(t, err)
}

func newStatusFixture(t *testing.T) (*OrderStatus, *fakeOrderRepo, *fakeCache) {
	repo := newFakeOrderRepo()
	cache := newFakeCache()
	return NewOrderStatus(repo, cache, nil), repo, cache
}

func TestUpdateStatusStampsTimestamps(t *testing.T) {
	svc, repo, cache := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusProcessing, domain.MethodCOD, 100)

	order, err := svc.Update(context.Background(), "o-1", domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, order.Status)
	require.NotNil(t, order.ShippedAt)
	assert.Equal(t, "shipped", cache.statuses["o-1"])

	order, err = svc.Update(context.Background(), "o-1", domain.StatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
}

func TestUpdateStatusRejectsUnsanctionedEdge(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusDelivered, domain.MethodCOD, 100)

	_, err := svc.Update(context.Background(), "o-1", domain.StatusCancelled)
	var transition *domain.InvalidTransitionError
	require.True(t, errors.As(err, &transition))

	// the stored order did not move
	got, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)
}

func TestUpdateStatusSameValueIsNoOp(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodCOD, 100)

	order, err := svc.Update(context.Background(), "o-1", domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc, _, _ := newStatusFixture(t)
	_, err := svc.Update(context.Background(), "missing", domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusLostRace(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderStatus(repo, newFakeCache(), nil)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodCOD, 100)

	// someone else confirms between our read and our write
	ok, err := repo.UpdateStatusIf(context.Background(), "o-1", domain.StatusPending, domain.StatusCancelled, time.Now(), "x")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Update(context.Background(), "o-1", domain.StatusConfirmed)
	assert.Error(t, err)
}

func TestCancelDefaultsReason(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodCOD, 100)

	order, err := svc.Cancel(context.Background(), "o-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)
	assert.Equal(t, domain.DefaultCancelReason, order.CancelReason)
}

func TestCancelKeepsSuppliedReason(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusConfirmed, domain.MethodCOD, 100)

	order, err := svc.Cancel(context.Background(), "o-1", "wrong size")
	require.NoError(t, err)
	assert.Equal(t, "wrong size", order.CancelReason)
}

func TestUpdatePaymentIsIdempotent(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodVNPay, 100)

	first, err := svc.UpdatePayment(context.Background(), "o-1", domain.PaymentPaid)
	require.NoError(t, err)
	second, err := svc.UpdatePayment(context.Background(), "o-1", domain.PaymentPaid)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	got, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
}

func TestUpdatePaymentNotFound(t *testing.T) {
	svc, _, _ := newStatusFixture(t)
	_, err := svc.UpdatePayment(context.Background(), "missing", domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPaymentResultSuccessConfirmsPrepaidOrder(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodVNPay, 100)

	err := svc.MarkPaymentResult(context.Background(), PaymentResultMsg{OrderID: "o-1", Method: "vnpay", Result: "SUCCESS"})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestMarkPaymentResultSuccessLeavesCODStatusAlone(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodCOD, 100)

	err := svc.MarkPaymentResult(context.Background(), PaymentResultMsg{OrderID: "o-1", Result: "SUCCESS"})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestMarkPaymentResultFailure(t *testing.T) {
	svc, repo, _ := newStatusFixture(t)
	seedOrder(t, repo, "o-1", domain.StatusPending, domain.MethodMoMo, 100)

	err := svc.MarkPaymentResult(context.Background(), PaymentResultMsg{OrderID: "o-1", Result: "FAILED"})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
	assert.Equal(t, domain.StatusPending, got.Status)
}
