package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		ID:          "o-1",
		OrderNumber: "ORD-20250901-ABCD1234",
		UserID:      "u-1",
		Items: []LineItem{
			{ProductID: "p-1", Name: "Tea set", PriceCents: 100, Quantity: 2},
			{ProductID: "p-2", Name: "Teapot", PriceCents: 50, DiscountCents: 40, Quantity: 1},
		},
		Shipping: ShippingInfo{
			FullName: "Nguyen Van A",
			Phone:    "0901234567",
			Address:  "12 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
		SubtotalCents:    240,
		DiscountCents:    0,
		ShippingFeeCents: 20,
		TotalCents:       260,
		Status:           StatusPending,
		PaymentStatus:    PaymentPending,
		PaymentMethod:    MethodCOD,
		CreatedAt:        time.Now(),
	}
}

func TestLineItemUnitCents(t *testing.T) {
	assert.Equal(t, int64(100), LineItem{PriceCents: 100, Quantity: 1}.UnitCents())
	assert.Equal(t, int64(40), LineItem{PriceCents: 50, DiscountCents: 40, Quantity: 1}.UnitCents())
}

func TestLineItemValidate(t *testing.T) {
	assert.NoError(t, LineItem{ProductID: "p-1", PriceCents: 10, Quantity: 1}.Validate())
	assert.Error(t, LineItem{ProductID: "p-1", PriceCents: 10, Quantity: 0}.Validate())
	assert.Error(t, LineItem{ProductID: "", PriceCents: 10, Quantity: 1}.Validate())
	assert.ErrorIs(t, LineItem{ProductID: "p-1", PriceCents: -1, Quantity: 1}.Validate(), ErrInvalidAmount)
}

func TestOrderValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assert.NoError(t, validOrder().Validate())
	})

	t.Run("no items", func(t *testing.T) {
		o := validOrder()
		o.Items = nil
		assert.ErrorIs(t, o.Validate(), ErrNoItems)
	})

	t.Run("missing shipping field", func(t *testing.T) {
		o := validOrder()
		o.Shipping.Phone = ""
		assert.ErrorIs(t, o.Validate(), ErrBadShippingInf)
	})

	t.Run("subtotal not matching items", func(t *testing.T) {
		o := validOrder()
		o.SubtotalCents = 999
		o.TotalCents = 999 - 0 + 20
		assert.ErrorIs(t, o.Validate(), ErrTotalMismatch)
	})

	t.Run("total equation broken", func(t *testing.T) {
		o := validOrder()
		o.TotalCents = 500
		assert.ErrorIs(t, o.Validate(), ErrTotalMismatch)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		o := validOrder()
		o.PaymentMethod = "paypal"
		assert.Error(t, o.Validate())
	})
}

func TestComputeSubtotal(t *testing.T) {
	o := validOrder()
	// 100*2 + 40*1 (discount price wins over list price)
	assert.Equal(t, int64(240), o.ComputeSubtotal())
}

func TestDefaultTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, DefaultTransitions.Allowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplyStatusSideEffects(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	t.Run("shipped stamps shippedAt", func(t *testing.T) {
		o := validOrder()
		o.Status = StatusProcessing
		require.NoError(t, o.ApplyStatus(StatusShipped, DefaultTransitions, now, ""))
		require.NotNil(t, o.ShippedAt)
		assert.Equal(t, now, *o.ShippedAt)
		assert.Nil(t, o.DeliveredAt)
	})

	t.Run("delivered stamps deliveredAt", func(t *testing.T) {
		o := validOrder()
		o.Status = StatusShipped
		require.NoError(t, o.ApplyStatus(StatusDelivered, DefaultTransitions, now, ""))
		require.NotNil(t, o.DeliveredAt)
		assert.Equal(t, now, *o.DeliveredAt)
	})

	t.Run("cancelled stamps cancelledAt and defaults the reason", func(t *testing.T) {
		o := validOrder()
		require.NoError(t, o.ApplyStatus(StatusCancelled, DefaultTransitions, now, ""))
		require.NotNil(t, o.CancelledAt)
		assert.Equal(t, DefaultCancelReason, o.CancelReason)
	})

	t.Run("cancelled keeps a supplied reason", func(t *testing.T) {
		o := validOrder()
		require.NoError(t, o.ApplyStatus(StatusCancelled, DefaultTransitions, now, "changed my mind"))
		assert.Equal(t, "changed my mind", o.CancelReason)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		o := validOrder()
		require.NoError(t, o.ApplyStatus(StatusPending, DefaultTransitions, now, ""))
		assert.Equal(t, StatusPending, o.Status)
		assert.Nil(t, o.CancelledAt)
	})

	t.Run("unsanctioned edge is a typed error", func(t *testing.T) {
		o := validOrder()
		o.Status = StatusDelivered
		err := o.ApplyStatus(StatusCancelled, DefaultTransitions, now, "")
		var transition *InvalidTransitionError
		require.True(t, errors.As(err, &transition))
		assert.Equal(t, StatusDelivered, transition.From)
		assert.Equal(t, StatusCancelled, transition.To)
		// nothing was stamped
		assert.Nil(t, o.CancelledAt)
		assert.Equal(t, StatusDelivered, o.Status)
	})
}

func TestPaymentMethodPrepaid(t *testing.T) {
	assert.False(t, MethodCOD.Prepaid())
	assert.True(t, MethodVNPay.Prepaid())
	assert.True(t, MethodMoMo.Prepaid())
	assert.True(t, MethodCard.Prepaid())
}
