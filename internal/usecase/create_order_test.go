package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
)

func testCatalog() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]domain.Product{
		"p-1": {ID: "p-1", Name: "Tea set", PriceCents: 100, Stock: 10, Active: true},
		"p-2": {ID: "p-2", Name: "Teapot", PriceCents: 50, DiscountCents: 40, Stock: 5, Active: true},
		"p-3": {ID: "p-3", Name: "Retired mug", PriceCents: 30, Stock: 3, Active: false},
	}}
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:        "u-1",
		PaymentMethod: domain.MethodCOD,
		Items: []CreateOrderItem{
			{ProductID: "p-1", PriceCents: 100, Quantity: 2},
			{ProductID: "p-2", PriceCents: 50, DiscountCents: 40, Quantity: 1},
		},
		Shipping: domain.ShippingInfo{
			FullName: "Nguyen Van A",
			Phone:    "0901234567",
			Email:    "a@example.com",
			Address:  "12 Ly Thuong Kiet",
			City:     "Ha Noi",
		},
		SubtotalCents:    240,
		DiscountCents:    0,
		ShippingFeeCents: 20,
		TotalCents:       260,
	}
}

func newCreateFixture() (*CreateOrder, *fakeOrderRepo, *fakeOutbox, *fakePublisher) {
	orders := newFakeOrderRepo()
	outbox := &fakeOutbox{}
	pub := &fakePublisher{}
	uc := NewCreateOrder(orders, testCatalog(), newFakeIdemStore(), outbox, pub)
	return uc, orders, outbox, pub
}

func TestCreateOrderStoresSubmittedValues(t *testing.T) {
	uc, orders, outbox, pub := newCreateFixture()

	order, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(240), order.SubtotalCents)
	assert.Equal(t, int64(0), order.DiscountCents)
	assert.Equal(t, int64(20), order.ShippingFeeCents)
	assert.Equal(t, int64(260), order.TotalCents)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))

	// snapshot names come from the catalog, not the client
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Tea set", order.Items[0].Name)
	assert.Equal(t, "Teapot", order.Items[1].Name)

	// re-reading returns the stored values unchanged
	got, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, got.TotalCents)
	assert.Equal(t, order.SubtotalCents, got.SubtotalCents)

	require.Len(t, pub.published, 1)
	assert.Equal(t, order.ID, pub.published[0].OrderID)
	assert.Len(t, outbox.payloads, 1)
}

func TestCreateOrderMoneyInvariant(t *testing.T) {
	uc, _, _, _ := newCreateFixture()

	order, err := uc.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, order.SubtotalCents-order.DiscountCents+order.ShippingFeeCents, order.TotalCents)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.Items = nil
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNoItems)
}

func TestCreateOrderRejectsBadShipping(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.Shipping.Address = ""
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrBadShippingInf)
}

func TestCreateOrderRejectsTamperedPrices(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.Items[0].PriceCents = 1 // catalog says 100
	in.SubtotalCents = 42
	in.TotalCents = 62
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrPriceMismatch)
}

func TestCreateOrderRejectsSubtotalMismatch(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.SubtotalCents = 999 // items sum to 240
	in.TotalCents = 1019
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrPriceMismatch)
}

func TestCreateOrderRejectsBrokenTotalEquation(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.TotalCents = 9999
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrTotalMismatch)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.Items[0].Quantity = 11 // stock is 10
	in.SubtotalCents = 100*11 + 40
	in.TotalCents = in.SubtotalCents + 20
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrStockConflict)
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	uc, _, _, _ := newCreateFixture()
	in := validInput()
	in.Items = []CreateOrderItem{{ProductID: "p-3", PriceCents: 30, Quantity: 1}}
	in.SubtotalCents = 30
	in.TotalCents = 50
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	uc, _, _, pub := newCreateFixture()
	in := validInput()
	in.IdempotencyKey = "k-1"

	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// same key replays the stored order instead of creating a second one
	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, pub.published, 1)
}

func TestCreateOrderDuplicateLockedKey(t *testing.T) {
	orders := newFakeOrderRepo()
	idem := newFakeIdemStore()
	uc := NewCreateOrder(orders, testCatalog(), idem, &fakeOutbox{}, &fakePublisher{})

	in := validInput()
	in.IdempotencyKey = "k-race"

	// lock held but no mapping yet: a concurrent create is still in flight
	_, err := idem.TryLock(context.Background(), in.UserID, in.IdempotencyKey)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicate)
}
