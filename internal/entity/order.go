package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the fulfillment stage of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is the settlement stage of the order's payment, tracked
// independently of fulfillment status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// PaymentMethod is fixed at creation and never changes afterwards.
type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "cod"
	MethodCard  PaymentMethod = "card"
	MethodMoMo  PaymentMethod = "momo"
	MethodVNPay PaymentMethod = "vnpay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodCard, MethodMoMo, MethodVNPay:
		return true
	}
	return false
}

// Prepaid reports whether the method settles through a gateway before
// fulfillment (as opposed to cash on delivery).
func (m PaymentMethod) Prepaid() bool { return m != MethodCOD }

const DefaultCancelReason = "Cancelled by user"

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNoItems        = errors.New("order has no line items")
	ErrTotalMismatch  = errors.New("total does not match subtotal - discount + shipping fee")
	ErrBadShippingInf = errors.New("incomplete shipping info")
)

// TransitionTable lists, per current status, the statuses an order may move to.
// The table is configuration: the business decides which edges exist.
type TransitionTable map[Status][]Status

// DefaultTransitions is the sanctioned lifecycle graph used when the config
// file does not override it. Terminal states have no outgoing edges.
var DefaultTransitions = TransitionTable{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (t TransitionTable) Allowed(from, to Status) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a lifecycle edge the table does not sanction.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// LineItem is a point-in-time snapshot of one product as purchased: the name
// and prices are copied at order time so later catalog edits never rewrite
// order history. DiscountCents == 0 means no discount was active.
type LineItem struct {
	ProductID     string
	Name          string
	PriceCents    int64
	DiscountCents int64
	Quantity      int
}

// UnitCents is the effective per-unit price: the discount price when one is
// set, the list price otherwise.
func (li LineItem) UnitCents() int64 {
	if li.DiscountCents > 0 {
		return li.DiscountCents
	}
	return li.PriceCents
}

func (li LineItem) Validate() error {
	if li.ProductID == "" {
		return fmt.Errorf("line item: missing product id")
	}
	if li.Quantity < 1 {
		return fmt.Errorf("line item %s: quantity must be >= 1", li.ProductID)
	}
	if li.PriceCents < 0 || li.DiscountCents < 0 {
		return fmt.Errorf("line item %s: %w", li.ProductID, ErrInvalidAmount)
	}
	return nil
}

// ShippingInfo is a value object copied into the order at creation time.
// Later edits to the user's profile address never touch past orders.
type ShippingInfo struct {
	FullName string
	Phone    string
	Email    string
	Address  string
	City     string
	District string
	Ward     string
	Notes    string
}

func (s ShippingInfo) Validate() error {
	if s.FullName == "" || s.Phone == "" || s.Address == "" || s.City == "" {
		return ErrBadShippingInf
	}
	return nil
}

// Order is the aggregate root for one customer purchase: its line items,
// shipping snapshot, money fields and the status/payment-status pair.
type Order struct {
	ID          string
	OrderNumber string
	UserID      string

	Items    []LineItem
	Shipping ShippingInfo

	SubtotalCents    int64
	DiscountCents    int64
	ShippingFeeCents int64
	TotalCents       int64

	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod

	CancelReason string

	CreatedAt   time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// ComputeSubtotal derives the subtotal from the line items.
func (o *Order) ComputeSubtotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.UnitCents() * int64(it.Quantity)
	}
	return sum
}

// Validate checks the aggregate's creation-time invariants: at least one valid
// line item, complete shipping info, non-negative money fields, the subtotal
// matching its items, and total == subtotal - discount + shippingFee.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range o.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	if err := o.Shipping.Validate(); err != nil {
		return err
	}
	if !o.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q", o.PaymentMethod)
	}
	if o.SubtotalCents < 0 || o.DiscountCents < 0 || o.ShippingFeeCents < 0 || o.TotalCents < 0 {
		return ErrInvalidAmount
	}
	if o.ComputeSubtotal() != o.SubtotalCents {
		return fmt.Errorf("subtotal does not match line items: %w", ErrTotalMismatch)
	}
	if o.TotalCents != o.SubtotalCents-o.DiscountCents+o.ShippingFeeCents {
		return ErrTotalMismatch
	}
	return nil
}

// ApplyStatus moves the order to a new status, enforcing the transition table
// and stamping the timestamp tied to the target value. Applying the current
// status again is a no-op. The cancel reason defaults when none is supplied.
func (o *Order) ApplyStatus(to Status, table TransitionTable, now time.Time, reason string) error {
	if to == o.Status {
		return nil
	}
	if !table.Allowed(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}
	o.Status = to
	switch to {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		if reason == "" {
			reason = DefaultCancelReason
		}
		o.CancelReason = reason
	}
	return nil
}
