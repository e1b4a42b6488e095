package domain

import "time"

// Product is read-mostly catalog data consulted when an order is created.
// Stock never goes below zero: it is decremented only through order
// fulfillment, which increments Sold in the same write.
type Product struct {
	ID            string
	Name          string
	PriceCents    int64
	DiscountCents int64 // 0 = no discount active
	Stock         int
	Sold          int
	CategoryID    string
	Active        bool
	Featured      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UnitCents is the effective selling price right now.
func (p Product) UnitCents() int64 {
	if p.DiscountCents > 0 {
		return p.DiscountCents
	}
	return p.PriceCents
}

// Category is a node in the self-referential category tree.
type Category struct {
	ID        string
	Name      string
	ParentID  string // empty for root categories
	Active    bool
	SortOrder int
}
