// Package order converts carts into immutable orders.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable result of a successful checkout.
type Order struct {
	ID                  string
	UserID              string
	Items               []Item
	TotalBeforeDiscount decimal.Decimal
	DiscountAmount      decimal.Decimal
	TotalAfterDiscount  decimal.Decimal
	// DiscountCode is empty when no code was applied.
	DiscountCode string
	CreatedAt    time.Time
}

// Item is a purchased line, copied from the cart at checkout.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Quantity returns the total number of units in the order.
func (o *Order) Quantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// Repository defines persistence operations for placed orders. The checkout
// engine does not use it; the request layer archives orders after checkout.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
