// Package product defines the catalog types the storefront sells.
package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// NotFoundError is returned when a requested product does not exist.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return "Product not found"
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Repository defines catalog operations. Add replaces an existing product
// with the same ID.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Add(ctx context.Context, p Product) error
}
