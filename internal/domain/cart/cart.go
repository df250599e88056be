package cart

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = math.MaxInt32

// QuantityError is returned when an item would take a line outside
// [1, MaxQuantity].
type QuantityError struct {
	ProductID string
	Quantity  int
}

func (e *QuantityError) Error() string {
	return "quantity must be a positive number"
}

// Item is a single cart line. Name and Price are captured from the catalog
// when the product is first added and are not refreshed afterwards.
type Item struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Cart holds the line items of a single user.
type Cart struct {
	UserID string
	Items  []Item
}

// Add merges item into the cart. A repeated product only increases the
// quantity of its existing line. The cart is unchanged when item.Quantity is
// not positive or the merged line would exceed MaxQuantity.
func (c *Cart) Add(item Item) error {
	if item.Quantity < 1 || item.Quantity > MaxQuantity {
		return &QuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	for i := range c.Items {
		if c.Items[i].ProductID != item.ProductID {
			continue
		}
		if c.Items[i].Quantity > MaxQuantity-item.Quantity {
			return &QuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		c.Items[i].Quantity += item.Quantity
		return nil
	}
	c.Items = append(c.Items, item)
	return nil
}

// Empty reports whether the cart has no items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// Clear removes all items, keeping the cart itself.
func (c *Cart) Clear() {
	c.Items = nil
}

// Subtotal returns the sum of price * quantity across all items.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// Quantity returns the total number of units in the cart.
func (c *Cart) Quantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	out := &Cart{UserID: c.UserID, Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
