package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/discount"
	"github.com/xenking/kart-storefront/internal/domain/ledger"
)

// EmptyCartError is returned when checking out a cart without items.
type EmptyCartError struct {
	UserID string
}

func (e *EmptyCartError) Error() string {
	return "Cart is empty"
}

// Engine performs checkout: it prices the user's cart, redeems an optional
// discount code, records the sale and empties the cart.
type Engine struct {
	carts     *cart.Store
	discounts *discount.Manager
	ledger    *ledger.Ledger
	now       func() time.Time
	newID     func() string
}

// NewEngine creates a checkout Engine over the shared state.
func NewEngine(carts *cart.Store, discounts *discount.Manager, l *ledger.Ledger) *Engine {
	return &Engine{
		carts:     carts,
		discounts: discounts,
		ledger:    l,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Checkout turns the user's cart into an Order. An empty code means no
// discount. On error nothing is changed: the cart keeps its items, the code
// stays redeemable and the ledger is not updated.
//
// The user's cart lock is held for the whole operation and the ledger lock
// is taken inside it, so concurrent AddItem calls for the same user are
// either fully included in this order or land in the emptied cart.
func (e *Engine) Checkout(userID, code string) (*Order, error) {
	var o *Order
	err := e.carts.Update(userID, func(c *cart.Cart) error {
		if c.Empty() {
			return &EmptyCartError{UserID: userID}
		}

		subtotal := c.Subtotal()
		discountAmount := decimal.Zero

		if err := e.ledger.Update(func(tx *ledger.Tx) error {
			if code != "" {
				rate, err := e.discounts.Consume(tx, code)
				if err != nil {
					return err
				}
				discountAmount = subtotal.Mul(rate).Round(0)
			}
			tx.RecordOrder(c.Quantity(), subtotal.Sub(discountAmount), discountAmount)
			return nil
		}); err != nil {
			return err
		}

		o = &Order{
			ID:                  e.newID(),
			UserID:              userID,
			Items:               snapshotItems(c.Items),
			TotalBeforeDiscount: subtotal,
			DiscountAmount:      discountAmount,
			TotalAfterDiscount:  subtotal.Sub(discountAmount),
			DiscountCode:        code,
			CreatedAt:           e.now(),
		}
		c.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func snapshotItems(items []cart.Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return out
}
