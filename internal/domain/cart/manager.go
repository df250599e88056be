// Package cart implements per-user shopping carts.
package cart

// Manager adds items to carts and reads them back. It applies no policy
// beyond merging repeated products and the line quantity limit; callers
// validate the product before calling AddItem.
type Manager struct {
	store *Store
}

// NewManager creates a Manager over the given store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// AddItem merges item into the user's cart and returns the updated cart. It
// fails with a QuantityError, leaving the cart unchanged, when the resulting
// line quantity would fall outside [1, MaxQuantity].
func (m *Manager) AddItem(userID string, item Item) (*Cart, error) {
	var out *Cart
	err := m.store.Update(userID, func(c *Cart) error {
		if err := c.Add(item); err != nil {
			return err
		}
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCart returns the user's cart, creating an empty one if needed.
func (m *Manager) GetCart(userID string) *Cart {
	return m.store.Get(userID)
}

// Store returns the underlying cart store.
func (m *Manager) Store() *Store {
	return m.store
}
