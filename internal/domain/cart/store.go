package cart

import "sync"

// entry pairs a cart with the lock that serializes its mutations.
type entry struct {
	mu   sync.Mutex
	cart *Cart
}

// Store maps user identities to their carts. Carts are created on first
// access and live for the lifetime of the process.
//
// mu only guards the map; each cart is protected by its own entry lock so
// different users never contend.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) entry(userID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{cart: &Cart{UserID: userID}}
		s.entries[userID] = e
	}
	return e
}

// Update runs fn with exclusive access to the user's cart. Other Update and
// Get calls for the same user block until fn returns.
func (s *Store) Update(userID string, fn func(c *Cart) error) error {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cart)
}

// Get returns a copy of the user's cart.
func (s *Store) Get(userID string) *Cart {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone()
}
