// Package catalog provides the in-memory product catalog and its file
// loader.
package catalog

import (
	"context"
	"sync"

	"github.com/xenking/kart-storefront/internal/domain/product"
)

var _ product.Repository = (*Memory)(nil)

// Memory is a product.Repository kept in process memory. List returns
// products in insertion order.
type Memory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]product.Product
}

// NewMemory returns a catalog pre-populated with products.
func NewMemory(products ...product.Product) *Memory {
	m := &Memory{byID: make(map[string]product.Product, len(products))}
	for _, p := range products {
		m.put(p)
	}
	return m
}

func (m *Memory) put(p product.Product) {
	if _, ok := m.byID[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.byID[p.ID] = p
}

// List returns every product.
func (m *Memory) List(_ context.Context) ([]product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]product.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, nil
}

// GetByID returns the product or a *product.NotFoundError.
func (m *Memory) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return nil, &product.NotFoundError{ProductID: id}
	}
	return &p, nil
}

// Add inserts or replaces a product.
func (m *Memory) Add(_ context.Context, p product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(p)
	return nil
}

// Len returns the number of products.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
