package catalog

import (
	"context"
	"sync"
)

// Memory is an in-process catalog. It doubles as the storefront's optimistic stock cache:
// SetAvailableStock is called after a successful checkout so listings reflect the units
// just sold before the catalog service is queried again.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

func NewMemory(products ...Product) *Memory {
	m := &Memory{products: make(map[string]Product)}
	m.Replace(products)
	return m
}

// Replace swaps the whole catalog, keeping the given order.
func (m *Memory) Replace(products []Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products = make(map[string]Product, len(products))
	m.order = m.order[:0]
	for _, p := range products {
		if _, dup := m.products[p.ID]; !dup {
			m.order = append(m.order, p.ID)
		}
		m.products[p.ID] = p
	}
}

func (m *Memory) List(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// SetAvailableStock overwrites the cached stock of a product. Unknown ids are ignored.
func (m *Memory) SetAvailableStock(id string, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return
	}
	if stock < 0 {
		stock = 0
	}
	p.AvailableStock = stock
	m.products[id] = p
}
