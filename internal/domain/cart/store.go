package cart

import (
	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/pricing"
)

// Line pairs a catalog product with the quantity being bought.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (l Line) priced() pricing.Line {
	return pricing.Line{UnitPrice: l.Product.Price, Quantity: l.Quantity}
}

// Store holds the cart of a single session. Lines keep insertion order and there is
// at most one line per product id. Every operation is total: invalid input is ignored.
//
// Store is not safe for concurrent use; the owner serializes access.
type Store struct {
	lines []Line
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) index(productID string) int {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add merges delta units of product into the cart. The upper bound against available
// stock is the caller's responsibility; a delta below 1 is ignored.
func (s *Store) Add(product catalog.Product, delta int) {
	if product.ID == "" || delta < 1 {
		return
	}
	if i := s.index(product.ID); i >= 0 {
		s.lines[i].Quantity += delta
		s.lines[i].Product = product
		return
	}
	s.lines = append(s.lines, Line{Product: product, Quantity: delta})
}

// Remove deletes the line for productID if present.
func (s *Store) Remove(productID string) {
	i := s.index(productID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

// UpdateQuantity replaces a line's quantity. Values below 1 leave the line unchanged;
// use Remove to drop it.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity < 1 {
		return
	}
	if i := s.index(productID); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

// ReconcileStock overwrites the cached available stock of the product in its line.
// The quantity is not touched.
func (s *Store) ReconcileStock(productID string, availableStock int) {
	if i := s.index(productID); i >= 0 {
		s.lines[i].Product.AvailableStock = availableStock
	}
}

func (s *Store) Clear() {
	s.lines = nil
}

// Total is recomputed from the current lines on every call.
func (s *Store) Total() int {
	priced := make([]pricing.Line, len(s.lines))
	for i, line := range s.lines {
		priced[i] = line.priced()
	}
	return pricing.Total(priced...)
}

// ItemCount is the sum of quantities, as shown on the cart badge.
func (s *Store) ItemCount() int {
	var n int
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Line(productID string) (Line, bool) {
	if i := s.index(productID); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

func (s *Store) Len() int      { return len(s.lines) }
func (s *Store) IsEmpty() bool { return len(s.lines) == 0 }
