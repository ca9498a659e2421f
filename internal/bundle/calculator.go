package bundle

import (
	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/pricing"
)

// Quote is the cost breakdown of a draft.
type Quote struct {
	Products map[Category]int `json:"products"`
	Labor    int              `json:"labor"`
	Total    int              `json:"total"`
}

// Calculator prices drafts against the products available for each slot.
type Calculator struct {
	options map[Category][]catalog.Product
	index   map[Category]map[string]catalog.Product
}

// NewCalculator sorts products into slots by catalog category. Products of other
// categories are not offered.
func NewCalculator(products []catalog.Product) *Calculator {
	c := &Calculator{
		options: make(map[Category][]catalog.Product, len(Categories)),
		index:   make(map[Category]map[string]catalog.Product, len(Categories)),
	}
	for _, cat := range Categories {
		c.options[cat] = []catalog.Product{}
		c.index[cat] = make(map[string]catalog.Product)
	}
	for _, p := range products {
		cat, ok := CategoryOf(p.Category)
		if !ok {
			continue
		}
		c.options[cat] = append(c.options[cat], p)
		c.index[cat][p.ID] = p
	}
	return c
}

// Options returns the products selectable for each slot.
func (c *Calculator) Options() map[Category][]catalog.Product {
	return c.options
}

func (c *Calculator) Lookup(cat Category, productID string) (catalog.Product, bool) {
	p, ok := c.index[cat][productID]
	return p, ok
}

// Quote prices every slot as unit price times quantity, 0 when nothing (or an unknown
// product) is selected, and adds the labor cost. It is a pure function of the draft.
func (c *Calculator) Quote(d Draft) Quote {
	q := Quote{
		Products: make(map[Category]int, len(Categories)),
		Labor:    max(d.LaborCost, 0),
	}

	lines := make([]pricing.Line, 0, len(Categories)+1)
	for _, cat := range Categories {
		slot := d.Products[cat]
		line := pricing.Line{Quantity: slot.Quantity}
		if p, ok := c.Lookup(cat, slot.ProductID); ok {
			line.UnitPrice = p.Price
		}
		q.Products[cat] = line.Subtotal()
		lines = append(lines, line)
	}
	lines = append(lines, pricing.Line{UnitPrice: q.Labor, Quantity: 1})

	q.Total = pricing.Total(lines...)
	return q
}
