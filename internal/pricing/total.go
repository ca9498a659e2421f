package pricing

// Line is a priced, quantified line item.
type Line struct {
	UnitPrice int `json:"unit_price"`
	Quantity  int `json:"quantity"`
}

// Subtotal returns UnitPrice * Quantity, or 0 for a non-positive quantity.
func (l Line) Subtotal() int {
	if l.Quantity <= 0 {
		return 0
	}
	return l.UnitPrice * l.Quantity
}

// Total sums the subtotals of lines. An empty sequence totals 0.
func Total(lines ...Line) int {
	var total int
	for _, line := range lines {
		total += line.Subtotal()
	}
	return total
}
