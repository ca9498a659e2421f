package bundle

import "github.com/example/solar-storefront/internal/catalog"

// Editor applies admin edits to a draft and recomputes the quote after each one.
type Editor struct {
	calc  *Calculator
	draft Draft
	quote Quote
}

func NewEditor(calc *Calculator, draft Draft) *Editor {
	if draft.Products == nil {
		draft = mergeSlots(draft)
	}
	e := &Editor{calc: calc, draft: draft.clone()}
	e.recompute()
	return e
}

func mergeSlots(d Draft) Draft {
	base := NewDraft()
	base.Description = d.Description
	base.LaborCost = d.LaborCost
	base.EstimatedDuration = d.EstimatedDuration
	base.InstallationDate = d.InstallationDate
	return base
}

func (e *Editor) recompute() {
	e.quote = e.calc.Quote(e.draft)
}

func (e *Editor) Draft() Draft { return e.draft.clone() }
func (e *Editor) Quote() Quote { return e.quote }

// SetCatalog swaps the available products, e.g. once the catalog has loaded.
func (e *Editor) SetCatalog(products []catalog.Product) Quote {
	e.calc = NewCalculator(products)
	e.recompute()
	return e.quote
}

// SelectProduct selects productID for a slot. A product that is not offered for the
// slot is ignored.
func (e *Editor) SelectProduct(cat Category, productID string) Quote {
	if _, ok := e.calc.Lookup(cat, productID); !ok {
		return e.quote
	}
	slot := e.draft.Products[cat]
	slot.ProductID = productID
	if slot.Quantity < 1 {
		slot.Quantity = 1
	}
	e.draft.Products[cat] = slot
	e.recompute()
	return e.quote
}

// SetQuantity sets a slot quantity; anything below 1 becomes 1.
func (e *Editor) SetQuantity(cat Category, quantity int) Quote {
	if !cat.Valid() {
		return e.quote
	}
	slot := e.draft.Products[cat]
	slot.Quantity = max(quantity, 1)
	e.draft.Products[cat] = slot
	e.recompute()
	return e.quote
}

// SetLaborCost sets the labor charge; negative values become 0.
func (e *Editor) SetLaborCost(cost int) Quote {
	e.draft.LaborCost = max(cost, 0)
	e.recompute()
	return e.quote
}

func (e *Editor) SetDetails(description, estimatedDuration, installationDate string) {
	e.draft.Description = description
	e.draft.EstimatedDuration = estimatedDuration
	e.draft.InstallationDate = installationDate
}

func (e *Editor) Validate() error {
	return e.draft.Validate()
}
