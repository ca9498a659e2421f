package bundle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/solar-storefront/internal/catalog"
)

// Category is one of the fixed hardware slots of a service bundle.
type Category string

const (
	CategoryPanel      Category = "panel"
	CategoryBattery    Category = "battery"
	CategoryController Category = "controller"
	CategoryCable      Category = "cable"
)

// Categories lists the slots in form order.
var Categories = []Category{CategoryPanel, CategoryBattery, CategoryController, CategoryCable}

var catalogCategories = map[Category]string{
	CategoryPanel:      catalog.CategorySolarPanel,
	CategoryBattery:    catalog.CategoryBattery,
	CategoryController: catalog.CategoryController,
	CategoryCable:      catalog.CategoryCable,
}

// CatalogCategory returns the catalog category feeding this slot.
func (c Category) CatalogCategory() string {
	return catalogCategories[c]
}

func (c Category) Valid() bool {
	_, ok := catalogCategories[c]
	return ok
}

// CategoryOf maps a catalog category name to its slot.
func CategoryOf(catalogCategory string) (Category, bool) {
	for slot, name := range catalogCategories {
		if name == catalogCategory {
			return slot, true
		}
	}
	return "", false
}

type Slot struct {
	ProductID string `json:"product,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Draft is a service bundle being composed by an admin. Costs are never stored on it.
type Draft struct {
	Description       string            `json:"description"`
	Products          map[Category]Slot `json:"products"`
	LaborCost         int               `json:"laborCost"`
	EstimatedDuration string            `json:"estimatedDuration"`
	InstallationDate  string            `json:"installationDate"`
}

// NewDraft returns an empty draft with every slot unselected at quantity 1.
func NewDraft() Draft {
	d := Draft{Products: make(map[Category]Slot, len(Categories))}
	for _, c := range Categories {
		d.Products[c] = Slot{Quantity: 1}
	}
	return d
}

func (d Draft) clone() Draft {
	out := d
	out.Products = make(map[Category]Slot, len(d.Products))
	for c, s := range d.Products {
		out.Products[c] = s
	}
	return out
}

var ErrIncomplete = errors.New("service bundle is incomplete")

// IncompleteError names every slot lacking a selection or a positive quantity.
type IncompleteError struct {
	Missing []Category
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		names[i] = string(c)
	}
	return fmt.Sprintf("%v: select and set a quantity for %s", ErrIncomplete, strings.Join(names, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Messages returns one storefront message per missing slot.
func (e *IncompleteError) Messages() []string {
	msgs := make([]string, len(e.Missing))
	for i, c := range e.Missing {
		msgs[i] = fmt.Sprintf("Please select %s and specify quantity", c)
	}
	return msgs
}

// Validate reports whether the draft can be submitted.
func (d Draft) Validate() error {
	var missing []Category
	for _, c := range Categories {
		slot, ok := d.Products[c]
		if !ok || slot.ProductID == "" || slot.Quantity < 1 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}
