package catalog

import (
	"context"
	"errors"
)

// Category names as stored by the catalog service.
const (
	CategorySolarPanel = "Solar Panel"
	CategoryBattery    = "Battery"
	CategoryController = "Controller"
	CategoryCable      = "Cable"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Price          int               `json:"price"`
	AvailableStock int               `json:"available_stock"`
	Category       string            `json:"category"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// Reader is the read side of the catalog service.
type Reader interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}
