package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ListKeepsOrder(t *testing.T) {
	m := NewMemory(
		Product{ID: "p-2", Name: "Battery 200Ah", Price: 1000, Category: CategoryBattery},
		Product{ID: "p-1", Name: "Panel 300W", Price: 500, Category: CategorySolarPanel},
	)

	products, err := m.List(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p-2", products[0].ID)
	assert.Equal(t, "p-1", products[1].ID)
}

func TestMemory_GetNotFound(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemory_SetAvailableStock(t *testing.T) {
	m := NewMemory(Product{ID: "p-1", Price: 500, AvailableStock: 10})
	ctx := context.Background()

	m.SetAvailableStock("p-1", 8)
	p, err := m.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.AvailableStock)

	m.SetAvailableStock("p-1", -4)
	p, _ = m.Get(ctx, "p-1")
	assert.Equal(t, 0, p.AvailableStock)

	m.SetAvailableStock("unknown", 3)
	_, err = m.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemory_ReplaceDropsDuplicates(t *testing.T) {
	m := NewMemory()
	m.Replace([]Product{{ID: "a", Price: 1}, {ID: "a", Price: 2}, {ID: "b", Price: 3}})

	products, _ := m.List(context.Background())

	require.Len(t, products, 2)
	assert.Equal(t, 2, products[0].Price)
}

func TestProductRow_ToProduct(t *testing.T) {
	row := productRow{
		ID:             "p-1",
		Name:           "MPPT 60A",
		Price:          750,
		Stock:          4,
		Category:       CategoryController,
		Specifications: []byte(`{"current":"60A"}`),
	}

	p, err := row.toProduct()

	require.NoError(t, err)
	assert.Equal(t, 4, p.AvailableStock)
	assert.Equal(t, "60A", p.Specifications["current"])

	row.Specifications = []byte(`not json`)
	_, err = row.toProduct()
	assert.Error(t, err)
}
