package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type productRow struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	Price          int    `db:"price"`
	Stock          int    `db:"quantity_in_stock"`
	Category       string `db:"category"`
	Specifications []byte `db:"specifications"`
}

func (r productRow) toProduct() (Product, error) {
	p := Product{
		ID:             r.ID,
		Name:           r.Name,
		Price:          r.Price,
		AvailableStock: r.Stock,
		Category:       r.Category,
	}
	if len(r.Specifications) > 0 {
		if err := json.Unmarshal(r.Specifications, &p.Specifications); err != nil {
			return Product{}, fmt.Errorf("product %s: invalid specifications: %w", r.ID, err)
		}
	}
	return p, nil
}

const selectProducts = `
	SELECT id, name, price, quantity_in_stock, category,
	       COALESCE(specifications, '{}'::jsonb) AS specifications
	FROM products`

// PostgresReader reads the catalog from the catalog service's PostgreSQL database.
type PostgresReader struct {
	db *sqlx.DB
}

func NewPostgresReader(db *sqlx.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

func (r *PostgresReader) List(ctx context.Context) ([]Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, selectProducts+` ORDER BY category, name`); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *PostgresReader) Get(ctx context.Context, id string) (Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, selectProducts+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return row.toProduct()
}

// ConnectPostgres opens and pings a pooled connection.
func ConnectPostgres(ctx context.Context, connStr string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
