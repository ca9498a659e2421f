package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// LoadFile reads a JSON array of products.
func LoadFile(path string) ([]Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	return products, nil
}

// Refresh replaces the cache with the source's current catalog. Stock lowered by
// checkouts since the last refresh is overwritten by the source's figures.
func Refresh(ctx context.Context, cache *Memory, source Reader) (int, error) {
	products, err := source.List(ctx)
	if err != nil {
		return 0, err
	}
	cache.Replace(products)
	return len(products), nil
}

// Sync refreshes cache from source every interval until ctx is done. A failed refresh
// keeps the previous catalog.
func Sync(ctx context.Context, cache *Memory, source Reader, interval time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "catalog"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := Refresh(ctx, cache, source)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("catalog refresh failed", zap.Error(err))
				continue
			}
			logger.Debug("catalog refreshed", zap.Int("products", n))
		}
	}
}
