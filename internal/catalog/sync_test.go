package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	products []Product
	err      error
	calls    atomic.Int32
}

func (s *stubReader) List(context.Context) ([]Product, error) {
	s.calls.Add(1)
	return s.products, s.err
}

func (s *stubReader) Get(context.Context, string) (Product, error) {
	return Product{}, ErrProductNotFound
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"pan-1","name":"Mono 400W","price":125000,"available_stock":12,"category":"Solar Panel","specifications":{"watt":"400"}}
	]`), 0o600))

	products, err := LoadFile(path)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 12, products[0].AvailableStock)
	assert.Equal(t, "400", products[0].Specifications["watt"])
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":`), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestRefresh_OverwritesOptimisticStock(t *testing.T) {
	cache := NewMemory(Product{ID: "pan-1", AvailableStock: 10})
	cache.SetAvailableStock("pan-1", 4)
	source := &stubReader{products: []Product{{ID: "pan-1", AvailableStock: 7}, {ID: "bat-1", AvailableStock: 3}}}

	n, err := Refresh(context.Background(), cache, source)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	p, err := cache.Get(context.Background(), "pan-1")
	require.NoError(t, err)
	assert.Equal(t, 7, p.AvailableStock)
}

func TestRefresh_ErrorKeepsCache(t *testing.T) {
	cache := NewMemory(Product{ID: "pan-1"})

	_, err := Refresh(context.Background(), cache, &stubReader{err: errors.New("db down")})

	assert.Error(t, err)
	_, err = cache.Get(context.Background(), "pan-1")
	assert.NoError(t, err)
}

func TestSync_RefreshesUntilCancelled(t *testing.T) {
	cache := NewMemory()
	source := &stubReader{products: []Product{{ID: "pan-1"}}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Sync(ctx, cache, source, time.Millisecond, nil) }()

	require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sync did not stop")
	}
	_, err := cache.Get(context.Background(), "pan-1")
	assert.NoError(t, err)
}
