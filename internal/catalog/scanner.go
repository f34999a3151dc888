package catalog

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Scanner acquires a product, standing in for barcode-reading hardware.
type Scanner interface {
	Scan(ctx context.Context) (Product, error)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(ctx context.Context) (Product, error)

// Scan calls f(ctx).
func (f ScannerFunc) Scan(ctx context.Context) (Product, error) {
	return f(ctx)
}

// BarcodeScanner returns a Scanner that resolves a fixed barcode through lookup.
func BarcodeScanner(lookup ProductLookup, barcode string) Scanner {
	return ScannerFunc(func(ctx context.Context) (Product, error) {
		return lookup.Lookup(ctx, barcode)
	})
}

// RandomScanner picks a product uniformly at random from the catalog.
// Safe for concurrent use.
type RandomScanner struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScanner creates a RandomScanner drawing from src.
// A nil src seeds from the runtime's random source.
func NewRandomScanner(c *Catalog, src rand.Source) *RandomScanner {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomScanner{catalog: c, rng: rand.New(src)}
}

// NewSeededScanner creates a RandomScanner with a deterministic sequence.
func NewSeededScanner(c *Catalog, seed uint64) *RandomScanner {
	return NewRandomScanner(c, rand.NewPCG(seed, seed))
}

// Scan implements Scanner.
func (s *RandomScanner) Scan(ctx context.Context) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	if s.catalog.Len() == 0 {
		return Product{}, ErrEmptyCatalog
	}

	s.mu.Lock()
	i := s.rng.IntN(s.catalog.Len())
	s.mu.Unlock()

	return s.catalog.At(i), nil
}
