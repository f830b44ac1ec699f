// Package catalog memoizes the upstream country list for the process lifetime.
package catalog

import (
	"context"
	"sync"

	"github.com/rizwanaperveen/covid/pkg/metrics"
)

// Fetcher loads the sorted country list from upstream.
type Fetcher interface {
	Countries(ctx context.Context) ([]string, error)
}

// Catalog returns the country list, fetching it at most once on success.
type Catalog interface {
	Countries(ctx context.Context) ([]string, error)

	// Size returns the number of memoized countries, 0 before the first fetch.
	Size() int
}

// memoCatalog holds the first successful fetch. Failed fetches are not
// stored, so the next call retries upstream. There is no invalidation.
type memoCatalog struct {
	mu        sync.Mutex
	fetcher   Fetcher
	countries []string
	loaded    bool
}

// NewMemo wraps fetcher with a process-lifetime memo.
func NewMemo(fetcher Fetcher) Catalog {
	return &memoCatalog{fetcher: fetcher}
}

// Countries returns a copy of the memoized list. The lock is held across the
// upstream call so concurrent first callers share a single request.
func (c *memoCatalog) Countries(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		metrics.RecordCatalogHit()
		return clone(c.countries), nil
	}

	metrics.RecordCatalogMiss()
	countries, err := c.fetcher.Countries(ctx)
	if err != nil {
		return nil, err
	}
	c.countries = clone(countries)
	c.loaded = true
	metrics.UpdateCatalogCountries(len(c.countries))
	return clone(c.countries), nil
}

func (c *memoCatalog) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.countries)
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Index returns the position of name in countries, or -1.
func Index(countries []string, name string) int {
	for i, c := range countries {
		if c == name {
			return i
		}
	}
	return -1
}
