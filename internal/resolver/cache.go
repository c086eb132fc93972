package resolver

import (
	"context"
	"sync"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// CachedCatalog memoizes lookups for the lifetime of one run, so templates
// sharing a menu or product set hit the store once. Misses and soft errors
// are cached too; store failures are not.
type CachedCatalog struct {
	next Catalog

	mu    sync.Mutex
	menus map[string]cached[domain.DynamicMenu]
	sets  map[string]cached[domain.ProductSet]
}

type cached[T any] struct {
	doc *T
	err error
}

func NewCachedCatalog(next Catalog) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		menus: make(map[string]cached[domain.DynamicMenu]),
		sets:  make(map[string]cached[domain.ProductSet]),
	}
}

func (c *CachedCatalog) FindMenu(ctx context.Context, id string) (*domain.DynamicMenu, error) {
	return lookup(ctx, &c.mu, c.menus, id, c.next.FindMenu)
}

func (c *CachedCatalog) FindProductSet(ctx context.Context, id string) (*domain.ProductSet, error) {
	return lookup(ctx, &c.mu, c.sets, id, c.next.FindProductSet)
}

func lookup[T any](ctx context.Context, mu *sync.Mutex, entries map[string]cached[T], id string, find func(context.Context, string) (*T, error)) (*T, error) {
	mu.Lock()
	entry, ok := entries[id]
	mu.Unlock()
	if ok {
		return entry.doc, entry.err
	}

	doc, err := find(ctx, id)
	if err != nil && !domain.IsSoft(err) {
		return nil, err
	}

	mu.Lock()
	entries[id] = cached[T]{doc: doc, err: err}
	mu.Unlock()
	return doc, err
}
