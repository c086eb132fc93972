// Package resolver turns an order template into the concrete product ids it
// orders on a given date.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// Catalog looks up menus and product sets. Implementations return (nil, nil)
// when the document does not exist and wrap domain.ErrInvalidIdentifier when
// id is not a valid key for the store.
type Catalog interface {
	FindMenu(ctx context.Context, id string) (*domain.DynamicMenu, error)
	FindProductSet(ctx context.Context, id string) (*domain.ProductSet, error)
}

// Resolver resolves one kind of template.
type Resolver interface {
	Resolve(ctx context.Context, tpl domain.OrderTemplate, date time.Time) ([]string, error)
}

// Dispatcher routes a template to the resolver registered for its kind.
type Dispatcher struct {
	resolvers map[domain.TemplateKind]Resolver
}

func NewDispatcher(catalog Catalog, fallback FallbackPolicy) *Dispatcher {
	return &Dispatcher{
		resolvers: map[domain.TemplateKind]Resolver{
			domain.TemplateKindNormal: Normal{},
			domain.TemplateKindIconic: NewIconic(catalog, fallback),
		},
	}
}

func (d *Dispatcher) Resolve(ctx context.Context, tpl domain.OrderTemplate, date time.Time) ([]string, error) {
	r, ok := d.resolvers[tpl.Kind]
	if !ok {
		return nil, fmt.Errorf("no resolver for template kind %q", tpl.Kind)
	}
	return r.Resolve(ctx, tpl, date)
}

// Normal resolves templates that name their product directly.
type Normal struct{}

func (Normal) Resolve(_ context.Context, tpl domain.OrderTemplate, _ time.Time) ([]string, error) {
	if tpl.ProductRef.ProductID == "" {
		return nil, nil
	}
	return []string{tpl.ProductRef.ProductID}, nil
}
