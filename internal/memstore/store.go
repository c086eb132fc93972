// Package memstore keeps templates, menus, product sets and orders in memory.
// It backs dry runs seeded from fixtures and the engine tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type Store struct {
	mu        sync.RWMutex
	templates []domain.OrderTemplate
	menus     map[string]domain.DynamicMenu
	sets      map[string]domain.ProductSet
	orders    map[domain.OrderKey]domain.Order
}

func New() *Store {
	return &Store{
		menus:  make(map[string]domain.DynamicMenu),
		sets:   make(map[string]domain.ProductSet),
		orders: make(map[domain.OrderKey]domain.Order),
	}
}

func (s *Store) AddTemplates(templates ...domain.OrderTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, templates...)
}

func (s *Store) PutMenu(menu domain.DynamicMenu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[menu.ID] = cloneMenu(menu)
}

func (s *Store) PutProductSet(set domain.ProductSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[set.ID] = domain.ProductSet{ID: set.ID, Products: slices.Clone(set.Products)}
}

func (s *Store) FindAll(_ context.Context) ([]domain.OrderTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.templates), nil
}

func (s *Store) FindMenu(_ context.Context, id string) (*domain.DynamicMenu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	menu, ok := s.menus[id]
	if !ok {
		return nil, nil
	}
	menu = cloneMenu(menu)
	return &menu, nil
}

func (s *Store) FindProductSet(_ context.Context, id string) (*domain.ProductSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[id]
	if !ok {
		return nil, nil
	}
	return &domain.ProductSet{ID: set.ID, Products: slices.Clone(set.Products)}, nil
}

func (s *Store) UpsertByKey(_ context.Context, key domain.OrderKey, patch domain.OrderPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.orders[key]
	if !exists {
		order = domain.Order{
			ID:        uuid.New().String(),
			UserID:    key.UserID,
			Date:      key.Date,
			Status:    patch.Status,
			CreatedAt: patch.Now,
		}
	} else if patch.ResetStatus {
		order.Status = patch.Status
	}

	order.Items = slices.Clone(patch.Items)
	order.EditUntil = patch.EditUntil
	order.UpdatedAt = patch.Now
	s.orders[key] = order
	return !exists, nil
}

func (s *Store) GetByKey(_ context.Context, key domain.OrderKey) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[key]
	if !ok {
		return nil, nil
	}
	order.Items = slices.Clone(order.Items)
	return &order, nil
}

func (s *Store) ListByDate(_ context.Context, date string) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []domain.Order{}
	for key, order := range s.orders {
		if key.Date == date {
			order.Items = slices.Clone(order.Items)
			orders = append(orders, order)
		}
	}
	slices.SortFunc(orders, func(a, b domain.Order) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	return orders, nil
}

// SetStatus changes an order's status the way an operator would.
func (s *Store) SetStatus(key domain.OrderKey, status domain.OrderStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[key]
	if !ok {
		return false
	}
	order.Status = status
	s.orders[key] = order
	return true
}

func cloneMenu(m domain.DynamicMenu) domain.DynamicMenu {
	days := make([]domain.MenuDay, len(m.Days))
	for i, d := range m.Days {
		days[i] = domain.MenuDay{
			Date:          d.Date,
			Slots:         slices.Clone(d.Slots),
			ProductIDs:    slices.Clone(d.ProductIDs),
			ProductSetIDs: slices.Clone(d.ProductSetIDs),
		}
	}
	return domain.DynamicMenu{ID: m.ID, Days: days}
}
