package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type fakeCatalog struct {
	menus    map[string]*domain.DynamicMenu
	sets     map[string]*domain.ProductSet
	err      error
	menuHits int
	setHits  int
}

func (f *fakeCatalog) FindMenu(_ context.Context, id string) (*domain.DynamicMenu, error) {
	f.menuHits++
	if f.err != nil {
		return nil, f.err
	}
	if id == "not-an-object-id" {
		return nil, fmt.Errorf("parse menu id: %w", domain.ErrInvalidIdentifier)
	}
	return f.menus[id], nil
}

func (f *fakeCatalog) FindProductSet(_ context.Context, id string) (*domain.ProductSet, error) {
	f.setHits++
	if f.err != nil {
		return nil, f.err
	}
	return f.sets[id], nil
}

var orderDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		menus: map[string]*domain.DynamicMenu{
			"M1": {
				ID: "M1",
				Days: []domain.MenuDay{
					{
						Date: "2025-06-10",
						Slots: []domain.SlotLink{
							{SlotID: "S1", ProductSetID: "PS1"},
							{SlotID: "S2", ProductID: "P2"},
							{SlotID: "S3", ProductID: "P3"},
							{SlotID: "S4", ProductSetID: "PS-missing"},
							{SlotID: "S5"},
						},
						ProductIDs:    []string{"P2", "FB"},
						ProductSetIDs: []string{"PS2"},
					},
					{
						Date:  "2025-06-11",
						Slots: []domain.SlotLink{{SlotID: "S1", ProductID: "P9"}},
					},
				},
			},
		},
		sets: map[string]*domain.ProductSet{
			"PS1": {ID: "PS1", Products: []string{"A", "B", "A"}},
			"PS2": {ID: "PS2", Products: []string{"C"}},
		},
	}
}

func iconic(menuID, slotID, fallback string) domain.OrderTemplate {
	return domain.OrderTemplate{
		ID:     "tpl-1",
		UserID: "user-1",
		Kind:   domain.TemplateKindIconic,
		ProductRef: domain.ProductRef{
			MenuID:    menuID,
			SlotID:    slotID,
			ProductID: fallback,
		},
	}
}

func TestNormal_Resolve(t *testing.T) {
	ids, err := Normal{}.Resolve(context.Background(), domain.OrderTemplate{ProductRef: domain.ProductRef{ProductID: "P1"}}, orderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)

	ids, err = Normal{}.Resolve(context.Background(), domain.OrderTemplate{}, orderDate)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIconic_ProductSetSlot(t *testing.T) {
	r := NewIconic(newCatalog(), FallbackStrict)

	ids, err := r.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids)
}

func TestIconic_DirectProductInUniverse(t *testing.T) {
	r := NewIconic(newCatalog(), FallbackStrict)

	ids, err := r.Resolve(context.Background(), iconic("M1", "S2", ""), orderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, ids)
}

func TestIconic_DirectProductOutsideUniverse(t *testing.T) {
	r := NewIconic(newCatalog(), FallbackStrict)

	ids, err := r.Resolve(context.Background(), iconic("M1", "S3", ""), orderDate)
	assert.Empty(t, ids)

	var missing *domain.MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.ReferenceProduct, missing.Kind)
	assert.Equal(t, "P3", missing.ID)
}

func TestIconic_UnrestrictedDay(t *testing.T) {
	r := NewIconic(newCatalog(), FallbackStrict)

	ids, err := r.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"P9"}, ids)
}

func TestIconic_MissingReferences(t *testing.T) {
	tests := []struct {
		name string
		tpl  domain.OrderTemplate
		date time.Time
		kind domain.ReferenceKind
	}{
		{"no menu id", iconic("", "S1", "FB"), orderDate, domain.ReferenceMenu},
		{"unknown menu", iconic("M404", "S1", "FB"), orderDate, domain.ReferenceMenu},
		{"invalid menu id", iconic("not-an-object-id", "S1", "FB"), orderDate, domain.ReferenceMenu},
		{"no day", iconic("M1", "S1", "FB"), orderDate.AddDate(0, 0, 7), domain.ReferenceMenuDay},
		{"no slot", iconic("M1", "S404", ""), orderDate, domain.ReferenceSlot},
		{"missing product set", iconic("M1", "S4", ""), orderDate, domain.ReferenceProductSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIconic(newCatalog(), FallbackStrict)

			ids, err := r.Resolve(context.Background(), tt.tpl, tt.date)
			assert.Empty(t, ids)
			assert.True(t, domain.IsSoft(err), "expected soft error, got %v", err)

			var missing *domain.MissingReferenceError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.kind, missing.Kind)
		})
	}
}

func TestIconic_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		policy FallbackPolicy
		tpl    domain.OrderTemplate
		want   []string
	}{
		{"strict accepts listed product", FallbackStrict, iconic("M1", "S404", "FB"), []string{"FB"}},
		{"strict accepts product from day set", FallbackStrict, iconic("M1", "S404", "C"), []string{"C"}},
		{"strict rejects unlisted product", FallbackStrict, iconic("M1", "S404", "ZZ"), nil},
		{"lenient accepts unlisted product", FallbackLenient, iconic("M1", "S404", "ZZ"), []string{"ZZ"}},
		{"disabled ignores fallback", FallbackDisabled, iconic("M1", "S404", "FB"), nil},
		{"empty link falls back", FallbackStrict, iconic("M1", "S5", "FB"), []string{"FB"}},
		{"missing set falls back", FallbackStrict, iconic("M1", "S4", "FB"), []string{"FB"}},
		{"rejected slot product falls back", FallbackStrict, iconic("M1", "S3", "FB"), []string{"FB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewIconic(newCatalog(), tt.policy)

			ids, err := r.Resolve(context.Background(), tt.tpl, orderDate)
			if tt.want == nil {
				assert.Empty(t, ids)
				assert.True(t, domain.IsSoft(err), "expected soft error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestIconic_StoreFailureIsHard(t *testing.T) {
	catalog := newCatalog()
	catalog.err = errors.New("connection refused")
	r := NewIconic(catalog, FallbackStrict)

	_, err := r.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate)

	var unavailable *domain.StoreUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.False(t, domain.IsSoft(err))
}

func TestIconic_DoesNotMutateDocuments(t *testing.T) {
	catalog := newCatalog()
	r := NewIconic(catalog, FallbackStrict)

	ids, err := r.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate)
	require.NoError(t, err)
	ids[0] = "mutated"

	assert.Equal(t, []string{"A", "B", "A"}, catalog.sets["PS1"].Products)
	assert.Len(t, catalog.menus["M1"].Days[0].Slots, 5)
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher(newCatalog(), FallbackStrict)

	ids, err := d.Resolve(context.Background(), domain.OrderTemplate{Kind: domain.TemplateKindNormal, ProductRef: domain.ProductRef{ProductID: "P1"}}, orderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)

	ids, err = d.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids)

	_, err = d.Resolve(context.Background(), domain.OrderTemplate{Kind: "weekly"}, orderDate)
	assert.Error(t, err)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackStrict, p)

	p, err = ParseFallbackPolicy("lenient")
	require.NoError(t, err)
	assert.Equal(t, FallbackLenient, p)

	_, err = ParseFallbackPolicy("sometimes")
	assert.Error(t, err)
}

func TestCachedCatalog(t *testing.T) {
	catalog := newCatalog()
	cache := NewCachedCatalog(catalog)
	r := NewIconic(cache, FallbackStrict)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), iconic("M1", "S1", ""), orderDate)
		require.NoError(t, err)
		_, err = r.Resolve(context.Background(), iconic("M404", "S1", ""), orderDate)
		require.Error(t, err)
	}

	assert.Equal(t, 2, catalog.menuHits)
	assert.Equal(t, 1, catalog.setHits)
}

func TestCachedCatalog_DoesNotCacheStoreFailures(t *testing.T) {
	catalog := newCatalog()
	catalog.err = errors.New("timeout")
	cache := NewCachedCatalog(catalog)

	_, err := cache.FindMenu(context.Background(), "M1")
	require.Error(t, err)

	catalog.err = nil
	menu, err := cache.FindMenu(context.Background(), "M1")
	require.NoError(t, err)
	assert.Equal(t, "M1", menu.ID)
}
