package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	s, err := LoadFile("testdata/fixtures.yaml")
	require.NoError(t, err)

	templates, err := s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 2)

	normal := templates[0]
	assert.Equal(t, "tpl-normal", normal.ID)
	assert.Equal(t, domain.TemplateKindNormal, normal.Kind)
	assert.Equal(t, 2, normal.WeeklyQuantities[domain.Tuesday])
	require.NotNil(t, normal.Deadline)
	assert.Equal(t, 1, normal.Deadline.DaysBefore)
	assert.Equal(t, 30, normal.Deadline.Minute)
	assert.Equal(t, []domain.Weekday{domain.Saturday, domain.Sunday}, normal.Deadline.ExcludedWeekdays.Days())

	iconic := templates[1]
	assert.Equal(t, domain.TemplateKindIconic, iconic.Kind)
	assert.Equal(t, domain.ProductRef{ProductID: "FB", MenuID: "M1", SlotID: "S1"}, iconic.ProductRef)
	assert.Nil(t, iconic.Deadline)

	menu, err := s.FindMenu(ctx, "M1")
	require.NoError(t, err)
	require.NotNil(t, menu)
	day := menu.Day("2025-06-10")
	require.NotNil(t, day)
	assert.Equal(t, "PS1", day.Slot("S1").ProductSetID)
	assert.Equal(t, []string{"FB"}, day.ProductIDs)

	set, err := s.FindProductSet(ctx, "PS1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, set.Products)

	missing, err := s.FindMenu(ctx, "M2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("templates:\n  - id: t1\n    uid: u1\n    monday: 3\n"))
	assert.Error(t, err)
}

func TestLoad_RequiresIDs(t *testing.T) {
	_, err := Load(strings.NewReader("templates:\n  - id: t1\n    mon: 3\n"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)

	templates, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestUpsertByKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := domain.OrderKey{UserID: "user-1", Date: "2025-06-10"}
	first := time.Date(2025, 5, 24, 6, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	created, err := s.UpsertByKey(ctx, key, domain.OrderPatch{
		Items:  []domain.OrderItem{{ProductID: "P1", Quantity: 2, TemplateID: "t1"}},
		Status: domain.OrderStatusPending,
		Now:    first,
	})
	require.NoError(t, err)
	assert.True(t, created)

	require.True(t, s.SetStatus(key, domain.OrderStatusConfirmed))

	created, err = s.UpsertByKey(ctx, key, domain.OrderPatch{
		Items:  []domain.OrderItem{{ProductID: "P2", Quantity: 1, TemplateID: "t2"}},
		Status: domain.OrderStatusPending,
		Now:    second,
	})
	require.NoError(t, err)
	assert.False(t, created)

	order, err := s.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first, order.CreatedAt)
	assert.Equal(t, second, order.UpdatedAt)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "P2", order.Items[0].ProductID)

	_, err = s.UpsertByKey(ctx, key, domain.OrderPatch{Status: domain.OrderStatusPending, ResetStatus: true, Now: second})
	require.NoError(t, err)
	order, err = s.GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	orders, err := s.ListByDate(ctx, "2025-06-10")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = s.ListByDate(ctx, "2025-06-11")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
