package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

func ptr(t time.Time) *time.Time { return &t }

func TestAggregator_OneDraftPerUser(t *testing.T) {
	agg := NewAggregator("2025-06-10")
	early := time.Date(2025, 6, 8, 18, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 9, 18, 0, 0, 0, time.UTC)

	assert.True(t, agg.Add(Contribution{UserID: "u1", TemplateID: "t1", Quantity: 2, ProductIDs: []string{"P1"}, EditUntil: ptr(late)}))
	assert.True(t, agg.Add(Contribution{UserID: "u2", TemplateID: "t2", Quantity: 1, ProductIDs: []string{"P9"}}))
	assert.True(t, agg.Add(Contribution{UserID: "u1", TemplateID: "t3", Quantity: 1, ProductIDs: []string{"A", "B"}, EditUntil: ptr(early)}))

	drafts := agg.Drafts()
	require.Len(t, drafts, 2)

	u1 := drafts[0]
	assert.Equal(t, domain.OrderKey{UserID: "u1", Date: "2025-06-10"}, u1.OrderKey)
	assert.Equal(t, []domain.OrderItem{
		{ProductID: "P1", Quantity: 2, TemplateID: "t1"},
		{ProductID: "A", Quantity: 1, TemplateID: "t3"},
		{ProductID: "B", Quantity: 1, TemplateID: "t3"},
	}, u1.Items)
	require.NotNil(t, u1.EditUntil)
	assert.Equal(t, early, *u1.EditUntil)

	assert.Equal(t, "u2", drafts[1].UserID)
	assert.Nil(t, drafts[1].EditUntil)
	assert.Equal(t, 3, agg.Ordered())
	assert.Zero(t, agg.Skipped())
}

func TestAggregator_SkipsEmptyContributions(t *testing.T) {
	agg := NewAggregator("2025-06-10")

	assert.False(t, agg.Add(Contribution{UserID: "u1", TemplateID: "t1", Quantity: 0, ProductIDs: []string{"P1"}}))
	assert.False(t, agg.Add(Contribution{UserID: "u1", TemplateID: "t2", Quantity: 3}))
	agg.Skip()

	assert.Empty(t, agg.Drafts())
	assert.Zero(t, agg.Ordered())
	assert.Equal(t, 3, agg.Skipped())
}

func TestEarliest(t *testing.T) {
	a := time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		current   *time.Time
		candidate *time.Time
		want      *time.Time
	}{
		{"both nil", nil, nil, nil},
		{"nil current", nil, ptr(a), ptr(a)},
		{"nil candidate", ptr(a), nil, ptr(a)},
		{"earlier candidate", ptr(b), ptr(a), ptr(a)},
		{"later candidate", ptr(a), ptr(b), ptr(a)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, earliest(tt.current, tt.candidate))
		})
	}
}
