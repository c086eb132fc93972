package generator

import (
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// Contribution is what one template adds to its user's order for the date.
type Contribution struct {
	UserID     string
	TemplateID string
	Quantity   int
	ProductIDs []string
	EditUntil  *time.Time
}

// Aggregator folds contributions into one draft per user for a single date.
// Items keep the order in which contributions were added.
type Aggregator struct {
	date    string
	drafts  map[string]*domain.OrderDraft
	users   []string
	ordered int
	skipped int
}

func NewAggregator(date string) *Aggregator {
	return &Aggregator{
		date:   date,
		drafts: make(map[string]*domain.OrderDraft),
	}
}

// Add folds c into its user's draft. Contributions without a positive
// quantity or without products are counted as skipped and add nothing.
func (a *Aggregator) Add(c Contribution) bool {
	if c.Quantity <= 0 || len(c.ProductIDs) == 0 {
		a.skipped++
		return false
	}

	draft, ok := a.drafts[c.UserID]
	if !ok {
		draft = &domain.OrderDraft{OrderKey: domain.OrderKey{UserID: c.UserID, Date: a.date}}
		a.drafts[c.UserID] = draft
		a.users = append(a.users, c.UserID)
	}

	for _, productID := range c.ProductIDs {
		draft.Items = append(draft.Items, domain.OrderItem{
			ProductID:  productID,
			Quantity:   c.Quantity,
			TemplateID: c.TemplateID,
		})
	}
	draft.EditUntil = earliest(draft.EditUntil, c.EditUntil)
	a.ordered++
	return true
}

// Skip counts a template that was dropped before reaching Add.
func (a *Aggregator) Skip() {
	a.skipped++
}

// Ordered counts the contributions that added items.
func (a *Aggregator) Ordered() int {
	return a.ordered
}

func (a *Aggregator) Skipped() int {
	return a.skipped
}

// Drafts returns the drafts in the order their users were first seen.
func (a *Aggregator) Drafts() []domain.OrderDraft {
	drafts := make([]domain.OrderDraft, 0, len(a.users))
	for _, userID := range a.users {
		drafts = append(drafts, *a.drafts[userID])
	}
	return drafts
}

// earliest treats nil as no constraint, so any cutoff wins over nil.
func earliest(current, candidate *time.Time) *time.Time {
	switch {
	case candidate == nil:
		return current
	case current == nil || candidate.Before(*current):
		t := *candidate
		return &t
	default:
		return current
	}
}
