package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// StatusPolicy decides what happens to the status of an order that already
// exists when it is reconciled again.
type StatusPolicy string

const (
	// StatusPreserve sets the initial status on creation only.
	StatusPreserve StatusPolicy = "preserve"
	// StatusReset sets the initial status on every reconciliation.
	StatusReset StatusPolicy = "reset"
)

func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch p := StatusPolicy(s); p {
	case StatusPreserve, StatusReset:
		return p, nil
	case "":
		return StatusPreserve, nil
	default:
		return "", fmt.Errorf("unknown status policy %q", s)
	}
}

// OrderStore persists orders keyed by (user, date). UpsertByKey must be
// atomic per key and report whether a new record was created.
type OrderStore interface {
	UpsertByKey(ctx context.Context, key domain.OrderKey, patch domain.OrderPatch) (bool, error)
}

// Reconciler merges drafts into the order store.
type Reconciler struct {
	store         OrderStore
	policy        StatusPolicy
	now           func() time.Time
	maxTries      uint
	retryInterval time.Duration
}

func NewReconciler(store OrderStore, policy StatusPolicy, now func() time.Time) *Reconciler {
	if policy == "" {
		policy = StatusPreserve
	}
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		store:         store,
		policy:        policy,
		now:           now,
		maxTries:      3,
		retryInterval: 200 * time.Millisecond,
	}
}

// Apply writes draft. Items and the cutoff are overwritten, creation time is
// never touched after the first write. A key the store rejects as an invalid
// identifier is returned at once, wrapping ErrInvalidIdentifier. Other store
// failures are retried; the last one is returned as a StoreUnavailableError.
func (r *Reconciler) Apply(ctx context.Context, draft domain.OrderDraft) (bool, error) {
	patch := domain.OrderPatch{
		Items:       draft.Items,
		EditUntil:   draft.EditUntil,
		Status:      domain.OrderStatusPending,
		ResetStatus: r.policy == StatusReset,
		Now:         r.now().UTC(),
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retryInterval

	created, err := backoff.Retry(ctx, func() (bool, error) {
		created, err := r.store.UpsertByKey(ctx, draft.OrderKey, patch)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, domain.ErrInvalidIdentifier) {
			return false, backoff.Permanent(err)
		}
		return created, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(r.maxTries))
	if errors.Is(err, domain.ErrInvalidIdentifier) {
		return false, fmt.Errorf("upsert order %s/%s: %w", draft.UserID, draft.Date, err)
	}
	if err != nil {
		return false, &domain.StoreUnavailableError{
			Op:  fmt.Sprintf("upsert order %s/%s", draft.UserID, draft.Date),
			Err: err,
		}
	}
	return created, nil
}
