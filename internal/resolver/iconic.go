package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

// FallbackPolicy decides whether an iconic template may fall back to its
// direct product id when the menu slot yields nothing.
type FallbackPolicy string

const (
	// FallbackStrict accepts the fallback only if it is available that day.
	FallbackStrict FallbackPolicy = "strict"
	// FallbackLenient accepts the fallback without checking the day.
	FallbackLenient  FallbackPolicy = "lenient"
	FallbackDisabled FallbackPolicy = "disabled"
)

func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackStrict, FallbackLenient, FallbackDisabled:
		return p, nil
	case "":
		return FallbackStrict, nil
	default:
		return "", fmt.Errorf("unknown iconic fallback policy %q", s)
	}
}

// Iconic resolves templates through a dynamic menu slot.
type Iconic struct {
	catalog  Catalog
	fallback FallbackPolicy
}

func NewIconic(catalog Catalog, fallback FallbackPolicy) *Iconic {
	if fallback == "" {
		fallback = FallbackStrict
	}
	return &Iconic{catalog: catalog, fallback: fallback}
}

func (r *Iconic) Resolve(ctx context.Context, tpl domain.OrderTemplate, date time.Time) ([]string, error) {
	ref := tpl.ProductRef
	dateKey := date.Format(time.DateOnly)

	if ref.MenuID == "" {
		return nil, &domain.MissingReferenceError{Kind: domain.ReferenceMenu}
	}
	menu, err := r.catalog.FindMenu(ctx, ref.MenuID)
	if err != nil {
		return nil, lookupError(domain.ReferenceMenu, ref.MenuID, err)
	}
	if menu == nil {
		return nil, &domain.MissingReferenceError{Kind: domain.ReferenceMenu, ID: ref.MenuID}
	}

	day := menu.Day(dateKey)
	if day == nil {
		return nil, &domain.MissingReferenceError{Kind: domain.ReferenceMenuDay, ID: ref.MenuID + "/" + dateKey}
	}

	u := &universe{catalog: r.catalog, day: day}

	// Why the slot produced nothing; reported if the fallback fails too.
	var reason error

	link := day.Slot(ref.SlotID)
	switch {
	case link == nil:
		reason = &domain.MissingReferenceError{Kind: domain.ReferenceSlot, ID: ref.SlotID}
	case link.ProductID != "":
		ok, err := u.allows(ctx, link.ProductID)
		if err != nil {
			return nil, err
		}
		if ok {
			return []string{link.ProductID}, nil
		}
		reason = &domain.MissingReferenceError{Kind: domain.ReferenceProduct, ID: link.ProductID}
	case link.ProductSetID != "":
		members, err := r.expand(ctx, link.ProductSetID)
		if err != nil && !domain.IsSoft(err) {
			return nil, err
		}
		if len(members) > 0 {
			return members, nil
		}
		reason = err
		if reason == nil {
			reason = &domain.MissingReferenceError{Kind: domain.ReferenceProductSet, ID: link.ProductSetID}
		}
	default:
		reason = &domain.MissingReferenceError{Kind: domain.ReferenceProduct, ID: ref.SlotID}
	}

	if r.fallback == FallbackDisabled || ref.ProductID == "" {
		return nil, reason
	}
	if r.fallback == FallbackStrict {
		ok, err := u.allows(ctx, ref.ProductID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, reason
		}
	}
	return []string{ref.ProductID}, nil
}

func (r *Iconic) expand(ctx context.Context, id string) ([]string, error) {
	set, err := r.catalog.FindProductSet(ctx, id)
	if err != nil {
		return nil, lookupError(domain.ReferenceProductSet, id, err)
	}
	if set == nil {
		return nil, &domain.MissingReferenceError{Kind: domain.ReferenceProductSet, ID: id}
	}
	return set.Members(), nil
}

// universe is the set of products available on one menu day. It is built on
// first use; a day that lists no products or sets is unrestricted.
type universe struct {
	catalog Catalog
	day     *domain.MenuDay
	members map[string]struct{}
	built   bool
}

func (u *universe) allows(ctx context.Context, productID string) (bool, error) {
	if len(u.day.ProductIDs) == 0 && len(u.day.ProductSetIDs) == 0 {
		return true, nil
	}
	if !u.built {
		if err := u.build(ctx); err != nil {
			return false, err
		}
	}
	_, ok := u.members[productID]
	return ok, nil
}

func (u *universe) build(ctx context.Context) error {
	u.members = make(map[string]struct{}, len(u.day.ProductIDs))
	for _, id := range u.day.ProductIDs {
		u.members[id] = struct{}{}
	}
	for _, setID := range u.day.ProductSetIDs {
		set, err := u.catalog.FindProductSet(ctx, setID)
		if err != nil {
			err = lookupError(domain.ReferenceProductSet, setID, err)
			if domain.IsSoft(err) {
				continue
			}
			return err
		}
		if set == nil {
			continue
		}
		for _, id := range set.Members() {
			u.members[id] = struct{}{}
		}
	}
	u.built = true
	return nil
}

// lookupError classifies a catalog failure: unparsable ids count as missing
// references, anything else means the store is unavailable.
func lookupError(kind domain.ReferenceKind, id string, err error) error {
	if errors.Is(err, domain.ErrInvalidIdentifier) {
		return &domain.MissingReferenceError{Kind: kind, ID: id, Err: err}
	}
	var unavailable *domain.StoreUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}
	return &domain.StoreUnavailableError{Op: "find " + string(kind), Err: err}
}
