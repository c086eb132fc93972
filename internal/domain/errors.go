package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidIdentifier is returned by stores when an id cannot be parsed into
// the store's native key type.
var ErrInvalidIdentifier = errors.New("invalid identifier")

type ReferenceKind string

const (
	ReferenceMenu       ReferenceKind = "menu"
	ReferenceMenuDay    ReferenceKind = "menu day"
	ReferenceProductSet ReferenceKind = "product set"
	ReferenceSlot       ReferenceKind = "slot"
	ReferenceProduct    ReferenceKind = "product"
)

// MissingReferenceError reports a lookup that found nothing. It only affects
// the template being resolved.
type MissingReferenceError struct {
	Kind ReferenceKind
	ID   string
	Err  error
}

func (e *MissingReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing %s %q: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("missing %s %q", e.Kind, e.ID)
}

func (e *MissingReferenceError) Unwrap() error { return e.Err }

// InvalidRuleError reports a deadline rule that cannot be evaluated.
type InvalidRuleError struct {
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return "invalid deadline rule: " + e.Reason
}

// StoreUnavailableError wraps a collection level failure. It aborts a run.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// IsSoft reports whether err only concerns a single template, so a run may
// skip that template and continue.
func IsSoft(err error) bool {
	var missing *MissingReferenceError
	var invalid *InvalidRuleError
	return errors.As(err, &missing) || errors.As(err, &invalid) || errors.Is(err, ErrInvalidIdentifier)
}
