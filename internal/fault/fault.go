// Package fault classifies the errors returned across the mutation and
// remote-API boundary so the run loop can branch on them explicitly.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the class of a fault.
type Kind int

const (
	// KindUnknown errors are treated like transient ones.
	KindUnknown Kind = iota
	// KindTransient faults are recorded on the node and retried on a later run.
	KindTransient
	// KindQuotaExhausted stops the whole run.
	KindQuotaExhausted
	// KindPermanent faults archive the node.
	KindPermanent
	// KindRejected means the transform found nothing to change.
	KindRejected
	// KindConsistency faults describe malformed stored state.
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindQuotaExhausted:
		return "quota-exhausted"
	case KindPermanent:
		return "permanent"
	case KindRejected:
		return "rejected"
	case KindConsistency:
		return "consistency"
	default:
		return "unknown"
	}
}

// ErrQuotaExhausted is returned by remote calls when the API budget is gone.
var ErrQuotaExhausted = &Error{Kind: KindQuotaExhausted, Msg: "remote api quota exhausted"}

// Error is a classified error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrQuotaExhausted) hold for every quota fault.
func (e *Error) Is(target error) bool {
	return target == ErrQuotaExhausted && e.Kind == KindQuotaExhausted
}

// Transient wraps err as a transient remote fault.
func Transient(err error) error {
	return &Error{Kind: KindTransient, Err: err}
}

// Transientf builds a transient fault from a format string.
func Transientf(format string, args ...any) error {
	return &Error{Kind: KindTransient, Err: fmt.Errorf(format, args...)}
}

// Permanent wraps err as a permanent upstream fault.
func Permanent(err error) error {
	return &Error{Kind: KindPermanent, Err: err}
}

// Rejected reports that no change was applicable.
func Rejected(reason string) error {
	return &Error{Kind: KindRejected, Msg: reason}
}

// Quota wraps err as a quota exhaustion fault.
func Quota(err error) error {
	return &Error{Kind: KindQuotaExhausted, Err: err}
}

// Consistency describes malformed stored state.
func Consistency(format string, args ...any) error {
	return &Error{Kind: KindConsistency, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first classified error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
