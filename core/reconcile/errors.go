package reconcile

import (
	"errors"
	"fmt"
)

var (
	ErrLookupFailed = errors.New("destination lookup failed")
	ErrApplyFailed  = errors.New("apply failed")
	ErrCancelled    = errors.New("import cancelled")
)

// Error carries the identity a reconcile or apply failure belongs to.
type Error struct {
	Kind     error
	Identity string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Identity != "" {
		msg = fmt.Sprintf("%s for %q", msg, e.Identity)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
