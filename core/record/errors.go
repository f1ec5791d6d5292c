package record

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrDuplicateIdentity = errors.New("duplicate identity")
)

// Error reports a batch-level indexing failure.
type Error struct {
	Kind     error
	Identity string
	// Locations holds the offending location, or both conflicting ones for duplicates.
	Locations []Location
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Identity != "" {
		msg += fmt.Sprintf(" %q", e.Identity)
	}
	switch len(e.Locations) {
	case 0:
	case 1:
		msg += " at " + e.Locations[0].String()
	default:
		msg += fmt.Sprintf(" at %s and %s", e.Locations[0], e.Locations[1])
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

func malformed(loc Location, err error) error {
	return &Error{Kind: ErrMalformedRecord, Locations: []Location{loc}, Err: err}
}

func duplicate(identity string, first, second Location) error {
	return &Error{Kind: ErrDuplicateIdentity, Identity: identity, Locations: []Location{first, second}}
}
