// Package errkind defines the closed set of error kinds returned from
// public operations (spec §7) and helpers for attaching one to a
// wrapped Go error.
package errkind

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is a closed, comparable error classification. Internal
// taxonomies (lexer/tree-builder failure modes, hashmap lookup
// misses, …) map into these at the package boundary.
type Kind int

const (
	OK Kind = iota
	CORRUPT
	NOMEM
	MEM
	IO
	COMPILE
	VM
	ABORT
	LOOKED
	EOF
	NOTFOUND
	SYNTAX
	LIMIT
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case CORRUPT:
		return "CORRUPT"
	case NOMEM:
		return "NOMEM"
	case MEM:
		return "MEM"
	case IO:
		return "IO"
	case COMPILE:
		return "COMPILE"
	case VM:
		return "VM"
	case ABORT:
		return "ABORT"
	case LOOKED:
		return "LOOKED"
	case EOF:
		return "EOF"
	case NOTFOUND:
		return "NOTFOUND"
	case SYNTAX:
		return "SYNTAX"
	case LIMIT:
		return "LIMIT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// kindError pairs a Kind with a wrapped cause, so errors.Is/As and
// KindOf both work on the same value.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() error { return e.cause }

// New creates an error of the given kind with a pkg/errors-formatted
// message (so the caller gets a stack trace attached at the failure
// site, matching how the rest of the module wraps subsystem errors).
func New(kind Kind, format string, args ...any) error {
	return &kindError{kind: kind, cause: pkgerrors.Errorf(format, args...)}
}

// Wrap attaches kind to an existing error, annotated with msg via
// pkg/errors so the original stack is preserved.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: pkgerrors.Wrap(err, msg)}
}

// KindOf extracts the Kind from err, walking the Unwrap chain, or
// returns OK if err is nil, or CORRUPT if err carries no Kind.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return CORRUPT
}

// Is reports whether err's Kind equals kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
