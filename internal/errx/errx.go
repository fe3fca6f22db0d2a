// Package errx carries an operation name and a Kind alongside an error so the
// dispatcher can pick a status without knowing which layer failed. TooLarge and
// MethodNotAllowed only arise at the transport edge; they share the taxonomy so
// one mapping covers every response.
package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	Unknown          Kind = iota
	NotFound              // slug or route does not exist
	Conflict              // slug already taken
	Invalid               // bad slug, URL or form
	TooLarge              // request body over the cap
	MethodNotAllowed      // method not served on the path
	Storage               // data document unreadable or unwritable
	Internal              // canceled request, template or panic
)

var kindNames = [...]string{
	Unknown:          "Unknown",
	NotFound:         "NotFound",
	Conflict:         "Conflict",
	Invalid:          "Invalid",
	TooLarge:         "TooLarge",
	MethodNotAllowed: "MethodNotAllowed",
	Storage:          "Storage",
	Internal:         "Internal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error is an error raised by Op, classified as Kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err. A nil err stays nil so callers can wrap unconditionally.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	if e, ok := asError(err); ok {
		return e.Kind
	}
	return Unknown
}

// OpOf returns the Op of the outermost *Error in err's chain.
func OpOf(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
