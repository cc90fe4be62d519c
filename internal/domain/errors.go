package domain

import (
	"errors"
	"strings"
)

// Error kinds. Concrete errors wrap one of these with fmt.Errorf("%w: ...").
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
)

// Kind classifies an error into one of the error kinds
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindConflict:
		return "Conflict"
	case KindNotFound:
		return "NotFound"
	default:
		return "Internal"
	}
}

// KindOf returns the kind of err. Errors that wrap no known kind are Internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// Message returns the caller-facing text of err, without the kind prefix
func Message(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrInvalidArgument, ErrConflict, ErrNotFound, ErrInternal} {
		if errors.Is(err, kind) {
			return strings.TrimPrefix(msg, kind.Error()+": ")
		}
	}
	return msg
}
