package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindAvailability
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAvailability:
		return "availability"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownRoomType  = errors.New("unknown room type")
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	ErrRoomTypeNotFound = errors.New("room type not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

// Error is a classified failure. Message is safe to show to clients, Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(err error, format string, args ...any) *Error {
	return newError(KindValidation, err, format, args...)
}

func NotFound(err error, format string, args ...any) *Error {
	return newError(KindNotFound, err, format, args...)
}

func Availability(format string, args ...any) *Error {
	return newError(KindAvailability, nil, format, args...)
}

func Conflict(err error, format string, args ...any) *Error {
	return newError(KindConflict, err, format, args...)
}

func Storage(err error, format string, args ...any) *Error {
	return newError(KindStorage, err, format, args...)
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the client-facing message, or fallback for unclassified errors.
func MessageOf(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
