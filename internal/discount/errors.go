package discount

import (
	"errors"
	"fmt"
)

type Kind int

const (
	InvalidInput Kind = iota + 1
	InsufficientBalance
	ExceedsOrderValue
	RemoteFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "INVALID_INPUT"
	case InsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	case ExceedsOrderValue:
		return "EXCEEDS_ORDER_VALUE"
	case RemoteFailure:
		return "REMOTE_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Error is a user-facing checkout failure. Message is shown verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

const MsgInvalidPoints = "Please enter a valid number of points to use"

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Remote wraps a failure from the order service, keeping its message.
func Remote(err error) *Error {
	return &Error{Kind: RemoteFailure, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
