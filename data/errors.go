package data

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Code classifies store failures.
type Code int

const (
	CodeUnknown Code = iota
	CodePermissionDenied
	CodeUnauthenticated
	CodeNotFound
	CodeInvalidArgument
	CodeUnavailable
	CodeDeadlineExceeded
	CodeNetwork
)

func (c Code) String() string {
	switch c {
	case CodePermissionDenied:
		return "permission-denied"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeNotFound:
		return "not-found"
	case CodeInvalidArgument:
		return "invalid-argument"
	case CodeUnavailable:
		return "unavailable"
	case CodeDeadlineExceeded:
		return "deadline-exceeded"
	case CodeNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Transient reports whether an operation failing with this code may succeed later.
func (c Code) Transient() bool {
	return c == CodeUnavailable || c == CodeDeadlineExceeded || c == CodeNetwork
}

// Error is a classified store failure.
type Error struct {
	Code Code
	Op   string
	Err  error
}

// NewError wraps err with a code and the failing operation.
func NewError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is transient.
func (e *Error) Temporary() bool {
	return e.Code.Transient()
}

var (
	ErrNotFound         = &Error{Code: CodeNotFound, Op: "store"}
	ErrPermissionDenied = &Error{Code: CodePermissionDenied, Op: "store"}
	ErrUnavailable      = &Error{Code: CodeUnavailable, Op: "store"}
)

// Is matches two *Error values by code so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Err == nil && t.Code == e.Code
}

// temporary is implemented by errors that know whether they are transient.
type temporary interface {
	Temporary() bool
}

// Classify maps any error returned by a store call to a Code.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}

	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return CodeUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CodeDeadlineExceeded
		}
		return CodeNetwork
	}

	var tmp temporary
	if errors.As(err, &tmp) && tmp.Temporary() {
		return CodeUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host"):
		// DNS failures rarely resolve by retrying
		return CodeUnknown
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return CodeNetwork
	case strings.Contains(msg, "timeout"):
		return CodeDeadlineExceeded
	case strings.Contains(msg, "permission denied"):
		return CodePermissionDenied
	}
	return CodeUnknown
}

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	return err != nil && Classify(err).Transient()
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return err != nil && Classify(err) == CodeNotFound
}

// Hint returns the suggestion shown to the user for a failed store call.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case CodeUnavailable, CodeDeadlineExceeded, CodeNetwork:
		return "Connection problem. Check your network and try again."
	case CodeUnauthenticated:
		return "Your session has expired. Please sign in again."
	case CodePermissionDenied:
		return "You do not have permission to do that. Sign in again or contact support if it keeps happening."
	case CodeNotFound:
		return "That item no longer exists."
	case CodeInvalidArgument:
		return "Some of the details are not valid. Please review them and try again."
	default:
		return "Something went wrong on our side. Please contact support if it keeps happening."
	}
}
