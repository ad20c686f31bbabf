package fantasy11

import (
	"errors"
	"net/http"
)

// FallbackErrorMessage is the message used when a failed response carries no "error" field.
const FallbackErrorMessage = "Request failed"

var (
	// ErrNetwork matches failures to reach the backend at all.
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse matches responses whose body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrResponseTooLarge is wrapped by the protocol error returned for a successful
	// response whose body exceeds the client's read limit.
	ErrResponseTooLarge = errors.New("response too large")
	// ErrUnauthorized matches HTTP 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestRejected matches every other non-2xx response.
	ErrRequestRejected = errors.New("request rejected")
	// ErrValidation matches arguments rejected before any request is sent.
	ErrValidation = errors.New("invalid request")
	// ErrSessionUnavailable matches failures reading the session store.
	ErrSessionUnavailable = errors.New("session unavailable")
	// ErrClientNotReady is returned by operations on a nil or unbuilt client.
	ErrClientNotReady = errors.New("client not initialized")
)

// ErrorKind classifies an [Error].
type ErrorKind uint8

const (
	// KindNetwork is a transport failure: DNS, connect, reset, timeout.
	KindNetwork ErrorKind = iota + 1
	// KindProtocol is a response body that is not valid JSON for the operation.
	KindProtocol
	// KindUnauthorized is an HTTP 401.
	KindUnauthorized
	// KindRejected is any other non-2xx status.
	KindRejected
	// KindValidation is a client-side argument check.
	KindValidation
	// KindSession is a session store read failure.
	KindSession
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProtocol:
		return "protocol"
	case KindUnauthorized:
		return "unauthorized"
	case KindRejected:
		return "rejected"
	case KindValidation:
		return "validation"
	case KindSession:
		return "session"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindProtocol:
		return ErrMalformedResponse
	case KindUnauthorized:
		return ErrUnauthorized
	case KindRejected:
		return ErrRequestRejected
	case KindValidation:
		return ErrValidation
	case KindSession:
		return ErrSessionUnavailable
	default:
		return nil
	}
}

// Error is the single error type returned by client operations.
//
// Error() yields Message unchanged so it can be shown to a user as is. Kind and Status
// let callers branch without matching message text; errors.Is also matches the
// kind's sentinel (ErrUnauthorized, ErrNetwork, ...).
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// IsUnauthorized reports whether err is an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// KindOf returns the kind carried by err, or 0 when err is not an [*Error].
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func kindForStatus(status int) ErrorKind {
	if status == http.StatusUnauthorized {
		return KindUnauthorized
	}
	return KindRejected
}

func validationError(op, msg string) *Error {
	return &Error{Op: op, Kind: KindValidation, Message: msg}
}
