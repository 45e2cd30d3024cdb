package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the workflow boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindFetch
	KindSignupFailed
	KindAlreadyVolunteered
	KindTeamFull
	KindAuthentication
	KindValidation
	KindCreateFailed
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch_error"
	case KindSignupFailed:
		return "signup_failed"
	case KindAlreadyVolunteered:
		return "already_volunteered"
	case KindTeamFull:
		return "team_full"
	case KindAuthentication:
		return "authentication_error"
	case KindValidation:
		return "validation_error"
	case KindCreateFailed:
		return "create_failed"
	default:
		return "unknown"
	}
}

// Business-rule rejections. They are wrapped in an *Error of the matching kind,
// so errors.Is works on workflow results.
var (
	ErrAlreadyVolunteered = errors.New("already volunteered for this event")
	ErrTeamFull           = errors.New("the team is already full")
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrEventNotFound      = errors.New("event not found")
)

// Error is a classified failure returned by the client workflows.
// Raw transport errors never cross the workflow boundary unwrapped.
type Error struct {
	kind    Kind
	message string
	err     error
}

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{kind: kind, err: err}
}

// WithMessage sets a user-facing message that overrides the kind's default.
func (e *Error) WithMessage(msg string) *Error {
	e.message = msg
	return e
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the user-facing override, if any.
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.kind
	}
	return KindUnknown
}

// ResponseError is returned by Client for non-2xx responses.
type ResponseError struct {
	Status  int
	Code    string // machine-readable code from the body, e.g. "team_full"
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 if there is none.
func StatusOf(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status
	}
	return 0
}

// CodeOf returns the response body code carried by err, or "".
func CodeOf(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Code
	}
	return ""
}

// MessageOf returns the server-supplied message carried by err, or "".
func MessageOf(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Message
	}
	return ""
}
