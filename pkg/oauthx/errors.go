package oauthx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/posternauth/postern/pkg/httpx"
)

// ============================================================================
// Protocol Error Codes
// ============================================================================

const (
	// Error codes on the wire. The first five follow RFC 6749; the token
	// validity codes are specific to the bearer-token model.
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeUnauthorizedClient      = "unauthorized_client"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
	ErrorCodeAccessDenied            = "access_denied"
	ErrorCodeServerError             = "server_error"
	ErrorCodeMalformedToken          = "malformed_token"
	ErrorCodeTokenExpired            = "token_expired"
	ErrorCodeForbiddenOrigin         = "forbidden_origin"
	ErrorCodeNotAuthenticated        = "not_authenticated"
)

// ============================================================================
// Error - protocol error carried to the endpoint boundary
// ============================================================================

// Error represents one protocol error response. It implements the error
// interface so it can travel through ordinary error returns from deep inside
// a grant hook up to the endpoint boundary, where WriteTo serializes it.
//
// State carries the client-supplied correlation value verbatim and is always
// present in the wire body, empty string when the request never supplied one.
type Error struct {
	// Status is the HTTP status code for this error.
	Status int `json:"-"`

	// Code is the wire error code (e.g. "invalid_request").
	Code string `json:"error"`

	// Description is a human-readable description of the error.
	Description string `json:"error_description"`

	// State echoes the client-supplied state value.
	State string `json:"state"`

	// cause is the underlying error, kept for logs only. It is never
	// serialized to the client.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by wire code, so copies made with WithState or
// WithDescription still compare equal to their predeclared template.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithState returns a copy of the error carrying the given state value.
// The predeclared errors are shared; handlers must not mutate them in place.
func (e *Error) WithState(state string) *Error {
	dup := *e
	dup.State = state
	return &dup
}

// WithDescription returns a copy of the error with a more specific description.
func (e *Error) WithDescription(description string) *Error {
	dup := *e
	dup.Description = description
	return &dup
}

// WithCause returns a copy of the error carrying an underlying cause. The
// cause is visible to errors.Is/errors.As through Unwrap but never reaches
// the wire.
func (e *Error) WithCause(cause error) *Error {
	dup := *e
	dup.cause = cause
	return &dup
}

// WriteTo writes the error to an HTTP response writer in the standard shape
// {"error": ..., "error_description": ..., "state": ...}.
func (e *Error) WriteTo(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter, includes an unsupported parameter value, or is otherwise
	// malformed.
	ErrInvalidRequest = &Error{
		Status:      http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrUnauthorizedClient is returned when the client is unknown, the
	// client secret is wrong, or the Basic authorization header is absent
	// or malformed.
	ErrUnauthorizedClient = &Error{
		Status:      http.StatusBadRequest,
		Code:        ErrorCodeUnauthorizedClient,
		Description: "client authentication failed",
	}

	// ErrUnsupportedResponseType is returned by the default grant hooks: the
	// base engine supports no grants until a provider implements them.
	ErrUnsupportedResponseType = &Error{
		Status:      http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedResponseType,
		Description: "response type not supported",
	}

	// ErrAccessDenied is returned when the resource owner or the server
	// refused the request, e.g. a declined consent screen.
	ErrAccessDenied = &Error{
		Status:      http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrServerError is returned when an unexpected internal failure
	// prevented the request from completing. The original cause is attached
	// for logging and never leaves the process.
	ErrServerError = &Error{
		Status:      http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrMalformedToken is returned when a presented token does not decode
	// or its signature does not verify.
	ErrMalformedToken = &Error{
		Status:      http.StatusBadRequest,
		Code:        ErrorCodeMalformedToken,
		Description: "the token is malformed or its signature is invalid",
	}

	// ErrTokenExpired is returned when a presented token's lifespan has
	// elapsed.
	ErrTokenExpired = &Error{
		Status:      http.StatusForbidden,
		Code:        ErrorCodeTokenExpired,
		Description: "the token has expired",
	}

	// ErrForbiddenOrigin is returned when a token bound to one network
	// address is presented from another.
	ErrForbiddenOrigin = &Error{
		Status:      http.StatusForbidden,
		Code:        ErrorCodeForbiddenOrigin,
		Description: "the token was issued to a different origin",
	}

	// ErrNotAuthenticated is returned when no credential was presented or a
	// strategy rejected the presented one.
	ErrNotAuthenticated = &Error{
		Status:      http.StatusUnauthorized,
		Code:        ErrorCodeNotAuthenticated,
		Description: "authentication required",
	}
)

// New creates an Error with the given status code, wire code, and description.
// Useful for hosts that need custom messages while keeping the wire shape.
func New(status int, code, description string) *Error {
	return &Error{
		Status:      status,
		Code:        code,
		Description: description,
	}
}

// Wrap applies the propagation policy at an endpoint boundary: a protocol
// error passes through, picking up the best-known state if it carries none;
// anything else becomes a server_error with the cause attached for logging
// only.
func Wrap(err error, state string) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		if perr.State == "" && state != "" {
			return perr.WithState(state)
		}
		return perr
	}
	wrapped := ErrServerError.WithState(state)
	wrapped.cause = err
	return wrapped
}
