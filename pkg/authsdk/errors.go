package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ============================================================================
// OAuth2 Error Codes
// ============================================================================

const (
	// Error codes on the wire. The RFC 6749 set first, then the token
	// validity codes of the bearer-token model, then the endpoint-specific
	// conflict codes.
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeUnauthorizedClient      = "unauthorized_client"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
	ErrorCodeAccessDenied            = "access_denied"
	ErrorCodeServerError             = "server_error"
	ErrorCodeInvalidGrant            = "invalid_grant"
	ErrorCodeInvalidScope            = "invalid_scope"
	ErrorCodeMalformedToken          = "malformed_token"
	ErrorCodeTokenExpired            = "token_expired"
	ErrorCodeForbiddenOrigin         = "forbidden_origin"
	ErrorCodeNotAuthenticated        = "not_authenticated"
	ErrorCodeAccountExists           = "account_exists"
	ErrorCodeTOTPAlreadyEnrolled     = "totp_already_enrolled"
)

// ============================================================================
// OAuth2Error - Standard OAuth2 error type
// ============================================================================

// OAuth2Error represents an error response from the authorization server.
// It implements the error interface; use errors.As to recover the wire code
// and status from any error returned by SDK methods.
type OAuth2Error struct {
	// StatusCode is the HTTP status code the server answered with
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// State echoes the state value of the failed request, when it carried one
	State string `json:"state,omitempty"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches errors by wire code so errors.Is works against the predeclared
// set regardless of the description the server attached.
func (e *OAuth2Error) Is(target error) bool {
	t, ok := target.(*OAuth2Error)
	return ok && t.Code == e.Code
}

// ============================================================================
// Predefined OAuth2 Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter, includes an unsupported parameter value, or is otherwise
	// malformed.
	ErrInvalidRequest = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrUnauthorizedClient is returned when the client is unknown, the
	// client secret is wrong, or the Basic authorization header is absent.
	ErrUnauthorizedClient = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnauthorizedClient,
		Description: "client authentication failed",
	}

	// ErrAccessDenied is returned when the resource owner or the server
	// refused the request, e.g. a declined consent screen or an unknown
	// API key.
	ErrAccessDenied = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrInvalidGrant is returned when an authorization code or refresh
	// token is expired, consumed, revoked, or was issued to another client.
	ErrInvalidGrant = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "the grant is invalid, expired or revoked",
	}

	// ErrInvalidScope is returned when a scope request exceeds what the
	// client or the original grant allows.
	ErrInvalidScope = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidScope,
		Description: "requested scope is invalid",
	}

	// ErrServerError is returned when an unexpected internal failure
	// prevented the request from completing.
	ErrServerError = &OAuth2Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	// ErrMalformedToken is returned when a presented token does not decode
	// or its signature does not verify.
	ErrMalformedToken = &OAuth2Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMalformedToken,
		Description: "the token is malformed or its signature is invalid",
	}

	// ErrTokenExpired is returned when a presented token's lifespan has
	// elapsed.
	ErrTokenExpired = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeTokenExpired,
		Description: "the token has expired",
	}

	// ErrForbiddenOrigin is returned when a token bound to one network
	// address is presented from another.
	ErrForbiddenOrigin = &OAuth2Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbiddenOrigin,
		Description: "the token was issued to a different origin",
	}

	// ErrNotAuthenticated is returned when no credential was presented or
	// the presented one was rejected.
	ErrNotAuthenticated = &OAuth2Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotAuthenticated,
		Description: "authentication required",
	}

	// ErrAccountExists is returned when registration collides with an
	// existing username.
	ErrAccountExists = &OAuth2Error{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAccountExists,
		Description: "username is already taken",
	}

	// ErrTOTPAlreadyEnrolled is returned when the account already has a
	// second factor.
	ErrTOTPAlreadyEnrolled = &OAuth2Error{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTOTPAlreadyEnrolled,
		Description: "the account already has a second factor",
	}
)

// NewOAuth2Error creates a new OAuth2Error with the given status code, error
// code, and description.
func NewOAuth2Error(statusCode int, code, description string) *OAuth2Error {
	return &OAuth2Error{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns an HTTP error response into a typed error.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	// Success responses
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Try parsing as the standard OAuth2 error shape
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			State:       errResp.State,
		}
	}

	// Fallback: create a generic error from the status code
	return &OAuth2Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
