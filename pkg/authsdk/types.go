package authsdk

import "time"

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents the error body Postern endpoints write per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// State echoes the state value of the failed request, empty when the
	// request never carried one
	State string `json:"state"`
}

// sessionEnvelope is the body the server writes on login and session revival.
type sessionEnvelope struct {
	Data  Account `json:"data"`
	Token string  `json:"token"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749.
// This is returned from the POST /v1/oauth2/token endpoint for every grant type.
type TokenResponse struct {
	// AccessToken is the compact signed bearer token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque rotating refresh token. Grants that issue
	// no refresh token (client_credentials, api_key) leave it empty.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// IntrospectionResponse represents the RFC 7662 token introspection response.
// When a token is inactive, only Active is present and false.
type IntrospectionResponse struct {
	Active bool `json:"active"`

	// Optional fields (only present when active=true)
	Sub    string `json:"sub,omitempty"`
	Iat    int64  `json:"iat,omitempty"`
	Exp    int64  `json:"exp,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// ============================================================================
// Account Types
// ============================================================================

// Account represents a resource owner account. Credential material never
// appears on the wire.
type Account struct {
	// ID is the unique identifier for the account
	ID string `json:"id"`

	// Username is the account's login name
	Username string `json:"username"`

	// CreatedAt is the timestamp when the account was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last account change
	UpdatedAt time.Time `json:"updated_at"`
}

// WhoamiResponse echoes the session back at its owner.
// This is returned from the GET /v1/whoami endpoint.
type WhoamiResponse struct {
	// Account is the account behind the presented token
	Account Account `json:"account"`

	// ExpiresAt is the token expiry as epoch seconds, zero for unbounded tokens
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// TOTPEnrollment carries the provisioning material for an authenticator app.
// The secret and URL are shown exactly once; subsequent logins require the code.
type TOTPEnrollment struct {
	// Secret is the base32 TOTP secret
	Secret string `json:"secret"`

	// URL is the otpauth:// provisioning URL for QR display
	URL string `json:"url"`

	// Issuer is the issuer label baked into the URL
	Issuer string `json:"issuer"`

	// Account is the account label baked into the URL
	Account string `json:"account"`
}

// ============================================================================
// Client Types
// ============================================================================

// Client represents a registered OAuth2 client. The secret hash never
// appears on the wire.
type Client struct {
	// ID is the unique identifier for the client, used as client_id
	ID string `json:"id"`

	// Name is the human-readable name of the client
	Name string `json:"name"`

	// RedirectURI is the registered redirect target, empty when the client
	// accepts any exact redirect target presented at authorization time
	RedirectURI string `json:"redirect_uri"`

	// Scopes is the list of scopes this client can be granted
	Scopes []string `json:"scopes"`

	// CreatedAt is the timestamp when the client was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last client change
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClientRequest represents the request to register a new OAuth2 client.
type CreateClientRequest struct {
	// Name is the human-readable name for the client
	Name string `json:"name"`

	// RedirectURI is the exact redirect target to register (optional)
	RedirectURI string `json:"redirect_uri,omitempty"`

	// Scopes is the list of scopes this client may be granted
	Scopes []string `json:"scopes,omitempty"`
}

// CreateClientResponse contains the created client and its plaintext secret.
// The secret is only ever returned here, at creation time.
type CreateClientResponse struct {
	// Client is the created client record
	Client Client `json:"client"`

	// Secret is the plaintext client secret (only returned once)
	Secret string `json:"secret"`
}

// ============================================================================
// API Key Types
// ============================================================================

// APIKey represents an API key record. The key value itself is only returned
// at creation time; the server stores its fingerprint.
type APIKey struct {
	// ID is the unique identifier for the key record
	ID string `json:"id"`

	// AccountID is the owning account
	AccountID string `json:"account_id"`

	// Label is the optional human-readable label
	Label string `json:"label"`

	// CreatedAt is the timestamp when the key was minted
	CreatedAt time.Time `json:"created_at"`
}

// CreateAPIKeyResponse contains the key record plus the opaque key value.
// The value is only ever returned here; trade it for access tokens with
// the api_key extension grant.
type CreateAPIKeyResponse struct {
	// Key is the created key record
	Key APIKey `json:"key"`

	// APIKey is the opaque key value (only returned once)
	APIKey string `json:"api_key"`
}

// ListAPIKeysResponse contains the session account's API keys, newest first.
type ListAPIKeysResponse struct {
	Keys []APIKey `json:"keys"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes the Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok", "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
