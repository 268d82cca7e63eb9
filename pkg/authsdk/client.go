package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Postern authorization server.
// It provides access to unauthenticated operations and can create
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new authorization server client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthenticateWithPassword creates an authenticated session using the OAuth2
// password grant. The client authenticates with HTTP Basic, so only
// confidential clients can use this path; accounts enrolled in TOTP cannot,
// because the grant carries no one-time code. Use Login plus the
// authorization code flow for those.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*Session, error) {
	tokenResp, err := c.PasswordGrant(ctx, clientID, clientSecret, username, password, scopes)
	if err != nil {
		return nil, err
	}

	return newSession(c, clientID, clientSecret, tokenResp), nil
}

// AuthenticateWithClientCredentials creates an authenticated session using
// the client_credentials grant. This is for machine-to-machine authentication
// where the client acts as itself; the resulting session has no refresh token
// and re-authenticates by running the grant again.
func (c *SDKClient) AuthenticateWithClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
) (*Session, error) {
	tokenResp, err := c.ClientCredentialsGrant(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	return newSession(c, clientID, clientSecret, tokenResp), nil
}

// AuthenticateWithAPIKey creates an authenticated session by trading a
// long-lived API key for an access token through the api_key extension grant.
// The session has no refresh token; mint a new access token from the key when
// it expires.
func (c *SDKClient) AuthenticateWithAPIKey(ctx context.Context, apiKey string) (*Session, error) {
	tokenResp, err := c.APIKeyGrant(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	return newSession(c, "", "", tokenResp), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an
// existing refresh token. The presented token is consumed and rotated.
func (c *SDKClient) AuthenticateWithRefreshToken(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, clientID, clientSecret, refreshToken, nil)
	if err != nil {
		return nil, err
	}

	return newSession(c, clientID, clientSecret, tokenResp), nil
}

// NewSessionFromTokens creates an authenticated session from existing tokens.
// This is useful when tokens from a previous authentication were stored and
// passed back in. The session still performs auto-refresh when the access
// token expires, which is why the client credentials travel with it.
func (c *SDKClient) NewSessionFromTokens(
	clientID, clientSecret, accessToken, refreshToken, scope string,
	expiresIn int,
) *Session {
	expiresAt := time.Now().Add(time.Duration(expiresIn) * time.Second)
	expiresAt = expiresAt.Add(-30 * time.Second) // refresh ahead of actual expiry

	return &Session{
		client:       c,
		clientID:     clientID,
		clientSecret: clientSecret,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
		scopes:       parseScopes(scope),
	}
}
