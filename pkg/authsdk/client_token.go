package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GrantTypeAPIKey is the extension grant_type under which API keys trade for
// access tokens on the token endpoint.
const GrantTypeAPIKey = "urn:postern:params:oauth:grant-type:api_key"

// PasswordGrant requests tokens using the resource owner password grant.
// The client authenticates with HTTP Basic. Accounts enrolled in TOTP are
// rejected on this grant; the form carries no one-time code.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}

	return c.requestToken(ctx, data, clientID, clientSecret)
}

// ClientCredentialsGrant requests an access token for the client itself.
// This grant never returns a refresh token; run it again when the access
// token expires.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"client_credentials"},
	}

	return c.requestToken(ctx, data, clientID, clientSecret)
}

// RefreshGrant trades a refresh token for a new token pair. The presented
// token is consumed and a successor is issued with it. Scopes, when given,
// may only narrow the original grant.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	clientID, clientSecret, refreshToken string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}

	return c.requestToken(ctx, data, clientID, clientSecret)
}

// APIKeyGrant trades a long-lived API key for a short-lived access token.
// No client authentication is involved; the key is the credential. No
// refresh token is issued.
func (c *SDKClient) APIKeyGrant(ctx context.Context, apiKey string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {GrantTypeAPIKey},
		"api_key":    {apiKey},
	}

	return c.requestToken(ctx, data, "", "")
}

// ExchangeAuthorizationCode exchanges an authorization code for tokens,
// completing the authorization code flow. Possession of the code
// authenticates the exchange; redirectURI must match the authorization
// request exactly. Codes are single use.
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	code, redirectURI string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	return c.requestToken(ctx, data, "", "")
}

// RevokeToken revokes a refresh token. The client must authenticate as the
// token's owner; per RFC 7009 the server answers 200 even for unknown or
// already-dead tokens.
func (c *SDKClient) RevokeToken(ctx context.Context, clientID, clientSecret, token string) error {
	data := url.Values{
		"token": {token},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url("/v1/oauth2/revoke"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(clientID, clientSecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return checkStatus(resp, http.StatusOK)
}

// requestToken posts a form to the token endpoint and decodes the response.
// An empty clientID leaves the Basic authorization header off, for the
// grants that authenticate by other means.
func (c *SDKClient) requestToken(
	ctx context.Context,
	data url.Values,
	clientID, clientSecret string,
) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url("/v1/oauth2/token"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if clientID != "" {
		req.SetBasicAuth(clientID, clientSecret)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp, bodyBytes)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tokenResp, nil
}
