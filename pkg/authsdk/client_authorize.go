package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// BuildAuthorizeURL constructs an authorization URL for the authorization
// code flow. Redirect the user's browser here to begin the flow; the browser
// must carry a live session (cookie or bearer token) because the server
// identifies the resource owner through it.
//
// Parameters:
//   - clientID: the registered client requesting authorization
//   - redirectURI: the target the code is delivered to (must match the registered URI exactly when one is registered)
//   - state: opaque value echoed back on the redirect (recommended for CSRF protection)
//   - scopes: scopes to request (optional, the client's registered scopes cap the grant)
//
// Example:
//
//	url := client.BuildAuthorizeURL("01H...", "https://app.example.com/callback", "random-state", []string{"profile:read"})
//	// Redirect user's browser to url
func (c *SDKClient) BuildAuthorizeURL(clientID, redirectURI, state string, scopes []string) string {
	return c.authorizeURL("code", clientID, redirectURI, state, scopes)
}

func (c *SDKClient) authorizeURL(responseType, clientID, redirectURI, state string, scopes []string) string {
	params := url.Values{}
	params.Set("response_type", responseType)
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)

	if state != "" {
		params.Set("state", state)
	}

	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}

	return fmt.Sprintf("%s/v1/oauth2/authorize?%s", c.BaseURL, params.Encode())
}

// Authorize runs the authorization code leg using an existing session token.
// The token is sent as Authorization: Bearer; the server issues a code and
// answers with a redirect, which is intercepted rather than followed.
//
// Returns the authorization code on success.
func (c *SDKClient) Authorize(
	ctx context.Context,
	sessionToken, clientID, redirectURI, state string,
	scopes []string,
) (string, error) {
	authURL := c.BuildAuthorizeURL(clientID, redirectURI, state, scopes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	location, err := c.interceptRedirect(req)
	if err != nil {
		return "", err
	}

	redirectURL, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}

	code := redirectURL.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("redirect missing authorization code")
	}

	return code, nil
}

// AuthorizeImplicit runs the implicit grant using an existing session token.
// The access token comes back in the redirect fragment; no refresh token is
// ever issued on this path.
func (c *SDKClient) AuthorizeImplicit(
	ctx context.Context,
	sessionToken, clientID, redirectURI, state string,
	scopes []string,
) (*TokenResponse, error) {
	authURL := c.authorizeURL("token", clientID, redirectURI, state, scopes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	location, err := c.interceptRedirect(req)
	if err != nil {
		return nil, err
	}

	tokenResp, _, err := ParseImplicitCallback(location)
	return tokenResp, err
}

// AuthorizeAndExchange is a convenience method that performs the complete
// authorization code flow in one call: interactive login, authorization, and
// token exchange. Pass an empty otp unless the account is enrolled in TOTP.
//
// The client secret is not needed for the exchange itself; it travels into
// the session so later refreshes can authenticate.
//
// Returns an authenticated Session on success.
func (c *SDKClient) AuthorizeAndExchange(
	ctx context.Context,
	username, password, otp string,
	clientID, clientSecret, redirectURI string,
	scopes []string,
) (*Session, error) {
	login, err := c.Login(ctx, username, password, otp)
	if err != nil {
		return nil, err
	}

	code, err := c.Authorize(ctx, login.AccessToken(), clientID, redirectURI, "", scopes)
	if err != nil {
		return nil, err
	}

	tokenResp, err := c.ExchangeAuthorizationCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return newSession(c, clientID, clientSecret, tokenResp), nil
}

// interceptRedirect sends the request with redirects disabled and returns the
// Location header of the 302 answer. Any other status is an error response
// with the protocol error in the body.
func (c *SDKClient) interceptRedirect(req *http.Request) (string, error) {
	resp, err := c.noRedirectClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusFound {
		return "", parseErrorResponse(resp, bodyBytes)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("redirect response missing Location header")
	}

	return location, nil
}

// ParseAuthorizationCallback parses the callback URL from an authorization
// redirect, extracting the authorization code and state from the query.
//
// Example:
//
//	code, state, err := authsdk.ParseAuthorizationCallback("https://localhost/callback?code=xyz&state=abc")
//	if err != nil {
//	    // Handle error
//	}
//	// Verify state matches what you sent, then exchange the code
func ParseAuthorizationCallback(callbackURL string) (code, state string, err error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	query := u.Query()

	// Check for an error response relayed through the callback
	if errorCode := query.Get("error"); errorCode != "" {
		errorDesc := query.Get("error_description")
		return "", "", fmt.Errorf("authorization error: %s - %s", errorCode, errorDesc)
	}

	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("callback missing authorization code")
	}

	state = query.Get("state")

	return code, state, nil
}

// ParseImplicitCallback parses the redirect URL of an implicit grant. The
// token material travels in the URI fragment, never the query, so it stays
// out of server logs.
func ParseImplicitCallback(callbackURL string) (*TokenResponse, string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	frag, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse fragment: %w", err)
	}

	accessToken := frag.Get("access_token")
	if accessToken == "" {
		return nil, "", fmt.Errorf("fragment missing access token")
	}

	expiresIn, _ := strconv.Atoi(frag.Get("expires_in"))

	tokenResp := &TokenResponse{
		AccessToken: accessToken,
		TokenType:   frag.Get("token_type"),
		ExpiresIn:   expiresIn,
		Scope:       frag.Get("scope"),
	}

	return tokenResp, frag.Get("state"), nil
}
