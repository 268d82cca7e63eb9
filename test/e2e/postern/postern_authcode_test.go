package postern_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/posternauth/postern/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestAuthorizationCodeFlow tests the complete authorization code flow:
// 1. Register an account and log in
// 2. Register an OAuth2 client
// 3. Request an authorization code with the session token
// 4. Exchange the code for an access and refresh token
// 5. Use the access token against an authenticated endpoint
func TestAuthorizationCodeFlow(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	account := registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	// Intercept the redirect by hand so the state echo can be checked too
	state := "random-state-123"
	authURL := client.BuildAuthorizeURL(clientID, redirectURI, state, []string{"profile:read"})
	t.Logf("Authorization URL: %s", authURL)

	location := interceptAuthorizeRedirect(t, authURL, login.AccessToken())
	require.True(t, strings.HasPrefix(location, redirectURI), "Redirect should target the registered URI")

	code, echoedState, err := authsdk.ParseAuthorizationCallback(location)
	require.NoError(t, err)
	require.NotEmpty(t, code, "Redirect should carry an authorization code")
	require.Equal(t, state, echoedState, "State should be echoed verbatim")

	tokenResp, err := client.ExchangeAuthorizationCode(t.Context(), code, redirectURI)
	require.NoError(t, err, "Code exchange should succeed")
	assertTokenResponse(t, tokenResp)
	require.Contains(t, tokenResp.Scope, "profile:read")

	t.Logf("Code exchanged, scope: %s", tokenResp.Scope)

	session := client.NewSessionFromTokens(clientID, clientSecret,
		tokenResp.AccessToken, tokenResp.RefreshToken, tokenResp.Scope, tokenResp.ExpiresIn)

	whoami, err := session.Whoami(t.Context())
	require.NoError(t, err)
	require.Equal(t, account.ID, whoami.Account.ID, "Access token should act for the resource owner")

	t.Run("CodeIsSingleUse", func(t *testing.T) {
		_, err := client.ExchangeAuthorizationCode(t.Context(), code, redirectURI)
		assertOAuthError(t, err, "invalid_grant", "Replaying a consumed code")

		t.Logf("Code replay correctly rejected")
	})
}

// TestAuthorizeAndExchange tests the one-call convenience flow: login,
// authorization, and code exchange in a single SDK call.
func TestAuthorizeAndExchange(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	account := registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	session, err := client.AuthorizeAndExchange(t.Context(),
		testUsername, testPassword, "",
		clientID, clientSecret, redirectURI, clientScopes)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken())
	require.NotEmpty(t, session.RefreshToken(), "Code flow should issue a refresh token")
	require.True(t, session.HasAllScopes("profile:read", "profile:write"))

	whoami, err := session.Whoami(t.Context())
	require.NoError(t, err)
	require.Equal(t, account.ID, whoami.Account.ID)

	t.Logf("One-call flow completed for %s", whoami.Account.Username)
}

// TestAuthorizeRedirectValidation verifies redirect targets are pinned at
// both legs of the flow.
func TestAuthorizeRedirectValidation(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, _ := createTestClient(t, login, clientName, redirectURI, clientScopes)

	t.Run("MismatchAtAuthorization", func(t *testing.T) {
		_, err := client.Authorize(t.Context(), login.AccessToken(),
			clientID, "https://evil.example.com/callback", "", nil)
		assertOAuthError(t, err, "invalid_request", "Authorizing against an unregistered redirect")

		t.Logf("Unregistered redirect correctly rejected at authorization")
	})

	t.Run("MismatchAtExchange", func(t *testing.T) {
		code, err := client.Authorize(t.Context(), login.AccessToken(),
			clientID, redirectURI, "", nil)
		require.NoError(t, err)

		// The code is bound to the redirect it was minted for
		_, err = client.ExchangeAuthorizationCode(t.Context(), code, redirectURI+"/other")
		assertOAuthError(t, err, "invalid_grant", "Exchanging with a different redirect")

		t.Logf("Redirect mismatch correctly rejected at exchange")
	})
}

// TestAuthorizeRequiresSession tests the authorization endpoint without a
// session. Errors come back as a JSON body with the state echoed, never as an
// error redirect.
func TestAuthorizeRequiresSession(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, _ := createTestClient(t, login, clientName, redirectURI, clientScopes)

	state := "anon-state-456"
	authURL := client.BuildAuthorizeURL(clientID, redirectURI, state, []string{"profile:read"})

	// No cookie, no bearer token
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, authURL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Anonymous authorization should answer 401")

	var errorResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		State            string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errorResp))
	require.Equal(t, "not_authenticated", errorResp.Error)
	require.Equal(t, state, errorResp.State, "Error body should echo the state")

	t.Logf("Anonymous authorization correctly answered: %s (%s)", errorResp.Error, errorResp.ErrorDescription)
}

// TestAuthorizeConsentDenied tests the consent form submission: an explicit
// denial refuses the request with access_denied before anything is minted.
func TestAuthorizeConsentDenied(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, _ := createTestClient(t, login, clientName, redirectURI, clientScopes)

	state := "deny-state-789"
	form := url.Values{}
	form.Set("response_type", "code")
	form.Set("client_id", clientID)
	form.Set("redirect_uri", redirectURI)
	form.Set("state", state)
	form.Set("consent", "deny")

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost,
		baseURL+"/v1/oauth2/authorize", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+login.AccessToken())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var errorResp struct {
		Error string `json:"error"`
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errorResp))
	require.Equal(t, "access_denied", errorResp.Error)
	require.Equal(t, state, errorResp.State)

	t.Logf("Consent denial correctly answered access_denied")
}

// TestImplicitFlow tests response_type=token: the access token comes back in
// the redirect fragment and no refresh token is ever issued.
func TestImplicitFlow(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	account := registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, _ := createTestClient(t, login, clientName, redirectURI, clientScopes)

	tokenResp, err := client.AuthorizeImplicit(t.Context(), login.AccessToken(),
		clientID, redirectURI, "implicit-state", []string{"profile:read"})
	require.NoError(t, err)
	require.NotEmpty(t, tokenResp.AccessToken)
	require.Empty(t, tokenResp.RefreshToken, "Implicit grant should NOT issue a refresh token")
	require.Equal(t, "bearer", tokenResp.TokenType)
	require.Positive(t, tokenResp.ExpiresIn)
	require.Contains(t, tokenResp.Scope, "profile:read")

	t.Logf("Implicit grant issued token with scope: %s", tokenResp.Scope)

	// The fragment token works like any other access token
	session := client.NewSessionFromTokens("", "",
		tokenResp.AccessToken, "", tokenResp.Scope, tokenResp.ExpiresIn)

	whoami, err := session.Whoami(t.Context())
	require.NoError(t, err)
	require.Equal(t, account.ID, whoami.Account.ID)
}

// interceptAuthorizeRedirect performs the authorization GET with redirects
// disabled and returns the Location header.
func interceptAuthorizeRedirect(t *testing.T, authURL, sessionToken string) string {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, authURL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noRedirect.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode, "Authorization should answer with a redirect")

	location := resp.Header.Get("Location")
	require.NotEmpty(t, location, "Redirect should carry a Location header")
	return location
}
