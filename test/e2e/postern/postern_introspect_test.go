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

// TestIntrospection tests RFC 7662 token introspection:
// 1. A live access token introspects as active with its claims
// 2. Garbage introspects as inactive, revealing nothing else
// 3. An unsupported token_type_hint answers inactive rather than erroring
func TestIntrospection(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	account := registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	t.Run("LiveToken", func(t *testing.T) {
		tokenResp, err := client.PasswordGrant(t.Context(), clientID, clientSecret,
			testUsername, testPassword, nil)
		require.NoError(t, err)

		result, err := login.IntrospectToken(t.Context(), tokenResp.AccessToken, "")
		require.NoError(t, err)
		require.True(t, result.Active, "Freshly issued token should be active")
		require.Equal(t, account.ID, result.Sub, "Subject should be the resource owner")
		require.Positive(t, result.Iat)
		require.Greater(t, result.Exp, result.Iat, "Expiry should follow issuance")

		t.Logf("Token active: sub=%s iat=%d exp=%d", result.Sub, result.Iat, result.Exp)
	})

	t.Run("SessionTokenIntrospectsItself", func(t *testing.T) {
		result, err := login.IntrospectToken(t.Context(), login.AccessToken(), "")
		require.NoError(t, err)
		require.True(t, result.Active)
		require.Equal(t, account.ID, result.Sub)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		result, err := login.IntrospectToken(t.Context(), "not-a-token", "")
		require.NoError(t, err, "Dead tokens answer 200, not an error")
		require.False(t, result.Active)
		require.Empty(t, result.Sub, "Inactive answers must not leak claims")
		require.Zero(t, result.Exp)

		t.Logf("Garbage token correctly answered active=false")
	})

	t.Run("UnsupportedHint", func(t *testing.T) {
		// Refresh tokens are opaque; introspection only understands access tokens
		form := url.Values{}
		form.Set("token", "whatever")
		form.Set("token_type_hint", "refresh_token")

		req, err := http.NewRequestWithContext(t.Context(), http.MethodPost,
			baseURL+"/v1/oauth2/introspect", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+login.AccessToken())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, false, body["active"])
		require.Len(t, body, 1, "Inactive answer should carry nothing but the active flag")

		t.Logf("Unsupported hint correctly answered active=false")
	})
}

// TestIntrospectionRequiresSession verifies the introspection endpoint is
// gated on authentication, per the RFC 7662 requirement that it not be open
// to unauthenticated probing.
func TestIntrospectionRequiresSession(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	form := url.Values{}
	form.Set("token", "whatever")

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost,
		baseURL+"/v1/oauth2/introspect", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer",
		"Unauthorized answers should carry the RFC 6750 challenge")

	var errorResp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errorResp))
	require.Equal(t, "not_authenticated", errorResp.Error)

	t.Logf("Unauthenticated introspection correctly answered 401")
}

// TestIntrospectionExpiredSession verifies an expired session cannot drive
// introspection through the SDK either.
func TestIntrospectionExpiredSession(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)

	// A forged token session with no refresh token cannot authenticate
	forged := client.NewSessionFromTokens("", "", "forged-token", "", "", 3600)
	_, err := forged.IntrospectToken(t.Context(), "whatever", "")
	require.ErrorIs(t, err, authsdk.ErrMalformedToken, "Forged bearer should be rejected by the guard")
}
