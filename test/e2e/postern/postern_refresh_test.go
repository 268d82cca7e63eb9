package postern_test

import (
	"testing"

	"github.com/posternauth/postern/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRefreshTokenRotation tests the refresh grant's rotation contract:
// 1. Obtain a token pair through the password grant
// 2. Refresh: a new pair comes back, the presented refresh token is consumed
// 3. Replaying the consumed token fails with invalid_grant
// 4. The successor token still refreshes
func TestRefreshTokenRotation(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	first, err := client.PasswordGrant(t.Context(), clientID, clientSecret, testUsername, testPassword, nil)
	require.NoError(t, err)
	assertTokenResponse(t, first)

	second, err := client.RefreshGrant(t.Context(), clientID, clientSecret, first.RefreshToken, nil)
	require.NoError(t, err, "Refresh should succeed")
	assertTokenResponse(t, second)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken, "Refresh token should rotate")

	t.Logf("Refresh token rotated")

	t.Run("ConsumedTokenRejected", func(t *testing.T) {
		_, err := client.RefreshGrant(t.Context(), clientID, clientSecret, first.RefreshToken, nil)
		assertOAuthError(t, err, "invalid_grant", "Replaying a consumed refresh token")

		t.Logf("Consumed refresh token correctly rejected")
	})

	t.Run("SuccessorStillUsable", func(t *testing.T) {
		third, err := client.RefreshGrant(t.Context(), clientID, clientSecret, second.RefreshToken, nil)
		require.NoError(t, err)
		assertTokenResponse(t, third)
	})
}

// TestRefreshRequiresClientAuth verifies the refresh grant authenticates the
// client with HTTP Basic and binds tokens to the client they were issued to.
func TestRefreshRequiresClientAuth(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	tokenResp, err := client.PasswordGrant(t.Context(), clientID, clientSecret, testUsername, testPassword, nil)
	require.NoError(t, err)

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := client.RefreshGrant(t.Context(), clientID, "wrong-secret", tokenResp.RefreshToken, nil)
		assertOAuthError(t, err, "unauthorized_client", "Refreshing with a wrong client secret")
	})

	t.Run("MissingClientAuth", func(t *testing.T) {
		_, err := client.RefreshGrant(t.Context(), "", "", tokenResp.RefreshToken, nil)
		assertOAuthError(t, err, "unauthorized_client", "Refreshing without client authentication")
	})

	t.Run("ForeignClient", func(t *testing.T) {
		otherID, otherSecret := createTestClient(t, login, "other-client", "", nil)

		_, err := client.RefreshGrant(t.Context(), otherID, otherSecret, tokenResp.RefreshToken, nil)
		assertOAuthError(t, err, "invalid_grant", "Presenting another client's refresh token")

		t.Logf("Foreign refresh token correctly rejected")
	})
}

// TestRefreshScopeNarrowing verifies the requested scope may only narrow the
// original grant, never widen it.
func TestRefreshScopeNarrowing(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	full, err := client.PasswordGrant(t.Context(), clientID, clientSecret,
		testUsername, testPassword, clientScopes)
	require.NoError(t, err)
	require.Contains(t, full.Scope, "profile:write")

	narrowed, err := client.RefreshGrant(t.Context(), clientID, clientSecret,
		full.RefreshToken, []string{"profile:read"})
	require.NoError(t, err)
	require.Equal(t, "profile:read", narrowed.Scope, "Refresh should narrow to the requested scope")

	t.Logf("Grant narrowed to: %s", narrowed.Scope)

	// The narrowed grant is the new ceiling; the dropped scope is gone
	_, err = client.RefreshGrant(t.Context(), clientID, clientSecret,
		narrowed.RefreshToken, []string{"profile:write"})
	assertOAuthError(t, err, "invalid_scope", "Widening a narrowed grant")

	t.Logf("Scope widening correctly rejected")
}

// TestTokenRevocation tests RFC 7009 revocation:
// 1. Revoke a refresh token
// 2. The revoked token no longer refreshes
// 3. Revocation answers 200 even for dead or unknown tokens
func TestTokenRevocation(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)
	clientID, clientSecret := createTestClient(t, login, clientName, redirectURI, clientScopes)

	tokenResp, err := client.PasswordGrant(t.Context(), clientID, clientSecret, testUsername, testPassword, nil)
	require.NoError(t, err)

	require.NoError(t, client.RevokeToken(t.Context(), clientID, clientSecret, tokenResp.RefreshToken),
		"Revocation should succeed")

	t.Logf("Refresh token revoked")

	_, err = client.RefreshGrant(t.Context(), clientID, clientSecret, tokenResp.RefreshToken, nil)
	assertOAuthError(t, err, "invalid_grant", "Refreshing with a revoked token")

	t.Run("RevokeIsIdempotent", func(t *testing.T) {
		require.NoError(t, client.RevokeToken(t.Context(), clientID, clientSecret, tokenResp.RefreshToken),
			"Revoking a dead token should still answer 200")
		require.NoError(t, client.RevokeToken(t.Context(), clientID, clientSecret, "never-issued"),
			"Revoking an unknown token should still answer 200")
	})

	t.Run("SessionRevoke", func(t *testing.T) {
		session, err := client.AuthenticateWithPassword(t.Context(),
			clientID, clientSecret, testUsername, testPassword, nil)
		require.NoError(t, err)

		require.NoError(t, session.Revoke(t.Context()))

		_, err = client.RefreshGrant(t.Context(), clientID, clientSecret, session.RefreshToken(), nil)
		assertOAuthError(t, err, "invalid_grant", "Session revocation should kill the refresh token")

		t.Logf("Session revocation confirmed")
	})
}
