package postern_test

import (
	"testing"

	"github.com/posternauth/postern/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestAPIKeyLifecycle tests API key management and the api_key extension grant:
// 1. Mint a key through an interactive session
// 2. List keys: records come back without key material
// 3. Trade the key for an access token and act as the account
// 4. Unknown keys are refused with access_denied
func TestAPIKeyLifecycle(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	account := registerAccount(t, client, testUsername, testPassword)
	login := loginSession(t, client, testUsername, testPassword)

	created, err := login.CreateAPIKey(t.Context(), "ci-runner")
	require.NoError(t, err, "Key creation should succeed")
	require.NotEmpty(t, created.APIKey, "The key value comes back exactly once")
	require.Equal(t, "ci-runner", created.Key.Label)
	require.Equal(t, account.ID, created.Key.AccountID)

	t.Logf("API key minted: %s (%s)", created.Key.ID, created.Key.Label)

	t.Run("ListKeys", func(t *testing.T) {
		_, err := login.CreateAPIKey(t.Context(), "backup-job")
		require.NoError(t, err)

		keys, err := login.ListAPIKeys(t.Context())
		require.NoError(t, err)
		require.Len(t, keys, 2)

		labels := make([]string, 0, len(keys))
		for _, k := range keys {
			require.Equal(t, account.ID, k.AccountID)
			require.NotEmpty(t, k.ID)
			labels = append(labels, k.Label)
		}
		require.ElementsMatch(t, []string{"ci-runner", "backup-job"}, labels)

		t.Logf("Listed %d keys: %v", len(keys), labels)
	})

	t.Run("KeyGrant", func(t *testing.T) {
		tokenResp, err := client.APIKeyGrant(t.Context(), created.APIKey)
		require.NoError(t, err, "Key exchange should succeed")
		require.NotEmpty(t, tokenResp.AccessToken)
		require.Empty(t, tokenResp.RefreshToken, "Key grant should NOT issue a refresh token")
		require.Equal(t, "bearer", tokenResp.TokenType)
		require.Positive(t, tokenResp.ExpiresIn)

		t.Logf("Key traded for an access token, expires in %ds", tokenResp.ExpiresIn)
	})

	t.Run("KeySessionActsAsAccount", func(t *testing.T) {
		session, err := client.AuthenticateWithAPIKey(t.Context(), created.APIKey)
		require.NoError(t, err)

		whoami, err := session.Whoami(t.Context())
		require.NoError(t, err)
		require.Equal(t, account.ID, whoami.Account.ID, "Key-derived token should act for the owner")

		t.Logf("Key session resolved to %s", whoami.Account.Username)
	})

	t.Run("UnknownKeyRejected", func(t *testing.T) {
		_, err := client.APIKeyGrant(t.Context(), "never-issued-key")
		require.ErrorIs(t, err, authsdk.ErrAccessDenied, "Unknown keys should be refused")

		t.Logf("Unknown key correctly rejected")
	})
}

// TestAPIKeysRequireSession verifies key management is gated on a session.
func TestAPIKeysRequireSession(t *testing.T) {
	baseURL, cleanup := setupContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerAccount(t, client, testUsername, testPassword)

	anonymous := client.NewSessionFromTokens("", "", "forged-token", "", "", 3600)

	_, err := anonymous.CreateAPIKey(t.Context(), "sneaky")
	require.ErrorIs(t, err, authsdk.ErrMalformedToken)

	_, err = anonymous.ListAPIKeys(t.Context())
	require.ErrorIs(t, err, authsdk.ErrMalformedToken)
}
