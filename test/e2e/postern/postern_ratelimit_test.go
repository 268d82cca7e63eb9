package postern_test

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/posternauth/postern/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitTokenEndpoint verifies the token endpoint is strictly rate
// limited (5 req/min per IP) to slow down credential stuffing.
func TestRateLimitTokenEndpoint(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	// Six rapid requests: the first five fail on credentials, the sixth on
	// the rate limit
	var lastErr error
	for i := range 6 {
		_, err := client.PasswordGrant(t.Context(), "ghost-client", "ghost-secret",
			"ghost", "ghost-password", nil)
		require.Error(t, err, "Bogus credentials should fail")

		if i < 5 {
			require.False(t, isRateLimited(err), "Should not be rate limited yet (request %d)", i+1)
		} else {
			lastErr = err
		}
	}

	require.True(t, isRateLimited(lastErr), "Sixth request should be rate limited, got: %v", lastErr)

	var oauthErr *authsdk.OAuth2Error
	require.ErrorAs(t, lastErr, &oauthErr)
	require.Equal(t, "rate_limit_exceeded", oauthErr.Code)

	t.Logf("Token endpoint rate limited after 5 requests")
}

// TestRateLimitLoginKeyedByUsername verifies the login limiter keys on
// IP plus username, so hammering one account does not lock out another.
func TestRateLimitLoginKeyedByUsername(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	var lastErr error
	for i := range 6 {
		_, err := client.Login(t.Context(), "alice", "wrong-password", "")
		require.Error(t, err)

		if i < 5 {
			require.False(t, isRateLimited(err), "Should not be rate limited yet (request %d)", i+1)
		} else {
			lastErr = err
		}
	}
	require.True(t, isRateLimited(lastErr), "Sixth attempt against alice should be rate limited")

	t.Logf("Login attempts against alice rate limited")

	// A different username from the same address has its own bucket
	_, err := client.Login(t.Context(), "bob", "wrong-password", "")
	require.Error(t, err)
	require.False(t, isRateLimited(err), "Attempts against bob should not share alice's bucket")
	require.ErrorIs(t, err, authsdk.ErrNotAuthenticated)

	t.Logf("Attempts against a different username correctly tracked separately")
}

// TestRateLimitHeadersAndFormat verifies the 429 answer carries the advisory
// headers and the protocol error shape.
func TestRateLimitHeadersAndFormat(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	httpClient := &http.Client{Timeout: 10 * time.Second}

	// Consume the strict budget with direct calls
	for range 6 {
		resp, err := postTokenForm(httpClient, baseURL)
		require.NoError(t, err)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	// The next request must be limited
	resp, err := postTokenForm(httpClient, baseURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"), "Should include Retry-After header")
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"), "Should include X-RateLimit-Limit header")
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Window"), "Should include X-RateLimit-Window header")
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "rate_limit_exceeded")
	require.Contains(t, string(body), "error_description")

	t.Logf("429 answer: Retry-After=%s body=%s", resp.Header.Get("Retry-After"), string(body))
}

// TestRateLimitHealthEndpoints verifies the health probes sit in the lenient
// tier; monitoring systems poll them frequently.
func TestRateLimitHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	for i := range 30 {
		health, err := client.GetLiveness(t.Context())
		require.NoError(t, err, "Liveness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)

		health, err = client.GetReadiness(t.Context())
		require.NoError(t, err, "Readiness request %d should not be rate limited", i+1)
		require.Equal(t, "ok", health.Status)
	}

	t.Logf("Made 30 requests each to /livez and /readyz without rate limiting")
}

// TestRateLimitConcurrentHealth verifies the limiter behaves under
// concurrent load against a lenient endpoint.
func TestRateLimitConcurrentHealth(t *testing.T) {
	baseURL, cleanup := setupContainerWithDefaultRateLimits(t)
	defer cleanup()

	httpClient := &http.Client{Timeout: 5 * time.Second}

	const numRequests = 20
	results := make(chan error, numRequests)

	for i := range numRequests {
		go func(reqNum int) {
			resp, err := httpClient.Get(baseURL + "/livez")
			if err != nil {
				results <- fmt.Errorf("request %d failed: %w", reqNum, err)
				return
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode != http.StatusOK {
				results <- fmt.Errorf("request %d got status %d", reqNum, resp.StatusCode)
				return
			}
			results <- nil
		}(i)
	}

	successCount := 0
	for range numRequests {
		if err := <-results; err == nil {
			successCount++
		} else {
			t.Logf("Concurrent request error: %v", err)
		}
	}

	require.GreaterOrEqual(t, successCount, 15, "Most concurrent requests should succeed")
	t.Logf("Handled %d/%d concurrent requests", successCount, numRequests)
}

// postTokenForm fires a bare password-grant request, useful when the raw
// response must be inspected.
func postTokenForm(httpClient *http.Client, baseURL string) (*http.Response, error) {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", "ghost")
	data.Set("password", "ghost-password")

	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("ghost-client", "ghost-secret")

	return httpClient.Do(req)
}
