package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Session represents an authenticated session with automatic token refresh.
// Sessions come in two flavors: token-endpoint sessions hold an access token
// with a known lifetime and usually a rotating refresh token, while
// interactive sessions from Login hold a session token whose expiry is
// managed server-side and renewed through Revive.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	clientID     string
	clientSecret string
	expiresAt    time.Time       // zero when the expiry is not tracked client-side
	scopes       map[string]bool // granted scopes for fast lookup
}

// newSession creates an authenticated session from a token response. The
// client credentials travel with the session because the refresh grant
// authenticates with HTTP Basic.
func newSession(client *SDKClient, clientID, clientSecret string, tokenResp *TokenResponse) *Session {
	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	// Subtract a buffer to refresh before actual expiry
	expiresAt = expiresAt.Add(-30 * time.Second)

	return &Session{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		accessToken:  tokenResp.AccessToken,
		refreshToken: tokenResp.RefreshToken,
		expiresAt:    expiresAt,
		scopes:       parseScopes(tokenResp.Scope),
	}
}

// newSessionToken wraps an interactive session token. No expiry is tracked
// client-side; the token is presented as-is until the server rejects it, at
// which point Revive renews it.
func newSessionToken(client *SDKClient, token string) *Session {
	return &Session{
		client:      client,
		accessToken: token,
		scopes:      make(map[string]bool),
	}
}

// parseScopes parses a space-delimited scope string into a map for fast lookup.
func parseScopes(scopeStr string) map[string]bool {
	if scopeStr == "" {
		return make(map[string]bool)
	}

	parts := strings.Fields(scopeStr)
	scopes := make(map[string]bool, len(parts))
	for _, scope := range parts {
		scopes[scope] = true
	}
	return scopes
}

// getValidToken returns a valid access token, automatically refreshing an
// expired one when a refresh token is held.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.expiresAt.IsZero() || time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	// Token expired, need to refresh
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock; another goroutine may
	// have refreshed already
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tokenResp, err := s.client.RefreshGrant(ctx, s.clientID, s.clientSecret, s.refreshToken, nil)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	// The old refresh token is consumed; store the rotated pair
	s.accessToken = tokenResp.AccessToken
	s.refreshToken = tokenResp.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - 30*time.Second)
	s.scopes = parseScopes(tokenResp.Scope)

	return s.accessToken, nil
}

// Revoke revokes the current refresh token, invalidating this session's
// ability to refresh. The access token itself expires naturally.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	clientID := s.clientID
	clientSecret := s.clientSecret
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	return s.client.RevokeToken(ctx, clientID, clientSecret, refreshToken)
}

// Revive renews an interactive session token through POST /v1/session/revive.
// The renewed token keeps its subject and lifespan; only the issue time
// resets. Origin-bound tokens must still be presented from their recorded
// address.
func (s *Session) Revive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.url("/v1/session/revive"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	var envelope sessionEnvelope
	if err := decodeJSON(resp, &envelope, http.StatusOK); err != nil {
		return err
	}

	s.accessToken = envelope.Token
	return nil
}

// Logout tears the session down server-side through POST /v1/logout. The
// session token itself is stateless and simply ages out; this clears the
// session cookie and gives upstream strategies a chance to end theirs.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.url("/v1/logout"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return checkStatus(resp, http.StatusNoContent)
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer the Session methods which refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, empty when the session
// holds none.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Scopes returns a copy of the current granted scopes as a slice.
func (s *Session) Scopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scopes := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	return scopes
}

// HasScope returns true if the session was granted the specified scope.
func (s *Session) HasScope(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[scope]
}

// HasAllScopes returns true if the session was granted all of the specified scopes.
func (s *Session) HasAllScopes(scopes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, scope := range scopes {
		if !s.scopes[scope] {
			return false
		}
	}
	return true
}

// HasAnyScope returns true if the session was granted at least one of the
// specified scopes.
func (s *Session) HasAnyScope(scopes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, scope := range scopes {
		if s.scopes[scope] {
			return true
		}
	}
	return false
}
