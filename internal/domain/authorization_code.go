package domain

import "time"

// AuthorizationCode represents a single-use OAuth 2.0 authorization code
// issuance. Only the fingerprint of the code is stored.
type AuthorizationCode struct {
	ID          string
	AccountID   string
	ClientID    string
	CodeHash    string
	RedirectURI string
	Scopes      []string
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Consumable reports whether the code can still be exchanged at the given time.
func (c AuthorizationCode) Consumable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
