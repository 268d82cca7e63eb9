package domain

import "time"

// RefreshToken models the stored refresh token record. TokenHash is the
// deterministic fingerprint (base64url SHA-256) of the opaque token value.
type RefreshToken struct {
	ID        string
	AccountID string
	ClientID  string
	TokenHash string
	Scopes    []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Usable reports whether the token can still be exchanged at the given time.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
