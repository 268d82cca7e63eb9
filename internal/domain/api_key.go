package domain

import "time"

// APIKey is a long-lived machine credential tied to an account, exchanged for
// access tokens through the api-key extension grant.
type APIKey struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	KeyHash   string    `json:"-"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
