package domain

import "time"

type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // argon2 encoded
	TOTPSecret   []byte    `json:"-"` // encrypted at rest, empty when not enrolled
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TOTPEnrolled reports whether the account has a second factor configured.
func (a Account) TOTPEnrolled() bool { return len(a.TOTPSecret) > 0 }
