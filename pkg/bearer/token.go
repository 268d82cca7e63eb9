// Package bearer implements the signed bearer-token model: compact HMAC
// tokens carrying a subject, an issue time, a lifespan, and an optional
// origin binding. The codec is a leaf; policy decisions about when a token
// is acceptable live in the Verify*/Validate methods so callers control the
// order and the entry points.
package bearer

import (
	"errors"
	"time"
)

// Unbounded as a lifespan means the token never expires.
const Unbounded time.Duration = -1

var (
	ErrMalformed      = errors.New("bearer: malformed token")
	ErrExpired        = errors.New("bearer: token expired")
	ErrOriginMismatch = errors.New("bearer: origin mismatch")
)

// Token is a signed assertion of identity. Subject is an opaque identifier
// chosen by the host; Origin is the network address the token was issued to,
// empty when not origin-bound. A Token is a plain value: mutating a field
// only matters once the token is re-encoded, which re-signs it.
type Token struct {
	Subject  string
	IssuedAt time.Time
	Lifespan time.Duration
	Origin   string
}

// ExpiresAt returns the expiry instant. The second return is false for
// unbounded tokens, which never expire.
func (t Token) ExpiresAt() (time.Time, bool) {
	if t.Lifespan < 0 {
		return time.Time{}, false
	}
	return t.IssuedAt.Add(t.Lifespan), true
}

// VerifyOrigin checks the origin binding against the caller-observed
// address. Enforcement is only possible when both sides are known: a token
// without a recorded origin, or a caller without an observed one, passes.
func (t Token) VerifyOrigin(observed string) error {
	if t.Origin == "" || observed == "" {
		return nil
	}
	if t.Origin != observed {
		return ErrOriginMismatch
	}
	return nil
}

// VerifyExpiry checks the lifespan against the given instant. The token is
// rejected from the expiry instant onward; an unbounded lifespan always
// passes.
func (t Token) VerifyExpiry(now time.Time) error {
	exp, ok := t.ExpiresAt()
	if !ok {
		return nil
	}
	if !now.Before(exp) {
		return ErrExpired
	}
	return nil
}

// Validate runs the acceptance checks in their fixed order: origin first,
// then expiry. The order is part of the contract so callers see a stable
// error for tokens failing both.
func (t Token) Validate(observed string, now time.Time) error {
	if err := t.VerifyOrigin(observed); err != nil {
		return err
	}
	return t.VerifyExpiry(now)
}
