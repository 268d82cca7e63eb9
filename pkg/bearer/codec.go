package bearer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claims is the wire encoding of a Token: registered sub/iat plus the
// lifespan in milliseconds ("lsp", -1 for unbounded) and the bound origin
// ("org", omitted when empty).
type claims struct {
	jwt.RegisteredClaims

	Lifespan int64  `json:"lsp"`
	Origin   string `json:"org,omitempty"`
}

// Codec signs and verifies compact tokens with a single process-wide
// HMAC-SHA256 secret. The secret is fixed at construction and never rotated;
// a Codec is safe for concurrent use by any number of verifications and
// issuances.
type Codec struct {
	secret []byte

	// Now supplies the clock for Issue. Overridable in tests; defaults to
	// time.Now.
	Now func() time.Time
}

// NewCodec creates a Codec signing with the given secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, Now: time.Now}
}

// Issue builds a Token issued now. The issue time is truncated to whole
// seconds, the precision the wire format carries, so an issued token and
// its decoded round-trip are identical.
func (c *Codec) Issue(subject string, lifespan time.Duration, origin string) Token {
	return Token{
		Subject:  subject,
		IssuedAt: c.Now().UTC().Truncate(time.Second),
		Lifespan: lifespan,
		Origin:   origin,
	}
}

// Encode serializes and signs a Token into its compact string form.
func (c *Codec) Encode(t Token) (string, error) {
	lsp := t.Lifespan.Milliseconds()
	if t.Lifespan < 0 {
		lsp = -1
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  t.Subject,
			IssuedAt: jwt.NewNumericDate(t.IssuedAt),
		},
		Lifespan: lsp,
		Origin:   t.Origin,
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("bearer: sign: %w", err)
	}
	return signed, nil
}

// Decode parses a compact string, recomputes the signature, and returns the
// Token. Every parse or verification failure comes back as ErrMalformed;
// expiry and origin are acceptance policy, not decoding, and are checked by
// the caller afterwards.
func (c *Codec) Decode(s string) (Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var cl claims
	tok, err := parser.ParseWithClaims(s, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if cl.Subject == "" || cl.IssuedAt == nil {
		return Token{}, fmt.Errorf("%w: missing sub or iat", ErrMalformed)
	}

	lifespan := Unbounded
	if cl.Lifespan >= 0 {
		lifespan = time.Duration(cl.Lifespan) * time.Millisecond
	}
	return Token{
		Subject:  cl.Subject,
		IssuedAt: cl.IssuedAt.Time.UTC(),
		Lifespan: lifespan,
		Origin:   cl.Origin,
	}, nil
}
