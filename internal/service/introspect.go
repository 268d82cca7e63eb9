package service

import (
	"context"
	"errors"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/slogx"
)

// RevokeToken revokes a refresh token for the client that owns it. Unknown
// tokens and tokens held by other clients revoke "successfully" without
// acting, so the endpoint never becomes an oracle for valid token values.
func (s *Authority) RevokeToken(ctx context.Context, client domain.Client, token string) error {
	fp := cryptox.FingerprintToken(token)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if rt.ClientID != client.ID {
		return nil
	}

	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("refresh token revoked", "client_id", client.ID)
	return nil
}

// IntrospectionResult reports the state of a presented access token. An
// inactive token carries nothing but the flag.
type IntrospectionResult struct {
	Active    bool   `json:"active"`
	Subject   string `json:"sub,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

// Introspect decodes and validates a compact access token, including the
// origin check when the token is bound, and reports its claims.
func (s *Authority) Introspect(token, observedOrigin string) IntrospectionResult {
	tok, err := s.Codec.Decode(token)
	if err != nil {
		return IntrospectionResult{}
	}
	if err := tok.Validate(observedOrigin, time.Now()); err != nil {
		return IntrospectionResult{}
	}

	out := IntrospectionResult{
		Active:   true,
		Subject:  tok.Subject,
		IssuedAt: tok.IssuedAt.Unix(),
		Origin:   tok.Origin,
	}
	if exp, ok := tok.ExpiresAt(); ok {
		out.ExpiresAt = exp.Unix()
	}
	return out
}
