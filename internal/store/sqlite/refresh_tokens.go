package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

const refreshTokenColumns = `id, account_id, client_id, token_hash, scopes, expires_at, revoked, created_at`

func scanRefreshToken(s scanner) (domain.RefreshToken, error) {
	var (
		t      domain.RefreshToken
		scopes string
	)
	err := s.Scan(&t.ID, &t.AccountID, &t.ClientID, &t.TokenHash,
		&scopes, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.Scopes = splitAndFilter(scopes)
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.ClientID, t.TokenHash,
		strings.Join(t.Scopes, " "), t.ExpiresAt, t.Revoked, t.CreatedAt)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash)
	return scanRefreshToken(row)
}

// RevokeRefreshToken is idempotent; revoking an unknown or already revoked
// token is not an error.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = ?`, hash)
	return err
}

func (r *refreshTokensRepo) DeleteDeadRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE revoked OR expires_at <= ?`, time.Now().UTC())
	return err
}
