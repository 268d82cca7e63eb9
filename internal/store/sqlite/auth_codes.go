package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
)

type authCodesRepo struct {
	db dbtx
}

const authCodeColumns = `id, account_id, client_id, code_hash, redirect_uri, scopes, expires_at, used_at, created_at`

func scanAuthCode(s scanner) (domain.AuthorizationCode, error) {
	var (
		c      domain.AuthorizationCode
		scopes string
		usedAt sql.NullTime
	)
	err := s.Scan(&c.ID, &c.AccountID, &c.ClientID, &c.CodeHash, &c.RedirectURI,
		&scopes, &c.ExpiresAt, &usedAt, &c.CreatedAt)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	c.Scopes = splitAndFilter(scopes)
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

func (r *authCodesRepo) CreateAuthCode(ctx context.Context, c domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorization_codes (`+authCodeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.ClientID, c.CodeHash, c.RedirectURI,
		strings.Join(c.Scopes, " "), c.ExpiresAt, mapOptionalTime(c.UsedAt), c.CreatedAt)
	return mapConstraint(err)
}

func (r *authCodesRepo) GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authCodeColumns+` FROM authorization_codes WHERE code_hash = ?`, hash)
	return scanAuthCode(row)
}

// MarkAuthCodeUsed stamps used_at. The used_at IS NULL predicate makes the
// update atomic, so a code can never be consumed twice even under races.
func (r *authCodesRepo) MarkAuthCodeUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE authorization_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		at, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *authCodesRepo) DeleteExpiredAuthCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_codes WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
