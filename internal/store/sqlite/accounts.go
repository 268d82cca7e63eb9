package sqlite

import (
	"context"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
)

type accountsRepo struct {
	db dbtx
}

// scanner covers *sql.Row and *sql.Rows so the same scan helper serves
// single-row and list queries.
type scanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, username, password_hash, totp_secret, created_at, updated_at`

func scanAccount(s scanner) (domain.Account, error) {
	var a domain.Account
	if err := s.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.TOTPSecret, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, password_hash, totp_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.PasswordHash, a.TOTPSecret, a.CreatedAt, a.UpdatedAt)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateTOTPSecret(ctx context.Context, accountID string, secret []byte) error {
	if len(secret) == 0 {
		secret = nil // clear enrollment with NULL rather than an empty blob
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET totp_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), accountID)
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
