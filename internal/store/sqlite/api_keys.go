package sqlite

import (
	"context"

	"github.com/posternauth/postern/internal/domain"
)

type apiKeysRepo struct {
	db dbtx
}

const apiKeyColumns = `id, account_id, key_hash, label, created_at`

func scanAPIKey(s scanner) (domain.APIKey, error) {
	var k domain.APIKey
	if err := s.Scan(&k.ID, &k.AccountID, &k.KeyHash, &k.Label, &k.CreatedAt); err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	return k, nil
}

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (`+apiKeyColumns+`) VALUES (?, ?, ?, ?, ?)`,
		k.ID, k.AccountID, k.KeyHash, k.Label, k.CreatedAt)
	return mapConstraint(err)
}

func (r *apiKeysRepo) GetAPIKeyByHash(ctx context.Context, hash string) (domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = ?`, hash)
	return scanAPIKey(row)
}

func (r *apiKeysRepo) ListAPIKeysByAccount(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE account_id = ? ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
