package sqlite

import (
	"context"
	"strings"

	"github.com/posternauth/postern/internal/domain"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, secret_hash, redirect_uri, scopes, created_at, updated_at`

func scanClient(s scanner) (domain.Client, error) {
	var (
		c      domain.Client
		scopes string
	)
	if err := s.Scan(&c.ID, &c.Name, &c.SecretHash, &c.RedirectURI, &scopes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.Scopes = splitAndFilter(scopes)
	return c, nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, secret_hash, redirect_uri, scopes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.SecretHash, c.RedirectURI, strings.Join(c.Scopes, " "), c.CreatedAt, c.UpdatedAt)
	return mapConstraint(err)
}
