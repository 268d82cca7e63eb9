package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/idx"
	"github.com/posternauth/postern/pkg/slogx"
)

type ClientService struct {
	Store store.Store
}

// Create registers an OAuth2 client. A secret is generated and returned in
// the clear exactly once; only its argon2id hash is stored.
func (s *ClientService) Create(ctx context.Context, name, redirectURI string, scopes []string) (domain.Client, string, error) {
	l := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Client{}, "", errors.New("client name is required")
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate client secret", "error", err)
		return domain.Client{}, "", err
	}
	secretHash, err := cryptox.HashPassword(secret)
	if err != nil {
		l.Error("failed to hash client secret", "error", err)
		return domain.Client{}, "", err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:          idx.New().String(),
		Name:        name,
		SecretHash:  secretHash,
		RedirectURI: strings.TrimSpace(redirectURI),
		Scopes:      dedupe(scopes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		l.Error("failed to create client", "error", err)
		return domain.Client{}, "", err
	}

	l.Info("client created", "client_id", client.ID, "name", name)
	return client, secret, nil
}

// GetByID fetches a client by id.
func (s *ClientService) GetByID(ctx context.Context, clientID string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, err
	}
	return client, nil
}
