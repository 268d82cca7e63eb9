package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/idx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// GrantTypeAPIKey is the extension grant_type under which API keys trade for
// access tokens on the token endpoint.
const GrantTypeAPIKey = "urn:postern:params:oauth:grant-type:api_key"

var ErrInvalidAPIKey = errors.New("invalid_api_key")

// APIKeyService manages long-lived API keys. Keys are opaque values stored
// by fingerprint and exchanged for short-lived access tokens through the
// extension grant.
type APIKeyService struct {
	Store store.Store
	Codec *bearer.Codec

	AccessTTL time.Duration
}

// CreateKey mints an API key for the account. The opaque key is returned
// once; only its fingerprint is stored.
func (s *APIKeyService) CreateKey(ctx context.Context, accountID, label string) (domain.APIKey, string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.APIKey{}, "", err
	}

	record := domain.APIKey{
		ID:        idx.New().String(),
		AccountID: accountID,
		KeyHash:   cryptox.FingerprintToken(opaque),
		Label:     strings.TrimSpace(label),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.APIKeys().CreateAPIKey(ctx, record); err != nil {
		return domain.APIKey{}, "", err
	}

	slogx.FromContext(ctx).Info("api key created", "account_id", accountID, "key_id", record.ID)
	return record, opaque, nil
}

// ListKeys returns the account's keys, newest first.
func (s *APIKeyService) ListKeys(ctx context.Context, accountID string) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeysByAccount(ctx, accountID)
}

// Grant is the token-endpoint extension hook: form field api_key is resolved
// by fingerprint and answered with an access token. No refresh token is
// issued; the key itself is the long-lived credential.
func (s *APIKeyService) Grant(w http.ResponseWriter, r *http.Request) (oauthx.TokenResponse, error) {
	key := strings.TrimSpace(r.PostForm.Get("api_key"))
	if key == "" {
		return oauthx.TokenResponse{}, oauthx.ErrInvalidRequest.WithDescription("api_key is required")
	}

	record, err := s.Store.APIKeys().GetAPIKeyByHash(r.Context(), cryptox.FingerprintToken(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return oauthx.TokenResponse{}, oauthx.ErrAccessDenied.
				WithDescription("unknown api key").
				WithCause(ErrInvalidAPIKey)
		}
		return oauthx.TokenResponse{}, err
	}

	access, err := s.Codec.Encode(s.Codec.Issue(record.AccountID, s.accessTTL(), ""))
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	return oauthx.TokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.accessTTL().Seconds()),
	}, nil
}

func (s *APIKeyService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}
