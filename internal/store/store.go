package store

import (
	"context"
	"errors"
	"time"

	"github.com/posternauth/postern/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop anyone from accidently starting transactions
// within transactions.
type Store interface {
	Accounts() Accounts
	Clients() Clients
	AuthCodes() AuthCodes
	RefreshTokens() RefreshTokens
	APIKeys() APIKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during password authentication.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateTOTPSecret sets the encrypted TOTP secret and bumps updated_at.
	// An empty secret clears the enrollment.
	UpdateTOTPSecret(ctx context.Context, accountID string, secret []byte) error
}

type Clients interface {
	// GetClientByID fetches a client for grant handling.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID).
	CreateClient(ctx context.Context, c domain.Client) error
}

type AuthCodes interface {
	// CreateAuthCode stores a new authorization code issuance.
	CreateAuthCode(ctx context.Context, c domain.AuthorizationCode) error

	// GetAuthCodeByHash returns the issuance by the code's fingerprint.
	GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// MarkAuthCodeUsed stamps used_at so the code cannot be exchanged twice.
	MarkAuthCodeUsed(ctx context.Context, id string, at time.Time) error

	// DeleteExpiredAuthCodes removes issuances past their expiry.
	DeleteExpiredAuthCodes(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken marks the token revoked by its fingerprint.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteDeadRefreshTokens removes expired and revoked tokens.
	DeleteDeadRefreshTokens(ctx context.Context) error
}

type APIKeys interface {
	// CreateAPIKey stores a new API key record.
	CreateAPIKey(ctx context.Context, k domain.APIKey) error

	// GetAPIKeyByHash returns the key record by its fingerprint.
	GetAPIKeyByHash(ctx context.Context, hash string) (domain.APIKey, error)

	// ListAPIKeysByAccount returns an account's keys, newest first.
	ListAPIKeysByAccount(ctx context.Context, accountID string) ([]domain.APIKey, error)
}
