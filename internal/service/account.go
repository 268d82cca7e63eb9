package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/idx"
	"github.com/posternauth/postern/pkg/slogx"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrAccountExists       = errors.New("account_already_exists")
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrOTPRequired         = errors.New("otp_required")
	ErrTOTPAlreadyEnrolled = errors.New("totp_already_enrolled")
)

type AccountService struct {
	Store store.Store

	// Issuer names this server inside authenticator apps.
	Issuer string
}

// Register creates an account with an argon2id password hash.
func (s *AccountService) Register(ctx context.Context, username, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", "error", err)
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrAccountExists
		}
		return domain.Account{}, err
	}

	l.Info("account registered", "account_id", account.ID, "username", username)
	return account, nil
}

// Authenticate verifies a username/password pair, and the TOTP code when the
// account is enrolled. An enrolled account with no code presented fails with
// ErrOTPRequired so callers can prompt for the second factor.
func (s *AccountService) Authenticate(ctx context.Context, username, password, otpCode string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if cryptox.VerifyPassword(password, account.PasswordHash) != nil {
		return domain.Account{}, ErrInvalidCredentials
	}

	if account.TOTPEnrolled() {
		if otpCode == "" {
			return domain.Account{}, ErrOTPRequired
		}
		secret, err := cryptox.DecryptSecret(account.TOTPSecret)
		if err != nil {
			return domain.Account{}, fmt.Errorf("failed to decrypt TOTP secret: %w", err)
		}
		if !totp.Validate(otpCode, string(secret)) {
			return domain.Account{}, ErrInvalidCredentials
		}
	}

	return account, nil
}

// TOTPEnrollment carries the provisioning material for a fresh enrollment.
// The secret and URL are shown once and never stored in the clear.
type TOTPEnrollment struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// EnrollTOTP generates a TOTP secret for the account, stores it encrypted,
// and returns the otpauth:// provisioning URL for the authenticator app.
func (s *AccountService) EnrollTOTP(ctx context.Context, accountID string) (TOTPEnrollment, error) {
	l := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TOTPEnrollment{}, ErrAccountNotFound
		}
		return TOTPEnrollment{}, err
	}
	if account.TOTPEnrolled() {
		return TOTPEnrollment{}, ErrTOTPAlreadyEnrolled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: account.Username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	encrypted, err := cryptox.EncryptSecret([]byte(key.Secret()))
	if err != nil {
		return TOTPEnrollment{}, fmt.Errorf("failed to encrypt TOTP secret: %w", err)
	}
	if err := s.Store.Accounts().UpdateTOTPSecret(ctx, accountID, encrypted); err != nil {
		return TOTPEnrollment{}, err
	}

	l.Info("totp enrolled", "account_id", accountID)
	return TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: account.Username,
	}, nil
}

// GetByID fetches an account by id.
func (s *AccountService) GetByID(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}
