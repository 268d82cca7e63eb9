package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/guard"
)

// PasswordStrategy authenticates the interactive login form: username,
// password, and the TOTP code when the account is enrolled.
type PasswordStrategy struct {
	Accounts *AccountService
}

func (s *PasswordStrategy) Authenticate(w http.ResponseWriter, r *http.Request) (guard.Outcome[domain.Account], error) {
	if err := r.ParseForm(); err != nil {
		return guard.Failure[domain.Account](err), nil
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	otpCode := strings.TrimSpace(r.PostForm.Get("otp"))
	if username == "" || password == "" {
		return guard.Failure[domain.Account](ErrInvalidCredentials), nil
	}

	account, err := s.Accounts.Authenticate(r.Context(), username, password, otpCode)
	switch {
	case err == nil:
		return guard.Success(account), nil
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrOTPRequired):
		return guard.Failure[domain.Account](err), nil
	default:
		// Store failure, not a credential verdict
		return guard.Outcome[domain.Account]{}, err
	}
}
