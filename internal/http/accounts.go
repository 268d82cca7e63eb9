package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// AccountsHandler handles account registration and TOTP enrollment.
type AccountsHandler struct {
	AccountService *service.AccountService
}

// registerRequest is the POST /v1/accounts body.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister handles POST /v1/accounts
//
//	@Summary		Register Account
//	@Description	Creates an account with a username and password. The password is stored as an argon2id hash.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration request"
//	@Success		201		{object}	domain.Account	"The created account"
//	@Failure		400		{object}	oauthx.Error	"error, error_description"
//	@Failure		409		{object}	oauthx.Error	"error, error_description"
//	@Failure		500		{object}	oauthx.Error	"error, error_description"
//	@Router			/v1/accounts [post].
func (h *AccountsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		oauthx.ErrInvalidRequest.WithDescription("invalid JSON in request body").WriteTo(w)
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		oauthx.ErrInvalidRequest.WithDescription("username and password are required").WriteTo(w)
		return
	}

	account, err := h.AccountService.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountExists):
			oauthx.New(http.StatusConflict, "account_exists", "username is already taken").WriteTo(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			oauthx.ErrInvalidRequest.WithDescription("username and password are required").WriteTo(w)
		default:
			log.Error("failed to register account", "error", err)
			oauthx.Wrap(err, "").WriteTo(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, account)
}

// HandleEnrollTOTP handles POST /v1/accounts/totp
//
//	@Summary		Enroll TOTP Second Factor
//	@Description	Generates a TOTP secret for the session account, stores it encrypted, and returns the otpauth:// provisioning URL.
//	@Description	The secret and URL are shown exactly once; subsequent logins require the code.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	service.TOTPEnrollment	"Provisioning material for the authenticator app"
//	@Failure		401	{object}	oauthx.Error			"error, error_description"
//	@Failure		409	{object}	oauthx.Error			"error, error_description"
//	@Failure		500	{object}	oauthx.Error			"error, error_description"
//	@Router			/v1/accounts/totp [post].
func (h *AccountsHandler) HandleEnrollTOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		oauthx.ErrNotAuthenticated.WriteTo(w)
		return
	}

	enrollment, err := h.AccountService.EnrollTOTP(ctx, account.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTOTPAlreadyEnrolled):
			oauthx.New(http.StatusConflict, "totp_already_enrolled", "the account already has a second factor").WriteTo(w)
		case errors.Is(err, service.ErrAccountNotFound):
			oauthx.ErrNotAuthenticated.WriteTo(w)
		default:
			log.Error("failed to enroll totp", "error", err, "account_id", account.ID)
			oauthx.Wrap(err, "").WriteTo(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, enrollment)
}
