package http

import (
	"net/http"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
)

// whoamiResponse echoes the session back at its owner.
type whoamiResponse struct {
	Account   domain.Account `json:"account"`
	ExpiresAt int64          `json:"expires_at,omitempty"`
}

// HandleWhoami handles GET /v1/whoami
//
//	@Summary		Current Session
//	@Description	Returns the account behind the presented session token and its expiry.
//	@Tags			Accounts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	whoamiResponse	"account, expires_at"
//	@Failure		401	{object}	oauthx.Error	"error, error_description"
//	@Router			/v1/whoami [get].
func HandleWhoami(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		oauthx.ErrNotAuthenticated.WriteTo(w)
		return
	}

	resp := whoamiResponse{Account: account}
	if tok, ok := guard.TokenFrom(ctx); ok {
		if exp, bounded := tok.ExpiresAt(); bounded {
			resp.ExpiresAt = exp.Unix()
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
