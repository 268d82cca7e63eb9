package http

import (
	"net/http"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/guard"
)

// sessionResponse is the body the guard writes on login and revival when the
// client accepts JSON.
type sessionResponse struct {
	Data  domain.Account `json:"data"`
	Token string         `json:"token"`
}

// SessionsHandler fronts the guard's session endpoints. The orchestrator
// builds each handler once; these methods pin routes and documentation to
// the host's wiring.
type SessionsHandler struct {
	login    http.Handler
	upstream http.Handler
	logout   http.Handler
	revive   http.Handler
}

func NewSessionsHandler(g *guard.Guard[domain.Account], upstreamLogin bool) *SessionsHandler {
	h := &SessionsHandler{
		login:  g.Authenticate("password", guard.Options[domain.Account]{}),
		logout: g.Logout(guard.LogoutOptions{}),
		revive: g.Revive(),
	}
	if upstreamLogin {
		h.upstream = g.Authenticate("upstream", guard.Options[domain.Account]{})
	}
	return h
}

// HandleLogin godoc
//
//	@Summary		Interactive Login
//	@Description	Authenticates a username/password pair, plus the TOTP code when the account is enrolled, and establishes a session.
//	@Description	The session token comes back in the body and as an HttpOnly cookie; clients that do not accept JSON get 204 and the cookie.
//	@Tags			Sessions
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string	true	"Username"
//	@Param			password	formData	string	true	"Password"
//	@Param			otp			formData	string	false	"TOTP code (required once the account is enrolled)"
//	@Success		200			{object}	sessionResponse	"data, token"
//	@Success		204			"Session established (non-JSON client)"
//	@Failure		401			{object}	oauthx.Error	"error, error_description"
//	@Router			/v1/login [post].
func (h *SessionsHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.login.ServeHTTP(w, r)
}

// HandleUpstreamLogin godoc
//
//	@Summary		Federated Login
//	@Description	Signs in through the configured upstream OAuth2 provider. A request without a code is redirected to the provider;
//	@Description	the provider calls back to this same route with code and state, which completes the login and provisions the account on first use.
//	@Tags			Sessions
//	@Produce		json
//	@Param			code	query		string	false	"Authorization code (present on the callback leg)"
//	@Param			state	query		string	false	"CSRF state (present on the callback leg)"
//	@Success		200		{object}	sessionResponse	"data, token"
//	@Success		302		"Redirect to the upstream provider"
//	@Failure		401		{object}	oauthx.Error	"error, error_description"
//	@Router			/v1/login/upstream [get].
func (h *SessionsHandler) HandleUpstreamLogin(w http.ResponseWriter, r *http.Request) {
	h.upstream.ServeHTTP(w, r)
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Tears the session down and clears the session cookie.
//	@Tags			Sessions
//	@Success		204	"Session cleared"
//	@Router			/v1/logout [post].
func (h *SessionsHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.logout.ServeHTTP(w, r)
}

// HandleRevive godoc
//
//	@Summary		Revive Session
//	@Description	Renews an expired session token. The presented token keeps its subject and lifespan; only the issue time resets.
//	@Description	Origin-bound tokens must still come from their recorded address.
//	@Tags			Sessions
//	@Produce		json
//	@Success		200	{object}	sessionResponse	"data, token"
//	@Failure		401	{object}	oauthx.Error	"error, error_description"
//	@Failure		403	{object}	oauthx.Error	"error, error_description"
//	@Router			/v1/session/revive [post].
func (h *SessionsHandler) HandleRevive(w http.ResponseWriter, r *http.Request) {
	h.revive.ServeHTTP(w, r)
}
