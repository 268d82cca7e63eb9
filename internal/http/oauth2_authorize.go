package http

import (
	"net/http"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/authserver"
)

// AuthorizeHandler serves the authorization endpoint. The guard runs in front
// with Optional, so an authenticated session arrives as the context principal
// and an anonymous request still reaches the engine, which answers with the
// protocol error shape.
type AuthorizeHandler struct {
	Engine *authserver.Server[domain.Client]
}

// HandleGet godoc
//
//	@Summary		OAuth2 Authorization Endpoint
//	@Description	Starts an authorization_code or implicit flow. Requires an authenticated session; sign in through /v1/login first.
//	@Description	On success the user agent is redirected to redirect_uri with either a single-use code (and state) in the query, or the access token in the URI fragment.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			response_type	formData	string	true	"Response type"	Enums(code, token)
//	@Param			client_id		formData	string	true	"Client identifier"
//	@Param			redirect_uri	formData	string	true	"Redirect URI (must exactly match the registered value when one is set)"
//	@Param			scope			formData	string	false	"Space-delimited list of requested scopes (defaults to everything the client may hold)"
//	@Param			state			formData	string	false	"Opaque client value echoed on every outcome"
//	@Success		302				"Redirect to redirect_uri with code or token"
//	@Failure		400				{object}	oauthx.Error	"error, error_description, state"
//	@Failure		401				{object}	oauthx.Error	"error, error_description, state"
//	@Failure		403				{object}	oauthx.Error	"error, error_description, state"
//	@Router			/v1/oauth2/authorize [get].
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.Engine.HandleAuthorize(w, r)
}

// HandlePost godoc
//
//	@Summary		OAuth2 Authorization Decision
//	@Description	Same contract as GET, plus the consent field: submitting consent=deny refuses the request with access_denied. Every error body echoes the state field back.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			response_type	formData	string	true	"Response type"	Enums(code, token)
//	@Param			client_id		formData	string	true	"Client identifier"
//	@Param			redirect_uri	formData	string	true	"Redirect URI"
//	@Param			scope			formData	string	false	"Space-delimited list of requested scopes"
//	@Param			state			formData	string	false	"Opaque client value echoed on every outcome"
//	@Param			consent			formData	string	false	"Consent decision"	Enums(allow, deny)
//	@Success		302				"Redirect to redirect_uri with code or token"
//	@Failure		400				{object}	oauthx.Error	"error, error_description, state"
//	@Failure		401				{object}	oauthx.Error	"error, error_description, state"
//	@Failure		403				{object}	oauthx.Error	"error, error_description, state"
//	@Router			/v1/oauth2/authorize [post].
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	h.Engine.HandleAuthorize(w, r)
}
