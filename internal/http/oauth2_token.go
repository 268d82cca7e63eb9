package http

import (
	"net/http"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/authserver"
)

// TokenHandler serves POST /v1/oauth2/token. The protocol engine does the
// parsing, dispatch and response shaping; this type exists to pin the route
// documentation to the host's wiring.
type TokenHandler struct {
	Engine *authserver.Server[domain.Client]
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues access and refresh tokens using OAuth2 grant types (authorization_code, refresh_token, password, client_credentials, and the api_key extension grant).
//	@Description	Client authentication is HTTP Basic where required; the authorization_code grant authenticates by possession of the code.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string				true	"Grant type"	Enums(authorization_code, refresh_token, password, client_credentials, urn:postern:params:oauth:grant-type:api_key)
//	@Param			code			formData	string				false	"Authorization code (required for authorization_code grant)"
//	@Param			redirect_uri	formData	string				false	"Redirect URI (required for authorization_code grant, must match the authorization request)"
//	@Param			refresh_token	formData	string				false	"Refresh token (required for refresh_token grant)"
//	@Param			username		formData	string				false	"Resource owner username (required for password grant)"
//	@Param			password		formData	string				false	"Resource owner password (required for password grant)"
//	@Param			scope			formData	string				false	"Space-delimited list of scopes"
//	@Param			api_key			formData	string				false	"API key (required for the api_key extension grant)"
//	@Success		200				{object}	oauthx.TokenPayload	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	oauthx.Error		"error, error_description, state"
//	@Failure		403				{object}	oauthx.Error		"error, error_description, state"
//	@Failure		500				{object}	oauthx.Error		"error, error_description, state"
//	@Header			200				{string}	Cache-Control		"no-store"
//	@Header			200				{string}	Pragma				"no-cache"
//	@Router			/v1/oauth2/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Engine.HandleToken(w, r)
}
