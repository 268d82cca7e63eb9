package http

import (
	"net/http"
	"strings"

	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// RevokeHandler serves POST /v1/oauth2/revoke following the RFC 7009 spec. It
// revokes refresh tokens only; access tokens expire naturally. The caller must
// authenticate as the client the token was issued to, and the response is
// 200 OK even for invalid or unknown tokens to prevent token scanning attacks.
type RevokeHandler struct {
	Authority *service.Authority
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Revocation Endpoint
//	@Description	Revokes a previously issued refresh token (RFC 7009)
//	@Description	The client authenticates with HTTP Basic and can only revoke its own tokens.
//	@Description	The endpoint is idempotent and returns 200 OK even for invalid/unknown tokens to prevent token scanning attacks.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string	true	"The token to revoke"
//	@Param			token_type_hint	formData	string	false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Success		200				"Token revoked successfully (or was already invalid)"
//	@Failure		400				{object}	oauthx.Error	"error, error_description"
//	@Header			200				{string}	Cache-Control	"no-store"
//	@Header			200				{string}	Pragma			"no-cache"
//	@Router			/v1/oauth2/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		oauthx.ErrInvalidRequest.
			WithDescription("content type must be application/x-www-form-urlencoded").
			WriteTo(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		oauthx.ErrInvalidRequest.WithDescription("malformed form body").WriteTo(w)
		return
	}

	token := r.Form.Get("token")
	tokenTypeHint := r.Form.Get("token_type_hint")

	if token == "" {
		oauthx.ErrInvalidRequest.WithDescription("token is required").WriteTo(w)
		return
	}

	// 3. Authenticate the client; revocation is scoped to the token's owner
	clientID, secret, ok := r.BasicAuth()
	if !ok || clientID == "" {
		oauthx.ErrUnauthorizedClient.
			WithDescription("client authentication required").
			WriteTo(w)
		return
	}

	client, err := h.Authority.FindClient(ctx, clientID)
	if err != nil {
		oauthx.Wrap(err, "").WriteTo(w)
		return
	}
	if err := h.Authority.VerifyClient(ctx, client, secret); err != nil {
		oauthx.Wrap(err, "").WriteTo(w)
		return
	}

	// 4. Revoke. Only refresh tokens are held server-side.
	if tokenTypeHint == "" || tokenTypeHint == "refresh_token" {
		if err := h.Authority.RevokeToken(ctx, client, token); err != nil {
			// Per RFC 7009, the server responds 200 OK even if the token is invalid/unknown.
			log.Warn("revoke refresh failed", "err", err)
		}
	}

	// 5. Return 200 OK with empty body per spec
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
