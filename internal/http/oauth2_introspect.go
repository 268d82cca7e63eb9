package http

import (
	"net/http"
	"strings"

	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
)

// IntrospectHandler serves POST /v1/oauth2/introspect following RFC 7662.
// It verifies the provided access token and returns metadata about it. Dead
// tokens of any kind answer {"active": false} and nothing else.
type IntrospectHandler struct {
	Authority *service.Authority
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Introspection Endpoint
//	@Description	Introspects an access token and returns metadata about it (RFC 7662)
//	@Description	The optional origin field carries the network address the resource server observed the token from, for origin-bound tokens.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token			formData	string						true	"The token to introspect"
//	@Param			token_type_hint	formData	string						false	"Hint about token type (currently only 'access_token' is supported)"	Enums(access_token)
//	@Param			origin			formData	string						false	"Observed caller address for origin-bound tokens"
//	@Success		200				{object}	service.IntrospectionResult	"Token introspection result"
//	@Failure		400				{object}	oauthx.Error				"error, error_description"
//	@Failure		401				{object}	oauthx.Error				"error, error_description"
//	@Header			200				{string}	Cache-Control				"no-store"
//	@Header			200				{string}	Pragma						"no-cache"
//	@Router			/v1/oauth2/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	if token == "" {
		oauthx.ErrInvalidRequest.WithDescription("token is required").WriteTo(w)
		return
	}

	// 3. Only access tokens live in this codec. An unsupported hint is an
	// inactive answer, not an error, per RFC 7662.
	result := service.IntrospectionResult{}
	if hint := r.Form.Get("token_type_hint"); hint == "" || hint == "access_token" {
		result = h.Authority.Introspect(token, strings.TrimSpace(r.Form.Get("origin")))
	}

	// 4. Inactive responses carry the single active field and nothing else
	httpx.WriteJSON(w, http.StatusOK, result)
}
