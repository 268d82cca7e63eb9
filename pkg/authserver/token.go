package authserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
)

// HandleToken serves the token endpoint. Accepts
// application/x-www-form-urlencoded per the RFC 6749 framework and keys the
// dispatch on grant_type: the four built-in grants first, then the extension
// table, otherwise invalid_request.
func (s *Server[C]) HandleToken(w http.ResponseWriter, r *http.Request) {
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
	state := strings.TrimSpace(r.Form.Get("state"))

	// 3. Resolve the dispatch before anything touches client credentials
	grantType := strings.TrimSpace(r.Form.Get("grant_type"))
	switch grantType {
	case "authorization_code":
		s.tokenAuthorizationCode(w, r, r.Form, state)
	case "refresh_token":
		s.tokenRefresh(w, r, r.Form, state)
	case "password":
		s.tokenPassword(w, r, r.Form, state)
	case "client_credentials":
		s.tokenClientCredentials(w, r, state)
	default:
		if fn, ok := s.grants[grantType]; ok {
			s.tokenExtension(w, r, state, fn)
			return
		}
		oauthx.ErrInvalidRequest.
			WithDescription(fmt.Sprintf("unsupported grant_type %q", grantType)).
			WithState(state).
			WriteTo(w)
	}
}

// verifyBasicClient authenticates the caller from the HTTP Basic header.
// Every built-in grant except authorization_code requires it.
func (s *Server[C]) verifyBasicClient(r *http.Request) (C, error) {
	var zero C

	clientID, secret, ok := r.BasicAuth()
	if !ok || clientID == "" {
		return zero, oauthx.ErrUnauthorizedClient.WithDescription("client authentication required")
	}

	client, err := s.Provider.FindClient(r.Context(), clientID)
	if err != nil {
		return zero, err
	}
	if err := s.Provider.VerifyClient(r.Context(), client, secret); err != nil {
		return zero, err
	}
	return client, nil
}

func (s *Server[C]) tokenAuthorizationCode(w http.ResponseWriter, r *http.Request, form url.Values, state string) {
	code := strings.TrimSpace(form.Get("code"))
	redirectURI := strings.TrimSpace(form.Get("redirect_uri"))
	if code == "" || redirectURI == "" {
		oauthx.ErrInvalidRequest.
			WithDescription("code and redirect_uri are required").
			WithState(state).
			WriteTo(w)
		return
	}

	resp, err := s.Provider.ExchangeCode(r.Context(), code, redirectURI)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	oauthx.WriteToken(w, resp)
}

func (s *Server[C]) tokenRefresh(w http.ResponseWriter, r *http.Request, form url.Values, state string) {
	client, err := s.verifyBasicClient(r)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	refresh := form.Get("refresh_token")
	if refresh == "" {
		oauthx.ErrInvalidRequest.
			WithDescription("refresh_token is required").
			WithState(state).
			WriteTo(w)
		return
	}
	scope := httpx.ParseSpaceDelimitedFields(form.Get("scope"))

	resp, err := s.Provider.RefreshGrant(r.Context(), client, refresh, scope)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	oauthx.WriteToken(w, resp)
}

func (s *Server[C]) tokenPassword(w http.ResponseWriter, r *http.Request, form url.Values, state string) {
	client, err := s.verifyBasicClient(r)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	username := strings.TrimSpace(form.Get("username"))
	password := form.Get("password")
	if username == "" || password == "" {
		oauthx.ErrInvalidRequest.
			WithDescription("username and password are required").
			WithState(state).
			WriteTo(w)
		return
	}
	scope := httpx.ParseSpaceDelimitedFields(form.Get("scope"))

	resp, err := s.Provider.PasswordGrant(r.Context(), client, username, password, scope)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	oauthx.WriteToken(w, resp)
}

func (s *Server[C]) tokenClientCredentials(w http.ResponseWriter, r *http.Request, state string) {
	client, err := s.verifyBasicClient(r)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	resp, err := s.Provider.ClientCredentialsGrant(r.Context(), client)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	// Tokens minted for the client itself are not refreshable
	resp.RefreshToken = ""
	oauthx.WriteToken(w, resp)
}

func (s *Server[C]) tokenExtension(w http.ResponseWriter, r *http.Request, state string, fn ExtensionGrant) {
	resp, err := fn(w, r)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	oauthx.WriteToken(w, resp)
}
