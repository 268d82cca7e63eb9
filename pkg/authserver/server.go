// Package authserver implements the RFC 6749 authorization and token
// endpoints as a protocol engine over a pluggable Provider. The engine
// parses the wire, dispatches on response_type and grant_type and shapes
// every response; providers decide what the grants actually do.
package authserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// Server is the protocol engine. It holds read-only configuration after
// startup: register all extension grants before serving.
type Server[C any] struct {
	Provider Provider[C]
	Logger   *slog.Logger

	grants map[string]ExtensionGrant
}

// RegisterGrant adds an extension grant_type to the token endpoint dispatch
// table. Built-in grant types cannot be shadowed.
func (s *Server[C]) RegisterGrant(name string, fn ExtensionGrant) {
	if s.grants == nil {
		s.grants = make(map[string]ExtensionGrant)
	}
	s.grants[name] = fn
}

// HandleAuthorize serves the authorization endpoint. Parameters arrive via
// query or form body; dispatch keys on response_type.
func (s *Server[C]) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	// 1. Parse parameters from the query string or form body
	if err := r.ParseForm(); err != nil {
		oauthx.ErrInvalidRequest.WithDescription("malformed request body").WriteTo(w)
		return
	}

	// 2. Pick up state first so every failure can carry it back
	state := strings.TrimSpace(r.Form.Get("state"))

	// 3. Dispatch on response_type
	responseType := strings.TrimSpace(r.Form.Get("response_type"))
	switch responseType {
	case "code":
		s.authorizeCode(w, r, state)
	case "token":
		s.authorizeImplicit(w, r, state)
	default:
		oauthx.ErrInvalidRequest.
			WithDescription(fmt.Sprintf("unsupported response_type %q", responseType)).
			WithState(state).
			WriteTo(w)
	}
}

func (s *Server[C]) authorizeCode(w http.ResponseWriter, r *http.Request, state string) {
	req, ok := s.parseAuthorizeRequest(w, r, state)
	if !ok {
		return
	}

	if err := s.Provider.AuthorizeCode(w, r, req); err != nil {
		s.writeError(w, err, state)
	}
}

func (s *Server[C]) authorizeImplicit(w http.ResponseWriter, r *http.Request, state string) {
	req, ok := s.parseAuthorizeRequest(w, r, state)
	if !ok {
		return
	}

	// Validate the redirect target before minting anything
	target, err := url.Parse(req.RedirectURI)
	if err != nil {
		oauthx.ErrInvalidRequest.
			WithDescription("malformed redirect_uri").
			WithState(state).
			WriteTo(w)
		return
	}

	resp, err := s.Provider.ImplicitGrant(r.Context(), req)
	if err != nil {
		s.writeError(w, err, state)
		return
	}

	http.Redirect(w, r, fragmentRedirect(target, resp, state), http.StatusFound)
}

// parseAuthorizeRequest extracts and validates the parameters shared by both
// authorization branches. On failure it writes the error and reports false.
func (s *Server[C]) parseAuthorizeRequest(w http.ResponseWriter, r *http.Request, state string) (AuthorizeRequest[C], bool) {
	var req AuthorizeRequest[C]

	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	if clientID == "" {
		oauthx.ErrInvalidRequest.
			WithDescription("client_id is required").
			WithState(state).
			WriteTo(w)
		return req, false
	}

	client, err := s.Provider.FindClient(r.Context(), clientID)
	if err != nil {
		s.writeError(w, err, state)
		return req, false
	}

	redirectURI := strings.TrimSpace(r.Form.Get("redirect_uri"))
	if redirectURI == "" {
		oauthx.ErrInvalidRequest.
			WithDescription("redirect_uri is required").
			WithState(state).
			WriteTo(w)
		return req, false
	}

	req = AuthorizeRequest[C]{
		Client:      client,
		ClientID:    clientID,
		RedirectURI: redirectURI,
		State:       state,
		Scope:       httpx.ParseSpaceDelimitedFields(r.Form.Get("scope")),
	}
	return req, true
}

// fragmentRedirect assembles the implicit-grant redirect: the token travels
// in the URI fragment, never the query, so it stays out of server logs.
func fragmentRedirect(target *url.URL, resp oauthx.TokenResponse, state string) string {
	frag := url.Values{}
	frag.Set("access_token", resp.AccessToken)
	frag.Set("token_type", "bearer")
	frag.Set("state", state)
	if resp.ExpiresIn > 0 {
		frag.Set("expires_in", strconv.FormatInt(resp.ExpiresIn, 10))
	}
	if len(resp.Scope) > 0 {
		frag.Set("scope", oauthx.JoinScope(resp.Scope))
	}

	// Drop any fragment the registered URI carried and append our own
	target.Fragment = ""
	target.RawFragment = ""
	return target.String() + "#" + frag.Encode()
}

// writeError answers a hook failure: protocol errors pass through with the
// best-known state, anything else becomes an opaque server_error with the
// cause logged.
func (s *Server[C]) writeError(w http.ResponseWriter, err error, state string) {
	e := oauthx.Wrap(err, state)
	if e.Status >= http.StatusInternalServerError {
		s.log().Error("authorization server failure", "err", err)
	}
	e.WriteTo(w)
}

func (s *Server[C]) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slogx.Discard()
}
