// Package guard orchestrates named authentication strategies over bearer
// tokens. A Guard issues a token once a strategy accepts a request, carries
// the resulting session through cookie, header or query transports, and gates
// protected routes on a valid session.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

const (
	// DefaultLifespan applies when Guard.Lifespan is left zero.
	DefaultLifespan = 24 * time.Hour

	// DefaultCookieName applies when Guard.CookieName is left empty.
	DefaultCookieName = "token"

	// queryParam is the fixed query parameter checked by the query transport.
	queryParam = "token"
)

// Guard wires strategies, a token codec and a principal resolver into HTTP
// middleware. The zero value is not usable: Codec, Serialize and Resolve are
// required.
type Guard[U any] struct {
	// Codec signs and verifies session tokens.
	Codec *bearer.Codec

	// Serialize reduces a principal to the stable subject identifier stored
	// in the token.
	Serialize func(principal U) (string, error)

	// Resolve loads the principal for a subject identifier on each gated
	// request. Returning an error rejects the session.
	Resolve func(ctx context.Context, subject string) (U, error)

	// Lifespan of issued tokens. Zero means DefaultLifespan and
	// bearer.Unbounded disables expiry.
	Lifespan time.Duration

	// BindOrigin issues tokens bound to the caller's remote IP and enforces
	// the origin check on every gated request.
	BindOrigin bool

	// CookieName overrides the session cookie name.
	CookieName string

	// DisableHeader, DisableCookie and DisableQuery switch off individual
	// token transports. The cookie switch also stops the Guard from setting
	// cookies on login.
	DisableHeader bool
	DisableCookie bool
	DisableQuery  bool

	// OnIssued runs after every successful token issue. Returning true
	// signals the callback wrote the response and processing stops.
	OnIssued func(w http.ResponseWriter, r *http.Request, token string, principal U) bool

	// FailureHandler writes the response for a rejected credential. The
	// default responds 401 not_authenticated.
	FailureHandler func(w http.ResponseWriter, r *http.Request, err error)

	Logger *slog.Logger

	strategies map[string]Strategy[U]
	order      []string
}

// Options shape the response of an authenticate handler after a strategy
// succeeds.
type Options[U any] struct {
	// SuccessRedirect issues a 302 to this location instead of a body.
	SuccessRedirect string

	// Respond writes a custom success response. Ignored when SuccessRedirect
	// is set.
	Respond func(w http.ResponseWriter, r *http.Request, token string, principal U)
}

// LogoutOptions shape the response of a Logout handler.
type LogoutOptions struct {
	SuccessRedirect string
	FailureRedirect string
}

// Use registers a strategy under a name. Registration order is preserved for
// logout iteration; re-using a name replaces the strategy in place.
func (g *Guard[U]) Use(name string, s Strategy[U]) {
	if g.strategies == nil {
		g.strategies = make(map[string]Strategy[U])
	}
	if _, exists := g.strategies[name]; !exists {
		g.order = append(g.order, name)
	}
	g.strategies[name] = s
}

// Login establishes a session from a previously issued token: the token is
// re-serialized as-is, the principal resolved and the session cookie set.
func (g *Guard[U]) Login(w http.ResponseWriter, r *http.Request, tok bearer.Token) (U, string, error) {
	var zero U

	compact, err := g.Codec.Encode(tok)
	if err != nil {
		return zero, "", fmt.Errorf("guard: encode token: %w", err)
	}

	principal, err := g.Resolve(r.Context(), tok.Subject)
	if err != nil {
		return zero, "", fmt.Errorf("guard: resolve subject: %w", err)
	}

	g.setCookie(w, compact)
	return principal, compact, nil
}

// LoginSubject establishes a session for a subject identifier by issuing a
// fresh token, resolving the principal and setting the session cookie.
func (g *Guard[U]) LoginSubject(w http.ResponseWriter, r *http.Request, subject string) (U, string, error) {
	var zero U

	_, compact, err := g.issue(r, subject)
	if err != nil {
		return zero, "", err
	}

	principal, err := g.Resolve(r.Context(), subject)
	if err != nil {
		return zero, "", fmt.Errorf("guard: resolve subject: %w", err)
	}

	g.setCookie(w, compact)
	return principal, compact, nil
}

func (g *Guard[U]) strategy(name string) Strategy[U] {
	s, ok := g.strategies[name]
	if !ok {
		// An unknown strategy is a wiring mistake, not a runtime condition
		panic(fmt.Sprintf("guard: unknown strategy %q", name))
	}
	return s
}

func (g *Guard[U]) lifespan() time.Duration {
	if g.Lifespan == 0 {
		return DefaultLifespan
	}
	return g.Lifespan
}

func (g *Guard[U]) cookieName() string {
	if g.CookieName == "" {
		return DefaultCookieName
	}
	return g.CookieName
}

func (g *Guard[U]) log() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slogx.Discard()
}

// issue mints and signs a token for subject, bound to the caller's remote IP
// when BindOrigin is on.
func (g *Guard[U]) issue(r *http.Request, subject string) (bearer.Token, string, error) {
	origin := ""
	if g.BindOrigin {
		origin = httpx.GetRemoteIP(r)
	}

	tok := g.Codec.Issue(subject, g.lifespan(), origin)
	compact, err := g.Codec.Encode(tok)
	if err != nil {
		return bearer.Token{}, "", fmt.Errorf("guard: encode token: %w", err)
	}
	return tok, compact, nil
}

// extract pulls the compact token off the request, checking the Authorization
// header, the session cookie and the query parameter in that order.
func (g *Guard[U]) extract(r *http.Request) (string, bool) {
	if !g.DisableHeader {
		if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
			if raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")); raw != "" {
				return raw, true
			}
		}
	}

	if !g.DisableCookie {
		if c, err := r.Cookie(g.cookieName()); err == nil && c.Value != "" {
			return c.Value, true
		}
	}

	if !g.DisableQuery {
		if raw := r.URL.Query().Get(queryParam); raw != "" {
			return raw, true
		}
	}

	return "", false
}

// observedOrigin returns the remote IP to verify tokens against, or "" when
// origin binding is off so the check is skipped.
func (g *Guard[U]) observedOrigin(r *http.Request) string {
	if !g.BindOrigin {
		return ""
	}
	return httpx.GetRemoteIP(r)
}

func (g *Guard[U]) setCookie(w http.ResponseWriter, compact string) {
	if g.DisableCookie {
		return
	}

	cookie := &http.Cookie{
		Name:     g.cookieName(),
		Value:    compact,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ls := g.lifespan(); ls > 0 {
		cookie.MaxAge = int(ls.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (g *Guard[U]) clearCookie(w http.ResponseWriter) {
	if g.DisableCookie {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// failCredential routes a rejected credential through the configured
// FailureHandler.
func (g *Guard[U]) failCredential(w http.ResponseWriter, r *http.Request, cause error) {
	if g.FailureHandler != nil {
		g.FailureHandler(w, r, cause)
		return
	}
	writeVerdict(w, oauthx.ErrNotAuthenticated)
}

// verdictError maps a token validation failure onto its wire error.
func verdictError(err error) *oauthx.Error {
	switch {
	case errors.Is(err, bearer.ErrMalformed):
		return oauthx.ErrMalformedToken
	case errors.Is(err, bearer.ErrOriginMismatch):
		return oauthx.ErrForbiddenOrigin
	case errors.Is(err, bearer.ErrExpired):
		return oauthx.ErrTokenExpired
	default:
		return oauthx.ErrNotAuthenticated
	}
}

// writeVerdict emits a token verdict, with the RFC 6750 challenge header on
// unauthorized responses.
func writeVerdict(w http.ResponseWriter, e *oauthx.Error) {
	if e.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	e.WriteTo(w)
}
