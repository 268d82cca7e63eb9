package guard

import (
	"net/http"

	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
)

// Middleware runs the named strategy and, on success, issues a session token
// before handing the enriched request to the next handler. The strategy must
// already be registered; an unknown name panics at wiring time.
func (g *Guard[U]) Middleware(name string, opts Options[U]) httpx.Middleware {
	s := g.strategy(name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := g.log()

			out, err := s.Authenticate(w, r)
			if err != nil {
				log.Error("strategy failed", "strategy", name, "err", err)
				oauthx.Wrap(err, "").WriteTo(w)
				return
			}

			switch out.kind {
			case outcomeHandled:
				return
			case outcomeFailure:
				log.Warn("credential rejected", "strategy", name, "err", out.cause)
				g.failCredential(w, r, out.cause)
				return
			}

			principal := out.principal
			subject, err := g.Serialize(principal)
			if err != nil {
				log.Error("serialize principal failed", "strategy", name, "err", err)
				oauthx.Wrap(err, "").WriteTo(w)
				return
			}

			tok, compact, err := g.issue(r, subject)
			if err != nil {
				log.Error("token issue failed", "strategy", name, "err", err)
				oauthx.Wrap(err, "").WriteTo(w)
				return
			}
			log.Info("session issued", "strategy", name, "sub", subject)

			if g.OnIssued != nil && g.OnIssued(w, r, compact, principal) {
				return
			}

			r = r.WithContext(withSession(r.Context(), principal, tok, compact))
			g.setCookie(w, compact)

			if opts.SuccessRedirect != "" {
				http.Redirect(w, r, opts.SuccessRedirect, http.StatusFound)
				return
			}
			if opts.Respond != nil {
				opts.Respond(w, r, compact, principal)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate is the terminal form of Middleware: on success it responds
// with the principal and token, or 204 when the client does not accept JSON.
func (g *Guard[U]) Authenticate(name string, opts Options[U]) http.Handler {
	return g.Middleware(name, opts)(http.HandlerFunc(g.respondSession))
}

// Require gates a route on a valid session token. The token is extracted,
// decoded and validated (origin before expiry), the principal resolved and
// both attached to the request context. It never revives a token.
func (g *Guard[U]) Require() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := g.log()

			compact, ok := g.extract(r)
			if !ok {
				writeVerdict(w, oauthx.ErrNotAuthenticated)
				return
			}

			tok, err := g.Codec.Decode(compact)
			if err != nil {
				log.Warn("token rejected", "err", err)
				writeVerdict(w, verdictError(err))
				return
			}

			if err := tok.Validate(g.observedOrigin(r), g.Codec.Now()); err != nil {
				log.Warn("token rejected", "sub", tok.Subject, "err", err)
				writeVerdict(w, verdictError(err))
				return
			}

			principal, err := g.Resolve(r.Context(), tok.Subject)
			if err != nil {
				log.Warn("subject unresolved", "sub", tok.Subject, "err", err)
				writeVerdict(w, oauthx.ErrNotAuthenticated)
				return
			}

			r = r.WithContext(withSession(r.Context(), principal, tok, compact))
			next.ServeHTTP(w, r)
		})
	}
}

// Optional performs the same extraction and validation as Require but lets
// the request through anonymously on any failure. Handlers that must rank
// their own validations above authentication sit behind this.
func (g *Guard[U]) Optional() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			compact, ok := g.extract(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			tok, err := g.Codec.Decode(compact)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if err := tok.Validate(g.observedOrigin(r), g.Codec.Now()); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := g.Resolve(r.Context(), tok.Subject)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			r = r.WithContext(withSession(r.Context(), principal, tok, compact))
			next.ServeHTTP(w, r)
		})
	}
}

// Revive renews an expired session token. The presented token keeps its
// subject, lifespan and origin; only the issue time resets. The origin check
// still applies, expiry deliberately does not. This is the sole entry point
// that extends a session.
func (g *Guard[U]) Revive() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := g.log()

		compact, ok := g.extract(r)
		if !ok {
			writeVerdict(w, oauthx.ErrNotAuthenticated)
			return
		}

		tok, err := g.Codec.Decode(compact)
		if err != nil {
			log.Warn("revival rejected", "err", err)
			writeVerdict(w, verdictError(err))
			return
		}

		if err := tok.VerifyOrigin(g.observedOrigin(r)); err != nil {
			log.Warn("revival rejected", "sub", tok.Subject, "err", err)
			writeVerdict(w, verdictError(err))
			return
		}

		renewed := g.Codec.Issue(tok.Subject, tok.Lifespan, tok.Origin)
		compact, err = g.Codec.Encode(renewed)
		if err != nil {
			log.Error("revival encode failed", "sub", tok.Subject, "err", err)
			oauthx.Wrap(err, "").WriteTo(w)
			return
		}

		principal, err := g.Resolve(r.Context(), renewed.Subject)
		if err != nil {
			log.Warn("subject unresolved", "sub", renewed.Subject, "err", err)
			writeVerdict(w, oauthx.ErrNotAuthenticated)
			return
		}
		log.Info("session revived", "sub", renewed.Subject)

		g.setCookie(w, compact)
		r = r.WithContext(withSession(r.Context(), principal, renewed, compact))
		g.respondSession(w, r)
	})
}

// Logout asks every registered strategy, in registration order, to tear down
// the session. The first refusal stops the chain and keeps the cookie; when
// all agree the cookie is cleared.
func (g *Guard[U]) Logout(opts LogoutOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := g.log()

		for _, name := range g.order {
			ls, ok := g.strategies[name].(LogoutStrategy)
			if !ok {
				continue
			}
			if err := ls.Logout(w, r); err != nil {
				log.Warn("logout refused", "strategy", name, "err", err)
				if opts.FailureRedirect != "" {
					http.Redirect(w, r, opts.FailureRedirect, http.StatusFound)
					return
				}
				oauthx.Wrap(err, "").WriteTo(w)
				return
			}
		}

		g.clearCookie(w)
		if opts.SuccessRedirect != "" {
			http.Redirect(w, r, opts.SuccessRedirect, http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// respondSession writes the default success body for login and revival.
func (g *Guard[U]) respondSession(w http.ResponseWriter, r *http.Request) {
	if !httpx.AcceptsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	principal, _ := PrincipalFrom[U](r.Context())
	compact, _ := CompactFrom(r.Context())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"data":  principal,
		"token": compact,
	})
}
