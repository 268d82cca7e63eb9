package guard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var testUsers = map[string]testUser{
	"u1": {ID: "u1", Name: "alice"},
	"u2": {ID: "u2", Name: "bob"},
}

type stubStrategy struct {
	authenticate func(w http.ResponseWriter, r *http.Request) (guard.Outcome[testUser], error)
}

func (s *stubStrategy) Authenticate(w http.ResponseWriter, r *http.Request) (guard.Outcome[testUser], error) {
	return s.authenticate(w, r)
}

type stubLogoutStrategy struct {
	stubStrategy

	logout func(w http.ResponseWriter, r *http.Request) error
}

func (s *stubLogoutStrategy) Logout(w http.ResponseWriter, r *http.Request) error {
	return s.logout(w, r)
}

func newGuard(t *testing.T) *guard.Guard[testUser] {
	t.Helper()

	return &guard.Guard[testUser]{
		Codec:     bearer.NewCodec([]byte("guard-test-secret-0123456789abcdef")),
		Serialize: func(u testUser) (string, error) { return u.ID, nil },
		Resolve: func(_ context.Context, subject string) (testUser, error) {
			u, ok := testUsers[subject]
			if !ok {
				return testUser{}, fmt.Errorf("no such user %q", subject)
			}
			return u, nil
		},
	}
}

func successStrategy(u testUser) *stubStrategy {
	return &stubStrategy{
		authenticate: func(http.ResponseWriter, *http.Request) (guard.Outcome[testUser], error) {
			return guard.Success(u), nil
		},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestMiddlewareSuccess(t *testing.T) {
	g := newGuard(t)
	g.Use("password", successStrategy(testUsers["u1"]))

	var seen testUser
	var sawToken, sawCompact bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = guard.PrincipalFrom[testUser](r.Context())
		_, sawToken = guard.TokenFrom(r.Context())
		_, sawCompact = guard.CompactFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	g.Middleware("password", guard.Options[testUser]{})(next).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, testUsers["u1"], seen)
	require.True(t, sawToken)
	require.True(t, sawCompact)

	cookie := sessionCookie(t, rec, "token")
	require.NotNil(t, cookie, "session cookie should be set")
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, int(guard.DefaultLifespan.Seconds()), cookie.MaxAge)

	tok, err := g.Codec.Decode(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "u1", tok.Subject)
}

func TestMiddlewareFailure(t *testing.T) {
	g := newGuard(t)
	g.Use("password", &stubStrategy{
		authenticate: func(http.ResponseWriter, *http.Request) (guard.Outcome[testUser], error) {
			return guard.Failure[testUser](errors.New("bad password")), nil
		},
	})

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "not_authenticated", decodeError(t, rec))
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	require.Nil(t, sessionCookie(t, rec, "token"))
}

func TestMiddlewareFailureHandlerOverride(t *testing.T) {
	g := newGuard(t)
	g.FailureHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		http.Redirect(w, r, "/login?retry=1", http.StatusFound)
	}
	g.Use("password", &stubStrategy{
		authenticate: func(http.ResponseWriter, *http.Request) (guard.Outcome[testUser], error) {
			return guard.Failure[testUser](errors.New("bad password")), nil
		},
	})

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?retry=1", rec.Header().Get("Location"))
}

func TestMiddlewareHandled(t *testing.T) {
	g := newGuard(t)
	g.Use("upstream", &stubStrategy{
		authenticate: func(w http.ResponseWriter, r *http.Request) (guard.Outcome[testUser], error) {
			http.Redirect(w, r, "https://idp.example/authorize", http.StatusFound)
			return guard.Handled[testUser](), nil
		},
	})

	nextCalled := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { nextCalled = true })

	rec := httptest.NewRecorder()
	g.Middleware("upstream", guard.Options[testUser]{})(next).
		ServeHTTP(rec, httptest.NewRequest("GET", "/login/upstream", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.False(t, nextCalled)
	require.Nil(t, sessionCookie(t, rec, "token"))
}

func TestMiddlewareStrategyError(t *testing.T) {
	g := newGuard(t)
	g.Use("password", &stubStrategy{
		authenticate: func(http.ResponseWriter, *http.Request) (guard.Outcome[testUser], error) {
			return guard.Outcome[testUser]{}, errors.New("store down")
		},
	})

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "server_error", decodeError(t, rec))
}

func TestMiddlewareUnknownStrategyPanics(t *testing.T) {
	g := newGuard(t)

	require.Panics(t, func() {
		g.Middleware("nope", guard.Options[testUser]{})
	})
}

func TestMiddlewareSuccessRedirect(t *testing.T) {
	g := newGuard(t)
	g.Use("password", successStrategy(testUsers["u1"]))

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{SuccessRedirect: "/home"}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/home", rec.Header().Get("Location"))
	require.NotNil(t, sessionCookie(t, rec, "token"))
}

func TestMiddlewareCustomRespond(t *testing.T) {
	g := newGuard(t)
	g.Use("password", successStrategy(testUsers["u2"]))

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{
		Respond: func(w http.ResponseWriter, r *http.Request, token string, principal testUser) {
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, "%s:%s", principal.Name, token)
		},
	}).ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "bob:")
}

func TestOnIssuedShortCircuit(t *testing.T) {
	g := newGuard(t)
	g.OnIssued = func(w http.ResponseWriter, r *http.Request, token string, principal testUser) bool {
		w.WriteHeader(http.StatusAccepted)
		return true
	}
	g.Use("password", successStrategy(testUsers["u1"]))

	rec := httptest.NewRecorder()
	g.Authenticate("password", guard.Options[testUser]{}).
		ServeHTTP(rec, httptest.NewRequest("POST", "/login", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Nil(t, sessionCookie(t, rec, "token"), "short-circuit runs before the cookie is set")
}

func TestAuthenticateDefaultResponder(t *testing.T) {
	g := newGuard(t)
	g.Use("password", successStrategy(testUsers["u1"]))

	t.Run("json accepted", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("Accept", "application/json")

		rec := httptest.NewRecorder()
		g.Authenticate("password", guard.Options[testUser]{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data  testUser `json:"data"`
			Token string   `json:"token"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, testUsers["u1"], body.Data)

		tok, err := g.Codec.Decode(body.Token)
		require.NoError(t, err)
		require.Equal(t, "u1", tok.Subject)
	})

	t.Run("json refused", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("Accept", "text/html")

		rec := httptest.NewRecorder()
		g.Authenticate("password", guard.Options[testUser]{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, sessionCookie(t, rec, "token"), "cookie still carries the session")
	})
}

func protectedProbe(g *guard.Guard[testUser]) (http.Handler, *testUser) {
	var seen testUser
	h := g.Require()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = guard.PrincipalFrom[testUser](r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestRequire(t *testing.T) {
	g := newGuard(t)
	g.BindOrigin = true

	issueAt := func(subject string, lifespan time.Duration, origin string, at time.Time) string {
		g.Codec.Now = func() time.Time { return at }
		defer func() { g.Codec.Now = time.Now }()

		compact, err := g.Codec.Encode(g.Codec.Issue(subject, lifespan, origin))
		require.NoError(t, err)
		return compact
	}

	now := time.Now()

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantError  string
	}{
		{
			name:       "no token",
			token:      "",
			wantStatus: http.StatusUnauthorized,
			wantError:  "not_authenticated",
		},
		{
			name:       "valid token",
			token:      issueAt("u1", time.Hour, "192.0.2.1", now),
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed token",
			token:      "not-a-token",
			wantStatus: http.StatusBadRequest,
			wantError:  "malformed_token",
		},
		{
			name:       "expired token",
			token:      issueAt("u1", time.Hour, "192.0.2.1", now.Add(-2*time.Hour)),
			wantStatus: http.StatusForbidden,
			wantError:  "token_expired",
		},
		{
			name:       "wrong origin",
			token:      issueAt("u1", time.Hour, "203.0.113.9", now),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden_origin",
		},
		{
			// Both checks would fail; the origin verdict must win
			name:       "wrong origin and expired",
			token:      issueAt("u1", time.Hour, "203.0.113.9", now.Add(-2*time.Hour)),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden_origin",
		},
		{
			name:       "unresolvable subject",
			token:      issueAt("ghost", time.Hour, "192.0.2.1", now),
			wantStatus: http.StatusUnauthorized,
			wantError:  "not_authenticated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := protectedProbe(g)

			// httptest sets RemoteAddr to 192.0.2.1:1234
			req := httptest.NewRequest("GET", "/v1/whoami", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				require.Equal(t, tt.wantError, decodeError(t, rec))
				return
			}
			require.Equal(t, testUsers["u1"], *seen)
		})
	}
}

func TestRequireTransports(t *testing.T) {
	g := newGuard(t)

	compact, err := g.Codec.Encode(g.Codec.Issue("u1", time.Hour, ""))
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		h, seen := protectedProbe(g)
		req := httptest.NewRequest("GET", "/v1/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: compact})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, testUsers["u1"], *seen)
	})

	t.Run("query", func(t *testing.T) {
		h, seen := protectedProbe(g)
		req := httptest.NewRequest("GET", "/v1/whoami?token="+compact, nil)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, testUsers["u1"], *seen)
	})

	t.Run("header beats cookie", func(t *testing.T) {
		other, err := g.Codec.Encode(g.Codec.Issue("u2", time.Hour, ""))
		require.NoError(t, err)

		h, seen := protectedProbe(g)
		req := httptest.NewRequest("GET", "/v1/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+compact)
		req.AddCookie(&http.Cookie{Name: "token", Value: other})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, testUsers["u1"], *seen)
	})

	t.Run("disabled transports are ignored", func(t *testing.T) {
		strict := newGuard(t)
		strict.DisableCookie = true
		strict.DisableQuery = true

		h, _ := protectedProbe(strict)
		req := httptest.NewRequest("GET", "/v1/whoami?token="+compact, nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: compact})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptional(t *testing.T) {
	g := newGuard(t)

	var seen testUser
	var authed bool
	h := g.Optional()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, authed = guard.PrincipalFrom[testUser](r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("anonymous on bad token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/oauth2/authorize", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, authed)
	})

	t.Run("anonymous on missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/oauth2/authorize", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.False(t, authed)
	})

	t.Run("principal on valid token", func(t *testing.T) {
		compact, err := g.Codec.Encode(g.Codec.Issue("u2", time.Hour, ""))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/v1/oauth2/authorize", nil)
		req.Header.Set("Authorization", "Bearer "+compact)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, authed)
		require.Equal(t, testUsers["u2"], seen)
	})
}

func TestRevive(t *testing.T) {
	g := newGuard(t)
	g.BindOrigin = true

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	g.Codec.Now = func() time.Time { return issued }
	stale, err := g.Codec.Encode(g.Codec.Issue("u1", time.Minute, "192.0.2.1"))
	require.NoError(t, err)

	// Two hours later the token is long expired
	g.Codec.Now = func() time.Time { return issued.Add(2 * time.Hour) }

	t.Run("renews expired token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/session/revive", nil)
		req.Header.Set("Authorization", "Bearer "+stale)
		req.Header.Set("Accept", "application/json")

		rec := httptest.NewRecorder()
		g.Revive().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data  testUser `json:"data"`
			Token string   `json:"token"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, testUsers["u1"], body.Data)

		renewed, err := g.Codec.Decode(body.Token)
		require.NoError(t, err)
		require.Equal(t, "u1", renewed.Subject)
		require.Equal(t, time.Minute, renewed.Lifespan)
		require.Equal(t, "192.0.2.1", renewed.Origin)
		require.True(t, renewed.IssuedAt.After(issued), "revival must reset the issue time forward")

		cookie := sessionCookie(t, rec, "token")
		require.NotNil(t, cookie)
		require.Equal(t, body.Token, cookie.Value)
	})

	t.Run("origin still enforced", func(t *testing.T) {
		foreign, err := g.Codec.Encode(g.Codec.Issue("u1", time.Minute, "203.0.113.9"))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/v1/session/revive", nil)
		req.Header.Set("Authorization", "Bearer "+foreign)

		rec := httptest.NewRecorder()
		g.Revive().ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "forbidden_origin", decodeError(t, rec))
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/session/revive", nil)
		req.Header.Set("Authorization", "Bearer junk")

		rec := httptest.NewRecorder()
		g.Revive().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "malformed_token", decodeError(t, rec))
	})

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		g.Revive().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/session/revive", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	agree := &stubLogoutStrategy{logout: func(http.ResponseWriter, *http.Request) error { return nil }}
	refuse := &stubLogoutStrategy{logout: func(http.ResponseWriter, *http.Request) error {
		return errors.New("upstream session still active")
	}}

	t.Run("all agree clears cookie", func(t *testing.T) {
		g := newGuard(t)
		g.Use("a", agree)
		g.Use("b", successStrategy(testUsers["u1"])) // no LogoutStrategy, deemed to agree

		rec := httptest.NewRecorder()
		g.Logout(guard.LogoutOptions{}).ServeHTTP(rec, httptest.NewRequest("POST", "/v1/logout", nil))

		require.Equal(t, http.StatusNoContent, rec.Code)

		cookie := sessionCookie(t, rec, "token")
		require.NotNil(t, cookie)
		require.Equal(t, -1, cookie.MaxAge)
		require.Empty(t, cookie.Value)
	})

	t.Run("success redirect", func(t *testing.T) {
		g := newGuard(t)
		g.Use("a", agree)

		rec := httptest.NewRecorder()
		g.Logout(guard.LogoutOptions{SuccessRedirect: "/bye"}).
			ServeHTTP(rec, httptest.NewRequest("POST", "/v1/logout", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/bye", rec.Header().Get("Location"))
	})

	t.Run("refusal keeps cookie", func(t *testing.T) {
		g := newGuard(t)
		g.Use("a", refuse)
		g.Use("b", agree)

		rec := httptest.NewRecorder()
		g.Logout(guard.LogoutOptions{}).ServeHTTP(rec, httptest.NewRequest("POST", "/v1/logout", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "server_error", decodeError(t, rec))
		require.Nil(t, sessionCookie(t, rec, "token"))
	})

	t.Run("failure redirect", func(t *testing.T) {
		g := newGuard(t)
		g.Use("a", refuse)

		rec := httptest.NewRecorder()
		g.Logout(guard.LogoutOptions{FailureRedirect: "/error"}).
			ServeHTTP(rec, httptest.NewRequest("POST", "/v1/logout", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/error", rec.Header().Get("Location"))
	})
}

func TestLoginSubject(t *testing.T) {
	g := newGuard(t)
	g.BindOrigin = true

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/login", nil)

	principal, compact, err := g.LoginSubject(rec, req, "u1")
	require.NoError(t, err)
	require.Equal(t, testUsers["u1"], principal)

	tok, err := g.Codec.Decode(compact)
	require.NoError(t, err)
	require.Equal(t, "u1", tok.Subject)
	require.Equal(t, "192.0.2.1", tok.Origin)

	cookie := sessionCookie(t, rec, "token")
	require.NotNil(t, cookie)
	require.Equal(t, compact, cookie.Value)
}

func TestLoginPreservesToken(t *testing.T) {
	g := newGuard(t)

	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	g.Codec.Now = func() time.Time { return issued }
	original := g.Codec.Issue("u2", bearer.Unbounded, "")
	g.Codec.Now = time.Now

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/login", nil)

	principal, compact, err := g.Login(rec, req, original)
	require.NoError(t, err)
	require.Equal(t, testUsers["u2"], principal)

	tok, err := g.Codec.Decode(compact)
	require.NoError(t, err)
	require.Equal(t, original.IssuedAt, tok.IssuedAt, "login must not reset the issue time")
	require.Equal(t, bearer.Unbounded, tok.Lifespan)
}

func TestLoginUnresolvableSubject(t *testing.T) {
	g := newGuard(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/login", nil)

	_, _, err := g.LoginSubject(rec, req, "ghost")
	require.Error(t, err)
	require.Nil(t, sessionCookie(t, rec, "token"))
}
