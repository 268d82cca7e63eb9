package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/guard"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, accounts *AccountService) *guard.Guard[domain.Account] {
	t.Helper()

	g := &guard.Guard[domain.Account]{
		Codec:     bearer.NewCodec([]byte("strategy-test-secret-0123456789a")),
		Serialize: func(a domain.Account) (string, error) { return a.ID, nil },
		Resolve:   accounts.GetByID,
		Lifespan:  time.Hour,
	}
	g.Use("password", &PasswordStrategy{Accounts: accounts})
	return g
}

func postLogin(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == guard.DefaultCookieName {
			return c
		}
	}
	return nil
}

func TestPasswordStrategy(t *testing.T) {
	_, accounts, _ := newAuthority(t)
	g := newGuard(t, accounts)
	login := g.Authenticate("password", guard.Options[domain.Account]{})

	account := register(t, accounts, "alice", "s3cret!pass")

	t.Run("valid credentials establish a session", func(t *testing.T) {
		rec := postLogin(t, login, url.Values{
			"username": {"alice"},
			"password": {"s3cret!pass"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data  domain.Account `json:"data"`
			Token string         `json:"token"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, account.ID, body.Data.ID)
		require.NotEmpty(t, body.Token)

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		require.Equal(t, body.Token, cookie.Value)
		require.True(t, cookie.HttpOnly)

		tok, err := g.Codec.Decode(body.Token)
		require.NoError(t, err)
		require.Equal(t, account.ID, tok.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := postLogin(t, login, url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Nil(t, sessionCookie(t, rec))
	})

	t.Run("unknown username", func(t *testing.T) {
		rec := postLogin(t, login, url.Values{
			"username": {"nobody"},
			"password": {"whatever"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := postLogin(t, login, url.Values{"username": {"alice"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("html clients get 204 and the cookie", func(t *testing.T) {
		form := url.Values{"username": {"alice"}, "password": {"s3cret!pass"}}
		req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		login.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, sessionCookie(t, rec))
	})
}

func TestPasswordStrategyTOTP(t *testing.T) {
	ctx := context.Background()
	_, accounts, _ := newAuthority(t)
	g := newGuard(t, accounts)
	login := g.Authenticate("password", guard.Options[domain.Account]{})

	account := register(t, accounts, "bob", "hunter2hunter2")
	enrollment, err := accounts.EnrollTOTP(ctx, account.ID)
	require.NoError(t, err)

	t.Run("password alone is refused", func(t *testing.T) {
		rec := postLogin(t, login, url.Values{
			"username": {"bob"},
			"password": {"hunter2hunter2"},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("password plus code succeeds", func(t *testing.T) {
		code, err := totp.GenerateCode(enrollment.Secret, time.Now())
		require.NoError(t, err)

		rec := postLogin(t, login, url.Values{
			"username": {"bob"},
			"password": {"hunter2hunter2"},
			"otp":      {code},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, sessionCookie(t, rec))
	})

	t.Run("stale code is refused", func(t *testing.T) {
		code, err := totp.GenerateCode(enrollment.Secret, time.Now().Add(-10*time.Minute))
		require.NoError(t, err)

		rec := postLogin(t, login, url.Values{
			"username": {"bob"},
			"password": {"hunter2hunter2"},
			"otp":      {code},
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
