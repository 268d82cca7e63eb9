package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/idx"
	"github.com/posternauth/postern/pkg/slogx"

	"golang.org/x/oauth2"
)

// upstreamStateCookie pins the state value across the round trip to the
// provider, standing in for the server-side session this server does not keep.
const upstreamStateCookie = "upstream_state"

// UpstreamStrategy federates login to an external OAuth2 provider. A request
// without a code parameter starts the flow: the user is redirected to the
// provider and the outcome is Handled. The callback carries code and state;
// the strategy exchanges the code, fetches the userinfo document, and finds
// or creates the matching local account.
type UpstreamStrategy struct {
	Config      *oauth2.Config
	UserInfoURL string
	Store       store.Store
}

func (s *UpstreamStrategy) Authenticate(w http.ResponseWriter, r *http.Request) (guard.Outcome[domain.Account], error) {
	l := slogx.FromContext(r.Context())

	code := r.URL.Query().Get("code")
	if code == "" {
		state, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return guard.Outcome[domain.Account]{}, err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     upstreamStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   300,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, s.Config.AuthCodeURL(state), http.StatusFound)
		return guard.Handled[domain.Account](), nil
	}

	// Callback leg: the state must match the one we sent out
	cookie, err := r.Cookie(upstreamStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		return guard.Failure[domain.Account](errors.New("upstream state mismatch")), nil
	}
	http.SetCookie(w, &http.Cookie{Name: upstreamStateCookie, Value: "", Path: "/", MaxAge: -1})

	tok, err := s.Config.Exchange(r.Context(), code)
	if err != nil {
		l.Warn("upstream code exchange failed", "error", err)
		return guard.Failure[domain.Account](err), nil
	}

	username, err := s.fetchUsername(r.Context(), tok)
	if err != nil {
		l.Warn("upstream userinfo fetch failed", "error", err)
		return guard.Failure[domain.Account](err), nil
	}

	account, err := s.findOrCreate(r.Context(), username)
	if err != nil {
		return guard.Outcome[domain.Account]{}, err
	}
	return guard.Success(account), nil
}

// Logout implements guard.LogoutStrategy. There is no provider-side session
// to tear down.
func (s *UpstreamStrategy) Logout(http.ResponseWriter, *http.Request) error { return nil }

// upstreamProfile is the subset of the provider's userinfo document we read.
// Providers disagree on the field name, so several are tried in order.
type upstreamProfile struct {
	Username string `json:"username"`
	Login    string `json:"login"`
	Email    string `json:"email"`
}

func (s *UpstreamStrategy) fetchUsername(ctx context.Context, tok *oauth2.Token) (string, error) {
	client := s.Config.Client(ctx, tok)

	resp, err := client.Get(s.UserInfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo endpoint answered %s", resp.Status)
	}

	var profile upstreamProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", err
	}
	switch {
	case profile.Username != "":
		return profile.Username, nil
	case profile.Login != "":
		return profile.Login, nil
	case profile.Email != "":
		return profile.Email, nil
	}
	return "", errors.New("userinfo document carries no usable identifier")
}

// findOrCreate provisions a local account on first login. The account gets
// no password hash, so it can only ever sign in through the provider.
func (s *UpstreamStrategy) findOrCreate(ctx context.Context, username string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, err
	}

	now := time.Now().UTC()
	account = domain.Account{
		ID:        idx.New().String(),
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race against a concurrent first login
			return s.Store.Accounts().GetAccountByUsername(ctx, username)
		}
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("account provisioned from upstream", "account_id", account.ID, "username", username)
	return account, nil
}
