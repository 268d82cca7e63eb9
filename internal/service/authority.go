package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/authserver"
	"github.com/posternauth/postern/pkg/bearer"
	"github.com/posternauth/postern/pkg/cryptox"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/idx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultCodeTTL    = 5 * time.Minute

	// Wire codes the service maps its sentinels onto. They extend the set
	// predeclared in oauthx with the RFC 6749 token endpoint codes.
	codeInvalidGrant = "invalid_grant"
	codeInvalidScope = "invalid_scope"
)

var (
	ErrClientNotFound      = errors.New("client_not_found")
	ErrInvalidClientSecret = errors.New("invalid_client_secret")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidRefresh      = errors.New("invalid_refresh_token")
	ErrInvalidScope        = errors.New("invalid_scope")
	ErrNotConsented        = errors.New("not_consented")
)

// invalidGrant builds the wire error for a failed token grant. The sentinel
// rides along as the cause so callers can still branch with errors.Is.
func invalidGrant(cause error, description string) *oauthx.Error {
	return oauthx.New(http.StatusBadRequest, codeInvalidGrant, description).WithCause(cause)
}

func invalidScope(description string) *oauthx.Error {
	return oauthx.New(http.StatusBadRequest, codeInvalidScope, description).WithCause(ErrInvalidScope)
}

// Authority is the concrete provider behind the protocol engine: it owns the
// client registry, consent, code issuance, and every token grant, all backed
// by the store.
//
// Access tokens carry the account ID as subject and are never origin bound,
// since third-party clients present them from their own hosts. Refresh
// tokens and authorization codes are opaque values stored by fingerprint.
type Authority struct {
	authserver.UnimplementedProvider[domain.Client]

	Store    store.Store
	Codec    *bearer.Codec
	Accounts *AccountService

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CodeTTL    time.Duration
}

// FindClient resolves a client_id against the registry.
func (s *Authority) FindClient(ctx context.Context, clientID string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, oauthx.ErrUnauthorizedClient.WithCause(ErrClientNotFound)
		}
		return domain.Client{}, err
	}
	return client, nil
}

// VerifyClient checks the presented secret against the stored argon2id hash.
// Public clients (no stored secret) cannot authenticate with Basic at all.
func (s *Authority) VerifyClient(ctx context.Context, client domain.Client, secret string) error {
	if client.SecretHash == "" || cryptox.VerifyPassword(secret, client.SecretHash) != nil {
		slogx.FromContext(ctx).Info("client authentication failed", "client_id", client.ID)
		return oauthx.ErrUnauthorizedClient.WithCause(ErrInvalidClientSecret)
	}
	return nil
}

// AuthorizeCode serves response_type=code: it requires an authenticated
// session, mints a single-use code, and hands it back through the redirect.
func (s *Authority) AuthorizeCode(w http.ResponseWriter, r *http.Request, req authserver.AuthorizeRequest[domain.Client]) error {
	ctx := r.Context()
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. The resource owner must already hold a session
	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		return oauthx.ErrNotAuthenticated.WithDescription("sign in before authorizing a client")
	}

	// 2. An explicit denial ends the flow before anything is minted
	if r.Form.Get("consent") == "deny" {
		return oauthx.ErrAccessDenied.WithCause(ErrNotConsented)
	}

	// 3. The redirect target must match the registered one exactly
	target, err := validateRedirect(req.Client, req.RedirectURI)
	if err != nil {
		return err
	}

	// 4. Narrow the requested scopes to what the client may hold
	scopes, err := grantScopes(req.Scope, req.Client.Scopes)
	if err != nil {
		return err
	}

	// 5. Mint the code; only its fingerprint is stored
	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	record := domain.AuthorizationCode{
		ID:          idx.New().String(),
		AccountID:   account.ID,
		ClientID:    req.Client.ID,
		CodeHash:    cryptox.FingerprintToken(code),
		RedirectURI: req.RedirectURI,
		Scopes:      scopes,
		ExpiresAt:   now.Add(s.codeTTL()),
		CreatedAt:   now,
	}
	if err := s.Store.AuthCodes().CreateAuthCode(ctx, record); err != nil {
		return err
	}

	l.Info("authorization code issued",
		"client_id", req.Client.ID,
		"account_id", account.ID,
	)

	// 6. Deliver the code in the redirect query, echoing state verbatim
	q := target.Query()
	q.Set("code", code)
	q.Set("state", req.State)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
	return nil
}

// ImplicitGrant mints the access token for response_type=token. No refresh
// token accompanies a fragment delivery.
func (s *Authority) ImplicitGrant(ctx context.Context, req authserver.AuthorizeRequest[domain.Client]) (oauthx.TokenResponse, error) {
	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		return oauthx.TokenResponse{}, oauthx.ErrNotAuthenticated.WithDescription("sign in before authorizing a client")
	}

	if _, err := validateRedirect(req.Client, req.RedirectURI); err != nil {
		return oauthx.TokenResponse{}, err
	}

	scopes, err := grantScopes(req.Scope, req.Client.Scopes)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	access, err := s.issueAccess(account.ID)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	return oauthx.TokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.accessTTL().Seconds()),
		Scope:       scopes,
	}, nil
}

// ExchangeCode swaps an authorization code for an access and refresh token.
// Consumption is transactional: the code is looked up, checked, and marked
// used in one unit, so a code can never produce two token pairs.
func (s *Authority) ExchangeCode(ctx context.Context, code, redirectURI string) (oauthx.TokenResponse, error) {
	now := time.Now().UTC()

	code = strings.TrimSpace(code)
	if code == "" {
		return oauthx.TokenResponse{}, invalidGrant(ErrInvalidCode, "authorization code is required")
	}

	var resp oauthx.TokenResponse
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		record, err := tx.AuthCodes().GetAuthCodeByHash(ctx, cryptox.FingerprintToken(code))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalidGrant(ErrInvalidCode, "authorization code is invalid, expired, or already used")
			}
			return err
		}

		if !record.Consumable(now) {
			return invalidGrant(ErrInvalidCode, "authorization code is invalid, expired, or already used")
		}
		if record.RedirectURI != strings.TrimSpace(redirectURI) {
			return invalidGrant(ErrInvalidCode, "redirect_uri does not match the authorization request")
		}

		// Mark used first; losing the race surfaces as ErrNotFound
		if err := tx.AuthCodes().MarkAuthCodeUsed(ctx, record.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalidGrant(ErrInvalidCode, "authorization code is invalid, expired, or already used")
			}
			return err
		}

		access, err := s.issueAccess(record.AccountID)
		if err != nil {
			return err
		}
		refresh, err := s.mintRefresh(ctx, tx, record.AccountID, record.ClientID, record.Scopes, now)
		if err != nil {
			return err
		}

		resp = oauthx.TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(s.accessTTL().Seconds()),
			Scope:        record.Scopes,
		}
		return nil
	})
	if err != nil {
		return oauthx.TokenResponse{}, err
	}
	return resp, nil
}

// RefreshGrant rotates a refresh token: the old token is revoked and a new
// one issued in the same transaction. The requested scope may only narrow
// what the original grant carried.
func (s *Authority) RefreshGrant(ctx context.Context, client domain.Client, refreshToken string, scope []string) (oauthx.TokenResponse, error) {
	now := time.Now().UTC()
	fp := cryptox.FingerprintToken(refreshToken)

	var resp oauthx.TokenResponse
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return invalidGrant(ErrInvalidRefresh, "refresh token is invalid")
			}
			return err
		}

		// 1. It must belong to the client presenting it and still be live
		if rt.ClientID != client.ID {
			return invalidGrant(ErrInvalidRefresh, "refresh token is invalid")
		}
		if !rt.Usable(now) {
			return invalidGrant(ErrInvalidRefresh, "refresh token is expired or revoked")
		}

		// 2. Narrowing only: every requested scope must be in the original grant
		effective := rt.Scopes
		if len(scope) > 0 {
			if !subsetOf(scope, rt.Scopes) {
				return invalidScope("requested scope exceeds the original grant")
			}
			effective = dedupe(scope)
		}

		// 3. Rotate: revoke the presented token, store a successor
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		next, err := s.mintRefresh(ctx, tx, rt.AccountID, rt.ClientID, effective, now)
		if err != nil {
			return err
		}

		access, err := s.issueAccess(rt.AccountID)
		if err != nil {
			return err
		}

		resp = oauthx.TokenResponse{
			AccessToken:  access,
			RefreshToken: next,
			ExpiresIn:    int64(s.accessTTL().Seconds()),
			Scope:        effective,
		}
		return nil
	})
	if err != nil {
		return oauthx.TokenResponse{}, err
	}
	return resp, nil
}

// PasswordGrant exchanges resource-owner credentials for tokens. Accounts
// enrolled in TOTP cannot use it; there is no way to carry the one-time code
// through this grant, so they are pointed at the interactive login instead.
func (s *Authority) PasswordGrant(ctx context.Context, client domain.Client, username, password string, scope []string) (oauthx.TokenResponse, error) {
	now := time.Now().UTC()

	account, err := s.Accounts.Authenticate(ctx, username, password, "")
	switch {
	case err == nil:
	case errors.Is(err, ErrOTPRequired):
		return oauthx.TokenResponse{}, invalidGrant(ErrOTPRequired, "account requires a one-time code; use the interactive login")
	case errors.Is(err, ErrInvalidCredentials):
		return oauthx.TokenResponse{}, invalidGrant(ErrInvalidCredentials, "invalid resource owner credentials")
	default:
		return oauthx.TokenResponse{}, err
	}

	scopes, err := grantScopes(scope, client.Scopes)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	access, err := s.issueAccess(account.ID)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}
	refresh, err := s.mintRefresh(ctx, s.Store, account.ID, client.ID, scopes, now)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	return oauthx.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL().Seconds()),
		Scope:        scopes,
	}, nil
}

// ClientCredentialsGrant mints a token for the client itself. The subject is
// namespaced so machine principals never collide with account IDs, and no
// refresh token is issued: the client can always re-authenticate.
func (s *Authority) ClientCredentialsGrant(ctx context.Context, client domain.Client) (oauthx.TokenResponse, error) {
	access, err := s.issueAccess("client:" + client.ID)
	if err != nil {
		return oauthx.TokenResponse{}, err
	}

	return oauthx.TokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.accessTTL().Seconds()),
		Scope:       client.Scopes,
	}, nil
}

// issueAccess mints a compact access token for the subject.
func (s *Authority) issueAccess(subject string) (string, error) {
	return s.Codec.Encode(s.Codec.Issue(subject, s.accessTTL(), ""))
}

// mintRefresh creates and stores a refresh token, returning the opaque value.
// It accepts any Store so it runs inside or outside a transaction.
func (s *Authority) mintRefresh(ctx context.Context, st store.Store, accountID, clientID string, scopes []string, now time.Time) (string, error) {
	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	record := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: accountID,
		ClientID:  clientID,
		TokenHash: cryptox.FingerprintToken(opaque),
		Scopes:    scopes,
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return "", err
	}
	return opaque, nil
}

func (s *Authority) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *Authority) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *Authority) codeTTL() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return DefaultCodeTTL
}

// validateRedirect enforces exact matching against the registered redirect
// target, when the client registered one, and parses the result.
func validateRedirect(client domain.Client, redirectURI string) (*url.URL, error) {
	if client.RedirectURI != "" && redirectURI != client.RedirectURI {
		return nil, oauthx.ErrInvalidRequest.WithDescription("redirect_uri does not match the registered value")
	}
	target, err := url.Parse(redirectURI)
	if err != nil {
		return nil, oauthx.ErrInvalidRequest.WithDescription("malformed redirect_uri")
	}
	return target, nil
}

// grantScopes resolves the scopes a grant may carry: everything the client
// registered when none were requested, otherwise the intersection.
func grantScopes(requested, allowed []string) ([]string, error) {
	if len(requested) == 0 {
		return allowed, nil
	}
	effective := intersectScopes(requested, allowed)
	if len(effective) == 0 {
		return nil, invalidScope("none of the requested scopes are available to this client")
	}
	return effective, nil
}

func intersectScopes(a, b []string) []string {
	set := map[string]struct{}{}
	for _, s := range b {
		set[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return dedupe(out)
}

func subsetOf(sub, super []string) bool {
	set := map[string]struct{}{}
	for _, s := range super {
		set[s] = struct{}{}
	}
	for _, s := range sub {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
