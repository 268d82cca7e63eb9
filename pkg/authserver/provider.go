package authserver

import (
	"context"
	"net/http"

	"github.com/posternauth/postern/pkg/oauthx"
)

// AuthorizeRequest carries the validated parameters of an authorization
// request into a provider hook.
type AuthorizeRequest[C any] struct {
	Client      C
	ClientID    string
	RedirectURI string
	State       string
	Scope       []string
}

// ExtensionGrant handles a caller-defined grant_type on the token endpoint.
// The request arrives raw: extension grants perform their own credential
// checks and bypass client verification entirely. The engine writes the
// returned response; the writer is available for extra headers only.
type ExtensionGrant func(w http.ResponseWriter, r *http.Request) (oauthx.TokenResponse, error)

// Provider supplies the grant capabilities of an authorization server. The
// engine owns wire parsing and dispatch; a provider owns everything behind
// it: client registry, consent, token minting.
//
// Hooks report protocol outcomes by returning an *oauthx.Error (for example
// oauthx.ErrUnauthorizedClient for an unknown client). Any other error is
// treated as an internal failure: logged and answered with server_error.
type Provider[C any] interface {
	// FindClient resolves a client_id to a registered client.
	FindClient(ctx context.Context, clientID string) (C, error)

	// VerifyClient checks a client secret presented via HTTP Basic auth.
	VerifyClient(ctx context.Context, client C, secret string) error

	// AuthorizeCode serves the response_type=code branch, typically a
	// consent screen or a redirect carrying an authorization code. It owns
	// the response.
	AuthorizeCode(w http.ResponseWriter, r *http.Request, req AuthorizeRequest[C]) error

	// ImplicitGrant mints the token delivered in the fragment of the
	// response_type=token redirect.
	ImplicitGrant(ctx context.Context, req AuthorizeRequest[C]) (oauthx.TokenResponse, error)

	// ExchangeCode swaps an authorization code for tokens.
	ExchangeCode(ctx context.Context, code, redirectURI string) (oauthx.TokenResponse, error)

	// RefreshGrant exchanges a refresh token, optionally narrowing scope.
	RefreshGrant(ctx context.Context, client C, refreshToken string, scope []string) (oauthx.TokenResponse, error)

	// PasswordGrant exchanges resource-owner credentials for tokens.
	PasswordGrant(ctx context.Context, client C, username, password string, scope []string) (oauthx.TokenResponse, error)

	// ClientCredentialsGrant mints tokens for the client itself.
	ClientCredentialsGrant(ctx context.Context, client C) (oauthx.TokenResponse, error)
}

// UnimplementedProvider satisfies Provider with failing defaults: every grant
// hook answers unsupported_response_type and the client hooks answer
// unauthorized_client. Embed it so a concrete provider only implements the
// grants it supports.
type UnimplementedProvider[C any] struct{}

func (UnimplementedProvider[C]) FindClient(context.Context, string) (C, error) {
	var zero C
	return zero, oauthx.ErrUnauthorizedClient
}

func (UnimplementedProvider[C]) VerifyClient(context.Context, C, string) error {
	return oauthx.ErrUnauthorizedClient
}

func (UnimplementedProvider[C]) AuthorizeCode(http.ResponseWriter, *http.Request, AuthorizeRequest[C]) error {
	return oauthx.ErrUnsupportedResponseType
}

func (UnimplementedProvider[C]) ImplicitGrant(context.Context, AuthorizeRequest[C]) (oauthx.TokenResponse, error) {
	return oauthx.TokenResponse{}, oauthx.ErrUnsupportedResponseType
}

func (UnimplementedProvider[C]) ExchangeCode(context.Context, string, string) (oauthx.TokenResponse, error) {
	return oauthx.TokenResponse{}, oauthx.ErrUnsupportedResponseType
}

func (UnimplementedProvider[C]) RefreshGrant(context.Context, C, string, []string) (oauthx.TokenResponse, error) {
	return oauthx.TokenResponse{}, oauthx.ErrUnsupportedResponseType
}

func (UnimplementedProvider[C]) PasswordGrant(context.Context, C, string, string, []string) (oauthx.TokenResponse, error) {
	return oauthx.TokenResponse{}, oauthx.ErrUnsupportedResponseType
}

func (UnimplementedProvider[C]) ClientCredentialsGrant(context.Context, C) (oauthx.TokenResponse, error) {
	return oauthx.TokenResponse{}, oauthx.ErrUnsupportedResponseType
}
