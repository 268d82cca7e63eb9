package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/internal/store"
	"github.com/posternauth/postern/pkg/authserver"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/slogx"

	_ "github.com/posternauth/postern/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	Guard  *guard.Guard[domain.Account]
	Engine *authserver.Server[domain.Client]

	Authority      *service.Authority
	AccountService *service.AccountService
	ClientService  *service.ClientService
	APIKeyService  *service.APIKeyService

	// UpstreamLogin switches on the federated login route. Off unless an
	// upstream provider is configured.
	UpstreamLogin bool
}

func NewRouter(
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerAccounts()
	r.registerClients()
	r.registerAPIKeys()
	r.registerSessions()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Postern Authorization Server API
//	@version		0.1.0
//	@description	OAuth2 authorization server (RFC 6749 authorization and token endpoints)
//	@description	with token revocation, introspection, TOTP second factor and federated login.
//	@description
//	@description				Access tokens are compact HMAC-signed bearer tokens. Present them as "Bearer {token}".
//
//	@contact.name				Postern Maintainers
//	@contact.url				https://github.com/posternauth/postern
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// GET /authorize - lenient rate limit (mostly just displays forms).
	// The guard is Optional: the engine decides how an anonymous request
	// fails, with the protocol error shape rather than a bare 401.
	authorizeHandler := &AuthorizeHandler{Engine: r.Engine}
	r.Mux.Handle("GET /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
			r.Guard.Optional(),
		),
	)

	// POST /authorize - consent form submissions
	r.Mux.Handle("POST /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandlePost),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.Guard.Optional(),
		),
	)

	// POST /token - strict rate limit by IP (covers all grant types)
	tokenHandler := &TokenHandler{Engine: r.Engine}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /revoke - moderate rate limit
	revokeHandler := &RevokeHandler{Authority: r.Authority}
	r.Mux.Handle("POST /v1/oauth2/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Introspection endpoint (RFC7662) - requires authentication, moderate limit
	introspectHandler := &IntrospectHandler{Authority: r.Authority}
	r.Mux.Handle("POST /v1/oauth2/introspect",
		httpx.Chain(introspectHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.Guard.Require(),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	// POST /v1/accounts - public signup, lenient limit
	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /v1/accounts/totp - enrollment for the session account
	r.Mux.Handle("POST /v1/accounts/totp",
		httpx.Chain(http.HandlerFunc(h.HandleEnrollTOTP),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.Guard.Require(),
		),
	)

	// GET /v1/whoami - principal echo for the current session
	r.Mux.Handle("GET /v1/whoami",
		httpx.Chain(http.HandlerFunc(HandleWhoami),
			httpx.RateLimitByIP(httpx.LenientLimit),
			r.Guard.Require(),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	// POST /v1/clients - moderate rate limit (the secret comes back once)
	r.Mux.Handle("POST /v1/clients",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.Guard.Require(),
		),
	)
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{APIKeyService: r.APIKeyService}

	// POST /v1/apikeys - mint a key for the session account
	r.Mux.Handle("POST /v1/apikeys",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			r.Guard.Require(),
		),
	)

	// GET /v1/apikeys - list the session account's keys
	r.Mux.Handle("GET /v1/apikeys",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
			r.Guard.Require(),
		),
	)
}

func (r *Router) registerSessions() {
	h := NewSessionsHandler(r.Guard, r.UpstreamLogin)

	// POST /login - strict rate limit keyed on IP + username form field to
	// slow brute force
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	if r.UpstreamLogin {
		// GET /login/upstream - both legs of the federated flow land here
		r.Mux.Handle("GET /v1/login/upstream",
			httpx.Chain(http.HandlerFunc(h.HandleUpstreamLogin),
				httpx.RateLimitByIP(httpx.ModerateLimit),
			),
		)
	}

	// POST /logout
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /session/revive - renews an expired session token, moderate limit
	r.Mux.Handle("POST /v1/session/revive",
		httpx.Chain(http.HandlerFunc(h.HandleRevive),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
