/*
Package authsdk provides a client SDK for the Postern authorization server.

# Overview

The authsdk package implements an OAuth2-compliant client for Postern. It
provides both unauthenticated operations (via SDKClient) and authenticated
operations (via Session) with automatic token refresh.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations and creates authenticated sessions
  - Session: Provides authenticated operations with automatic token refresh

Create an SDKClient to interact with public endpoints and initiate
authentication flows:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Create an account
	account, err := client.Register(ctx, "alice", "correct-horse-battery")

	// Authenticate to create a session
	session, err := client.Login(ctx, "alice", "correct-horse-battery", "")

Use a Session for authenticated operations:

	// Who is behind this session
	whoami, err := session.Whoami(ctx)

	// Register an OAuth2 client
	created, err := session.CreateClient(ctx, authsdk.CreateClientRequest{
		Name:        "ci-pipeline",
		RedirectURI: "https://ci.example.com/callback",
		Scopes:      []string{"profile:read"},
	})

	// Mint an API key
	key, err := session.CreateAPIKey(ctx, "deploy bot")

# Authentication Flows

The SDK supports every grant the server issues tokens under:

Interactive login (session token, renewable via Revive):

	session, err := client.Login(ctx, username, password, otpCode)

Authorization code flow (login, authorize and exchange in one call):

	session, err := client.AuthorizeAndExchange(ctx,
		username, password, "",
		clientID, clientSecret, redirectURI,
		[]string{"profile:read"},
	)

Password grant (confidential clients, accounts without TOTP):

	session, err := client.AuthenticateWithPassword(ctx, clientID, clientSecret, username, password, scopes)

Client credentials grant (machine-to-machine, no refresh token):

	session, err := client.AuthenticateWithClientCredentials(ctx, clientID, clientSecret)

API key grant (long-lived key traded for short-lived access tokens):

	session, err := client.AuthenticateWithAPIKey(ctx, apiKey)

Refresh token grant (resume from a stored refresh token):

	session, err := client.AuthenticateWithRefreshToken(ctx, clientID, clientSecret, refreshToken)

# Automatic Token Refresh

Sessions created from token-endpoint grants track the access token's expiry
with a 30-second buffer. When a Session method finds the token expired and a
refresh token is held, it runs the refresh grant transparently and stores the
rotated pair. Refresh tokens are single use server-side: each refresh
consumes the presented token and issues a successor.

Sessions created from Login hold a server-managed session token instead.
Their expiry is not tracked client-side; when the server starts answering
token_expired, call Revive to renew the token in place.

# Error Handling

Server-side failures come back as *OAuth2Error carrying the HTTP status and
the wire code. Match them with errors.Is against the predeclared set:

	_, err := client.Register(ctx, "alice", "pw")
	if errors.Is(err, authsdk.ErrAccountExists) {
		// username taken
	}

	var oauthErr *authsdk.OAuth2Error
	if errors.As(err, &oauthErr) {
		fmt.Println(oauthErr.StatusCode, oauthErr.Code)
	}

# Thread Safety

Sessions are safe for concurrent use. All Session methods use read/write
locks to protect access to tokens and scopes. Multiple goroutines can share
a single Session and make authenticated requests concurrently.
*/
package authsdk
