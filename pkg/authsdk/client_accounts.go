package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// registerRequest is the POST /v1/accounts body.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account with a username and password. The server
// stores the password as an argon2id hash; the plaintext never comes back.
func (c *SDKClient) Register(ctx context.Context, username, password string) (*Account, error) {
	body, err := json.Marshal(registerRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/accounts", bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := decodeJSON(resp, &account, http.StatusCreated); err != nil {
		return nil, err
	}

	return &account, nil
}

// Login performs an interactive login with a username and password, plus the
// TOTP code when the account is enrolled (pass an empty otp otherwise).
//
// The resulting session holds a server-managed session token rather than an
// OAuth2 token pair: it cannot refresh itself, but it can drive the
// authorization endpoint and the account-scoped API, and Revive renews it.
// Account details are available through Whoami.
func (c *SDKClient) Login(ctx context.Context, username, password, otp string) (*Session, error) {
	data := url.Values{
		"username": {username},
		"password": {password},
	}
	if otp != "" {
		data.Set("otp", otp)
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       "application/json",
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/login", strings.NewReader(data.Encode()), headers)
	if err != nil {
		return nil, err
	}

	var envelope sessionEnvelope
	if err := decodeJSON(resp, &envelope, http.StatusOK); err != nil {
		return nil, err
	}

	return newSessionToken(c, envelope.Token), nil
}
