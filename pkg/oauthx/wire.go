package oauthx

import (
	"net/http"
	"strings"

	"github.com/posternauth/postern/pkg/httpx"
)

// TokenResponse is the result of any grant, as produced by grant hooks.
// Scope keeps its order; the wire form joins it with spaces.
type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Scope        []string
}

// TokenPayload is the wire shape of a successful token response. Clients can
// unmarshal token endpoint replies into it.
type TokenPayload struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// WriteToken writes a successful grant result as
// {"token_type":"bearer", "access_token":..., ...} with no-store headers.
func WriteToken(w http.ResponseWriter, resp TokenResponse) {
	httpx.WriteJSON(w, http.StatusOK, TokenPayload{
		TokenType:    "bearer",
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		Scope:        JoinScope(resp.Scope),
	})
}

// SplitScope parses a space-delimited scope value. Returns nil for empty or
// all-whitespace input.
func SplitScope(s string) []string {
	return httpx.ParseSpaceDelimitedFields(s)
}

// JoinScope renders a scope list in its wire form.
func JoinScope(scope []string) string {
	return strings.Join(scope, " ")
}
