package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// IntrospectToken introspects an access token per RFC 7662. The session
// authenticates the call; the token under inspection travels in the form.
// Dead tokens of any kind answer with Active false and nothing else.
//
// Pass the observed caller address as origin when inspecting origin-bound
// tokens on behalf of a resource server, or an empty string otherwise.
// Automatically refreshes the access token if expired.
func (s *Session) IntrospectToken(ctx context.Context, token, origin string) (*IntrospectionResponse, error) {
	data := url.Values{
		"token":           {token},
		"token_type_hint": {"access_token"},
	}
	if origin != "" {
		data.Set("origin", origin)
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := s.doAuthRequest(
		ctx,
		http.MethodPost,
		"/v1/oauth2/introspect",
		strings.NewReader(data.Encode()),
		headers,
	)
	if err != nil {
		return nil, err
	}

	var introspectResp IntrospectionResponse
	if err := decodeJSON(resp, &introspectResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &introspectResp, nil
}
