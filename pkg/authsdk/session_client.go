package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CreateClient registers an OAuth2 client. The returned secret is generated
// server-side and shown exactly once; only its argon2id hash is stored. A
// client registered without a redirect URI accepts any exact redirect target
// presented at authorization time.
// Automatically refreshes the access token if expired.
func (s *Session) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := s.doAuthRequest(
		ctx,
		http.MethodPost,
		"/v1/clients",
		bytes.NewReader(body),
		headers,
	)
	if err != nil {
		return nil, err
	}

	var createResp CreateClientResponse
	if err := decodeJSON(resp, &createResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &createResp, nil
}
