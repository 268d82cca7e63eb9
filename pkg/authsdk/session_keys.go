package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// createAPIKeyRequest is the POST /v1/apikeys body.
type createAPIKeyRequest struct {
	Label string `json:"label"`
}

// CreateAPIKey mints a long-lived API key for the session account. The key
// value is returned once and can later be traded for access tokens with
// APIKeyGrant; the server stores only its fingerprint.
// Automatically refreshes the access token if expired.
func (s *Session) CreateAPIKey(ctx context.Context, label string) (*CreateAPIKeyResponse, error) {
	body, err := json.Marshal(createAPIKeyRequest{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := s.doAuthRequest(
		ctx,
		http.MethodPost,
		"/v1/apikeys",
		bytes.NewReader(body),
		headers,
	)
	if err != nil {
		return nil, err
	}

	var createResp CreateAPIKeyResponse
	if err := decodeJSON(resp, &createResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &createResp, nil
}

// ListAPIKeys returns the session account's API keys, newest first. Key
// values are never included.
// Automatically refreshes the access token if expired.
func (s *Session) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/apikeys", nil, nil)
	if err != nil {
		return nil, err
	}

	var listResp ListAPIKeysResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}

	return listResp.Keys, nil
}
