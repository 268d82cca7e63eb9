package http

import (
	"encoding/json"
	"net/http"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/pkg/guard"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// APIKeysHandler handles API key management for the session account.
type APIKeysHandler struct {
	APIKeyService *service.APIKeyService
}

// createAPIKeyRequest is the POST /v1/apikeys body.
type createAPIKeyRequest struct {
	Label string `json:"label"`
}

// createAPIKeyResponse carries the key record plus the opaque key value. The
// value is only ever returned here; the server stores its fingerprint.
type createAPIKeyResponse struct {
	Key    domain.APIKey `json:"key"`
	APIKey string        `json:"api_key"`
}

// listAPIKeysResponse is the GET /v1/apikeys body.
type listAPIKeysResponse struct {
	Keys []domain.APIKey `json:"keys"`
}

// HandleCreate handles POST /v1/apikeys
//
//	@Summary		Create API Key
//	@Description	Mints a long-lived API key for the session account. The key is returned once and can later
//	@Description	be traded for access tokens on the token endpoint with the api_key extension grant.
//	@Tags			APIKeys
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createAPIKeyRequest		false	"Optional label"
//	@Success		201		{object}	createAPIKeyResponse	"key record and one-time key value"
//	@Failure		401		{object}	oauthx.Error			"error, error_description"
//	@Failure		500		{object}	oauthx.Error			"error, error_description"
//	@Router			/v1/apikeys [post].
func (h *APIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		oauthx.ErrNotAuthenticated.WriteTo(w)
		return
	}

	// The body is optional; an empty label is fine
	var req createAPIKeyRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	record, opaque, err := h.APIKeyService.CreateKey(ctx, account.ID, req.Label)
	if err != nil {
		log.Error("failed to create api key", "error", err, "account_id", account.ID)
		oauthx.Wrap(err, "").WriteTo(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createAPIKeyResponse{
		Key:    record,
		APIKey: opaque,
	})
}

// HandleList handles GET /v1/apikeys
//
//	@Summary		List API Keys
//	@Description	Returns the session account's API keys, newest first. Key values are never included.
//	@Tags			APIKeys
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	listAPIKeysResponse	"keys"
//	@Failure		401	{object}	oauthx.Error		"error, error_description"
//	@Failure		500	{object}	oauthx.Error		"error, error_description"
//	@Router			/v1/apikeys [get].
func (h *APIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	account, ok := guard.PrincipalFrom[domain.Account](ctx)
	if !ok {
		oauthx.ErrNotAuthenticated.WriteTo(w)
		return
	}

	keys, err := h.APIKeyService.ListKeys(ctx, account.ID)
	if err != nil {
		log.Error("failed to list api keys", "error", err, "account_id", account.ID)
		oauthx.Wrap(err, "").WriteTo(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listAPIKeysResponse{Keys: keys})
}
