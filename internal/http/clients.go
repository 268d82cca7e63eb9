package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/posternauth/postern/internal/domain"
	"github.com/posternauth/postern/internal/service"
	"github.com/posternauth/postern/pkg/httpx"
	"github.com/posternauth/postern/pkg/oauthx"
	"github.com/posternauth/postern/pkg/slogx"
)

// ClientsHandler handles OAuth2 client registration.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// createClientRequest is the POST /v1/clients body.
type createClientRequest struct {
	Name        string   `json:"name"`
	RedirectURI string   `json:"redirect_uri"`
	Scopes      []string `json:"scopes"`
}

// createClientResponse carries the client record plus the generated secret.
// The secret is only ever returned here, at creation time.
type createClientResponse struct {
	Client domain.Client `json:"client"`
	Secret string        `json:"secret"`
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Create OAuth2 Client
//	@Description	Registers an OAuth2 client. A secret is generated and returned once; only its argon2id hash is stored.
//	@Description	Clients registered without a redirect_uri accept any exact redirect target presented at authorization time.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createClientRequest		true	"Client creation request"
//	@Success		201		{object}	createClientResponse	"client and one-time secret"
//	@Failure		400		{object}	oauthx.Error			"error, error_description"
//	@Failure		401		{object}	oauthx.Error			"error, error_description"
//	@Failure		500		{object}	oauthx.Error			"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		oauthx.ErrInvalidRequest.WithDescription("invalid JSON in request body").WriteTo(w)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		oauthx.ErrInvalidRequest.WithDescription("client name is required").WriteTo(w)
		return
	}

	client, secret, err := h.ClientService.Create(ctx, req.Name, req.RedirectURI, req.Scopes)
	if err != nil {
		log.Error("failed to create client", "error", err)
		oauthx.Wrap(err, "").WriteTo(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, createClientResponse{
		Client: client,
		Secret: secret,
	})
}
