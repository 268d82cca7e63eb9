package authsdk

import (
	"context"
	"net/http"
)

// Whoami returns the account behind the session and the token's expiry.
// Automatically refreshes the access token if expired.
func (s *Session) Whoami(ctx context.Context) (*WhoamiResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/whoami", nil, nil)
	if err != nil {
		return nil, err
	}

	var whoami WhoamiResponse
	if err := decodeJSON(resp, &whoami, http.StatusOK); err != nil {
		return nil, err
	}

	return &whoami, nil
}

// EnrollTOTP enrolls the session account in TOTP and returns the
// provisioning material for the authenticator app. The secret is shown
// exactly once; subsequent interactive logins require the code.
// Fails with totp_already_enrolled when the account has a second factor.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollment, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/accounts/totp", nil, nil)
	if err != nil {
		return nil, err
	}

	var enrollment TOTPEnrollment
	if err := decodeJSON(resp, &enrollment, http.StatusOK); err != nil {
		return nil, err
	}

	return &enrollment, nil
}
