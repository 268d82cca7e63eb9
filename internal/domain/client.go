package domain

import "time"

type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SecretHash  string    `json:"-"`
	RedirectURI string    `json:"redirect_uri"`
	Scopes      []string  `json:"scopes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
