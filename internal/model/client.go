package model

import "time"

// Client is a registered client application allowed to call the
// remote and key-pair generators.
type Client struct {
	ID         string
	Name       string
	SecretHash string
	CreatedAt  time.Time
}

// RegisterClientRequest represents a client registration request.
type RegisterClientRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// RegisterClientResponse is returned once; the secret is not retrievable later.
type RegisterClientResponse struct {
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	ClientSecret string    `json:"client_secret"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenRequest exchanges client credentials for an access token.
type TokenRequest struct {
	ClientID     string `json:"client_id" validate:"required,uuid"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// GenerationEvent is an audit record of a generation call. It never holds
// the generated secret or any upstream API key.
type GenerationEvent struct {
	ID        string
	ClientID  string
	Kind      string
	Length    int
	KeySize   int
	Outcome   string
	CreatedAt time.Time
}

const (
	KindLocalPassword  = "local_password"
	KindRemotePassword = "remote_password"
	KindKeyPair        = "key_pair"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
