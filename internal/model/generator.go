package model

// GenerateRequest represents a local password generation request.
// Symbols, when set, replaces the class-based alphabet entirely.
// Pointer fields distinguish a missing value (nil -> default) from an explicit one,
// so an explicit zero length is rejected rather than defaulted.
type GenerateRequest struct {
	Length    *int   `json:"length"`
	Symbols   string `json:"symbols,omitempty"`
	Uppercase *bool  `json:"uppercase"`
	Lowercase *bool  `json:"lowercase"`
	Numbers   *bool  `json:"numbers"`
	Special   *bool  `json:"special"`
}

// RemoteGenerateRequest represents a true-random password request. APIKey
// falls back to the server's configured key when empty.
type RemoteGenerateRequest struct {
	Length *int   `json:"length"`
	APIKey string `json:"api_key,omitempty"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
	Source   string `json:"source"`
}

// KeyPairRequest represents an RSA key-pair generation request.
type KeyPairRequest struct {
	KeySize int `json:"key_size"`
}

// KeyPairResponse carries the generated pair in transport encodings.
type KeyPairResponse struct {
	KeySize       int    `json:"key_size"`
	PublicKeyPEM  string `json:"public_key_pem"`
	PrivateKeyPEM string `json:"private_key_pem"`
	AuthorizedKey string `json:"authorized_key"`
}

const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)
