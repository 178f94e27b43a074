package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vaultpass/keysmith-go/internal/crypto"
	"github.com/vaultpass/keysmith-go/internal/model"
	"github.com/vaultpass/keysmith-go/internal/repository"
)

const clientSecretLength = 40

// clientSecretAlphabet avoids characters that need escaping in headers or shells.
const clientSecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	ErrInvalidCredentials = errors.New("invalid client id or secret")
	ErrNameRequired       = errors.New("client name is required")
)

// ClientStore persists registered client applications.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
}

// ClientService registers client applications and issues their access tokens.
type ClientService struct {
	store     ClientStore
	src       *crypto.Source
	jwtSecret string
	jwtExpiry time.Duration
}

// NewClientService creates a new ClientService.
func NewClientService(store ClientStore, src *crypto.Source, secret string, expiry time.Duration) *ClientService {
	return &ClientService{
		store:     store,
		src:       src,
		jwtSecret: secret,
		jwtExpiry: expiry,
	}
}

// Register creates a client and returns its one-time secret.
func (s *ClientService) Register(ctx context.Context, req model.RegisterClientRequest) (model.RegisterClientResponse, error) {
	if req.Name == "" {
		return model.RegisterClientResponse{}, ErrNameRequired
	}

	secret, err := crypto.GeneratePassword(s.src, crypto.PasswordSpec{
		Length:   clientSecretLength,
		Alphabet: []rune(clientSecretAlphabet),
	})
	if err != nil {
		return model.RegisterClientResponse{}, err
	}

	hash, err := crypto.HashSecret(s.src, secret)
	if err != nil {
		return model.RegisterClientResponse{}, err
	}

	c := &model.Client{
		ID:         uuid.NewString(),
		Name:       req.Name,
		SecretHash: hash,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return model.RegisterClientResponse{}, err
	}

	return model.RegisterClientResponse{
		ClientID:     c.ID,
		Name:         c.Name,
		ClientSecret: secret,
		CreatedAt:    c.CreatedAt,
	}, nil
}

// IssueToken verifies client credentials and returns a bearer token.
func (s *ClientService) IssueToken(ctx context.Context, req model.TokenRequest) (model.TokenResponse, error) {
	c, err := s.store.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	match, err := crypto.VerifySecret(req.ClientSecret, c.SecretHash)
	if err != nil {
		return model.TokenResponse{}, err
	}
	if !match {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	token, err := crypto.IssueClientToken(c.ID, c.Name, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.TokenResponse{}, err
	}

	return model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtExpiry / time.Second),
	}, nil
}
