package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/keysmith-go/internal/crypto"
	"github.com/vaultpass/keysmith-go/internal/model"
	"github.com/vaultpass/keysmith-go/internal/repository"
	"github.com/vaultpass/keysmith-go/internal/service"
)

type memoryClientStore struct {
	mu      sync.Mutex
	clients map[string]model.Client
}

func (s *memoryClientStore) Create(_ context.Context, c *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		return repository.ErrDuplicateClient
	}
	c.CreatedAt = time.Now()
	s.clients[c.ID] = *c
	return nil
}

func (s *memoryClientStore) GetByID(_ context.Context, id string) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, repository.ErrClientNotFound
	}
	return &c, nil
}

func newClientHandler() *ClientHandler {
	store := &memoryClientStore{clients: make(map[string]model.Client)}
	return NewClientHandler(service.NewClientService(store, crypto.DefaultSource(), "handler-test-secret", time.Hour))
}

func TestClientRegisterAndToken(t *testing.T) {
	h := newClientHandler()

	rr := post(h.HandleRegister, `{"name":"deploy-bot"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var reg model.RegisterClientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.ClientID)
	assert.NotEmpty(t, reg.ClientSecret)

	body, _ := json.Marshal(model.TokenRequest{ClientID: reg.ClientID, ClientSecret: reg.ClientSecret})
	rr = post(h.HandleToken, string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tok model.TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tok))
	claims, err := crypto.ParseClientToken(tok.AccessToken, "handler-test-secret")
	require.NoError(t, err)
	assert.Equal(t, reg.ClientID, claims.Subject)
	assert.Equal(t, "deploy-bot", claims.ClientName)

	body, _ = json.Marshal(model.TokenRequest{ClientID: reg.ClientID, ClientSecret: "wrong"})
	rr = post(h.HandleToken, string(body))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestClientRegister_Validation(t *testing.T) {
	h := newClientHandler()

	assert.Equal(t, http.StatusBadRequest, post(h.HandleRegister, `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.HandleRegister, `not json`).Code)
}

func TestClientToken_Validation(t *testing.T) {
	h := newClientHandler()

	assert.Equal(t, http.StatusBadRequest, post(h.HandleToken, `{"client_id":"not-a-uuid","client_secret":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h.HandleToken, `{"client_id":"8d4f9b1e-7c2a-4f55-9d0e-3a6b2c1d0e9f"}`).Code)
	assert.Equal(t, http.StatusUnauthorized,
		post(h.HandleToken, `{"client_id":"8d4f9b1e-7c2a-4f55-9d0e-3a6b2c1d0e9f","client_secret":"x"}`).Code)
}
