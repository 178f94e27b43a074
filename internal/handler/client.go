package handler

import (
	"errors"
	"net/http"

	"github.com/vaultpass/keysmith-go/internal/model"
	"github.com/vaultpass/keysmith-go/internal/repository"
	"github.com/vaultpass/keysmith-go/internal/service"
)

const maxClientBody = 64 << 10

// ClientHandler handles client application registration and token exchange.
type ClientHandler struct {
	service *service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{service: svc}
}

// HandleRegister handles POST /api/v1/clients requests.
func (h *ClientHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterClientRequest
	if status, err := decodeBody(w, r, maxClientBody, &req); err != nil {
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, repository.ErrDuplicateClient):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleToken handles POST /api/v1/clients/token requests.
func (h *ClientHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req model.TokenRequest
	if status, err := decodeBody(w, r, maxClientBody, &req); err != nil {
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	resp, err := h.service.IssueToken(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
