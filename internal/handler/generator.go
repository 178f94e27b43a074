package handler

import (
	"errors"
	"net/http"

	"github.com/vaultpass/keysmith-go/internal/crypto"
	"github.com/vaultpass/keysmith-go/internal/entropy"
	"github.com/vaultpass/keysmith-go/internal/middleware"
	"github.com/vaultpass/keysmith-go/internal/model"
	"github.com/vaultpass/keysmith-go/internal/service"
)

const maxGenerateBody = 1 << 20 // 1MB

// GeneratorHandler handles HTTP requests for password and key-pair generation.
type GeneratorHandler struct {
	service *service.GeneratorService
}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// HandleGenerate handles POST /api/v1/generate requests.
func (h *GeneratorHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if status, err := decodeBody(w, r, maxGenerateBody, &req); err != nil {
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	resp, err := h.service.Generate(r.Context(), middleware.ClientIDFromContext(r.Context()), req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGenerateRemote handles POST /api/v1/generate/remote requests.
func (h *GeneratorHandler) HandleGenerateRemote(w http.ResponseWriter, r *http.Request) {
	var req model.RemoteGenerateRequest
	if status, err := decodeBody(w, r, maxGenerateBody, &req); err != nil {
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	resp, err := h.service.GenerateRemote(r.Context(), middleware.ClientIDFromContext(r.Context()), req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleGenerateKeyPair handles POST /api/v1/keypair requests.
func (h *GeneratorHandler) HandleGenerateKeyPair(w http.ResponseWriter, r *http.Request) {
	var req model.KeyPairRequest
	if status, err := decodeBody(w, r, maxGenerateBody, &req); err != nil {
		writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	resp, err := h.service.GenerateKeyPair(r.Context(), middleware.ClientIDFromContext(r.Context()), req)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRemoteUnavailable), errors.Is(err, entropy.ErrCircuitOpen):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("entropy service unavailable"))
	case errors.Is(err, entropy.ErrNetworkFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse("entropy service unreachable"))
	case errors.Is(err, entropy.ErrServiceError):
		writeJSON(w, http.StatusBadGateway, errorResponse(upstreamMessage(err)))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, crypto.ErrInvalidLength) ||
		errors.Is(err, crypto.ErrEmptyAlphabet) ||
		errors.Is(err, crypto.ErrNoCharacterTypes) ||
		errors.Is(err, crypto.ErrUnsupportedKeySize) ||
		errors.Is(err, service.ErrAPIKeyRequired)
}

// upstreamMessage exposes the service's own error message but not raw
// non-200 bodies, which may echo request details.
func upstreamMessage(err error) string {
	var svcErr *entropy.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return "entropy service error: " + svcErr.Message
	}
	if errors.As(err, &svcErr) {
		return "entropy service returned status " + http.StatusText(svcErr.StatusCode)
	}
	return "entropy service error"
}
