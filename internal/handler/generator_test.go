package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultpass/keysmith-go/internal/entropy"
	"github.com/vaultpass/keysmith-go/internal/model"
	"github.com/vaultpass/keysmith-go/internal/service"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newHandler(t *testing.T, upstream http.HandlerFunc) *GeneratorHandler {
	t.Helper()
	deps := service.GeneratorDeps{DefaultAPIKey: "configured-key", Logger: discardLogger}
	if upstream != nil {
		server := httptest.NewServer(upstream)
		t.Cleanup(server.Close)
		client := entropy.NewClient(nil, entropy.DefaultBreakerSettings(), "keysmith-test")
		deps.Remote = entropy.NewGenerator(client, server.URL, entropy.WithLogger(discardLogger))
	}
	return NewGeneratorHandler(service.NewGeneratorService(deps))
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestHandleGenerate(t *testing.T) {
	h := newHandler(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLength int
	}{
		{name: "empty body uses defaults", body: "", wantStatus: http.StatusOK, wantLength: 16},
		{name: "explicit length", body: `{"length":64}`, wantStatus: http.StatusOK, wantLength: 64},
		{name: "custom symbols", body: `{"length":5,"symbols":"xyz"}`, wantStatus: http.StatusOK, wantLength: 5},
		{name: "length too long", body: `{"length":5000}`, wantStatus: http.StatusBadRequest},
		{name: "negative length", body: `{"length":-1}`, wantStatus: http.StatusBadRequest},
		{name: "explicit zero length", body: `{"length":0}`, wantStatus: http.StatusBadRequest},
		{name: "null length uses default", body: `{"length":null}`, wantStatus: http.StatusOK, wantLength: 16},
		{name: "no classes", body: `{"uppercase":false,"lowercase":false,"numbers":false,"special":false}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"length":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(h.HandleGenerate, tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

			var resp model.GenerateResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Len(t, []rune(resp.Password), tt.wantLength)
			assert.Equal(t, model.SourceLocal, resp.Source)
		})
	}
}

func TestHandleGenerate_BodyTooLarge(t *testing.T) {
	h := newHandler(t, nil)
	rr := post(h.HandleGenerate, `{"symbols":"`+strings.Repeat("a", maxGenerateBody)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHandleGenerateRemote(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		var req entropy.Request
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "configured-key", req.Params.APIKey)
		w.Write([]byte(`{"result":{"random":{"data":["a1","b2","c3","d4"]}}}`))
	})

	rr := post(h.HandleGenerateRemote, `{"length":8}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp model.GenerateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "a1b2c3d4", resp.Password)
	assert.Equal(t, model.SourceRemote, resp.Source)
}

func TestHandleGenerateRemote_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		upstream   http.HandlerFunc
		wantStatus int
		wantError  string
	}{
		{
			name: "error payload",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "entropy service error: rate limited",
		},
		{
			name: "server error",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("apiKey=configured-key"))
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "entropy service returned status Internal Server Error",
		},
		{
			name: "malformed body",
			upstream: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("oops"))
			},
			wantStatus: http.StatusBadGateway,
			wantError:  "entropy service error: empty or invalid response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(newHandler(t, tt.upstream).HandleGenerateRemote, `{"length":8}`)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, errorOf(t, rr))
			assert.NotContains(t, rr.Body.String(), "configured-key")
		})
	}
}

func TestHandleGenerateRemote_NotConfigured(t *testing.T) {
	rr := post(newHandler(t, nil).HandleGenerateRemote, `{"length":8}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandleGenerateRemote_InvalidLength(t *testing.T) {
	called := false
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := post(h.HandleGenerateRemote, `{"length":4097}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, called)
}

func TestHandleGenerateKeyPair(t *testing.T) {
	h := newHandler(t, nil)

	rr := post(h.HandleGenerateKeyPair, `{"key_size":1024}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(h.HandleGenerateKeyPair, `{"key_size":2048}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp model.KeyPairResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2048, resp.KeySize)
	assert.Contains(t, resp.PublicKeyPEM, "PUBLIC KEY")
	assert.NotEmpty(t, resp.AuthorizedKey)
}
