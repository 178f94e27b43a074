package entropy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vaultpass/keysmith-go/internal/crypto"
)

// DefaultURL is the random.org JSON-RPC endpoint.
const DefaultURL = "https://api.random.org/json-rpc/4/invoke"

// maxResponseBytes bounds the body read; 4096 hex characters plus JSON framing fit easily.
const maxResponseBytes = 1 << 20

// Result carries the outcome of a remote password generation.
// Exactly one of Password and Err is set.
type Result struct {
	Password string
	Err      error
}

// Generator produces passwords from a remote true-random service.
type Generator struct {
	client  *Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
	nextID  atomic.Int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithTimeout bounds each call, on top of any deadline the caller's context carries.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

// WithLogger sets the logger used for failure reporting.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a Generator posting to url through client.
func NewGenerator(client *Client, url string, opts ...Option) *Generator {
	if url == "" {
		url = DefaultURL
	}
	g := &Generator{
		client:  client,
		url:     url,
		timeout: 10 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate blocks until a password of the given length is produced or fails.
func (g *Generator) Generate(ctx context.Context, length int, apiKey string) (string, error) {
	res := <-g.GenerateAsync(ctx, length, apiKey)
	return res.Password, res.Err
}

// GenerateAsync requests length hex characters from the service and returns
// immediately. The channel yields exactly one Result and is then closed.
//
// An out-of-range length is reported through the channel before
// GenerateAsync returns, without any network call.
func (g *Generator) GenerateAsync(ctx context.Context, length int, apiKey string) <-chan Result {
	out := make(chan Result, 1)

	if err := crypto.ValidateLength(length); err != nil {
		out <- Result{Err: err}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		password, err := g.fetch(ctx, length, apiKey)
		if err != nil {
			out <- Result{Err: err}
			return
		}
		out <- Result{Password: password}
	}()

	return out
}

func (g *Generator) fetch(ctx context.Context, length int, apiKey string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, g.timeout, errUpstreamTimeout)
		defer cancel()
	}

	requested, samples := sampleCount(length)

	payload, err := json.Marshal(NewRequest(apiKey, samples, g.nextID.Add(1)))
	if err != nil {
		return "", fmt.Errorf("encoding entropy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building entropy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("entropy request failed", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.logger.Warn("reading entropy response failed", "status", resp.StatusCode, "error", err)
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("entropy service returned non-success status", "status", resp.StatusCode)
		return "", &ServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	hex, err := decodeResponse(body)
	if err != nil {
		g.logger.Warn("entropy service rejected request", "error", err)
		return "", err
	}

	if len(hex) != requested {
		g.logger.Warn("entropy service returned wrong sample count", "want", requested, "got", len(hex))
		return "", malformedResponse(resp.StatusCode)
	}

	return hex[:length], nil
}

// decodeResponse parses a 200 body into the concatenated hex string.
func decodeResponse(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", malformedResponse(http.StatusOK)
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformedResponse(http.StatusOK)
	}

	if parsed.Error != nil {
		return "", &ServiceError{StatusCode: http.StatusOK, Message: parsed.Error.Message}
	}
	if parsed.Result == nil {
		return "", malformedResponse(http.StatusOK)
	}

	hex, ok := parsed.Result.Random.HexString()
	if !ok {
		return "", malformedResponse(http.StatusOK)
	}
	return hex, nil
}
