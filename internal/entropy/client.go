// Package entropy talks to a remote true-random service and turns its
// hex-byte samples into passwords. Outbound calls go through a Client that
// applies circuit breaking, request tracing and error mapping.
package entropy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/vaultpass/keysmith-go/internal/model"
)

// BreakerSettings configures the circuit breaker around the entropy service.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	Interval            time.Duration
	Timeout             time.Duration
}

// DefaultBreakerSettings trips after five consecutive failures and half-opens after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
	}
}

// Client wraps an *http.Client with a circuit breaker. Requests are never
// retried here; callers decide whether to try again.
type Client struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
}

// NewClient creates a Client. A nil httpClient gets a 10s-timeout default.
func NewClient(httpClient *http.Client, settings BreakerSettings, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "entropy",
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		// A caller abandoning its own request says nothing about the service.
		IsSuccessful: func(err error) bool {
			var aborted *callerAbort
			return err == nil || errors.As(err, &aborted)
		},
	})

	return &Client{
		client:    httpClient,
		breaker:   cb,
		userAgent: userAgent,
	}
}

// errUpstreamTimeout is the cancellation cause of the Generator's per-call
// deadline. Expiry of that deadline is the service's fault and still counts.
var errUpstreamTimeout = fmt.Errorf("entropy service timed out: %w", context.DeadlineExceeded)

// callerAbort marks a transport error caused by the caller's own context.
type callerAbort struct {
	err error
}

func (e *callerAbort) Error() string { return e.err.Error() }
func (e *callerAbort) Unwrap() error { return e.err }

// Do sends req. Any response the service produced is returned with a nil
// error, whatever its status; 5xx responses still count against the breaker.
// Requests whose context is already done or ends mid-flight never reach the
// breaker's failure count. The caller closes the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, &NetworkError{Err: err}
	}
	if id := model.GetRequestID(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			if callerDone(req.Context()) {
				return nil, &callerAbort{err: doErr}
			}
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, &NetworkError{Err: ErrCircuitOpen}
	case resp != nil:
		return resp, nil
	case err != nil:
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}

func callerDone(ctx context.Context) bool {
	return ctx.Err() != nil && !errors.Is(context.Cause(ctx), errUpstreamTimeout)
}

// State reports the breaker state, for health reporting.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
