package handler

import (
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// BreakerStater reports a circuit breaker's state.
type BreakerStater interface {
	State() gobreaker.State
}

// HandleHealth reports liveness plus the entropy breaker state, if any.
func HandleHealth(entropy BreakerStater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if entropy != nil {
			body["entropy"] = entropy.State().String()
		}
		writeJSON(w, http.StatusOK, body)
	}
}
