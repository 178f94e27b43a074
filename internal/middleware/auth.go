package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vaultpass/keysmith-go/internal/crypto"
)

type contextKey string

const clientIDKey contextKey = "clientID"

const authRealm = "keysmith"

// Bearer challenge error codes.
const (
	challengeInvalidRequest = "invalid_request"
	challengeInvalidToken   = "invalid_token"
)

// ClientAuth returns middleware that requires a client Bearer token. Every
// rejection carries a WWW-Authenticate challenge; a request with no
// credentials gets a bare challenge with no error code.
func ClientAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, code, msg := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				challenge(w, code, msg)
				return
			}

			claims, err := crypto.ParseClientToken(token, secret)
			if err != nil {
				challenge(w, challengeInvalidToken, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. When it
// cannot, it returns the challenge code and message to reject with.
func bearerToken(header string) (token, code, msg string) {
	if header == "" {
		return "", "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", challengeInvalidRequest, "invalid authorization format"
	}
	return strings.TrimSpace(token), "", ""
}

func challenge(w http.ResponseWriter, code, msg string) {
	value := fmt.Sprintf("Bearer realm=%q", authRealm)
	if code != "" {
		value += fmt.Sprintf(", error=%q", code)
	}
	w.Header().Set("WWW-Authenticate", value)
	writeJSONError(w, http.StatusUnauthorized, msg)
}

// ClientIDFromContext returns the authenticated client ID, or "" for anonymous requests.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
