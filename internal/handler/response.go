package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errInvalidBody  = errors.New("invalid request body")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// decodeBody reads a JSON body of at most limit bytes into v and validates it.
// An empty body leaves v at its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) (int, error) {
	if r.Body != nil && r.Body != http.NoBody {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		defer r.Body.Close()

		err := json.NewDecoder(r.Body).Decode(v)
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return http.StatusRequestEntityTooLarge, errBodyTooLarge
		case err != nil && !errors.Is(err, io.EOF):
			return http.StatusBadRequest, errInvalidBody
		}
	}

	if err := validate.Struct(v); err != nil {
		return http.StatusBadRequest, err
	}
	return 0, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
