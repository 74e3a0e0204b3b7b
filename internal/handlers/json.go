package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"contentcms/internal/content"
	"contentcms/internal/editor"
	"contentcms/internal/engine"
	"contentcms/internal/form"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("malformed request body")

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError maps err to a status code and writes it as a JSON error.
// Unexpected errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, content.ErrInvalidKey),
		errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrUnknownGroup),
		errors.Is(err, engine.ErrNoPreview):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrUnsupportedAction):
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}

// decodeBody decodes a JSON object request body into a plain map.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	var raw map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
