package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json and encodes the value as JSON.
// Any encoding errors are silently ignored (best-effort).
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErr maps a typed error to its status code and writes the structured
// error body: {"code", "message", "details", "trace_id"}.
func WriteErr(w http.ResponseWriter, err error, traceID string) {
	errors.WriteHTTPError(w, err, traceID)
}

// WriteSuccessWithData writes a success response with additional data fields.
// The response format is: {"status": "ok", ...data}
func WriteSuccessWithData(w http.ResponseWriter, data map[string]any) {
	response := map[string]any{"status": "ok"}
	for k, v := range data {
		response[k] = v
	}
	WriteJSON(w, http.StatusOK, response)
}
