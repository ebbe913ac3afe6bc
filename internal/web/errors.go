package web

// errors.go provides unified error and JSON response handling for the web
// layer. Technical error detail is logged server-side with the request id;
// clients receive a short message and a stable code.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/krishdev/permithub/internal/logging"
	"github.com/krishdev/permithub/internal/sheets"
	"github.com/krishdev/permithub/internal/store"
)

// ErrorResponse is the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError logs the technical error and writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	code, msg := classify(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)

	respondJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// classify maps an error to a stable code and a client-safe message.
func classify(err error) (code, msg string) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return "STORE_UNAVAILABLE", "storage is unavailable"
	case errors.Is(err, store.ErrTxFailed):
		return "TX_FAILED", "storage transaction failed"
	case errors.Is(err, store.ErrCodec):
		return "CODEC", "stored record could not be decoded"
	case errors.Is(err, sheets.ErrCredential):
		return "CREDENTIAL", "sheet credential exchange failed"
	case errors.Is(err, sheets.ErrSource):
		return "SOURCE_UNAVAILABLE", "sheet source is unavailable"
	default:
		return "INTERNAL", "internal error"
	}
}
