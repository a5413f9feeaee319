package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/slogx"
)

// SuccessEnvelope is the canonical success shape. Every 2xx response from
// every route uses it so client handling is uniform regardless of origin.
type SuccessEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is the canonical failure shape; the inner error serializes
// exactly {code, message, details, timestamp}.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   *errx.Error `json:"error"`
}

// WriteJSON writes a JSON response with the given status code. Responses are
// marked non-cacheable; most of what this service returns is sensitive.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteSuccess writes the success envelope with the given payload.
func WriteSuccess(w http.ResponseWriter, code int, data any, message string) {
	WriteJSON(w, code, SuccessEnvelope{Success: true, Data: data, Message: message})
}

// WriteError coerces err to the taxonomy and writes the error envelope. The
// status code always comes from the error's own field. Defects (operational
// == false) are logged with full detail but surface only a generic message;
// stack traces and internal messages never leak to clients.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := errx.From(err)
	log := slogx.FromContext(r.Context())

	if !e.Operational {
		log.Error("unhandled error",
			"code", string(e.Code),
			"detail", e.Error(),
			"path", r.URL.Path,
		)
		sanitized := *e
		sanitized.Message = "an unexpected error occurred"
		sanitized.Details = nil
		WriteJSON(w, e.Status, ErrorEnvelope{Success: false, Error: &sanitized})
		return
	}

	log.Warn("request failed",
		"code", string(e.Code),
		"status", e.Status,
		"message", e.Message,
	)
	WriteJSON(w, e.Status, ErrorEnvelope{Success: false, Error: e})
}
