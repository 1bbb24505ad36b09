package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error codes written by the pipeline stages.
const (
	CodeInvalidToken = "ERR_INVALID_TOKEN"
	CodeTokenRevoked = "ERR_TOKEN_REVOKED"
	CodeForbidden    = "ERR_FORBIDDEN"
	CodeInternal     = "ERR_INTERNAL_SERVER"

	CodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorBody is the error shape returned by handlers and by authorization.
type ErrorBody struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	ErrorCode string    `json:"errorCode"`
	Timestamp time.Time `json:"timestamp"`
}

// MinimalErrorBody is the smaller shape the authentication stages use.
type MinimalErrorBody struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// Envelope wraps every successful response.
type Envelope struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes data inside the standard envelope.
func WriteSuccess(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{
		Timestamp: time.Now().UTC(),
		Status:    code,
		Message:   message,
		Data:      data,
	})
}

// WriteError writes the full error body for the request path.
func WriteError(w http.ResponseWriter, r *http.Request, code int, errorCode, message string) {
	WriteJSON(w, code, ErrorBody{
		Status:    code,
		Message:   message,
		Path:      r.URL.Path,
		ErrorCode: errorCode,
		Timestamp: time.Now().UTC(),
	})
}

// WriteMinimalError writes the {status,message,errorCode} body.
func WriteMinimalError(w http.ResponseWriter, code int, errorCode, message string) {
	WriteJSON(w, code, MinimalErrorBody{
		Status:    code,
		Message:   message,
		ErrorCode: errorCode,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
