package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sundayezeilo/linkadmin/internal/errx"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent, so we can't change the response
		// Just log the error
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteText writes a plain-text response with the given status code.
func WriteText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write text response", "error", err)
	}
}

// WriteHTML writes an already rendered HTML document.
func WriteHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write HTML response", "error", err)
	}
}

// WriteError writes the plain-text response matching the kind of err.
// An oversized body also closes the connection, since the rest of it is
// never read.
func WriteError(w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)
	if kind == errx.TooLarge {
		w.Header().Set("Connection", "close")
	}
	WriteText(w, ErrorKindToStatus(kind), ErrorKindToMessage(kind))
}
