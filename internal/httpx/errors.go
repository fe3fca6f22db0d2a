package httpx

import (
	"net/http"

	"github.com/sundayezeilo/linkadmin/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
// Handlers can use this as a helper when mapping their own errors.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusConflict
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.TooLarge:
		return http.StatusRequestEntityTooLarge
	case errx.MethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errx.Storage, errx.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindToMessage maps errx.Kind to the plain-text body sent to clients.
// Internal details never leak; storage failures read as a generic error.
func ErrorKindToMessage(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "Not found."
	case errx.Conflict:
		return "Conflict."
	case errx.Invalid:
		return "Bad request."
	case errx.TooLarge:
		return "Payload too large."
	case errx.MethodNotAllowed:
		return "Method not allowed."
	default:
		return "Internal error."
	}
}
