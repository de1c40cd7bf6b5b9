// Package apperr holds the failure kinds shared by the query, auth and
// resource layers, and the HTTP status each one maps to.
package apperr

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password. Its text is the public payload.
	ErrInvalidCredentials = errors.New("invalid_email_or_password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// HTTPStatus maps err to a status code. Unknown errors are internal.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to hand back to a client.
func PublicMessage(err error) string {
	if errors.Is(err, ErrInvalidCredentials) {
		return ErrInvalidCredentials.Error()
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// WriteHTTP sends err as an error body. Internal failures are logged with
// their cause and reported to the client generically.
func WriteHTTP(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Errorw("request failed", "err", err)
	}
	utilities.WriteError(w, status, PublicMessage(err))
}
