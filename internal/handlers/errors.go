package handlers

import (
	"errors"
	"net/http"

	"github.com/mbnr/matrimonial/internal/models"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// writeServiceError maps a service error onto the API's status codes.
// Workflow errors carry a client-safe message; anything else is a 500 with
// a generic body.
func writeServiceError(w http.ResponseWriter, err error) {
	msg := "Request failed"
	if errors.Is(err, models.ErrNotFound) {
		msg = "Resource not found"
	}
	var wfErr *models.WorkflowError
	if errors.As(err, &wfErr) {
		msg = wfErr.Msg
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, msg)
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, msg)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteDuplicate(w, msg)
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, msg)
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, msg)
	case errors.Is(err, models.ErrAccountDisabled), errors.Is(err, models.ErrAccountSuspended):
		pkghttp.WriteForbidden(w, err.Error())
	default:
		pkghttp.WriteInternalError(w)
	}
}
