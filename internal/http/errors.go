package http

import (
	"errors"
	"net/http"

	"nivasa/internal/core"
	"nivasa/internal/log"
	"nivasa/internal/services"
)

// writeError maps err onto a status code. Unclassified errors are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badReq     *errBadRequest
		validation *core.ValidationError
		notFound   *core.NotFoundError
		empty      *core.EmptyExportError
	)

	switch {
	case errors.As(err, &badReq):
		NewResponse().Status(http.StatusBadRequest).JSON(ErrorBody{Error: badReq.msg, Field: badReq.field}).Write(w)
	case errors.As(err, &validation):
		FieldErrorResponse(validation.Field, validation.Error()).Write(w)
	case errors.As(err, &notFound):
		ErrorResponse(http.StatusNotFound, notFound.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	case errors.Is(err, core.ErrInvalidTransition):
		ErrorResponse(http.StatusConflict, err.Error()).Write(w)
	case errors.Is(err, core.ErrProjectExists):
		ErrorResponse(http.StatusConflict, core.ErrProjectExists.Error()).Write(w)
	case errors.As(err, &empty):
		ErrorResponse(http.StatusUnprocessableEntity, empty.Error()).Write(w)
	case errors.Is(err, services.ErrSheetsDisabled):
		ErrorResponse(http.StatusServiceUnavailable, services.ErrSheetsDisabled.Error()).Write(w)
	case errors.Is(err, services.ErrHistoryUnavailable):
		ErrorResponse(http.StatusNotImplemented, services.ErrHistoryUnavailable.Error()).Write(w)
	default:
		log.FromContext(r.Context()).LogErr(r.Context(), "Request failed", err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusInternalServerError, "internal server error").Write(w)
	}
}
