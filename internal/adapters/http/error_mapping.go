package httpadapter

import (
	"errors"
	"net/http"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary), domain.IsKind(err, domain.ErrOCRUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrExtractionFailure),
		domain.IsKind(err, domain.ErrClassificationUncertain),
		domain.IsKind(err, domain.ErrParseFailure),
		domain.IsKind(err, domain.ErrValidationFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, mapErrorToHTTPStatus(err), err.Error())
}
