package main

import (
	"net/http"

	"github.com/textcore/aicore/internal/apperrors"
)

// statusForError maps an apperrors Kind to the HTTP status spec.md
// §4.9's taxonomy table assigns it. An unclassified error defaults to
// 500, matching the table's "surfaced only when unrecoverable" note.
func statusForError(err error) int {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindBusinessLogic:
		return http.StatusUnprocessableEntity
	case apperrors.KindRateLimit:
		return http.StatusTooManyRequests
	case apperrors.KindPermanentInfrastructure:
		return http.StatusBadGateway
	case apperrors.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.KindConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
