package handler

import (
	"errors"
	"log"
	"net/http"

	"contractdesk/internal/domain"
)

// writeError переводит доменные ошибки в HTTP статусы.
func writeError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var invalidState *domain.InvalidStateError
	var immutable *domain.ImmutableVersionError
	var precondition *domain.PreconditionError
	var notFound *domain.NotFoundError

	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &invalidState), errors.As(err, &immutable), errors.As(err, &precondition):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
