package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/types"
)

// HTTPStatus maps domain errors to response codes. Unrecognized errors are
// treated as internal.
func HTTPStatus(err error) int {
	var (
		inputErr      *llm.InputError
		validationErr *types.ValidationError
		notFound      *engine.NotFoundError
		conflict      *engine.VersionConflictError
		provider      *llm.ProviderError
	)

	switch {
	case errors.As(err, &inputErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &provider):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// domainError writes an error response with the mapped status code.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		message = "internal server error"
	}
	s.errorResponse(w, status, message)
}
