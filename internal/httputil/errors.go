package httputil

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tweetledger/internal/model"
)

// WriteDomainError maps an error kind to its status code. Anything that is
// not a domain error is logged and reported as a 500 with a generic message.
func WriteDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var domainErr *model.Error
	message := "Internal server error"
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		WriteBadRequest(w, message)
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, message)
	case errors.Is(err, model.ErrAlreadyInitialized):
		WriteConflict(w, message)
	case errors.Is(err, model.ErrUnauthorized):
		WriteForbidden(w, message)
	case errors.Is(err, model.ErrOperationUnavailable):
		WriteNotImplemented(w, message)
	default:
		logger.Error("request failed", zap.Error(err))
		WriteInternalError(w, "Internal server error")
	}
}
