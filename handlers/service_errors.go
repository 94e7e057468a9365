package handlers

import (
	"errors"
	"net/http"

	"github.com/lejendary/oauth2-server/middleware"
	"github.com/lejendary/oauth2-server/services"
	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)
	message := err.Error()
	if de := domainError(err); de != nil {
		message = de.Message
	}

	var writeErr error
	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, message)
	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, message, details)
	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, message)
	case services.IsForbiddenError(err):
		writeErr = utils.WriteForbidden(w, message)
	case services.IsConflictError(err):
		writeErr = utils.WriteConflict(w, message, details)
	case services.IsInternalError(err):
		// Log the cause, return a generic message
		logger.Error("internal server error",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")
	default:
		logger.Error("unhandled error type",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles errors from request decoding and validation
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var details map[string]interface{}
	message := err.Error()
	if utils.IsValidationError(err) {
		message = "Validation failed"
		details = make(map[string]interface{})
		for k, v := range utils.GetValidationFields(err) {
			details[k] = v
		}
	}
	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

func domainError(err error) *services.DomainError {
	var de *services.DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
