package errorhandler

import (
	"context"
	"net/http"

	"github.com/celulas/celulas-api/internal/pkg/logger"
	"github.com/celulas/celulas-api/internal/pkg/response"
)

// Internal logs the cause of an unexpected failure and writes the generic 500.
// Nothing about err reaches the client.
func Internal(ctx context.Context, w http.ResponseWriter, op string, err error) {
	logger.FromContext(ctx).Error().
		Err(err).
		Str("operation", op).
		Msg("Request failed")

	response.InternalError(w)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Debug().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}

// LogExternalServiceError logs errors from external service calls
func LogExternalServiceError(ctx context.Context, service string, endpoint string, err error) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("endpoint", endpoint).
		Err(err).
		Msg("External service error")
}
