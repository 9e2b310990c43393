// internal/common/errors/handler.go
package errors

import (
	"time"
)

// ErrorHandler normalizes and logs batch-scoring errors in one place so
// individual components only return errors.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleSignalError logs a per-signal scoring failure. Scoring of the rest
// of the batch continues; the caller substitutes a zero-score result.
func (h *ErrorHandler) HandleSignalError(signalID string, err error) *StandardError {
	stdErr := h.normalizeError(err)

	h.logger.Error("signal scoring failed", map[string]interface{}{
		"signalId":      signalID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	return stdErr
}

// HandleCollaboratorError logs a store/classifier/cache failure that is
// being degraded to an empty default rather than propagated.
func (h *ErrorHandler) HandleCollaboratorError(operation string, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Warn("collaborator call degraded to default", map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"retries":       GetRetryCount(stdErr.Code),
	})
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
