// Package errors provides standardized error handling for the scoring engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClassifierTimeout     ErrorCode = "CLASSIFIER_TIMEOUT"
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodeClassifierBadResponse ErrorCode = "CLASSIFIER_BAD_RESPONSE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeHistorySearchFailed ErrorCode = "HISTORY_SEARCH_FAILED"

	ErrCodeInvalidTaxonomyTopic ErrorCode = "INVALID_TAXONOMY_TOPIC"
	ErrCodeInvalidWeightBank    ErrorCode = "INVALID_WEIGHT_BANK"
	ErrCodeInvalidFeedback      ErrorCode = "INVALID_FEEDBACK"

	// Deliberate negative classification, not a failure: evidence existed
	// but did not clear the validity gate. Callers must be able to tell
	// this apart from "no data available".
	ErrCodeInsufficientEvidence ErrorCode = "INSUFFICIENT_EVIDENCE"

	ErrCodeSignalScoringFailed ErrorCode = "SIGNAL_SCORING_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match on error codes via sentinel values.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrClassifierTimeout    = &StandardError{Code: ErrCodeClassifierTimeout}
	ErrInsufficientEvidence = &StandardError{Code: ErrCodeInsufficientEvidence}
	ErrCacheUnavailable     = &StandardError{Code: ErrCodeCacheUnavailable}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewClassifierTimeoutError is recoverable: the caller falls back to the
// regex extractor.
func NewClassifierTimeoutError(timeoutMs int) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierTimeout,
		Message:   "External classifier did not answer within deadline",
		Details:   fmt.Sprintf("timeoutMs: %d", timeoutMs),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassifierUnavailableError creates a retryable classifier transport error.
func NewClassifierUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierUnavailable,
		Message:   "External classifier call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassifierBadResponseError creates a non-retryable response parse error.
func NewClassifierBadResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierBadResponse,
		Message:   "External classifier returned an unparsable response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Cached values
// are derived, so callers treat this as a miss.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistorySearchFailedError creates a retryable history search error.
func NewHistorySearchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistorySearchFailed,
		Message:   "Producer history search error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTaxonomyTopicError marks a malformed DNA topic. The topic is
// skipped, never fatal to the batch.
func NewInvalidTaxonomyTopicError(topicID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTaxonomyTopic,
		Message:   "Malformed taxonomy topic skipped",
		Details:   fmt.Sprintf("topicId: %s, %s", topicID, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWeightBankError creates a non-retryable weight bank validation error.
func NewInvalidWeightBankError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWeightBank,
		Message:   "Keyword weight bank failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFeedbackError creates a non-retryable feedback validation error.
func NewInvalidFeedbackError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFeedback,
		Message:   "Feedback event rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientEvidenceError records a deliberate negative classification.
func NewInsufficientEvidenceError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientEvidence,
		Message:   "Match evidence below validity floor",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignalScoringFailedError wraps a per-signal scoring failure. The batch
// continues; the signal is returned with score 0 and isValid false.
func NewSignalScoringFailedError(signalID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignalScoringFailed,
		Message:   "Signal scoring failed",
		Details:   fmt.Sprintf("signalId: %s, error: %s", signalID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Recommendation digest send failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry / Category Policy
// ==========================

// GetRetryCount returns the number of retries appropriate for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryTimeout:
		return 3
	case ErrCodeQueryExecutionFailed, ErrCodeCacheUnavailable, ErrCodeHistorySearchFailed:
		return 2
	case ErrCodeClassifierTimeout, ErrCodeClassifierUnavailable, ErrCodeNotificationSendFailed:
		return 1
	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeClassifierTimeout, ErrCodeClassifierUnavailable, ErrCodeClassifierBadResponse:
		return "classifier"
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeQueryTimeout:
		return "store"
	case ErrCodeCacheUnavailable:
		return "cache"
	case ErrCodeHistorySearchFailed:
		return "history"
	case ErrCodeInvalidTaxonomyTopic, ErrCodeInvalidWeightBank, ErrCodeInvalidFeedback:
		return "validation"
	case ErrCodeInsufficientEvidence:
		return "evidence"
	case ErrCodeNotificationSendFailed:
		return "notify"
	default:
		return "internal"
	}
}
