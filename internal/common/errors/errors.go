// Package errors provides standardized error handling for the agent and its
// workflow workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Degradations recovered inside the agent. These are logged and counted,
// never returned to a caller of ProcessAgentQuery.
const (
	ErrCodeRetrievalDegraded   ErrorCode = "RETRIEVAL_DEGRADED"
	ErrCodeContextLookupFailed ErrorCode = "CONTEXT_LOOKUP_FAILED"
	ErrCodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrCodeParseAmbiguity      ErrorCode = "PARSE_AMBIGUITY"
	ErrCodeCatastrophicFailure ErrorCode = "CATASTROPHIC_FAILURE"
)

// Errors surfaced to workers and the HTTP API.
const (
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeEmbeddingFailed          ErrorCode = "EMBEDDING_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeUnsupportedChannel       ErrorCode = "UNSUPPORTED_CHANNEL"
	ErrCodeComplianceViolation      ErrorCode = "COMPLIANCE_VIOLATION"
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

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Fields flattens the error for structured logging.
func (e *StandardError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":     string(e.Code),
		"errorCategory": GetErrorCategory(e.Code),
		"message":       e.Message,
	}
	if e.Details != "" {
		fields["details"] = e.Details
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewRetrievalDegradedError records a knowledge tier that failed and was skipped.
func NewRetrievalDegradedError(tier string, err error) *StandardError {
	return newError(ErrCodeRetrievalDegraded, fmt.Sprintf("Knowledge retrieval degraded at %s", tier), detailsOf(err), false).
		WithMetadata("tier", tier)
}

// NewContextLookupFailedError records a structured-store lookup replaced by an explanatory line.
func NewContextLookupFailedError(lookup string, err error) *StandardError {
	return newError(ErrCodeContextLookupFailed, fmt.Sprintf("Context lookup %s failed", lookup), detailsOf(err), false).
		WithMetadata("lookup", lookup)
}

// NewGenerationFailedError records a model call replaced by fallback text.
func NewGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeGenerationFailed, "Generative model call failed", detailsOf(err), false)
}

// NewParseAmbiguityError records a reply section that had to be defaulted.
func NewParseAmbiguityError(field string) *StandardError {
	return newError(ErrCodeParseAmbiguity, "Model reply section missing", fmt.Sprintf("field: %s", field), false).
		WithMetadata("field", field)
}

// NewCatastrophicFailureError records a failure caught at the agent entry point.
func NewCatastrophicFailureError(cause interface{}) *StandardError {
	return newError(ErrCodeCatastrophicFailure, "Agent query failed unexpectedly", fmt.Sprint(cause), false)
}

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", detailsOf(err), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, detailsOf(err)), true)
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed",
		fmt.Sprintf("index: %s, error: %s", index, detailsOf(err)), true)
}

// NewEmbeddingFailedError creates a retryable embedding provider error.
func NewEmbeddingFailedError(err error) *StandardError {
	return newError(ErrCodeEmbeddingFailed, "Embedding provider error", detailsOf(err), true)
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, detailsOf(err)), true)
}

// NewUnsupportedChannelError creates a non-retryable channel error.
func NewUnsupportedChannelError(channel string) *StandardError {
	return newError(ErrCodeUnsupportedChannel, "Channel not supported for delivery", fmt.Sprintf("channel: %s", channel), false)
}

// NewComplianceViolationError creates a non-retryable compliance error.
func NewComplianceViolationError(issues []string) *StandardError {
	return newError(ErrCodeComplianceViolation, "Message failed compliance check", strings.Join(issues, "; "), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeEmbeddingFailed:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError when one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RETRIEVAL") || strings.Contains(codeStr, "EMBEDDING") || strings.Contains(codeStr, "SEARCH"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "CONTEXT") || strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "PARSE"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "CHANNEL") || strings.Contains(codeStr, "COMPLIANCE"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CATASTROPHIC"):
		return "INTERNAL"
	default:
		return "OTHER"
	}
}
