// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeSlotSchemaNotFound ErrorCode = "SLOT_SCHEMA_NOT_FOUND"

	ErrCodeKnowledgeFetchFailed ErrorCode = "KNOWLEDGE_FETCH_FAILED"
	ErrCodeKnowledgeTimeout     ErrorCode = "KNOWLEDGE_TIMEOUT"
	ErrCodePersonaFetchFailed   ErrorCode = "PERSONA_FETCH_FAILED"
	ErrCodeBrandFetchFailed     ErrorCode = "BRAND_FETCH_FAILED"

	ErrCodeSynthesisFailed         ErrorCode = "SYNTHESIS_FAILED"
	ErrCodeSynthesisTimeout        ErrorCode = "SYNTHESIS_TIMEOUT"
	ErrCodeSynthesisSchemaMismatch ErrorCode = "SYNTHESIS_SCHEMA_MISMATCH"

	ErrCodeContentValidationFailed ErrorCode = "CONTENT_VALIDATION_FAILED"

	ErrCodeUnknown ErrorCode = "UNKNOWN_ERROR"
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

// New wraps a classified error into the standard taxonomy shape.
func New(code ErrorCode, err error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   err.Error(),
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
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

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:            "INVALID_INPUT",
	ErrCodeTemplateNotFound:        "TEMPLATE_NOT_FOUND",
	ErrCodeSlotSchemaNotFound:      "SLOT_SCHEMA_NOT_FOUND",
	ErrCodeKnowledgeFetchFailed:    "KNOWLEDGE_FETCH_FAILED",
	ErrCodeKnowledgeTimeout:        "KNOWLEDGE_TIMEOUT",
	ErrCodePersonaFetchFailed:      "PERSONA_FETCH_FAILED",
	ErrCodeBrandFetchFailed:        "BRAND_FETCH_FAILED",
	ErrCodeSynthesisFailed:         "SYNTHESIS_FAILED",
	ErrCodeSynthesisTimeout:        "SYNTHESIS_TIMEOUT",
	ErrCodeSynthesisSchemaMismatch: "SYNTHESIS_SCHEMA_MISMATCH",
	ErrCodeContentValidationFailed: "CONTENT_VALIDATION_FAILED",
	ErrCodeUnknown:                 "UNKNOWN_ERROR",
}

// GetRetryCount returns the recommended retry count per error class.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeKnowledgeFetchFailed,
		ErrCodePersonaFetchFailed,
		ErrCodeBrandFetchFailed,
		ErrCodeSynthesisFailed:
		return 3 // Retryable technical errors

	case ErrCodeKnowledgeTimeout:
		return 2

	case ErrCodeSynthesisTimeout:
		return 1 // One retry, then the pipeline falls back

	default:
		return 0 // Configuration and validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
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
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsConfigurationError reports whether the code indicates a programming or
// deployment defect rather than a data-quality issue.
func IsConfigurationError(code ErrorCode) bool {
	return code == ErrCodeTemplateNotFound || code == ErrCodeSlotSchemaNotFound
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "SLOT"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "KNOWLEDGE") || strings.Contains(codeStr, "PERSONA") || strings.Contains(codeStr, "BRAND"):
		return "UPSTREAM_DATA"
	case strings.Contains(codeStr, "SYNTHESIS"):
		return "AI"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
