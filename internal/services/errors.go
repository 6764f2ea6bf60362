package services

import (
	"errors"

	apperrors "github.com/studydesk/study-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal error")

	// Test specific errors
	ErrTestNotFound     = errors.New("test not found")
	ErrTestNameRequired = errors.New("test name is required")

	// Question specific errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionInvalidType = errors.New("invalid question type")

	// Attempt specific errors
	ErrAttemptNotFound = errors.New("attempt not found")

	// Session specific errors
	ErrSessionNoQuestions = errors.New("session has no questions")

	// Import specific errors
	ErrImportFileNotFound   = errors.New("import file not found")
	ErrNoQuestionsFound     = errors.New("no questions found in the file")
	ErrInvalidImportFormat  = errors.New("invalid import format")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrImportFileNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsRecoverableImport reports whether an import error is something the user
// can fix by picking another file, as opposed to a storage failure.
func IsRecoverableImport(err error) bool {
	return errors.Is(err, ErrImportFileNotFound) ||
		errors.Is(err, ErrNoQuestionsFound) ||
		errors.Is(err, ErrInvalidImportFormat) ||
		errors.Is(err, ErrUnsupportedExtension)
}
