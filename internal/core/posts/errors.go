package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for post creation
var (
	// ErrEmptyPost is returned when a post has neither text nor an attachment
	ErrEmptyPost = errors.New("post must have text or an attachment")

	// ErrMultipleEmbeds is returned when more than one attachment kind is requested
	ErrMultipleEmbeds = errors.New("only one of external link, images or video may be attached")

	// ErrInvalidPostURL is returned when a reply target is not a post URL or AT-URI
	ErrInvalidPostURL = errors.New("invalid post URL")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Err     error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel behind the validation error, if any
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// newSentinelValidationError creates a validation error that matches err
// under errors.Is
func newSentinelValidationError(field string, err error) error {
	return &ValidationError{
		Err:     err,
		Field:   field,
		Message: err.Error(),
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string // e.g., "reply parent"
	ID       string // Resource identifier
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}
