package utils

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	ErrAccountNotFound       = fmt.Errorf("account %w", ErrNotFound)
	ErrWorkspaceNotFound     = fmt.Errorf("workspace %w", ErrNotFound)
	ErrCategoryNotFound      = fmt.Errorf("category %w", ErrNotFound)
	ErrWalkthroughNotFound   = fmt.Errorf("walkthrough %w", ErrNotFound)
	ErrStepNotFound          = fmt.Errorf("step %w", ErrNotFound)
	ErrVersionNotFound       = fmt.Errorf("version %w", ErrNotFound)
	ErrSubscriptionNotFound  = fmt.Errorf("subscription %w", ErrNotFound)
	ErrNoRecoverableSnapshot = fmt.Errorf("snapshot with recoverable media %w", ErrNotFound)
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrSlugTaken          = errors.New("slug already in use")
	ErrAlreadyMember      = errors.New("account is already a member")

	ErrPlanLimitReached   = errors.New("plan limit reached")
	ErrFeatureNotInPlan   = errors.New("feature not available on current plan")
	ErrInvalidWebhook     = errors.New("webhook signature could not be verified")
	ErrUpstreamUnverified = errors.New("subscription state could not be verified with PayPal")

	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
)

// ValidationError names the request field that was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
