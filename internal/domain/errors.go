package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantRequired signals a request without a resolvable tenant.
	ErrTenantRequired = errors.New("tenant required")
	// ErrCatalogUnavailable signals that no catalog snapshot exists for the tenant.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrExtractionFailed signals a permanent vision extraction failure.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrExtractionTransient signals a retryable vision extraction failure.
	ErrExtractionTransient = errors.New("extraction temporarily unavailable")
	// ErrNotReferral signals that the uploaded image is not a pathology referral.
	ErrNotReferral = errors.New("not a pathology referral")
	// ErrInvalidImage signals an unsupported or oversized image upload.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
)

// NotReferralError wraps ErrNotReferral with the model's own explanation.
type NotReferralError struct {
	Reason string
}

func (e *NotReferralError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotReferral.Error(), e.Reason)
}

func (e *NotReferralError) Unwrap() error { return ErrNotReferral }

// NewNotReferral creates a not-a-referral error.
func NewNotReferral(reason string) error {
	return &NotReferralError{Reason: reason}
}
