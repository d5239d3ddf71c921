package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these
// so callers can translate with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrBusinessRule = errors.New("business rule violated")
)

var (
	ErrPropertyNotFound     = fmt.Errorf("property %w", ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)

	ErrAlreadyPublished     = fmt.Errorf("%w: property is already published", ErrBusinessRule)
	ErrLastImage            = fmt.Errorf("%w: property must keep at least one image", ErrBusinessRule)
	ErrDuplicateImage       = fmt.Errorf("%w: image already attached", ErrBusinessRule)
	ErrImageNotFound        = fmt.Errorf("%w: image not attached", ErrBusinessRule)
	ErrInvalidTransition    = fmt.Errorf("%w: invalid status transition", ErrBusinessRule)
	ErrSlugTaken            = fmt.Errorf("%w: slug already taken", ErrBusinessRule)
	ErrCurrencyMismatch     = fmt.Errorf("%w: cannot compare prices in different currencies", ErrBusinessRule)
	ErrPlanLimitReached     = fmt.Errorf("%w: organization plan property limit reached", ErrBusinessRule)
	ErrOrganizationInactive = fmt.Errorf("%w: organization is not active", ErrBusinessRule)
)

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// InvalidParam reports a malformed input outside the value objects, such as
// a query parameter.
func InvalidParam(field, reason string) error { return invalid(field, reason) }

// Unauthorized builds the error returned when a caller is not the owner of
// the resource it tries to change.
func Unauthorized(action string) error {
	return fmt.Errorf("%w: you are not authorized to %s", ErrUnauthorized, action)
}
