package service

import (
	"errors"
	"fmt"

	"github.com/shinyyama/pharmacy-admin-backend/internal/assign"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrNoSellerAvailable = assign.ErrNoSellerAvailable
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// wrap tags repository errors with what failed, turning repository.ErrNotFound
// into ErrNotFound. Service sentinels pass through untouched.
func wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if isServiceError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isServiceError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrValidation, ErrNoSellerAvailable, ErrInvalidTransition, ErrUnauthorized, ErrForbidden} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
