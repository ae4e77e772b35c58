package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by storage lookups that match no record.
	ErrNotFound = errors.New("blacklist entry not found")

	// ErrUniqueViolation is returned by storage when an insert collides with an existing email.
	ErrUniqueViolation = errors.New("blacklist entry already stored")

	// ErrDuplicateEmail matches any *DuplicateEmailError.
	ErrDuplicateEmail = errors.New("email already blacklisted")
)

// DuplicateEmailError reports an attempt to blacklist an email that is already present.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("Email %s already exists in blacklist", e.Email)
}

func (e *DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}
