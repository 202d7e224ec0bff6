package models

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrAccountNotFound      = errors.New("account not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

// InsufficientCreditsError carries the amounts a client needs to prompt for a
// purchase instead of a retry.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}
