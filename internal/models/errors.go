package models

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientCredits is returned when a charge would take a profile
	// past its credit allowance.
	ErrInsufficientCredits = errors.New("insufficient credits")

	ErrUsernameTaken = errors.New("username already taken")
)
