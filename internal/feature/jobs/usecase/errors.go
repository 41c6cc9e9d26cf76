package usecase

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found by ID,
	// or when it belongs to a different user.
	ErrJobNotFound = errors.New("job not found")
)
