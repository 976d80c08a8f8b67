package seeder

import "errors"

// Sentinel errors for seeding runs.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrVerification     = errors.New("verification failed")
	ErrInvalidConfig    = errors.New("invalid seeder config")
)
