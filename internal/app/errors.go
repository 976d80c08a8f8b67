package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrScanLimit      = errors.New("scan page limit reached before the collection was exhausted")
	ErrNoSource       = errors.New("no import source configured")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrMissingID      = errors.New("clientesId is required")
)
