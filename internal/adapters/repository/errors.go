package repository

import (
	"errors"
	"fmt"

	"github.com/okian/clientes/internal/domain/record"
)

// Sentinel kinds for store errors.
var (
	ErrMissingID    = errors.New("record has no string clientesId")
	ErrInvalidToken = errors.New("invalid scan continuation token")
)

// Error codes used by stores that do not report their own.
const (
	CodeValidation = "ValidationException"
)

// KeyUpdateMessage is reported when an update targets the key attribute.
var KeyUpdateMessage = fmt.Sprintf("Cannot update attribute %s. This attribute is part of the key", record.IDField)

// StoreError is a failure reported by the backing store. Message is safe to
// return to callers.
type StoreError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("store %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("store %s: %s: %s", e.Op, e.Code, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

// AsStoreError extracts a StoreError from err's chain.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CheckUpdatableField rejects updates of the key attribute the way a
// key-value store does.
func CheckUpdatableField(op, field string) error {
	if field == record.IDField {
		return &StoreError{Op: op, Code: CodeValidation, Message: KeyUpdateMessage}
	}
	return nil
}

// RequireID returns the record key or ErrMissingID.
func RequireID(r *record.Record) (string, error) {
	if r == nil {
		return "", ErrMissingID
	}
	id, ok := r.ID()
	if !ok || id == "" {
		return "", ErrMissingID
	}
	return id, nil
}
