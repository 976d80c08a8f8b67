package record

import "errors"

var (
	// ErrNotObject is returned when a JSON document must be an object and is not.
	ErrNotObject = errors.New("record: JSON value is not an object")
	// ErrTrailingData is returned when extra tokens follow the JSON value.
	ErrTrailingData = errors.New("record: trailing data after JSON value")
	// ErrUnsupportedValue is returned when encoding a Value of unknown type.
	ErrUnsupportedValue = errors.New("record: unsupported value")
	// ErrNumberRange is returned for numbers with too many digits or too large an exponent.
	ErrNumberRange = errors.New("record: number out of range")
)
