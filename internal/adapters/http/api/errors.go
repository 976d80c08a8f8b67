package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingParam = errors.New("missing query parameter")
	ErrEncode       = errors.New("response encoding failed")
)
