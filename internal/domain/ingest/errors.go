package ingest

import "errors"

var (
	// ErrMalformedPayload is returned when the remote response is not a JSON object.
	ErrMalformedPayload = errors.New("ingest: payload is not a JSON object")
	// ErrMissingBody is returned when the payload has no usable "body".
	ErrMissingBody = errors.New("ingest: payload has no body")
	// ErrBodyNotObject is returned when the decoded body is not an object.
	ErrBodyNotObject = errors.New("ingest: body is not an object")
	// ErrInvalidClientes is returned when "clientes" is present but not a list.
	ErrInvalidClientes = errors.New("ingest: clientes is not a list")
	// ErrElementNotObject is returned for a clientes element that is not an object.
	ErrElementNotObject = errors.New("ingest: clientes element is not an object")
)
