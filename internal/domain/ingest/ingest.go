// Package ingest decodes bulk-import payloads fetched from the remote source.
//
// The remote endpoint answers with an envelope whose "body" is either a JSON
// object or a string containing JSON. The body carries a "clientes" list.
package ingest

import (
	"fmt"

	"github.com/okian/clientes/internal/domain/record"
)

const (
	bodyField     = "body"
	clientesField = "clientes"
)

// ExtractClientes returns the elements of body.clientes. Elements are not
// checked here; callers validate each one as they process it.
func ExtractClientes(payload []byte) (record.List, error) {
	outer, err := record.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	raw, ok := outer.Get(bodyField)
	if !ok {
		return nil, ErrMissingBody
	}

	body, err := decodeBody(raw)
	if err != nil {
		return nil, err
	}

	items, ok := body.Get(clientesField)
	if !ok {
		return record.List{}, nil
	}
	list, ok := items.(record.List)
	if !ok {
		return nil, ErrInvalidClientes
	}
	return list, nil
}

func decodeBody(raw record.Value) (*record.Record, error) {
	switch v := raw.(type) {
	case *record.Record:
		return v, nil
	case record.String:
		// Non-JSON text is kept as the raw string and rejected below.
		parsed, err := record.ParseValue([]byte(v))
		if err != nil {
			return nil, fmt.Errorf("%w: body is a non-JSON string", ErrBodyNotObject)
		}
		obj, ok := parsed.(*record.Record)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrBodyNotObject, parsed)
		}
		return obj, nil
	case record.Null:
		return nil, ErrMissingBody
	default:
		return nil, fmt.Errorf("%w: got %T", ErrBodyNotObject, raw)
	}
}

// AsRecord returns the element as a record, or ErrElementNotObject.
func AsRecord(v record.Value) (*record.Record, error) {
	r, ok := v.(*record.Record)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrElementNotObject, v)
	}
	return r, nil
}

// Result summarizes one bulk import run.
type Result struct {
	// RemoteStatus is the status code answered by the remote source.
	RemoteStatus int
	// Imported counts records that were persisted.
	Imported int
	// Failed counts records the store rejected.
	Failed int
}

// RemoteOK reports whether the remote source answered 200.
func (r Result) RemoteOK() bool { return r.RemoteStatus == 200 }
