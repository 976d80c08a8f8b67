// Package repository defines the record store port, its errors and an
// in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/clientes/internal/domain/record"
)

// Metadata mirrors the response metadata a key-value store reports per call.
type Metadata struct {
	RequestID      string `json:"RequestId"`
	HTTPStatusCode int    `json:"HTTPStatusCode"`
}

// UpdateResult is returned by UpdateField: the post-update value of the field.
type UpdateResult struct {
	Attributes       *record.Record `json:"Attributes"`
	ResponseMetadata Metadata       `json:"ResponseMetadata"`
}

// DeleteResult is returned by Delete.
type DeleteResult struct {
	ResponseMetadata Metadata `json:"ResponseMetadata"`
}

// Page is one scan page. Next is empty when no further pages exist.
type Page struct {
	Items []*record.Record
	Next  string
}

// Store provides access to the clientes collection keyed by clientesId.
type Store interface {
	// Get returns the record stored under id, or nil when absent.
	Get(ctx context.Context, id string) (*record.Record, error)

	// Put writes r, replacing any record with the same clientesId.
	Put(ctx context.Context, r *record.Record) error

	// UpdateField sets one attribute, creating the record when absent.
	// The field name is passed as data, never spliced into an expression.
	UpdateField(ctx context.Context, id, field string, value record.Value) (UpdateResult, error)

	// Delete removes id. Deleting an absent id succeeds.
	Delete(ctx context.Context, id string) (DeleteResult, error)

	// Scan returns the page that follows token ("" for the first page).
	Scan(ctx context.Context, token string) (Page, error)
}
