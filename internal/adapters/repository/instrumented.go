package repository

import (
	"context"
	"time"

	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/metrics"
)

// Instrumented wraps a Store and records call counts and latency per
// operation, labelled with backend.
type Instrumented struct {
	next    Store
	backend string
}

// Instrument returns s wrapped with metrics.
func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{next: s, backend: backend}
}

func (i *Instrumented) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.RecordStoreOperation(op, i.backend, outcome, float64(time.Since(start).Microseconds())/1000.0)
}

// Get implements Store.
func (i *Instrumented) Get(ctx context.Context, id string) (r *record.Record, err error) {
	defer func(start time.Time) { i.observe(OpGet, start, err) }(time.Now())
	return i.next.Get(ctx, id)
}

// Put implements Store.
func (i *Instrumented) Put(ctx context.Context, r *record.Record) (err error) {
	defer func(start time.Time) { i.observe(OpPut, start, err) }(time.Now())
	return i.next.Put(ctx, r)
}

// UpdateField implements Store.
func (i *Instrumented) UpdateField(ctx context.Context, id, field string, value record.Value) (res UpdateResult, err error) {
	defer func(start time.Time) { i.observe(OpUpdate, start, err) }(time.Now())
	return i.next.UpdateField(ctx, id, field, value)
}

// Delete implements Store.
func (i *Instrumented) Delete(ctx context.Context, id string) (res DeleteResult, err error) {
	defer func(start time.Time) { i.observe(OpDelete, start, err) }(time.Now())
	return i.next.Delete(ctx, id)
}

// Scan implements Store.
func (i *Instrumented) Scan(ctx context.Context, token string) (page Page, err error) {
	defer func(start time.Time) { i.observe(OpScan, start, err) }(time.Now())
	return i.next.Scan(ctx, token)
}
