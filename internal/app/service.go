// Package service implements the clientes record operations used by the
// HTTP API and the Lambda handler.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/adapters/source"
	"github.com/okian/clientes/internal/domain/ingest"
	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
	"github.com/okian/clientes/pkg/metrics"
)

// Import run outcomes reported to metrics.
const (
	importOutcomeRemoteStatus  = "remote_status"
	importOutcomeInvalidFormat = "invalid_format"
)

// Fetcher retrieves the bulk-import payload.
type Fetcher interface {
	Fetch(ctx context.Context) (source.Response, error)
}

// Service implements the record operations over a repository.Store.
type Service struct {
	store        repository.Store
	source       Fetcher
	maxScanPages int
	newID        func() string
	closers      []func(context.Context) error

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSource sets the bulk-import source.
func WithSource(src Fetcher) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithMaxScanPages bounds List pagination; 0 means unbounded.
func WithMaxScanPages(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxScanPages = n
		}
	}
}

// WithIDGenerator replaces the UUID v4 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCloser registers a function run by Stop, in reverse order.
func WithCloser(fn func(context.Context) error) Option {
	return func(s *Service) {
		if fn != nil {
			s.closers = append(s.closers, fn)
		}
	}
}

// New creates a service. Without WithStore records live in memory.
func New(opts ...Option) *Service {
	s := &Service{
		store:  repository.NewMemoryStore(),
		newID:  uuid.NewString,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stop releases store connections.
func (s *Service) Stop(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Get returns the record for id, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*record.Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.store.Get(ctx, id)
}

// List returns every record, following scan pages until none remain.
func (s *Service) List(ctx context.Context) ([]*record.Record, error) {
	items := make([]*record.Record, 0)
	token := ""
	for pages := 1; ; pages++ {
		page, err := s.store.Scan(ctx, token)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.Next == "" {
			return items, nil
		}
		if s.maxScanPages > 0 && pages >= s.maxScanPages {
			return nil, fmt.Errorf("%w: %d pages, %d items", ErrScanLimit, pages, len(items))
		}
		token = page.Next
	}
}

// Create stores r under a fresh clientesId, replacing any caller value.
func (s *Service) Create(ctx context.Context, r *record.Record) (*record.Record, error) {
	r.SetID(s.newID())
	if err := s.store.Put(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateField sets one attribute of the record id.
func (s *Service) UpdateField(ctx context.Context, id, field string, value record.Value) (repository.UpdateResult, error) {
	if id == "" {
		return repository.UpdateResult{}, ErrMissingID
	}
	return s.store.UpdateField(ctx, id, field, value)
}

// Delete removes the record id. Absent ids are not an error.
func (s *Service) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	if id == "" {
		return repository.DeleteResult{}, ErrMissingID
	}
	return s.store.Delete(ctx, id)
}

// Import fetches the remote clientes list and stores each element under a
// fresh id, one at a time. A record the store rejects is logged and skipped.
// A remote status other than 200 is reported in the result, not as an error.
func (s *Service) Import(ctx context.Context) (ingest.Result, error) {
	if s.source == nil {
		return ingest.Result{}, ErrNoSource
	}

	resp, err := s.source.Fetch(ctx)
	if err != nil {
		metrics.RecordImportRun(metrics.OutcomeError)
		return ingest.Result{}, err
	}
	result := ingest.Result{RemoteStatus: resp.StatusCode}
	if !result.RemoteOK() {
		s.logger.Warn(ctx, "import source answered with non-200 status", logger.Int("status", resp.StatusCode))
		metrics.RecordImportRun(importOutcomeRemoteStatus)
		return result, nil
	}

	items, err := ingest.ExtractClientes(resp.Body)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidClientes) {
			metrics.RecordImportRun(importOutcomeInvalidFormat)
		} else {
			metrics.RecordImportRun(metrics.OutcomeError)
		}
		return result, err
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			metrics.RecordImportRun(metrics.OutcomeError)
			return result, err
		}
		r, err := ingest.AsRecord(item)
		if err != nil {
			metrics.RecordImportRun(metrics.OutcomeError)
			return result, fmt.Errorf("element %d: %w", i, err)
		}

		id := s.newID()
		r.SetID(id)
		if err := s.store.Put(ctx, r); err != nil {
			if ctx.Err() != nil {
				metrics.RecordImportRun(metrics.OutcomeError)
				return result, err
			}
			result.Failed++
			metrics.RecordImportRecord(metrics.OutcomeError)
			s.logger.Error(ctx, "failed to store imported record",
				logger.Int("index", i),
				logger.String("clientesId", id),
				logger.Error(err),
			)
			continue
		}
		result.Imported++
		metrics.RecordImportRecord(metrics.OutcomeSuccess)
	}

	s.logger.Info(ctx, "import finished",
		logger.Int("imported", result.Imported),
		logger.Int("failed", result.Failed),
	)
	metrics.RecordImportRun(metrics.OutcomeSuccess)
	return result, nil
}
