package repository

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/clientes/internal/domain/record"
)

// Operation names shared by every store for errors and metrics.
const (
	OpGet    = "get"
	OpPut    = "put"
	OpUpdate = "update"
	OpDelete = "delete"
	OpScan   = "scan"
)

// MemoryStore keeps records in a map. Scan pages are ordered by key and the
// continuation token is the last key of the previous page.
type MemoryStore struct {
	mu       sync.RWMutex
	items    map[string]*record.Record
	pageSize int
	failures map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		items:    make(map[string]*record.Record),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		return err
	}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fail(OpGet); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, r *record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail(OpPut); err != nil {
		return err
	}
	id, err := RequireID(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[id] = r.Clone()
	s.mu.Unlock()
	return nil
}

// UpdateField implements Store.
func (s *MemoryStore) UpdateField(ctx context.Context, id, field string, value record.Value) (UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, err
	}
	if err := s.fail(OpUpdate); err != nil {
		return UpdateResult{}, err
	}
	if err := CheckUpdatableField(OpUpdate, field); err != nil {
		return UpdateResult{}, err
	}

	s.mu.Lock()
	r, ok := s.items[id]
	if !ok {
		r = record.New()
		r.SetID(id)
		s.items[id] = r
	}
	r.Set(field, value)
	s.mu.Unlock()

	attrs := record.New()
	attrs.Set(field, value)
	return UpdateResult{Attributes: attrs, ResponseMetadata: NewMetadata("")}, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) (DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return DeleteResult{}, err
	}
	if err := s.fail(OpDelete); err != nil {
		return DeleteResult{}, err
	}
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return DeleteResult{ResponseMetadata: NewMetadata("")}, nil
}

// Scan implements Store.
func (s *MemoryStore) Scan(ctx context.Context, token string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if err := s.fail(OpScan); err != nil {
		return Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if token != "" {
		start = sort.Search(len(keys), func(i int) bool { return keys[i] > token })
	}
	end := start + s.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	page := Page{Items: make([]*record.Record, 0, end-start)}
	for _, k := range keys[start:end] {
		page.Items = append(page.Items, s.items[k].Clone())
	}
	if end < len(keys) {
		page.Next = keys[end-1]
	}
	return page, nil
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// NewMetadata returns a successful call's metadata. An empty requestID is
// replaced with a generated one.
func NewMetadata(requestID string) Metadata {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return Metadata{RequestID: requestID, HTTPStatusCode: http.StatusOK}
}
