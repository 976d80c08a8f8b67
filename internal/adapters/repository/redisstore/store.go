// Package redisstore implements the record store on Redis. Each record is a
// hash at "<prefix>:<clientesId>" whose fields hold JSON-encoded values.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/record"
)

const defaultScanCount = 100

// Store is a repository.Store backed by Redis hashes.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	scanCount int64
}

// Option configures a Store.
type Option func(*Store)

// WithScanCount sets the COUNT hint passed to SCAN.
func WithScanCount(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.scanCount = int64(n)
		}
	}
}

// New creates a store over client. prefix namespaces the keys.
func New(client redis.UniversalClient, prefix string, opts ...Option) *Store {
	s := &Store{client: client, prefix: prefix, scanCount: defaultScanCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient connects to addr and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return client, nil
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, id string) (*record.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, classify(repository.OpGet, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return decodeHash(fields)
}

// Put implements repository.Store. The previous hash is dropped so removed
// fields do not survive a replace.
func (s *Store) Put(ctx context.Context, r *record.Record) error {
	id, err := repository.RequireID(r)
	if err != nil {
		return err
	}
	values, err := encodeHash(r)
	if err != nil {
		return err
	}
	key := s.key(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, values...)
		return nil
	})
	if err != nil {
		return classify(repository.OpPut, err)
	}
	return nil
}

// UpdateField implements repository.Store.
func (s *Store) UpdateField(ctx context.Context, id, field string, value record.Value) (repository.UpdateResult, error) {
	if err := repository.CheckUpdatableField(repository.OpUpdate, field); err != nil {
		return repository.UpdateResult{}, err
	}
	idJSON, err := record.Encode(record.String(id))
	if err != nil {
		return repository.UpdateResult{}, err
	}
	valueJSON, err := record.Encode(value)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	if err := s.client.HSet(ctx, s.key(id), record.IDField, string(idJSON), field, string(valueJSON)).Err(); err != nil {
		return repository.UpdateResult{}, classify(repository.OpUpdate, err)
	}

	attrs := record.New()
	attrs.Set(field, value)
	return repository.UpdateResult{Attributes: attrs, ResponseMetadata: repository.NewMetadata("")}, nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return repository.DeleteResult{}, classify(repository.OpDelete, err)
	}
	return repository.DeleteResult{ResponseMetadata: repository.NewMetadata("")}, nil
}

// Scan implements repository.Store. The token is the SCAN cursor; a
// returned cursor of 0 ends the iteration. SCAN may report a key twice.
func (s *Store) Scan(ctx context.Context, token string) (repository.Page, error) {
	var cursor uint64
	if token != "" {
		c, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return repository.Page{}, fmt.Errorf("%w: %q", repository.ErrInvalidToken, token)
		}
		cursor = c
	}

	keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", s.scanCount).Result()
	if err != nil {
		return repository.Page{}, classify(repository.OpScan, err)
	}

	page := repository.Page{Items: make([]*record.Record, 0, len(keys))}
	if len(keys) > 0 {
		cmds := make([]*redis.MapStringStringCmd, len(keys))
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, k := range keys {
				cmds[i] = pipe.HGetAll(ctx, k)
			}
			return nil
		})
		if err != nil {
			return repository.Page{}, classify(repository.OpScan, err)
		}
		for _, cmd := range cmds {
			fields := cmd.Val()
			if len(fields) == 0 {
				continue
			}
			r, err := decodeHash(fields)
			if err != nil {
				return repository.Page{}, err
			}
			page.Items = append(page.Items, r)
		}
	}

	if next != 0 {
		page.Next = strconv.FormatUint(next, 10)
	}
	return page, nil
}

func encodeHash(r *record.Record) ([]any, error) {
	values := make([]any, 0, r.Len()*2)
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		b, err := record.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		values = append(values, k, string(b))
	}
	return values, nil
}

// decodeHash rebuilds a record; hash fields are unordered so keys are sorted.
func decodeHash(fields map[string]string) (*record.Record, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := record.New()
	for _, k := range keys {
		v, err := record.ParseValue([]byte(fields[k]))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		r.Set(k, v)
	}
	return r, nil
}

// classify turns errors reported by the Redis server into StoreError.
func classify(op string, err error) error {
	var rerr redis.Error
	if errors.As(err, &rerr) && !errors.Is(err, redis.Nil) {
		msg := rerr.Error()
		code, _, _ := strings.Cut(msg, " ")
		return &repository.StoreError{Op: op, Code: code, Message: msg, Err: err}
	}
	return err
}
