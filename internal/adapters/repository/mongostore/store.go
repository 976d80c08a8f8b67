// Package mongostore implements the record store on MongoDB. Documents use
// the clientesId as _id, so scan pages are ordered by key.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/record"
)

const defaultPageSize = 100

// Collection is the subset of *mongo.Collection the store uses.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Store is a repository.Store backed by one MongoDB collection.
type Store struct {
	coll     Collection
	pageSize int64
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the number of documents per scan page.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = int64(n)
		}
	}
}

// New creates a store over coll.
func New(coll Collection, opts ...Option) *Store {
	s := &Store{coll: coll, pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient connects to uri and pings the primary.
func NewClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func byID(id string) bson.D {
	return bson.D{{Key: idKey, Value: id}}
}

// Get implements repository.Store.
func (s *Store) Get(ctx context.Context, id string) (*record.Record, error) {
	var doc bson.D
	err := s.coll.FindOne(ctx, byID(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(repository.OpGet, err)
	}
	return fromDocument(doc)
}

// Put implements repository.Store.
func (s *Store) Put(ctx context.Context, r *record.Record) error {
	id, err := repository.RequireID(r)
	if err != nil {
		return err
	}
	doc, err := toDocument(id, r)
	if err != nil {
		return err
	}
	if _, err := s.coll.ReplaceOne(ctx, byID(id), doc, options.Replace().SetUpsert(true)); err != nil {
		return classify(repository.OpPut, err)
	}
	return nil
}

// UpdateField implements repository.Store. field is a $set key, so a dotted
// name addresses a nested field the way MongoDB paths do.
func (s *Store) UpdateField(ctx context.Context, id, field string, value record.Value) (repository.UpdateResult, error) {
	if err := repository.CheckUpdatableField(repository.OpUpdate, field); err != nil {
		return repository.UpdateResult{}, err
	}
	bv, err := toBSON(value)
	if err != nil {
		return repository.UpdateResult{}, err
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: record.IDField, Value: id},
		{Key: field, Value: bv},
	}}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: idKey, Value: 0}, {Key: field, Value: 1}})

	var doc bson.D
	if err := s.coll.FindOneAndUpdate(ctx, byID(id), update, opts).Decode(&doc); err != nil {
		return repository.UpdateResult{}, classify(repository.OpUpdate, err)
	}
	attrs, err := fromDocument(doc)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{Attributes: attrs, ResponseMetadata: repository.NewMetadata("")}, nil
}

// Delete implements repository.Store.
func (s *Store) Delete(ctx context.Context, id string) (repository.DeleteResult, error) {
	if _, err := s.coll.DeleteOne(ctx, byID(id)); err != nil {
		return repository.DeleteResult{}, classify(repository.OpDelete, err)
	}
	return repository.DeleteResult{ResponseMetadata: repository.NewMetadata("")}, nil
}

// Scan implements repository.Store. The token is the last _id of the
// previous page.
func (s *Store) Scan(ctx context.Context, token string) (repository.Page, error) {
	filter := bson.D{}
	if token != "" {
		filter = bson.D{{Key: idKey, Value: bson.D{{Key: "$gt", Value: token}}}}
	}
	opts := options.Find().SetSort(bson.D{{Key: idKey, Value: 1}}).SetLimit(s.pageSize)

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return repository.Page{}, classify(repository.OpScan, err)
	}
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return repository.Page{}, classify(repository.OpScan, err)
	}

	page := repository.Page{Items: make([]*record.Record, 0, len(docs))}
	var last string
	for _, doc := range docs {
		if len(doc) > 0 && doc[0].Key == idKey {
			last, _ = doc[0].Value.(string)
		}
		r, err := fromDocument(doc)
		if err != nil {
			return repository.Page{}, err
		}
		page.Items = append(page.Items, r)
	}
	if int64(len(docs)) == s.pageSize {
		page.Next = last
	}
	return page, nil
}

// classify turns errors reported by the server into StoreError.
func classify(op string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) {
		code := ""
		var ce mongo.CommandError
		if errors.As(err, &ce) {
			code = ce.Name
			if code == "" {
				code = strconv.Itoa(int(ce.Code))
			}
		}
		return &repository.StoreError{Op: op, Code: code, Message: se.Error(), Err: err}
	}
	return err
}
