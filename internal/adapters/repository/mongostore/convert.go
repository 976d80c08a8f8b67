package mongostore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/okian/clientes/internal/domain/record"
)

const idKey = "_id"

// toDocument maps a record to a BSON document keyed by its clientesId.
func toDocument(id string, r *record.Record) (bson.D, error) {
	doc := make(bson.D, 0, r.Len()+1)
	doc = append(doc, bson.E{Key: idKey, Value: id})
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		bv, err := toBSON(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		doc = append(doc, bson.E{Key: k, Value: bv})
	}
	return doc, nil
}

// toBSON converts a value. Numbers are stored as Decimal128 to stay exact.
func toBSON(v record.Value) (any, error) {
	switch t := v.(type) {
	case nil, record.Null:
		return nil, nil
	case record.String:
		return string(t), nil
	case record.Bool:
		return bool(t), nil
	case record.Number:
		d, err := primitive.ParseDecimal128(t.String())
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", t, err)
		}
		return d, nil
	case record.List:
		out := make(bson.A, 0, len(t))
		for _, item := range t {
			bv, err := toBSON(item)
			if err != nil {
				return nil, err
			}
			out = append(out, bv)
		}
		return out, nil
	case *record.Record:
		doc := make(bson.D, 0, t.Len())
		for _, k := range t.Keys() {
			item, _ := t.Get(k)
			bv, err := toBSON(item)
			if err != nil {
				return nil, err
			}
			doc = append(doc, bson.E{Key: k, Value: bv})
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %T", record.ErrUnsupportedValue, v)
}

// fromDocument converts a stored document, dropping the _id key.
func fromDocument(doc bson.D) (*record.Record, error) {
	r := record.New()
	for _, e := range doc {
		if e.Key == idKey {
			continue
		}
		v, err := fromBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", e.Key, err)
		}
		r.Set(e.Key, v)
	}
	return r, nil
}

func fromBSON(v any) (record.Value, error) {
	switch t := v.(type) {
	case nil:
		return record.Null{}, nil
	case string:
		return record.String(t), nil
	case bool:
		return record.Bool(t), nil
	case int32:
		return record.NumberFromInt(int64(t)), nil
	case int64:
		return record.NumberFromInt(t), nil
	case float64:
		return record.NumberFromFloat(t), nil
	case primitive.Decimal128:
		n, err := record.ParseNumber(t.String())
		if err != nil {
			return nil, err
		}
		return n, nil
	case bson.A:
		out := make(record.List, 0, len(t))
		for _, item := range t {
			iv, err := fromBSON(item)
			if err != nil {
				return nil, err
			}
			out = append(out, iv)
		}
		return out, nil
	case bson.D:
		nested := record.New()
		for _, e := range t {
			ev, err := fromBSON(e.Value)
			if err != nil {
				return nil, err
			}
			nested.Set(e.Key, ev)
		}
		return nested, nil
	}
	return nil, fmt.Errorf("%w: bson %T", record.ErrUnsupportedValue, v)
}
