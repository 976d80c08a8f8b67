package dynamostore

import (
	"fmt"
	"sort"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/okian/clientes/internal/domain/record"
)

// toAttributeValue maps a record value onto DynamoDB's attribute types.
// Numbers travel as their exact decimal text.
func toAttributeValue(v record.Value) (ddbtypes.AttributeValue, error) {
	switch t := v.(type) {
	case nil, record.Null:
		return &ddbtypes.AttributeValueMemberNULL{Value: true}, nil
	case record.String:
		return &ddbtypes.AttributeValueMemberS{Value: string(t)}, nil
	case record.Number:
		return &ddbtypes.AttributeValueMemberN{Value: t.String()}, nil
	case record.Bool:
		return &ddbtypes.AttributeValueMemberBOOL{Value: bool(t)}, nil
	case record.List:
		out := make([]ddbtypes.AttributeValue, 0, len(t))
		for _, item := range t {
			av, err := toAttributeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, av)
		}
		return &ddbtypes.AttributeValueMemberL{Value: out}, nil
	case *record.Record:
		m, err := toItem(t)
		if err != nil {
			return nil, err
		}
		return &ddbtypes.AttributeValueMemberM{Value: m}, nil
	}
	return nil, fmt.Errorf("%w: %T", record.ErrUnsupportedValue, v)
}

func toItem(r *record.Record) (map[string]ddbtypes.AttributeValue, error) {
	item := make(map[string]ddbtypes.AttributeValue, r.Len())
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		av, err := toAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

// fromItem converts a DynamoDB item. Attribute order is not kept by the
// service, so keys are sorted to make output stable.
func fromItem(item map[string]ddbtypes.AttributeValue) (*record.Record, error) {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := record.New()
	for _, k := range keys {
		v, err := fromAttributeValue(item[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		r.Set(k, v)
	}
	return r, nil
}

func fromAttributeValue(av ddbtypes.AttributeValue) (record.Value, error) {
	switch t := av.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return record.String(t.Value), nil
	case *ddbtypes.AttributeValueMemberN:
		n, err := record.ParseNumber(t.Value)
		if err != nil {
			return nil, err
		}
		return n, nil
	case *ddbtypes.AttributeValueMemberBOOL:
		return record.Bool(t.Value), nil
	case *ddbtypes.AttributeValueMemberNULL:
		return record.Null{}, nil
	case *ddbtypes.AttributeValueMemberL:
		out := make(record.List, 0, len(t.Value))
		for _, item := range t.Value {
			v, err := fromAttributeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *ddbtypes.AttributeValueMemberM:
		return fromItem(t.Value)
	case *ddbtypes.AttributeValueMemberSS:
		out := make(record.List, 0, len(t.Value))
		for _, s := range t.Value {
			out = append(out, record.String(s))
		}
		return out, nil
	case *ddbtypes.AttributeValueMemberNS:
		out := make(record.List, 0, len(t.Value))
		for _, s := range t.Value {
			n, err := record.ParseNumber(s)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: attribute type %T", record.ErrUnsupportedValue, av)
}
