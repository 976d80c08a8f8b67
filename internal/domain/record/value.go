package record

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Value is one of String, Number, Bool, Null, List or *Record.
type Value interface {
	isValue()
}

// String is a text value.
type String string

// Bool is a boolean value.
type Bool bool

// Null is the JSON null.
type Null struct{}

// List is an ordered list of values.
type List []Value

// Number is an exact decimal, the same representation key-value stores use
// for numeric attributes.
type Number struct {
	d decimal.Decimal
}

func (String) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (List) isValue()   {}
func (Number) isValue() {}

// NumberFromDecimal wraps d.
func NumberFromDecimal(d decimal.Decimal) Number { return Number{d: d} }

// NumberFromInt wraps an integer.
func NumberFromInt(i int64) Number { return Number{d: decimal.NewFromInt(i)} }

// NumberFromFloat wraps a float.
func NumberFromFloat(f float64) Number { return Number{d: decimal.NewFromFloat(f)} }

// Number limits, the range DynamoDB accepts: 38 significant digits with a
// magnitude between 1E-130 and 9.9E125.
const (
	maxNumberDigits   = 38
	maxNumberExponent = 125
	minNumberExponent = -130
)

// ParseNumber parses a decimal literal, exponent forms included. Literals
// outside the supported range return ErrNumberRange.
func ParseNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	if d.IsZero() {
		return Number{d: decimal.Zero}, nil
	}
	if !inRange(d) {
		return Number{}, fmt.Errorf("%w: %.32s", ErrNumberRange, s)
	}
	return Number{d: d}, nil
}

// inRange reports whether d can be rendered exactly without large
// intermediate values.
func inRange(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	digits := d.NumDigits()
	magnitude := int64(d.Exponent()) + int64(digits) - 1
	return digits <= maxNumberDigits && magnitude >= minNumberExponent && magnitude <= maxNumberExponent
}

// scientific renders d as coefficient and exponent, without expanding it.
func scientific(d decimal.Decimal) string {
	return d.Coefficient().String() + "e" + strconv.FormatInt(int64(d.Exponent()), 10)
}

// Decimal returns the exact value.
func (n Number) Decimal() decimal.Decimal { return n.d }

// IsInteger reports whether the value has no fractional part.
func (n Number) IsInteger() bool { return n.d.IsInteger() }

// String returns the exact decimal text, used by stores that keep numbers as strings.
func (n Number) String() string {
	if !inRange(n.d) {
		return scientific(n.d)
	}
	return n.d.String()
}

func cloneValue(v Value) Value {
	switch t := v.(type) {
	case List:
		out := make(List, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case *Record:
		return t.Clone()
	default:
		return v
	}
}

func valuesEqual(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && x.d.Equal(y.d)
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Record:
		y, ok := b.(*Record)
		return ok && x.Equal(y)
	default:
		return a == b
	}
}
