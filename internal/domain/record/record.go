// Package record models a customer record ("cliente") as an ordered set of
// fields over a closed set of JSON-compatible values.
package record

// IDField is the primary key attribute of every persisted record.
const IDField = "clientesId"

// Record is an ordered mapping from field name to Value. The zero value is
// not usable; build records with New, Parse or FromPairs.
type Record struct {
	keys   []string
	fields map[string]Value
}

// New returns an empty record.
func New() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Field is a name/value pair used by FromPairs.
type Field struct {
	Name  string
	Value Value
}

// FromPairs builds a record from fields in order.
func FromPairs(fields ...Field) *Record {
	r := New()
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

func (*Record) isValue() {}

// Set stores v under name. An existing field keeps its position.
func (r *Record) Set(name string, v Value) {
	if v == nil {
		v = Null{}
	}
	if _, ok := r.fields[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Delete removes name from the record.
func (r *Record) Delete(name string) {
	if _, ok := r.fields[name]; !ok {
		return
	}
	delete(r.fields, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// ID returns the clientesId attribute when it is a string.
func (r *Record) ID() (string, bool) {
	v, ok := r.fields[IDField]
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// SetID overwrites the clientesId attribute.
func (r *Record) SetID(id string) {
	r.Set(IDField, String(id))
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := &Record{
		keys:   make([]string, len(r.keys)),
		fields: make(map[string]Value, len(r.fields)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.fields {
		out.fields[k] = cloneValue(v)
	}
	return out
}

// Equal reports whether both records hold the same fields in the same order.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.keys) != len(other.keys) {
		return false
	}
	for i, k := range r.keys {
		if other.keys[i] != k {
			return false
		}
		if !valuesEqual(r.fields[k], other.fields[k]) {
			return false
		}
	}
	return true
}
