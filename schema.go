package stricttuple

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

// Values holds the keyword arguments of one record construction, keyed by field name.
type Values map[string]any

// Pair is one field name and its value, in declared order.
type Pair struct {
	Name  string
	Value any
}

// Schema is an immutable, ordered set of field names under a type name.
// It checks only that a construction covers exactly its fields; value content
// is validated by the Record Types built on top of it.
type Schema struct {
	name     string
	fields   []string
	index    map[string]int
	renderer Renderer
}

// NewSchema creates a Schema. The name and every field must be identifier-like and
// fields must be unique. An empty field list is allowed.
func NewSchema(name string, fields ...string) (*Schema, error) {
	if name == "" {
		return nil, newDefinitionError("", "record name is required")
	}
	if !IsIdentifier(name) {
		return nil, newDefinitionError("", fmt.Sprintf("record name %q is not a valid identifier", name))
	}

	s := &Schema{
		name:   name,
		fields: make([]string, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if !IsIdentifier(f) {
			return nil, newDefinitionError(name, fmt.Sprintf("field name %q is not a valid identifier", f))
		}
		if _, dup := s.index[f]; dup {
			return nil, newDefinitionError(name, fmt.Sprintf("duplicate field name %q", f))
		}
		s.index[f] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Name returns the record type name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the declared field names in order.
func (s *Schema) Fields() []string { return slices.Clone(s.fields) }

// New builds a Record from values. The set of keys must equal the declared fields.
func (s *Schema) New(values Values) (Record, error) {
	if err := s.checkFields(values); err != nil {
		return Record{}, err
	}
	vals := make([]any, len(s.fields))
	for i, f := range s.fields {
		vals[i] = values[f]
	}
	return Record{schema: s, values: vals}, nil
}

// checkFields compares the supplied keys with the declared fields, ignoring order.
func (s *Schema) checkFields(values Values) error {
	var missing, extra []string
	for _, f := range s.fields {
		if _, ok := values[f]; !ok {
			missing = append(missing, f)
		}
	}
	for k := range values {
		if _, ok := s.index[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	slices.Sort(missing)
	slices.Sort(extra)
	return &Error{
		Code:    CodeMissingOrExtraField,
		Record:  s.name,
		Missing: missing,
		Extra:   extra,
	}
}

// IsIdentifier reports whether s is valid as a record or field name: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// Record is an immutable snapshot of named values produced by a Schema or a
// RecordType. Accessors that return slices or maps return copies.
//
// The zero Record has no type and no fields.
type Record struct {
	schema *Schema
	values []any
}

// TypeName returns the record type name.
func (r Record) TypeName() string {
	if r.schema == nil {
		return ""
	}
	return r.schema.name
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.values) }

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	if r.schema == nil {
		return nil, false
	}
	i, ok := r.schema.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// MustGet is like Get but panics if the field does not exist.
func (r Record) MustGet(name string) any {
	v, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("stricttuple: %s has no field %q", r.TypeName(), name))
	}
	return v
}

// At returns the value at position i in declared order. It panics if i is out of range.
func (r Record) At(i int) any { return r.values[i] }

// Fields returns the field names in declared order.
func (r Record) Fields() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.Fields()
}

// Values returns the field values in declared order.
func (r Record) Values() []any { return slices.Clone(r.values) }

// Pairs returns field name/value pairs in declared order.
func (r Record) Pairs() []Pair {
	pairs := make([]Pair, len(r.values))
	for i, v := range r.values {
		pairs[i] = Pair{Name: r.schema.fields[i], Value: v}
	}
	return pairs
}

// AsMap returns the fields as a new map.
func (r Record) AsMap() Values {
	m := make(Values, len(r.values))
	for i, v := range r.values {
		m[r.schema.fields[i]] = v
	}
	return m
}

// All iterates field names and values in declared order.
func (r Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, v := range r.values {
			if !yield(r.schema.fields[i], v) {
				return
			}
		}
	}
}

// Equal reports whether both records have the same type name, the same fields in
// the same order, and deeply equal values.
func (r Record) Equal(other Record) bool {
	if r.TypeName() != other.TypeName() {
		return false
	}
	if !slices.Equal(r.Fields(), other.Fields()) {
		return false
	}
	for i := range r.values {
		if !reflect.DeepEqual(r.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

// String renders the record. It tries the Record Type's Renderer, then the generic
// Name(field=value, ...) form, then, when some value cannot be rendered, a bare
// Name<field, ...> form. It never panics. Self-referencing values print [...].
func (r Record) String() string {
	if r.schema == nil {
		return "Record()"
	}
	if s, ok := r.renderExternal(); ok {
		return s
	}
	if s, ok := r.renderGeneric(); ok {
		return s
	}
	return r.renderBare()
}

func (r Record) renderExternal() (s string, ok bool) {
	if r.schema.renderer == nil {
		return "", false
	}
	defer func() {
		if rec := recover(); rec != nil {
			s, ok = "", false
		}
	}()
	out, err := r.schema.renderer.Render(r.Pairs())
	if err != nil {
		return "", false
	}
	return out, true
}

func (r Record) renderGeneric() (string, bool) {
	var b strings.Builder
	b.WriteString(r.schema.name)
	b.WriteByte('(')
	for i, v := range r.values {
		vs, err := tryRepr(v)
		if err != nil {
			return "", false
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.schema.fields[i])
		b.WriteByte('=')
		b.WriteString(vs)
	}
	b.WriteByte(')')
	return b.String(), true
}

func (r Record) renderBare() string {
	return r.schema.name + "<" + strings.Join(r.schema.fields, ", ") + ">"
}
