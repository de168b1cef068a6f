package stricttuple

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

// Field declares one record field. For DefineTyped, Spec must be a reflect.Type.
// For Define, Spec is a reflect.Type or an ordered sequence ([]any or []Rule) of
// Rule and reflect.Type entries.
type Field struct {
	Name string
	Spec any
}

// Option configures a RecordType.
type Option func(*RecordType)

// WithRenderer sets the presentation collaborator used by Record.String.
func WithRenderer(r Renderer) Option {
	return func(rt *RecordType) { rt.schema.renderer = r }
}

// WithLogger sets the logger for definition and rejection events.
func WithLogger(l *slog.Logger) Option {
	return func(rt *RecordType) {
		if l != nil {
			rt.logger = l
		}
	}
}

// RecordType validates values and constructs Records of one named shape.
// It is immutable after definition and safe for concurrent use as long as its
// rules are.
type RecordType struct {
	schema *Schema
	rules  [][]Rule // parallel to schema.fields
	typed  bool
	logger *slog.Logger
}

// DefineTyped creates a Record Type whose fields each require a value of exactly
// the declared type. A failed construction returns a TYPE_MISMATCH error.
func DefineTyped(name string, fields []Field, opts ...Option) (*RecordType, error) {
	rt, err := newRecordType(name, fields, true, opts)
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		t, ok := f.Spec.(reflect.Type)
		if !ok || t == nil {
			return nil, typedSpecError(name, f)
		}
		rt.rules[i] = []Rule{ExactType(t)}
	}
	rt.logDefined()
	return rt, nil
}

// Define creates a rule-checked Record Type. A bare reflect.Type spec becomes a
// single exact-type rule; sequences are normalized entry by entry. Rules are
// compiled here once and reused by every New call.
func Define(name string, fields []Field, opts ...Option) (*RecordType, error) {
	rt, err := newRecordType(name, fields, false, opts)
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		rules, err := normalizeSpec(name, f)
		if err != nil {
			return nil, err
		}
		rt.rules[i] = rules
	}
	rt.logDefined()
	return rt, nil
}

// MustDefine is like Define but panics on error. Intended for package-level vars.
func MustDefine(name string, fields []Field, opts ...Option) *RecordType {
	rt, err := Define(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return rt
}

func newRecordType(name string, fields []Field, typed bool, opts []Option) (*RecordType, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	schema, err := NewSchema(name, names...)
	if err != nil {
		return nil, err
	}
	rt := &RecordType{
		schema: schema,
		rules:  make([][]Rule, len(fields)),
		typed:  typed,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

func typedSpecError(record string, f Field) *Error {
	if f.Spec == nil {
		return &Error{
			Code:    CodeInvalidSchema,
			Record:  record,
			Field:   f.Name,
			Actual:  "nil",
			Value:   "nil",
			Message: fmt.Sprintf("needs a type, got nil; try stricttuple.Field{Name: %q, Spec: reflect.TypeFor[string]()}", f.Name),
		}
	}
	tn := typeName(f.Spec)
	return &Error{
		Code:   CodeInvalidSchema,
		Record: record,
		Field:  f.Name,
		Actual: tn,
		Value:  repr(f.Spec),
		Message: fmt.Sprintf("needs to be a type, was %s(%s); did you mean stricttuple.Field{Name: %q, Spec: reflect.TypeFor[%s]()} instead of an instance?",
			tn, repr(f.Spec), f.Name, tn),
	}
}

func ruleSpecError(record, field, message string) *Error {
	return &Error{
		Code:    CodeInvalidRuleSpec,
		Record:  record,
		Field:   field,
		Message: message,
	}
}

// normalizeSpec turns a field spec into its ordered rule set.
func normalizeSpec(record string, f Field) ([]Rule, error) {
	var entries []any
	switch spec := f.Spec.(type) {
	case nil:
		return nil, ruleSpecError(record, f.Name, "spec is nil; want a reflect.Type or a rule sequence")
	case reflect.Type:
		return []Rule{ExactType(spec)}, nil
	case []any:
		entries = spec
	case []Rule:
		entries = make([]any, len(spec))
		for i, r := range spec {
			entries[i] = r
		}
	case Rule:
		return nil, ruleSpecError(record, f.Name,
			fmt.Sprintf("a single rule must be wrapped in a sequence: stricttuple.Rules(<%s>)", spec.Description()))
	case func(any) bool:
		return nil, ruleSpecError(record, f.Name,
			`bare predicates are not accepted; use stricttuple.Rules(stricttuple.Check("<condition>", fn))`)
	default:
		return nil, ruleSpecError(record, f.Name,
			fmt.Sprintf("spec is %s; want a reflect.Type or a rule sequence", typeName(spec)))
	}

	rules := make([]Rule, 0, len(entries))
	for i, e := range entries {
		switch entry := e.(type) {
		case reflect.Type:
			rules = append(rules, ExactType(entry))
		case Rule:
			if reason := entry.validate(); reason != "" {
				return nil, ruleSpecError(record, f.Name, fmt.Sprintf("rule %d: %s", i, reason))
			}
			rules = append(rules, entry)
		default:
			return nil, ruleSpecError(record, f.Name,
				fmt.Sprintf("rule %d is %s; want a stricttuple.Rule or a reflect.Type", i, typeName(e)))
		}
	}
	return rules, nil
}

// Name returns the record type name.
func (rt *RecordType) Name() string { return rt.schema.name }

// Fields returns the declared field names in order.
func (rt *RecordType) Fields() []string { return rt.schema.Fields() }

// Typed reports whether rt was created by DefineTyped.
func (rt *RecordType) Typed() bool { return rt.typed }

// Rules returns the rule descriptions of field in evaluation order.
func (rt *RecordType) Rules(field string) ([]string, bool) {
	i, ok := rt.schema.index[field]
	if !ok {
		return nil, false
	}
	descs := make([]string, len(rt.rules[i]))
	for j, r := range rt.rules[i] {
		descs[j] = r.Description()
	}
	return descs, true
}

// New validates values and returns a Record. The key set must equal the declared
// fields. Fields are checked in declared order and rules in their declared order;
// the first failure is returned and later rules are not evaluated.
func (rt *RecordType) New(values Values) (Record, error) {
	if err := rt.schema.checkFields(values); err != nil {
		rt.logRejected(err.(*Error))
		return Record{}, err
	}
	for i, field := range rt.schema.fields {
		v := values[field]
		for _, r := range rt.rules[i] {
			ok, cause := r.eval(v)
			if ok {
				continue
			}
			err := rt.violation(field, r, v, cause)
			rt.logRejected(err)
			return Record{}, err
		}
	}
	return rt.schema.New(values)
}

// MustNew is like New but panics on error.
func (rt *RecordType) MustNew(values Values) Record {
	rec, err := rt.New(values)
	if err != nil {
		panic(err)
	}
	return rec
}

// Replace returns a new Record with the fields in overrides changed. The result is
// validated like any other construction; rec is left untouched.
func (rt *RecordType) Replace(rec Record, overrides Values) (Record, error) {
	if rec.TypeName() != rt.Name() || !slices.Equal(rec.Fields(), rt.schema.fields) {
		return Record{}, &Error{
			Code:    CodeInvalidDefinition,
			Record:  rt.Name(),
			Message: fmt.Sprintf("cannot replace fields of a %q record", rec.TypeName()),
		}
	}
	values := rec.AsMap()
	var extra []string
	for k, v := range overrides {
		if _, ok := values[k]; !ok {
			extra = append(extra, k)
			continue
		}
		values[k] = v
	}
	if len(extra) > 0 {
		slices.Sort(extra)
		return Record{}, &Error{Code: CodeMissingOrExtraField, Record: rt.Name(), Extra: extra}
	}
	return rt.New(values)
}

func (rt *RecordType) violation(field string, r Rule, v any, cause error) *Error {
	if rt.typed {
		return &Error{
			Code:     CodeTypeMismatch,
			Record:   rt.Name(),
			Field:    field,
			Expected: r.Type().String(),
			Actual:   typeName(v),
			Value:    repr(v),
		}
	}
	return &Error{
		Code:     CodeRuleViolation,
		Record:   rt.Name(),
		Field:    field,
		Expected: r.Description(),
		Actual:   typeName(v),
		Value:    repr(v),
		Err:      cause,
	}
}

func (rt *RecordType) logDefined() {
	rt.logger.Debug("record type defined",
		"record", rt.Name(),
		"fields", len(rt.schema.fields),
		"typed", rt.typed,
	)
}

func (rt *RecordType) logRejected(err *Error) {
	rt.logger.Debug("record rejected",
		"record", rt.Name(),
		"field", err.Field,
		"code", string(err.Code),
	)
}
