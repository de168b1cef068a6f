package stricttuple

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// RuleKind distinguishes exact type checks from arbitrary predicates.
type RuleKind int

const (
	// KindPredicate is a caller-supplied unary predicate.
	KindPredicate RuleKind = iota

	// KindExactType requires the value's runtime type to be identical to a type.
	KindExactType
)

// String returns the kind name.
func (k RuleKind) String() string {
	switch k {
	case KindPredicate:
		return "predicate"
	case KindExactType:
		return "exact_type"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule is one condition a field value must satisfy.
//
// Every rule carries a description written by its author; it is what a
// RULE_VIOLATION error shows as the failed condition.
type Rule struct {
	kind RuleKind
	desc string
	pred func(any) bool
	typ  reflect.Type

	// invalid is set by constructors that could not build the rule.
	invalid string
}

// Check creates a predicate rule. desc must describe the condition, e.g. "0 <= x < 15".
func Check(desc string, pred func(any) bool) Rule {
	return Rule{kind: KindPredicate, desc: desc, pred: pred}
}

// ExactType creates a rule that accepts only values whose runtime type is t.
// Subtypes, named types with the same underlying type, and interface
// implementations are all rejected.
func ExactType(t reflect.Type) Rule {
	desc := "type(value) == <nil>"
	if t != nil {
		desc = "type(value) == " + t.String()
	}
	return Rule{kind: KindExactType, desc: desc, typ: t}
}

// TypeOf is ExactType(reflect.TypeFor[T]()).
func TypeOf[T any]() Rule {
	return ExactType(reflect.TypeFor[T]())
}

// IsType accepts a value whose runtime type is exactly one of types.
func IsType(types ...reflect.Type) Rule {
	names := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			names[i] = "<nil>"
			continue
		}
		names[i] = t.String()
	}
	return Check("type(value) in ("+strings.Join(names, ", ")+")", func(v any) bool {
		vt := reflect.TypeOf(v)
		for _, t := range types {
			if vt == t {
				return true
			}
		}
		return false
	})
}

// Not negates r. An unusable r makes the negation unusable too, and a panic
// inside r fails the negation rather than passing it.
func Not(r Rule) Rule {
	n := Check("not ("+r.desc+")", func(v any) bool {
		ok, err := r.eval(v)
		if err != nil {
			panic(err)
		}
		return !ok
	})
	n.invalid = r.validate()
	return n
}

// Rules builds an ordered rule sequence for a rule-checked field. Entries may be
// Rule values or reflect.Type values.
func Rules(entries ...any) []any {
	return entries
}

// Kind returns the rule kind.
func (r Rule) Kind() RuleKind { return r.kind }

// Description returns the human-readable condition.
func (r Rule) Description() string { return r.desc }

// Type returns the required type of a KindExactType rule, nil otherwise.
func (r Rule) Type() reflect.Type { return r.typ }

// Test reports whether v satisfies the rule. A panicking predicate counts as failure.
func (r Rule) Test(v any) bool {
	ok, _ := r.eval(v)
	return ok
}

// eval runs the rule. A panic inside the predicate is returned as an error.
func (r Rule) eval(v any) (ok bool, err error) {
	if r.kind == KindExactType {
		return reflect.TypeOf(v) == r.typ, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			err = fmt.Errorf("rule %q panicked: %v", r.desc, rec)
		}
	}()
	return r.pred(v), nil
}

// Err reports why r cannot be used in a Record Type definition, or nil if it can.
func (r Rule) Err() error {
	if reason := r.validate(); reason != "" {
		return errors.New(reason)
	}
	return nil
}

// validate reports why r cannot be used, or "" if it can.
func (r Rule) validate() string {
	if r.invalid != "" {
		return r.invalid
	}
	switch r.kind {
	case KindExactType:
		if r.typ == nil {
			return "exact type rule has a nil type"
		}
	case KindPredicate:
		if r.pred == nil {
			return "rule has no predicate"
		}
		if strings.TrimSpace(r.desc) == "" {
			return "rule has no description; use stricttuple.Check(\"<condition>\", fn)"
		}
	default:
		return fmt.Sprintf("unknown rule kind %v", r.kind)
	}
	return ""
}
