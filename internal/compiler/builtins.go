package compiler

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/stricttuple"
	"github.com/roach88/stricttuple/internal/ir"
)

// typeNames maps schema-file type names to the Go types a decoded value can have
// after ir.Normalize.
var typeNames = map[string]reflect.Type{
	"int":     reflect.TypeFor[int](),
	"float64": reflect.TypeFor[float64](),
	"float":   reflect.TypeFor[float64](),
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"list":    reflect.TypeFor[[]any](),
	"map":     reflect.TypeFor[map[string]any](),
}

// ruleFactory builds a rule from schema-file arguments.
type ruleFactory struct {
	minArgs int
	maxArgs int // -1 for variadic
	build   func(args []any) (stricttuple.Rule, error)
}

var ruleFactories = map[string]ruleFactory{
	"in_range": {2, 2, func(args []any) (stricttuple.Rule, error) {
		lo, err := numberArg(args[0])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		hi, err := numberArg(args[1])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		l, lok := lo.(int)
		h, hok := hi.(int)
		if lok && hok {
			if l > h {
				return stricttuple.Rule{}, fmt.Errorf("lower bound %v exceeds upper bound %v", lo, hi)
			}
			return stricttuple.InRange(l, h), nil
		}
		lf, hf := asFloat(lo), asFloat(hi)
		if lf > hf {
			return stricttuple.Rule{}, fmt.Errorf("lower bound %v exceeds upper bound %v", lo, hi)
		}
		return stricttuple.InRange(lf, hf), nil
	}},
	"min": {1, 1, func(args []any) (stricttuple.Rule, error) {
		n, err := numberArg(args[0])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		if i, ok := n.(int); ok {
			return stricttuple.Min(i), nil
		}
		return stricttuple.Min(asFloat(n)), nil
	}},
	"max": {1, 1, func(args []any) (stricttuple.Rule, error) {
		n, err := numberArg(args[0])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		if i, ok := n.(int); ok {
			return stricttuple.Max(i), nil
		}
		return stricttuple.Max(asFloat(n)), nil
	}},
	"min_len": {1, 1, func(args []any) (stricttuple.Rule, error) {
		n, err := lengthArg(args[0])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		return stricttuple.MinLen(n), nil
	}},
	"max_len": {1, 1, func(args []any) (stricttuple.Rule, error) {
		n, err := lengthArg(args[0])
		if err != nil {
			return stricttuple.Rule{}, err
		}
		return stricttuple.MaxLen(n), nil
	}},
	"non_empty": {0, 0, func([]any) (stricttuple.Rule, error) {
		return stricttuple.NonEmpty(), nil
	}},
	"matches": {1, 1, func(args []any) (stricttuple.Rule, error) {
		pattern, ok := args[0].(string)
		if !ok {
			return stricttuple.Rule{}, fmt.Errorf("pattern must be a string, got %T", args[0])
		}
		r := stricttuple.Matches(pattern)
		if err := r.Err(); err != nil {
			return stricttuple.Rule{}, err
		}
		return r, nil
	}},
	"one_of": {1, -1, func(args []any) (stricttuple.Rule, error) {
		return stricttuple.OneOf(args...), nil
	}},
	"is_type": {1, -1, func(args []any) (stricttuple.Rule, error) {
		types := make([]reflect.Type, 0, len(args))
		for _, a := range args {
			name, ok := a.(string)
			if !ok {
				return stricttuple.Rule{}, fmt.Errorf("type name must be a string, got %T", a)
			}
			t, ok := typeNames[name]
			if !ok {
				return stricttuple.Rule{}, fmt.Errorf("unknown type %q", name)
			}
			types = append(types, t)
		}
		return stricttuple.IsType(types...), nil
	}},
	"uuid": {0, 0, func([]any) (stricttuple.Rule, error) {
		return stricttuple.UUID(), nil
	}},
	"nfc": {0, 0, func([]any) (stricttuple.Rule, error) {
		return stricttuple.NFC(), nil
	}},
}

// RuleNames returns the registered rule names, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(ruleFactories))
	for name := range ruleFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeNames returns the registered type names, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveRule turns a rule reference into a rule. Type names become exact-type rules.
func resolveRule(ref ir.RuleRef) (stricttuple.Rule, error) {
	if t, ok := typeNames[ref.Name]; ok {
		if len(ref.Args) > 0 {
			return stricttuple.Rule{}, fmt.Errorf("type %q takes no arguments", ref.Name)
		}
		return stricttuple.ExactType(t), nil
	}

	f, ok := ruleFactories[ref.Name]
	if !ok {
		return stricttuple.Rule{}, fmt.Errorf("unknown rule or type %q", ref.Name)
	}
	if len(ref.Args) < f.minArgs || (f.maxArgs >= 0 && len(ref.Args) > f.maxArgs) {
		return stricttuple.Rule{}, fmt.Errorf("%s takes %s, got %d", ref.Name, arity(f), len(ref.Args))
	}
	return f.build(ref.Args)
}

func arity(f ruleFactory) string {
	switch {
	case f.maxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", f.minArgs)
	case f.minArgs == f.maxArgs:
		return fmt.Sprintf("%d argument(s)", f.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", f.minArgs, f.maxArgs)
	}
}

// numberArg accepts a normalized number. Integers stay int so that range rules
// compare them exactly.
func numberArg(v any) (any, error) {
	switch v.(type) {
	case int, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("want a number, got %T", v)
	}
}

func asFloat(v any) float64 {
	if i, ok := v.(int); ok {
		return float64(i)
	}
	return v.(float64)
}

func lengthArg(v any) (int, error) {
	n, ok := v.(int)
	if !ok || n < 0 {
		return 0, fmt.Errorf("want a non-negative int, got %v", v)
	}
	return n, nil
}
