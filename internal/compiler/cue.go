package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/stricttuple/internal/ir"
)

// Schema file sections.
const (
	sectionRecord = "record" // rule-checked records
	sectionTyped  = "typed"  // type-checked records
)

// CompileCUE compiles CUE source into a SchemaFile.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func CompileCUE(path string, src []byte) (*ir.SchemaFile, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	sf, err := CompileCUEValue(v)
	if err != nil {
		return nil, err
	}
	sf.Path = path
	return sf, nil
}

// CompileCUEValue extracts record declarations from a compiled CUE value.
//
// The value should hold a "record" and/or "typed" struct, e.g.:
//
//	record: Point: {
//		x: ["int", {in_range: [0, 15]}]
//		y: int
//	}
func CompileCUEValue(v cue.Value) (*ir.SchemaFile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sf := &ir.SchemaFile{}
	found := false
	for _, section := range []string{sectionRecord, sectionTyped} {
		sv := v.LookupPath(cue.ParsePath(section))
		if !sv.Exists() {
			continue
		}
		found = true

		defs, err := compileSection(sv, section == sectionTyped)
		if err != nil {
			return nil, err
		}
		sf.Records = append(sf.Records, defs...)
	}

	if !found {
		return nil, &CompileError{
			Field:   "record",
			Message: `no "record" or "typed" declarations found`,
			Pos:     v.Pos(),
		}
	}
	return sf, nil
}

func compileSection(v cue.Value, typed bool) ([]ir.RecordDef, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []ir.RecordDef
	for iter.Next() {
		def, err := compileRecord(iter.Label(), iter.Value(), typed)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func compileRecord(name string, v cue.Value, typed bool) (ir.RecordDef, error) {
	def := ir.RecordDef{Name: name, Typed: typed, Line: v.Pos().Line()}

	if v.IncompleteKind() != cue.StructKind {
		return def, &CompileError{
			Field:   name,
			Message: fmt.Sprintf("record must be a struct of fields, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return def, formatCUEError(err)
	}
	for iter.Next() {
		fieldName := iter.Label()
		rules, err := compileFieldSpec(name+"."+fieldName, iter.Value())
		if err != nil {
			return def, err
		}
		def.Fields = append(def.Fields, ir.FieldDef{
			Name:  fieldName,
			Rules: rules,
			Line:  iter.Value().Pos().Line(),
		})
	}
	return def, nil
}

// compileFieldSpec accepts a single entry or a list of entries.
func compileFieldSpec(path string, v cue.Value) ([]ir.RuleRef, error) {
	if v.IsConcrete() && v.Kind() == cue.ListKind {
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var refs []ir.RuleRef
		for iter.Next() {
			ref, err := compileRuleEntry(fmt.Sprintf("%s[%d]", path, len(refs)), iter.Value())
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}
		return refs, nil
	}

	ref, err := compileRuleEntry(path, v)
	if err != nil {
		return nil, err
	}
	return []ir.RuleRef{ref}, nil
}

// compileRuleEntry parses "name", a bare CUE type, or {name: args}.
func compileRuleEntry(path string, v cue.Value) (ir.RuleRef, error) {
	if !v.IsConcrete() {
		name, err := extractTypeName(path, v)
		if err != nil {
			return ir.RuleRef{}, err
		}
		return ir.RuleRef{Name: name}, nil
	}

	switch v.Kind() {
	case cue.StringKind:
		name, err := v.String()
		if err != nil {
			return ir.RuleRef{}, formatCUEError(err)
		}
		return ir.RuleRef{Name: name}, nil

	case cue.StructKind:
		return compileRuleStruct(path, v)

	default:
		return ir.RuleRef{}, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("rule must be a name or a {name: args} struct, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

func compileRuleStruct(path string, v cue.Value) (ir.RuleRef, error) {
	iter, err := v.Fields()
	if err != nil {
		return ir.RuleRef{}, formatCUEError(err)
	}

	var refs []ir.RuleRef
	for iter.Next() {
		args, err := compileArgs(iter.Value())
		if err != nil {
			return ir.RuleRef{}, err
		}
		refs = append(refs, ir.RuleRef{Name: iter.Label(), Args: args})
	}

	if len(refs) != 1 {
		return ir.RuleRef{}, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("rule struct must have exactly one key, got %d", len(refs)),
			Pos:     v.Pos(),
		}
	}
	return refs[0], nil
}

// compileArgs treats a list as positional arguments and anything else as one argument.
func compileArgs(v cue.Value) ([]any, error) {
	if v.IsConcrete() && v.Kind() == cue.ListKind {
		arg, err := cueToGo(v)
		if err != nil {
			return nil, err
		}
		return arg.([]any), nil
	}
	arg, err := cueToGo(v)
	if err != nil {
		return nil, err
	}
	return []any{arg}, nil
}

// cueToGo converts a concrete CUE value into the normalized Go value set.
func cueToGo(v cue.Value) (any, error) {
	if !v.IsConcrete() {
		return nil, &CompileError{
			Field:   "value",
			Message: "rule arguments must be concrete values",
			Pos:     v.Pos(),
		}
	}

	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return b, formatCUEError(err)
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Normalize(n)
	case cue.FloatKind:
		f, err := v.Float64()
		return f, formatCUEError(err)
	case cue.StringKind:
		s, err := v.String()
		return s, formatCUEError(err)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		list := []any{}
		for iter.Next() {
			elem, err := cueToGo(iter.Value())
			if err != nil {
				return nil, err
			}
			list = append(list, elem)
		}
		return list, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m := map[string]any{}
		for iter.Next() {
			elem, err := cueToGo(iter.Value())
			if err != nil {
				return nil, err
			}
			m[iter.Label()] = elem
		}
		return m, nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// extractTypeName converts a bare CUE type to a schema-file type name.
func extractTypeName(path string, v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.FloatKind:
		return "float64", nil
	default:
		return "", &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
// CUE errors carry Pos; YAML errors carry File and Line.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	File    string
	Line    int
}

func (e *CompileError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
