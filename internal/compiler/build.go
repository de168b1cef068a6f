package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/stricttuple"
	"github.com/roach88/stricttuple/internal/ir"
)

// Build turns one record definition into a RecordType. Typed definitions go through
// stricttuple.DefineTyped, the rest through stricttuple.Define.
func Build(def ir.RecordDef, opts ...stricttuple.Option) (*stricttuple.RecordType, error) {
	fields := make([]stricttuple.Field, 0, len(def.Fields))
	for _, f := range def.Fields {
		spec, err := fieldSpec(def.Typed, f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
		fields = append(fields, stricttuple.Field{Name: f.Name, Spec: spec})
	}

	if def.Typed {
		return stricttuple.DefineTyped(def.Name, fields, opts...)
	}
	return stricttuple.Define(def.Name, fields, opts...)
}

func fieldSpec(typed bool, f ir.FieldDef) (any, error) {
	if typed {
		if len(f.Rules) != 1 {
			return nil, fmt.Errorf("typed field must name exactly one type")
		}
		t, ok := typeNames[f.Rules[0].Name]
		if !ok {
			return nil, fmt.Errorf("unknown type %q", f.Rules[0].Name)
		}
		return t, nil
	}

	rules := make([]stricttuple.Rule, 0, len(f.Rules))
	for _, ref := range f.Rules {
		r, err := resolveRule(ref)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Catalog holds the record types built from one schema file, in declaration order.
type Catalog struct {
	types  []*stricttuple.RecordType
	byName map[string]*stricttuple.RecordType
}

// BuildCatalog validates sf and builds every record type in it.
// Validation problems are returned all at once; nothing is built if any exist.
func BuildCatalog(sf *ir.SchemaFile, opts ...stricttuple.Option) (*Catalog, []ValidationError) {
	if errs := Validate(sf); len(errs) > 0 {
		return nil, errs
	}

	c := &Catalog{byName: make(map[string]*stricttuple.RecordType, len(sf.Records))}
	var errs []ValidationError
	for _, def := range sf.Records {
		rt, err := Build(def, opts...)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   def.Name,
				Message: definitionMessage(err),
				Code:    ErrInvalidRecordDef,
				Line:    def.Line,
			})
			continue
		}
		c.types = append(c.types, rt)
		c.byName[rt.Name()] = rt
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// definitionMessage drops the Go usage example appended to definition errors.
func definitionMessage(err error) string {
	var se *stricttuple.Error
	if errors.As(err, &se) && se.Message != "" {
		msg, _, _ := strings.Cut(se.Message, "\n\nExample usage:")
		return msg
	}
	return err.Error()
}

// Lookup returns the record type with the given name.
func (c *Catalog) Lookup(name string) (*stricttuple.RecordType, bool) {
	rt, ok := c.byName[name]
	return rt, ok
}

// Types returns the record types in declaration order.
func (c *Catalog) Types() []*stricttuple.RecordType {
	return append([]*stricttuple.RecordType(nil), c.types...)
}

// Len returns the number of record types.
func (c *Catalog) Len() int { return len(c.types) }

