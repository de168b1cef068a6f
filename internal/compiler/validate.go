package compiler

import (
	"fmt"

	"github.com/roach88/stricttuple"
	"github.com/roach88/stricttuple/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoRecords        = "E100" // schema file declares nothing
	ErrInvalidName      = "E101" // record or field name is not an identifier
	ErrDuplicateRecord  = "E102" // record declared twice
	ErrDuplicateField   = "E103" // field declared twice in one record
	ErrUnknownRule      = "E104" // unknown rule or type name
	ErrInvalidRuleArgs  = "E105" // wrong argument count or type
	ErrTypedFieldSpec   = "E106" // typed field must name exactly one type
	ErrInvalidRecordDef = "E107" // definition rejected when building the record type
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every record definition in sf.
// Returns all errors found (does not fail-fast).
func Validate(sf *ir.SchemaFile) []ValidationError {
	if sf == nil || len(sf.Records) == 0 {
		return []ValidationError{{
			Field:   "record",
			Message: "schema file declares no records",
			Code:    ErrNoRecords,
		}}
	}

	var errs []ValidationError
	for i, def := range sf.Records {
		if first, _ := sf.Lookup(def.Name); first != &sf.Records[i] {
			errs = append(errs, ValidationError{
				Field:   def.Name,
				Message: fmt.Sprintf("record %q already declared on line %d", def.Name, first.Line),
				Code:    ErrDuplicateRecord,
				Line:    def.Line,
			})
		}
		errs = append(errs, ValidateRecord(def)...)
	}
	return errs
}

// ValidateRecord checks one record definition.
func ValidateRecord(def ir.RecordDef) []ValidationError {
	var errs []ValidationError

	// E101: record name
	if !stricttuple.IsIdentifier(def.Name) {
		errs = append(errs, ValidationError{
			Field:   def.Name,
			Message: fmt.Sprintf("invalid record name %q", def.Name),
			Code:    ErrInvalidName,
			Line:    def.Line,
		})
	}

	fields := make(map[string]bool)
	for _, f := range def.Fields {
		path := def.Name + "." + f.Name

		// E101: field name
		if !stricttuple.IsIdentifier(f.Name) {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("invalid field name %q", f.Name),
				Code:    ErrInvalidName,
				Line:    f.Line,
			})
		}

		// E103: duplicate field
		if fields[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field %q declared twice", f.Name),
				Code:    ErrDuplicateField,
				Line:    f.Line,
			})
		}
		fields[f.Name] = true

		errs = append(errs, validateField(def.Typed, path, f)...)
	}

	return errs
}

func validateField(typed bool, path string, f ir.FieldDef) []ValidationError {
	var errs []ValidationError

	// E106: typed records take exactly one type name per field
	if typed {
		if len(f.Rules) != 1 {
			return append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("typed field must name exactly one type, got %d entries", len(f.Rules)),
				Code:    ErrTypedFieldSpec,
				Line:    f.Line,
			})
		}
		if _, ok := typeNames[f.Rules[0].Name]; !ok {
			return append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("%q is not a type name; want one of %v", f.Rules[0].Name, TypeNames()),
				Code:    ErrTypedFieldSpec,
				Line:    f.Line,
			})
		}
	}

	for i, ref := range f.Rules {
		rulePath := fmt.Sprintf("%s[%d]", path, i)

		_, isType := typeNames[ref.Name]
		_, isRule := ruleFactories[ref.Name]
		if !isType && !isRule {
			errs = append(errs, ValidationError{
				Field:   rulePath,
				Message: fmt.Sprintf("unknown rule or type %q; rules: %v; types: %v", ref.Name, RuleNames(), TypeNames()),
				Code:    ErrUnknownRule,
				Line:    f.Line,
			})
			continue
		}

		// E105: constructing the rule checks arity and argument types
		if _, err := resolveRule(ref); err != nil {
			errs = append(errs, ValidationError{
				Field:   rulePath,
				Message: err.Error(),
				Code:    ErrInvalidRuleArgs,
				Line:    f.Line,
			})
		}
	}

	return errs
}
