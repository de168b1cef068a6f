package stricttuple

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes stricttuple errors.
type ErrorCode string

const (
	// CodeInvalidDefinition indicates a malformed call to Define, DefineTyped or NewSchema.
	CodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"

	// CodeInvalidSchema indicates a typed field was declared with something other than a type.
	CodeInvalidSchema ErrorCode = "INVALID_SCHEMA"

	// CodeInvalidRuleSpec indicates a rule-checked field spec has an unrecognized shape.
	CodeInvalidRuleSpec ErrorCode = "INVALID_RULE_SPEC"

	// CodeTypeMismatch indicates a value's runtime type is not exactly the declared type.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeRuleViolation indicates a value failed one of its field's rules.
	CodeRuleViolation ErrorCode = "RULE_VIOLATION"

	// CodeMissingOrExtraField indicates the supplied field names differ from the declared ones.
	CodeMissingOrExtraField ErrorCode = "MISSING_OR_EXTRA_FIELD"
)

// Sentinels for errors.Is matching against *Error values.
var (
	ErrInvalidDefinition   = errors.New("invalid record definition")
	ErrInvalidSchema       = errors.New("invalid typed schema")
	ErrInvalidRuleSpec     = errors.New("invalid rule spec")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrRuleViolation       = errors.New("rule violation")
	ErrMissingOrExtraField = errors.New("missing or extra field")
)

var sentinels = map[ErrorCode]error{
	CodeInvalidDefinition:   ErrInvalidDefinition,
	CodeInvalidSchema:       ErrInvalidSchema,
	CodeInvalidRuleSpec:     ErrInvalidRuleSpec,
	CodeTypeMismatch:        ErrTypeMismatch,
	CodeRuleViolation:       ErrRuleViolation,
	CodeMissingOrExtraField: ErrMissingOrExtraField,
}

// usage is appended to definition errors so the caller sees a working call.
const usage = `

Example usage:

    Point, err := stricttuple.Define("Point", []stricttuple.Field{
        {Name: "x", Spec: stricttuple.Rules(stricttuple.IsInt(), stricttuple.InRange(0, 15))},
        {Name: "y", Spec: reflect.TypeFor[int]()},
    })`

// Error is returned by every failing stricttuple operation.
//
// Only the fields relevant to Code are populated. Error() renders a message that
// is diagnosable without the caller's source.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Record is the record type name, if known.
	Record string

	// Field is the offending field, if any.
	Field string

	// Expected is the required type name (TYPE_MISMATCH) or the rule description
	// (RULE_VIOLATION).
	Expected string

	// Actual is the runtime type name of the offending value.
	Actual string

	// Value is the Go-syntax representation of the offending value.
	Value string

	// Missing and Extra list field names for MISSING_OR_EXTRA_FIELD, sorted.
	Missing []string
	Extra   []string

	// Message is a free-form description used by definition errors.
	Message string

	// Err is the underlying cause, e.g. a recovered predicate panic.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case CodeTypeMismatch:
		return fmt.Sprintf("%s.%s needs to be a %s, received: %s(%s)",
			e.Record, e.Field, e.Expected, e.Actual, e.Value)
	case CodeRuleViolation:
		msg := fmt.Sprintf("rule violation\ninstruction:\n\t%s.%s = %s(%s)\nviolates the rule:\n\t%s",
			e.Record, e.Field, e.Actual, e.Value, e.Expected)
		if e.Err != nil {
			msg += fmt.Sprintf("\ncause:\n\t%v", e.Err)
		}
		return msg
	case CodeMissingOrExtraField:
		var parts []string
		if len(e.Missing) > 0 {
			parts = append(parts, "missing fields ["+strings.Join(e.Missing, ", ")+"]")
		}
		if len(e.Extra) > 0 {
			parts = append(parts, "unexpected fields ["+strings.Join(e.Extra, ", ")+"]")
		}
		return fmt.Sprintf("%s: %s", e.Record, strings.Join(parts, "; "))
	default:
		if e.Record != "" && e.Field != "" {
			return fmt.Sprintf("%s: %s.%s: %s", e.Code, e.Record, e.Field, e.Message)
		}
		if e.Record != "" {
			return fmt.Sprintf("%s: %s: %s", e.Code, e.Record, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsInvalidDefinition returns true if err is an INVALID_DEFINITION error.
// Uses errors.As to handle wrapped errors.
func IsInvalidDefinition(err error) bool { return hasCode(err, CodeInvalidDefinition) }

// IsInvalidSchema returns true if err is an INVALID_SCHEMA error.
func IsInvalidSchema(err error) bool { return hasCode(err, CodeInvalidSchema) }

// IsInvalidRuleSpec returns true if err is an INVALID_RULE_SPEC error.
func IsInvalidRuleSpec(err error) bool { return hasCode(err, CodeInvalidRuleSpec) }

// IsTypeMismatch returns true if err is a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool { return hasCode(err, CodeTypeMismatch) }

// IsRuleViolation returns true if err is a RULE_VIOLATION error.
func IsRuleViolation(err error) bool { return hasCode(err, CodeRuleViolation) }

// IsMissingOrExtraField returns true if err is a MISSING_OR_EXTRA_FIELD error.
func IsMissingOrExtraField(err error) bool { return hasCode(err, CodeMissingOrExtraField) }

func newDefinitionError(record, message string) *Error {
	return &Error{
		Code:    CodeInvalidDefinition,
		Record:  record,
		Message: message + usage,
	}
}
