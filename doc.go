// Package stricttuple builds immutable, named, fixed-field records whose values are
// checked when the record is constructed.
//
// A Record Type is defined once and then invoked many times:
//
//	Point, err := stricttuple.Define("Point", []stricttuple.Field{
//	    {Name: "x", Spec: stricttuple.Rules(stricttuple.IsInt(), stricttuple.InRange(0, 15))},
//	    {Name: "y", Spec: stricttuple.Rules(stricttuple.IsInt(), stricttuple.InRange(0, 15))},
//	})
//	if err != nil {
//	    return err
//	}
//	p, err := Point.New(stricttuple.Values{"x": 5, "y": 6})
//
// Two factories share the same mechanism:
//   - DefineTyped: each field requires a value of exactly one reflect.Type.
//     Failures are TYPE_MISMATCH errors.
//   - Define: each field carries an ordered sequence of rules (exact types or
//     described predicates). Failures are RULE_VIOLATION errors.
//
// Key constraints:
//   - Exact type identity only: a bool is not an int, a named type is not its
//     underlying type.
//   - Fail fast: the first failing rule of the first failing field is reported and
//     nothing after it is evaluated.
//   - Every construction must supply exactly the declared fields.
//   - Records have no mutators; Replace builds a new, re-validated Record.
//   - Record.String never panics, whatever the configured Renderer does.
package stricttuple
