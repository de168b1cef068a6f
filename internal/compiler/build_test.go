package compiler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stricttuple"
	"github.com/roach88/stricttuple/internal/ir"
)

func TestBuildRuleChecked(t *testing.T) {
	rt, err := Build(pointDef())
	require.NoError(t, err)

	assert.Equal(t, "Point", rt.Name())
	assert.False(t, rt.Typed())

	descs, ok := rt.Rules("x")
	require.True(t, ok)
	assert.Equal(t, []string{"type(value) == int", "0 <= value <= 15"}, descs)

	p, err := rt.New(stricttuple.Values{"x": 5, "y": 6})
	require.NoError(t, err)
	assert.Equal(t, 5, p.MustGet("x"))

	_, err = rt.New(stricttuple.Values{"x": 21, "y": 6})
	require.Error(t, err)
	assert.True(t, stricttuple.IsRuleViolation(err))
}

func TestBuildTyped(t *testing.T) {
	rt, err := Build(ir.RecordDef{
		Name:  "Pair",
		Typed: true,
		Fields: []ir.FieldDef{
			{Name: "left", Rules: []ir.RuleRef{{Name: "string"}}},
			{Name: "right", Rules: []ir.RuleRef{{Name: "list"}}},
		},
	})
	require.NoError(t, err)
	assert.True(t, rt.Typed())

	_, err = rt.New(stricttuple.Values{"left": "a", "right": []any{1}})
	require.NoError(t, err)

	_, err = rt.New(stricttuple.Values{"left": "a", "right": []int{1}})
	require.Error(t, err)
	assert.True(t, stricttuple.IsTypeMismatch(err))
}

func TestBuildUnknownRule(t *testing.T) {
	_, err := Build(ir.RecordDef{
		Name:   "R",
		Fields: []ir.FieldDef{{Name: "f", Rules: []ir.RuleRef{{Name: "nope"}}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R.f")
}

func TestBuildPassesOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Build(pointDef(), stricttuple.WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "record type defined")
}

func TestBuildCatalog(t *testing.T) {
	sf, err := ParseYAML("schema.yaml", []byte(`
record:
  Point:
    x: [int, {in_range: [0, 15]}]
    y: [int, {in_range: [0, 15]}]
typed:
  Label:
    text: string
`))
	require.NoError(t, err)

	cat, errs := BuildCatalog(sf)
	require.Empty(t, errs)
	assert.Equal(t, 2, cat.Len())

	var names []string
	for _, rt := range cat.Types() {
		names = append(names, rt.Name())
	}
	assert.Equal(t, []string{"Point", "Label"}, names)

	point, ok := cat.Lookup("Point")
	require.True(t, ok)
	_, err = point.New(stricttuple.Values{"x": 5, "y": 6})
	assert.NoError(t, err)

	_, ok = cat.Lookup("Missing")
	assert.False(t, ok)
}

func TestBuildCatalogReportsValidation(t *testing.T) {
	sf := &ir.SchemaFile{Records: []ir.RecordDef{
		{Name: "A", Fields: []ir.FieldDef{{Name: "f", Rules: []ir.RuleRef{{Name: "nope"}}}}},
		{Name: "B", Fields: []ir.FieldDef{{Name: "g", Rules: []ir.RuleRef{{Name: "min"}}}}},
	}}

	cat, errs := BuildCatalog(sf)
	assert.Nil(t, cat)
	assert.Equal(t, []string{ErrUnknownRule, ErrInvalidRuleArgs}, codes(errs))
}

func TestDefinitionMessageDropsUsage(t *testing.T) {
	_, err := stricttuple.Define("bad name", nil)
	require.Error(t, err)
	msg := definitionMessage(err)
	assert.NotContains(t, msg, "Example usage")
	assert.NotEmpty(t, msg)
}

func TestUnknownRuleListsRegistry(t *testing.T) {
	errs := Validate(&ir.SchemaFile{Records: []ir.RecordDef{
		{Name: "A", Fields: []ir.FieldDef{{Name: "f", Rules: []ir.RuleRef{{Name: "integer"}}}}},
	}})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownRule, errs[0].Code)
	assert.Contains(t, errs[0].Message, `unknown rule or type "integer"`)
	assert.Contains(t, errs[0].Message, "in_range")
	assert.Contains(t, errs[0].Message, "float64")
}

func TestRegistryNames(t *testing.T) {
	assert.Contains(t, RuleNames(), "in_range")
	assert.Contains(t, RuleNames(), "uuid")
	assert.Contains(t, TypeNames(), "int")
	assert.IsIncreasing(t, RuleNames())
}

func TestResolveRuleDescriptions(t *testing.T) {
	tests := []struct {
		ref  ir.RuleRef
		desc string
	}{
		{ir.RuleRef{Name: "int"}, "type(value) == int"},
		{ir.RuleRef{Name: "in_range", Args: []any{0, 15}}, "0 <= value <= 15"},
		{ir.RuleRef{Name: "min", Args: []any{0.5}}, "value >= 0.5"},
		{ir.RuleRef{Name: "max_len", Args: []any{3}}, "len(value) <= 3"},
		{ir.RuleRef{Name: "one_of", Args: []any{"a", 1}}, `value in ("a", 1)`},
		{ir.RuleRef{Name: "is_type", Args: []any{"int", "string"}}, "type(value) in (int, string)"},
		{ir.RuleRef{Name: "uuid"}, "value is a UUID string"},
	}

	for _, tt := range tests {
		t.Run(tt.ref.Name, func(t *testing.T) {
			r, err := resolveRule(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.desc, r.Description())
		})
	}
}

func TestResolveRuleIntegerBoundsAreExact(t *testing.T) {
	const big = 1 << 53

	r, err := resolveRule(ir.RuleRef{Name: "in_range", Args: []any{0, big}})
	require.NoError(t, err)
	assert.True(t, r.Test(big))
	assert.False(t, r.Test(big+1))

	r, err = resolveRule(ir.RuleRef{Name: "max", Args: []any{big}})
	require.NoError(t, err)
	assert.False(t, r.Test(big+1))

	r, err = resolveRule(ir.RuleRef{Name: "in_range", Args: []any{0, 1.5}})
	require.NoError(t, err)
	assert.True(t, r.Test(1))
	assert.False(t, r.Test(2))

	_, err = resolveRule(ir.RuleRef{Name: "in_range", Args: []any{2.5, 1}})
	assert.ErrorContains(t, err, "exceeds upper bound")
}
