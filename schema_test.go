package stricttuple

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// TestNewSchema_ExactFieldSet verifies construction requires exactly the declared fields.
func TestNewSchema_ExactFieldSet(t *testing.T) {
	s, err := NewSchema("Pair", "left", "right")
	require.NoError(t, err)
	assert.Equal(t, "Pair", s.Name())
	assert.Equal(t, []string{"left", "right"}, s.Fields())

	rec, err := s.New(Values{"right": "b", "left": "a"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, rec.Values())

	_, err = s.New(Values{"left": "a", "middle": "m"})
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeMissingOrExtraField, se.Code)
	assert.Equal(t, []string{"right"}, se.Missing)
	assert.Equal(t, []string{"middle"}, se.Extra)
}

// TestNewSchema_NoContentValidation verifies the primitive accepts any values.
func TestNewSchema_NoContentValidation(t *testing.T) {
	s, err := NewSchema("Loose", "v")
	require.NoError(t, err)

	for _, v := range []any{nil, 1, "x", []int{1}, struct{}{}} {
		_, err := s.New(Values{"v": v})
		assert.NoError(t, err)
	}
}

// TestNewSchema_UnicodeIdentifiers accepts letters beyond ASCII.
func TestNewSchema_UnicodeIdentifiers(t *testing.T) {
	_, err := NewSchema("Größe", "höhe", "_breite2")
	assert.NoError(t, err)
}

// TestRecord_Accessors covers access by name, position and iteration order.
func TestRecord_Accessors(t *testing.T) {
	s, err := NewSchema("Triple", "a", "b", "c")
	require.NoError(t, err)
	rec, err := s.New(Values{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, "Triple", rec.TypeName())
	assert.Equal(t, 3, rec.Len())
	assert.Equal(t, 2, rec.At(1))

	v, ok := rec.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = rec.Get("d")
	assert.False(t, ok)
	assert.Panics(t, func() { rec.MustGet("d") })

	var names []string
	var values []any
	for name, value := range rec.All() {
		names = append(names, name)
		values = append(values, value)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []any{1, 2, 3}, values)

	assert.Equal(t, []Pair{{"a", 1}, {"b", 2}, {"c", 3}}, rec.Pairs())
	assert.Equal(t, Values{"a": 1, "b": 2, "c": 3}, rec.AsMap())
}

// TestRecord_Immutability verifies accessor results are copies.
func TestRecord_Immutability(t *testing.T) {
	s, err := NewSchema("Box", "w", "h")
	require.NoError(t, err)

	input := Values{"w": 1, "h": 2}
	rec, err := s.New(input)
	require.NoError(t, err)

	input["w"] = 100
	assert.Equal(t, 1, rec.MustGet("w"), "record must not track its input map")

	vals := rec.Values()
	vals[0] = 100
	assert.Equal(t, 1, rec.At(0))

	fields := rec.Fields()
	fields[0] = "changed"
	assert.Equal(t, []string{"w", "h"}, rec.Fields())

	m := rec.AsMap()
	m["w"] = 100
	assert.Equal(t, 1, rec.MustGet("w"))

	// Record exposes no setters.
	typ := reflect.TypeOf(rec)
	for i := 0; i < typ.NumMethod(); i++ {
		name := typ.Method(i).Name
		assert.NotContains(t, []string{"Set", "Put", "Update", "Delete"}, name)
	}
}

// TestRecord_Equal covers structural equality.
func TestRecord_Equal(t *testing.T) {
	a, err := NewSchema("Point", "x", "y")
	require.NoError(t, err)
	b, err := NewSchema("Point", "x", "y")
	require.NoError(t, err)
	other, err := NewSchema("Vec", "x", "y")
	require.NoError(t, err)
	swapped, err := NewSchema("Point", "y", "x")
	require.NoError(t, err)

	p1, _ := a.New(Values{"x": 1, "y": []int{2}})
	p2, _ := b.New(Values{"x": 1, "y": []int{2}})
	p3, _ := a.New(Values{"x": 1, "y": []int{3}})
	v1, _ := other.New(Values{"x": 1, "y": []int{2}})
	s1, _ := swapped.New(Values{"x": 1, "y": []int{2}})

	assert.True(t, p1.Equal(p2))
	assert.True(t, p2.Equal(p1))
	assert.False(t, p1.Equal(p3))
	assert.False(t, p1.Equal(v1))
	assert.False(t, p1.Equal(s1))
	assert.True(t, Record{}.Equal(Record{}))
}

// TestRecord_StringGeneric checks the generic representation.
func TestRecord_StringGeneric(t *testing.T) {
	s, err := NewSchema("Point", "x", "y", "label", "tags", "id")
	require.NoError(t, err)
	rec, err := s.New(Values{"x": 5, "y": -6, "label": "origin", "tags": []string{"a"}, "id": uint8(7)})
	require.NoError(t, err)

	newGolden(t).Assert(t, "record_generic", []byte(rec.String()))
}

// TestRecord_StringUsesRenderer checks delegation to the renderer.
func TestRecord_StringUsesRenderer(t *testing.T) {
	var got []Pair
	renderer := RendererFunc(func(pairs []Pair) (string, error) {
		got = pairs
		return "rendered", nil
	})
	rt, err := Define("Point", []Field{
		{Name: "x", Spec: reflect.TypeFor[int]()},
		{Name: "y", Spec: reflect.TypeFor[int]()},
	}, WithRenderer(renderer))
	require.NoError(t, err)

	rec := rt.MustNew(Values{"x": 1, "y": 2})
	assert.Equal(t, "rendered", rec.String())
	assert.Equal(t, []Pair{{"x", 1}, {"y", 2}}, got)
}

// TestRecord_StringFallbacks checks that representation never fails.
func TestRecord_StringFallbacks(t *testing.T) {
	failing := RendererFunc(func([]Pair) (string, error) {
		return "", fmt.Errorf("renderer unavailable")
	})
	panicking := RendererFunc(func([]Pair) (string, error) {
		panic("boom")
	})

	for name, r := range map[string]Renderer{"error": failing, "panic": panicking} {
		t.Run(name, func(t *testing.T) {
			rt, err := Define("Point", []Field{{Name: "x", Spec: reflect.TypeFor[int]()}}, WithRenderer(r))
			require.NoError(t, err)
			rec := rt.MustNew(Values{"x": 4})

			assert.NotPanics(t, func() { _ = rec.String() })
			assert.Equal(t, "Point(x=4)", rec.String())
		})
	}
}

type explosive struct{}

func (explosive) String() string { panic("no string for you") }

// TestRecord_StringValuePanics verifies a panicking value does not escape String.
func TestRecord_StringValuePanics(t *testing.T) {
	s, err := NewSchema("Bomb", "v")
	require.NoError(t, err)
	rec, err := s.New(Values{"v": explosive{}})
	require.NoError(t, err)

	var out string
	assert.NotPanics(t, func() { out = rec.String() })
	assert.Equal(t, "Bomb<v>", out)
}

// TestRecord_StringRendererThenBare falls through both earlier tiers.
func TestRecord_StringRendererThenBare(t *testing.T) {
	failing := RendererFunc(func([]Pair) (string, error) {
		return "", fmt.Errorf("renderer unavailable")
	})
	rt, err := Define("Bomb", []Field{
		{Name: "n", Spec: reflect.TypeFor[int]()},
		{Name: "v", Spec: reflect.TypeFor[explosive]()},
	}, WithRenderer(failing))
	require.NoError(t, err)

	rec := rt.MustNew(Values{"n": 1, "v": explosive{}})
	assert.Equal(t, "Bomb<n, v>", rec.String())
}

// TestRecord_StringSelfReference covers values that contain themselves.
func TestRecord_StringSelfReference(t *testing.T) {
	cyclicSlice := []any{1, nil}
	cyclicSlice[1] = cyclicSlice

	cyclicMap := map[string]any{"k": 1}
	cyclicMap["self"] = cyclicMap

	type node struct {
		Name string
		Next *node
	}
	ring := &node{Name: "a"}
	ring.Next = &node{Name: "b", Next: ring}

	s, err := NewSchema("Loop", "list", "dict", "ring")
	require.NoError(t, err)
	rec, err := s.New(Values{"list": cyclicSlice, "dict": cyclicMap, "ring": ring})
	require.NoError(t, err)

	var out string
	require.NotPanics(t, func() { out = rec.String() })
	assert.Equal(t, `Loop(list=[]interface {}{1, [...]}, `+
		`dict=map[string]interface {}{"k":1, "self":[...]}, `+
		`ring=&stricttuple.node{Name:"a", Next:&stricttuple.node{Name:"b", Next:[...]}})`, out)
}

// TestRecord_StringSharedNotCyclic prints a value shared by siblings in full.
func TestRecord_StringSharedNotCyclic(t *testing.T) {
	shared := []int{1, 2}
	s, err := NewSchema("Pair", "v")
	require.NoError(t, err)
	rec, err := s.New(Values{"v": []any{shared, shared}})
	require.NoError(t, err)

	assert.Equal(t, "Pair(v=[]interface {}{[]int{1, 2}, []int{1, 2}})", rec.String())
}

// TestRecord_StringDepthLimit caps deeply nested values.
func TestRecord_StringDepthLimit(t *testing.T) {
	var deep any = 0
	for range maxReprDepth + 5 {
		deep = []any{deep}
	}
	s, err := NewSchema("Deep", "v")
	require.NoError(t, err)
	rec, err := s.New(Values{"v": deep})
	require.NoError(t, err)

	out := rec.String()
	assert.Contains(t, out, "{...}")
	assert.Equal(t, maxReprDepth, strings.Count(out, "[]interface {}{"))
}

// TestRecord_StringBare covers the last-resort form.
func TestRecord_StringBare(t *testing.T) {
	s, err := NewSchema("Point", "x", "y")
	require.NoError(t, err)
	rec, err := s.New(Values{"x": 1, "y": 2})
	require.NoError(t, err)

	assert.Equal(t, "Point<x, y>", rec.renderBare())
	assert.Equal(t, "Record()", Record{}.String())
}
