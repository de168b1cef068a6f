package stricttuple

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// maxReprDepth bounds how deeply nested containers are printed.
const maxReprDepth = 10

var stringerType = reflect.TypeFor[fmt.Stringer]()

// typeName returns the runtime type name of v, "nil" for a nil interface.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	return t.String()
}

// repr renders v for messages. It never panics: a value that cannot be rendered
// is shown as <type: reason>.
func repr(v any) string {
	s, err := tryRepr(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", typeName(v), err)
	}
	return s
}

// tryRepr renders v in Go syntax. Unsigned integers print in decimal. A slice, map
// or pointer that contains itself prints as [...] at the point of recursion, and
// containers nested deeper than maxReprDepth print as {...}. A panic while
// rendering, such as from a String method, is returned as an error.
func tryRepr(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = "", fmt.Errorf("repr panicked: %v", r)
		}
	}()
	p := reprPrinter{active: make(map[reprVisit]bool)}
	return p.value(reflect.ValueOf(v), 0), nil
}

// reprVisit identifies a container on the current rendering path.
type reprVisit struct {
	ptr uintptr
	len int
	typ reflect.Type
}

type reprPrinter struct {
	active map[reprVisit]bool
}

func (p reprPrinter) value(rv reflect.Value, depth int) string {
	if !rv.IsValid() {
		return "nil"
	}
	if rv.CanInterface() && rv.Type().Implements(stringerType) && !isNilRef(rv) {
		return rv.Interface().(fmt.Stringer).String()
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return p.value(rv.Elem(), depth)
	case reflect.Pointer:
		if rv.IsNil() {
			return fmt.Sprintf("(%s)(nil)", rv.Type())
		}
		return p.container(rv, rv.Pointer(), 0, depth, func() string {
			return "&" + p.value(rv.Elem(), depth+1)
		})
	case reflect.Slice:
		if rv.IsNil() {
			return fmt.Sprintf("%s(nil)", rv.Type())
		}
		return p.container(rv, rv.Pointer(), rv.Len(), depth, func() string {
			return p.elements(rv, depth)
		})
	case reflect.Array:
		if depth >= maxReprDepth {
			return "{...}"
		}
		return p.elements(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return fmt.Sprintf("%s(nil)", rv.Type())
		}
		return p.container(rv, rv.Pointer(), 0, depth, func() string {
			return p.entries(rv, depth)
		})
	case reflect.Struct:
		if depth >= maxReprDepth {
			return "{...}"
		}
		return p.fields(rv, depth)
	default:
		return scalar(rv)
	}
}

// container renders a reference value unless it is already being rendered
// further up the path.
func (p reprPrinter) container(rv reflect.Value, ptr uintptr, n, depth int, render func() string) string {
	key := reprVisit{ptr: ptr, len: n, typ: rv.Type()}
	if p.active[key] {
		return "[...]"
	}
	if depth >= maxReprDepth {
		return "{...}"
	}
	p.active[key] = true
	defer delete(p.active, key)
	return render()
}

func (p reprPrinter) elements(rv reflect.Value, depth int) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = p.value(rv.Index(i), depth+1)
	}
	return rv.Type().String() + "{" + strings.Join(parts, ", ") + "}"
}

func (p reprPrinter) entries(rv reflect.Value, depth int) string {
	parts := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		parts = append(parts, p.value(iter.Key(), depth+1)+":"+p.value(iter.Value(), depth+1))
	}
	slices.Sort(parts)
	return rv.Type().String() + "{" + strings.Join(parts, ", ") + "}"
}

func (p reprPrinter) fields(rv reflect.Value, depth int) string {
	t := rv.Type()
	parts := make([]string, t.NumField())
	for i := range parts {
		parts[i] = t.Field(i).Name + ":" + p.value(rv.Field(i), depth+1)
	}
	return t.String() + "{" + strings.Join(parts, ", ") + "}"
}

func scalar(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.String:
		return strconv.Quote(rv.String())
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprintf("%v", rv.Complex())
	default:
		// chan, func and unsafe pointers
		return fmt.Sprintf("(%s)(%#x)", rv.Type(), rv.Pointer())
	}
}

func isNilRef(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
