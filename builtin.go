package stricttuple

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Numeric is the set of types accepted as bounds by the numeric rules.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// IsInt requires a value of exactly type int.
func IsInt() Rule { return TypeOf[int]() }

// IsString requires a value of exactly type string.
func IsString() Rule { return TypeOf[string]() }

// IsBool requires a value of exactly type bool.
func IsBool() Rule { return TypeOf[bool]() }

// IsFloat requires a value of exactly type float64.
func IsFloat() Rule { return TypeOf[float64]() }

// InRange accepts any real number with lo <= value <= hi. Non-numeric values and
// NaN fail. Integers are compared exactly; floats are compared as float64.
func InRange[T Numeric](lo, hi T) Rule {
	l, _ := toNumber(lo)
	h, _ := toNumber(hi)
	return Check(fmt.Sprintf("%v <= value <= %v", lo, hi), func(v any) bool {
		n, ok := toNumber(v)
		if !ok {
			return false
		}
		cl, ok1 := compareNumbers(n, l)
		ch, ok2 := compareNumbers(n, h)
		return ok1 && ok2 && cl >= 0 && ch <= 0
	})
}

// Min accepts any real number >= min.
func Min[T Numeric](min T) Rule {
	m, _ := toNumber(min)
	return Check(fmt.Sprintf("value >= %v", min), func(v any) bool {
		n, ok := toNumber(v)
		if !ok {
			return false
		}
		c, ok := compareNumbers(n, m)
		return ok && c >= 0
	})
}

// Max accepts any real number <= max.
func Max[T Numeric](max T) Rule {
	m, _ := toNumber(max)
	return Check(fmt.Sprintf("value <= %v", max), func(v any) bool {
		n, ok := toNumber(v)
		if !ok {
			return false
		}
		c, ok := compareNumbers(n, m)
		return ok && c <= 0
	})
}

// MinLen requires len(value) >= n. Strings are measured in runes; slices, arrays
// and maps by element count. Other values fail.
func MinLen(n int) Rule {
	return Check(fmt.Sprintf("len(value) >= %d", n), func(v any) bool {
		l, ok := length(v)
		return ok && l >= n
	})
}

// MaxLen requires len(value) <= n, measured as in MinLen.
func MaxLen(n int) Rule {
	return Check(fmt.Sprintf("len(value) <= %d", n), func(v any) bool {
		l, ok := length(v)
		return ok && l <= n
	})
}

// NonEmpty rejects blank strings and empty slices, arrays and maps.
func NonEmpty() Rule {
	return Check("value is not empty", func(v any) bool {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s) != ""
		}
		l, ok := length(v)
		return ok && l > 0
	})
}

// Matches requires a string matching pattern. The pattern is compiled once; an
// invalid pattern yields a rule that Define rejects.
func Matches(pattern string) Rule {
	desc := fmt.Sprintf("value matches /%s/", pattern)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{kind: KindPredicate, desc: desc, invalid: fmt.Sprintf("invalid pattern: %v", err)}
	}
	return Check(desc, func(v any) bool {
		s, ok := v.(string)
		return ok && re.MatchString(s)
	})
}

// OneOf accepts a value deeply equal to one of options.
func OneOf(options ...any) Rule {
	reprs := make([]string, len(options))
	for i, o := range options {
		reprs[i] = repr(o)
	}
	return Check("value in ("+strings.Join(reprs, ", ")+")", func(v any) bool {
		for _, o := range options {
			if reflect.DeepEqual(v, o) {
				return true
			}
		}
		return false
	})
}

// UUID requires a string in the canonical 36-character UUID form.
func UUID() Rule {
	return Check("value is a UUID string", func(v any) bool {
		s, ok := v.(string)
		if !ok || len(s) != 36 {
			return false
		}
		// Fast rejection before parsing.
		if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
}

// NFC requires a string already in Unicode Normalization Form C.
func NFC() Rule {
	return Check("value is NFC-normalized", func(v any) bool {
		s, ok := v.(string)
		return ok && utf8.ValidString(s) && norm.NFC.IsNormalString(s)
	})
}

// number is a real value in one of three domains: signed, unsigned or float.
type number struct {
	kind reflect.Kind // reflect.Int64, reflect.Uint64 or reflect.Float64
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: reflect.Int64, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: reflect.Uint64, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: reflect.Float64, f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch n.kind {
	case reflect.Int64:
		return float64(n.i)
	case reflect.Uint64:
		return float64(n.u)
	default:
		return n.f
	}
}

// compareNumbers returns -1, 0 or +1 as a is less than, equal to or greater than b.
// Two integers compare exactly, whatever their signedness. ok is false if either
// side is NaN.
func compareNumbers(a, b number) (c int, ok bool) {
	switch {
	case a.kind == reflect.Float64 || b.kind == reflect.Float64:
		af, bf := a.float(), b.float()
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		return cmp.Compare(af, bf), true
	case a.kind == reflect.Int64 && b.kind == reflect.Int64:
		return cmp.Compare(a.i, b.i), true
	case a.kind == reflect.Uint64 && b.kind == reflect.Uint64:
		return cmp.Compare(a.u, b.u), true
	case a.kind == reflect.Int64:
		if a.i < 0 {
			return -1, true
		}
		return cmp.Compare(uint64(a.i), b.u), true
	default:
		if b.i < 0 {
			return 1, true
		}
		return cmp.Compare(a.u, uint64(b.i)), true
	}
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}
