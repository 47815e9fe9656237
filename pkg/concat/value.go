package concat

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the shape of an argument after classification.
type Kind int

const (
	// KindNull marks absent values. They contribute nothing to the output.
	KindNull Kind = iota
	// KindString covers strings and every scalar the helper can stringify.
	KindString
	// KindSequence covers index-ordered collections.
	KindSequence
	// KindMapping covers string-keyed collections.
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Sequence is an index-ordered list of argument-like values.
type Sequence []any

// Value is a classified argument. Exactly one of the payload accessors is
// meaningful for a given Kind.
type Value struct {
	kind    Kind
	str     string
	seq     Sequence
	mapping *Mapping
}

// NullValue returns a value that is skipped during concatenation.
func NullValue() Value {
	return Value{kind: KindNull}
}

// StringValue wraps a string argument.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// SequenceValue wraps sequence elements.
func SequenceValue(items ...any) Value {
	return Value{kind: KindSequence, seq: Sequence(items)}
}

// MappingValue wraps an ordered mapping. A nil mapping is treated as empty.
func MappingValue(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, mapping: m}
}

// Kind reports the classified shape.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload for KindString values.
func (v Value) Str() string { return v.str }

// Seq returns the elements of KindSequence values.
func (v Value) Seq() Sequence { return v.seq }

// Map returns the mapping of KindMapping values.
func (v Value) Map() *Mapping { return v.mapping }

// Classify coerces a host value into a Value. Scalars (booleans, numbers,
// json.Number, fmt.Stringer) become strings, slices and arrays become
// sequences and string-keyed maps become mappings. Native Go maps carry no
// insertion order so their keys are taken in sorted order; use *Mapping when
// order matters.
//
// Values that fit none of the kinds yield an *InvalidArgumentError.
func Classify(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return NullValue(), nil
		}
		return *t, nil
	case *Mapping:
		return MappingValue(t), nil
	case Mapping:
		return MappingValue(&t), nil
	case Sequence:
		return Value{kind: KindSequence, seq: t}, nil
	case []any:
		return Value{kind: KindSequence, seq: Sequence(t)}, nil
	case []string:
		items := make(Sequence, len(t))
		for i, s := range t {
			items[i] = s
		}
		return Value{kind: KindSequence, seq: items}, nil
	case []byte:
		return StringValue(string(t)), nil
	case map[string]any:
		return MappingValue(mappingFromMap(t)), nil
	case map[string]string:
		m := NewMapping()
		for _, key := range sortedKeys(t) {
			m.Set(key, t[key])
		}
		return MappingValue(m), nil
	}

	if s, ok := scalarString(v); ok {
		return StringValue(s), nil
	}
	return classifyReflect(v)
}

func classifyReflect(v any) (Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return Classify(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Value{kind: KindSequence}, nil
		}
		items := make(Sequence, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Value{kind: KindSequence, seq: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			keys = append(keys, key)
			byKey[key] = iter.Value()
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, key := range keys {
			m.Set(key, byKey[key].Interface())
		}
		return MappingValue(m), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Bool:
		return StringValue(strconv.FormatBool(rv.Bool())), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return StringValue(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return StringValue(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return StringValue(formatFloat(rv.Float(), 32)), nil
	case reflect.Float64:
		return StringValue(formatFloat(rv.Float(), 64)), nil
	}
	return Value{}, &InvalidArgumentError{Index: -1, Type: fmt.Sprintf("%T", v)}
}

// scalarString renders scalars the way a JSON renderer would print them.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int8:
		return strconv.FormatInt(int64(t), 10), true
	case int16:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint8:
		return strconv.FormatUint(uint64(t), 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float32:
		return formatFloat(float64(t), 32), true
	case float64:
		return formatFloat(t, 64), true
	case json.Number:
		return t.String(), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

// formatFloat prints the shortest representation that round-trips. Integral
// values keep a ".0" suffix and magnitudes outside [1e-5, 1e16) use an
// exponent without a plus sign or leading zeros ("1e21", "1.5e-7"). NaN and
// infinities have no JSON form and print as an empty string.
func formatFloat(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-5 || abs >= 1e16) {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bitSize), "e")
		sign := ""
		switch exp[0] {
		case '-':
			sign = "-"
			exp = exp[1:]
		case '+':
			exp = exp[1:]
		}
		return mantissa + "e" + sign + strings.TrimLeft(exp, "0")
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// displayString stringifies a sequence element that is not rendered through a
// block. Nested sequences print as "[a, b]" and nested mappings as "[object]".
func displayString(v any) (string, error) {
	value, err := Classify(v)
	if err != nil {
		return "", err
	}
	switch value.kind {
	case KindString:
		return value.str, nil
	case KindSequence:
		parts := make([]string, 0, len(value.seq))
		for _, item := range value.seq {
			part, err := displayString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case KindMapping:
		return "[object]", nil
	default:
		return "", nil
	}
}

// bindable converts ordered containers into plain maps and slices so template
// engines can resolve attributes on them.
func bindable(v any) any {
	switch t := v.(type) {
	case *Mapping:
		return t.ToMap()
	case Mapping:
		return t.ToMap()
	case Sequence:
		return bindableSlice(t)
	case []any:
		return bindableSlice(t)
	default:
		return v
	}
}

func bindableSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = bindable(item)
	}
	return out
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
