package buildconfig

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TypedValue is a resolved property coerced for structured output.
// It is one of StringValue, BoolValue, IntValue, DoubleValue, ListValue, or MapValue.
type TypedValue interface {
	// Native returns the plain Go value suitable for JSON or YAML encoding.
	Native() any
	typedValue()
}

type (
	// StringValue is an uncoerced string.
	StringValue string
	// BoolValue comes from true/YES or false/NO.
	BoolValue bool
	// IntValue is a base 10 integer.
	IntValue int64
	// DoubleValue is a finite floating point number.
	DoubleValue float64
	// ListValue is a JSON array.
	ListValue []TypedValue
	// MapValue is a JSON object.
	MapValue map[string]TypedValue
)

func (StringValue) typedValue() {}
func (BoolValue) typedValue()   {}
func (IntValue) typedValue()    {}
func (DoubleValue) typedValue() {}
func (ListValue) typedValue()   {}
func (MapValue) typedValue()    {}

// Native implements TypedValue.
func (v StringValue) Native() any { return string(v) }

// Native implements TypedValue.
func (v BoolValue) Native() any { return bool(v) }

// Native implements TypedValue.
func (v IntValue) Native() any { return int64(v) }

// Native implements TypedValue.
func (v DoubleValue) Native() any { return float64(v) }

// Native implements TypedValue.
func (v ListValue) Native() any {
	out := make([]any, len(v))
	for i, item := range v {
		out[i] = item.Native()
	}
	return out
}

// Native implements TypedValue.
func (v MapValue) Native() any {
	out := make(map[string]any, len(v))
	for k, item := range v {
		out[k] = item.Native()
	}
	return out
}

// Coerce converts a raw string into the most specific typed value, trying in
// order: boolean literals, integer, finite double, JSON array or object, and
// finally the string itself.
func Coerce(raw string) TypedValue {
	switch raw {
	case "true", "YES":
		return BoolValue(true)
	case "false", "NO":
		return BoolValue(false)
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return DoubleValue(f)
	}

	if looksLikeJSON(raw) {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err == nil && !dec.More() {
			return fromJSON(decoded)
		}
	}

	return StringValue(raw)
}

func looksLikeJSON(raw string) bool {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return false
	}
	return (s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '{' && s[len(s)-1] == '}')
}

// fromJSON maps decoded JSON into typed values. Strings inside JSON are not
// coerced further, and null becomes the empty string.
func fromJSON(v any) TypedValue {
	switch x := v.(type) {
	case map[string]any:
		out := make(MapValue, len(x))
		for k, item := range x {
			out[k] = fromJSON(item)
		}
		return out
	case []any:
		out := make(ListValue, len(x))
		for i, item := range x {
			out[i] = fromJSON(item)
		}
		return out
	case bool:
		return BoolValue(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return IntValue(i)
		}
		f, _ := x.Float64()
		return DoubleValue(f)
	case string:
		return StringValue(x)
	default:
		return StringValue("")
	}
}

// Export returns the defined properties of d. With typed set each value is
// coerced; otherwise every value is a StringValue. Undefined properties are omitted.
func Export(d Defines, typed bool) map[string]TypedValue {
	out := make(map[string]TypedValue, len(d))
	for p, s := range d {
		v, ok := s.Get()
		if !ok {
			continue
		}
		if typed {
			out[string(p)] = Coerce(v)
		} else {
			out[string(p)] = StringValue(v)
		}
	}
	return out
}

// NativeMap converts exported values into plain Go values.
func NativeMap(m map[string]TypedValue) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Native()
	}
	return out
}
