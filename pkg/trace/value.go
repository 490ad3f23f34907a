package trace

import (
	"fmt"
	"strconv"
)

// ValueType identifies the concrete type held by a Value.
type ValueType int

const (
	ValueTypeString ValueType = iota
	ValueTypeInt64
	ValueTypeFloat64
	ValueTypeBool
	ValueTypeStringSlice
)

// Value is a closed attribute value: string, int64, float64, bool or
// a slice of strings. The zero value is the empty string.
type Value struct {
	vtype ValueType
	str   string
	num   int64
	f     float64
	b     bool
	slice []string
}

// StringValue creates a string Value.
func StringValue(v string) Value {
	return Value{vtype: ValueTypeString, str: v}
}

// Int64Value creates an int64 Value.
func Int64Value(v int64) Value {
	return Value{vtype: ValueTypeInt64, num: v}
}

// Float64Value creates a float64 Value.
func Float64Value(v float64) Value {
	return Value{vtype: ValueTypeFloat64, f: v}
}

// BoolValue creates a bool Value.
func BoolValue(v bool) Value {
	return Value{vtype: ValueTypeBool, b: v}
}

// StringSliceValue creates a string-slice Value. The slice is copied.
func StringSliceValue(v []string) Value {
	c := make([]string, len(v))
	copy(c, v)
	return Value{vtype: ValueTypeStringSlice, slice: c}
}

// Type returns the concrete type held by the Value.
func (v Value) Type() ValueType {
	return v.vtype
}

// Emit renders the Value as a string, the form used on the wire.
// Slices render as comma-separated elements.
func (v Value) Emit() string {
	switch v.vtype {
	case ValueTypeInt64:
		return strconv.FormatInt(v.num, 10)
	case ValueTypeFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueTypeBool:
		return strconv.FormatBool(v.b)
	case ValueTypeStringSlice:
		out := ""
		for i, s := range v.slice {
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out
	default:
		return v.str
	}
}

// AnyValue coerces an arbitrary value into a Value. It is total: every
// input produces a result, unconvertible values become the empty string.
// Slices are mapped element-wise; elements that are not strings or
// numbers become empty strings.
func AnyValue(v any) Value {
	switch val := v.(type) {
	case nil:
		return StringValue("")
	case string:
		return StringValue(val)
	case bool:
		return BoolValue(val)
	case int:
		return Int64Value(int64(val))
	case int8:
		return Int64Value(int64(val))
	case int16:
		return Int64Value(int64(val))
	case int32:
		return Int64Value(int64(val))
	case int64:
		return Int64Value(val)
	case uint:
		return Int64Value(int64(val))
	case uint8:
		return Int64Value(int64(val))
	case uint16:
		return Int64Value(int64(val))
	case uint32:
		return Int64Value(int64(val))
	case uint64:
		return Int64Value(int64(val))
	case float32:
		return Float64Value(float64(val))
	case float64:
		return Float64Value(val)
	case []string:
		return StringSliceValue(val)
	case []any:
		out := make([]string, len(val))
		for i, el := range val {
			out[i] = sliceElement(el)
		}
		return Value{vtype: ValueTypeStringSlice, slice: out}
	case fmt.Stringer:
		return StringValue(val.String())
	case error:
		return StringValue(val.Error())
	default:
		return StringValue("")
	}
}

// sliceElement stringifies a slice element. Only strings and numeric
// types survive; everything else collapses to the empty string.
func sliceElement(v any) string {
	switch el := v.(type) {
	case string:
		return el
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return AnyValue(el).Emit()
	default:
		return ""
	}
}
