package core

import (
	"fmt"
	"strconv"
	"strings"
)

// AttrKind is the type tag of a TypedAttribute.
type AttrKind int

const (
	// KindInvalid is the zero value; attributes of this kind carry no value.
	KindInvalid AttrKind = iota
	// KindInt tags an int value.
	KindInt
	// KindFloat tags a float64 value.
	KindFloat
	// KindString tags a string value.
	KindString
	// KindBool tags a bool value.
	KindBool
	// KindValue tags an arbitrary Go value.
	KindValue
)

// String returns the tag name used in assembly files.
func (k AttrKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindValue:
		return "value"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ParseAttrKind maps a tag name (case-insensitive) back to its AttrKind.
func ParseAttrKind(s string) (AttrKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return KindInt, nil
	case "float", "double":
		return KindFloat, nil
	case "string", "str":
		return KindString, nil
	case "bool", "boolean":
		return KindBool, nil
	case "value", "any":
		return KindValue, nil
	default:
		return KindInvalid, fmt.Errorf("unknown attribute kind %q", s)
	}
}

// TypedAttribute is a tagged meta-data value stored on delegators and
// receptacles. Construct it with the Int/Float/String/Bool/Value helpers so
// Kind and Value always agree.
type TypedAttribute struct {
	Kind  AttrKind
	Value any
}

// IntAttr returns an int attribute.
func IntAttr(v int) TypedAttribute { return TypedAttribute{Kind: KindInt, Value: v} }

// FloatAttr returns a float attribute.
func FloatAttr(v float64) TypedAttribute { return TypedAttribute{Kind: KindFloat, Value: v} }

// StringAttr returns a string attribute.
func StringAttr(v string) TypedAttribute { return TypedAttribute{Kind: KindString, Value: v} }

// BoolAttr returns a bool attribute.
func BoolAttr(v bool) TypedAttribute { return TypedAttribute{Kind: KindBool, Value: v} }

// ValueAttr returns an attribute carrying an arbitrary value.
func ValueAttr(v any) TypedAttribute { return TypedAttribute{Kind: KindValue, Value: v} }

// NewAttr builds an attribute of the given kind from a loosely typed value,
// converting where the conversion is lossless (e.g. an int read from YAML
// requested as float, or a numeric string requested as int).
func NewAttr(kind AttrKind, v any) (TypedAttribute, error) {
	switch kind {
	case KindInt:
		switch n := v.(type) {
		case int:
			return IntAttr(n), nil
		case int64:
			return IntAttr(int(n)), nil
		case float64:
			if n == float64(int(n)) {
				return IntAttr(int(n)), nil
			}
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return IntAttr(i), nil
			}
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return FloatAttr(n), nil
		case int:
			return FloatAttr(float64(n)), nil
		case int64:
			return FloatAttr(float64(n)), nil
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return FloatAttr(f), nil
			}
		}
	case KindString:
		if s, ok := v.(string); ok {
			return StringAttr(s), nil
		}
		return StringAttr(fmt.Sprint(v)), nil
	case KindBool:
		switch b := v.(type) {
		case bool:
			return BoolAttr(b), nil
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return BoolAttr(parsed), nil
			}
		}
	case KindValue:
		return ValueAttr(v), nil
	case KindInvalid:
		return TypedAttribute{}, fmt.Errorf("attribute kind is required")
	}
	return TypedAttribute{}, fmt.Errorf("cannot use %v (%T) as %s attribute", v, v, kind)
}

// Int returns the value of an int attribute.
func (a TypedAttribute) Int() (int, bool) {
	v, ok := a.Value.(int)
	return v, ok && a.Kind == KindInt
}

// Float returns the value of a float attribute.
func (a TypedAttribute) Float() (float64, bool) {
	v, ok := a.Value.(float64)
	return v, ok && a.Kind == KindFloat
}

// Str returns the value of a string attribute.
func (a TypedAttribute) Str() (string, bool) {
	v, ok := a.Value.(string)
	return v, ok && a.Kind == KindString
}

// Bool returns the value of a bool attribute.
func (a TypedAttribute) Bool() (bool, bool) {
	v, ok := a.Value.(bool)
	return v, ok && a.Kind == KindBool
}

// Equal reports whether the attribute holds v. Numeric kinds compare by
// value across int and float representations.
func (a TypedAttribute) Equal(v any) bool {
	switch a.Kind {
	case KindInt:
		i, _ := a.Int()
		switch n := v.(type) {
		case int:
			return i == n
		case int64:
			return int64(i) == n
		case float64:
			return float64(i) == n
		}
		return false
	case KindFloat:
		f, _ := a.Float()
		switch n := v.(type) {
		case float64:
			return f == n
		case int:
			return f == float64(n)
		}
		return false
	case KindString:
		s, _ := a.Str()
		other, ok := v.(string)
		return ok && s == other
	case KindBool:
		b, _ := a.Bool()
		other, ok := v.(bool)
		return ok && b == other
	case KindValue:
		return isComparable(a.Value) && isComparable(v) && a.Value == v
	case KindInvalid:
		return false
	}
	return false
}

// String renders kind and value, e.g. "int(8)".
func (a TypedAttribute) String() string {
	return fmt.Sprintf("%s(%v)", a.Kind, a.Value)
}
