package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type represents the tag in the Value tagged union.
type Type uint8

const (
	TypeVoid Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeArray
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	}
	return "void"
}

// Value is a tagged union. Scalars live in Data; strings and arrays live in
// Opaque. Copying a Value copies scalars and shares arrays.
type Value struct {
	Type   Type
	Data   uint64
	Opaque any
}

// Void is the absence of a value. Native functions return it when they
// produce nothing.
var Void = Value{}

func NewBool(b bool) Value {
	if b {
		return Value{Type: TypeBool, Data: 1}
	}
	return Value{Type: TypeBool}
}

func NewInt(i int64) Value {
	return Value{Type: TypeInt, Data: uint64(i)}
}

func NewFloat(f float64) Value {
	return Value{Type: TypeFloat, Data: math.Float64bits(f)}
}

func NewString(s string) Value {
	return Value{Type: TypeString, Opaque: s}
}

// NewArray wraps an existing handle.
func NewArray(a *Array) Value {
	return Value{Type: TypeArray, Opaque: a}
}

// IsVoid reports whether v carries no value.
func (v Value) IsVoid() bool { return v.Type == TypeVoid }

// TypeName returns the name used in diagnostics.
func (v Value) TypeName() string { return v.Type.String() }

// Bool returns the value as bool.
func (v Value) Bool() bool { return v.Data != 0 }

// Int returns the value as int64.
func (v Value) Int() int64 { return int64(v.Data) }

// Float returns the value as float64, promoting ints.
func (v Value) Float() float64 {
	if v.Type == TypeFloat {
		return math.Float64frombits(v.Data)
	}
	return float64(int64(v.Data))
}

// Str returns the string payload, or "" for non-strings.
func (v Value) Str() string {
	s, _ := v.Opaque.(string)
	return s
}

// Array returns the shared handle, or nil for non-arrays.
func (v Value) Array() *Array {
	a, _ := v.Opaque.(*Array)
	return a
}

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

// String renders the value the way io:print shows it: strings unquoted,
// arrays as [a, b].
func (v Value) String() string {
	return v.format(0)
}

func (v Value) format(depth int) string {
	switch v.Type {
	case TypeBool:
		return strconv.FormatBool(v.Bool())
	case TypeInt:
		return strconv.FormatInt(v.Int(), 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case TypeString:
		return v.Str()
	case TypeArray:
		if depth > 10 {
			return "[...]"
		}
		a := v.Array()
		if a == nil {
			return "[]"
		}
		parts := make([]string, a.Len())
		for i, el := range a.items {
			parts[i] = el.format(depth + 1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "void"
}

// GoString is used by %#v and vm:debug; it quotes strings.
func (v Value) GoString() string {
	switch v.Type {
	case TypeString:
		return strconv.Quote(v.Str())
	case TypeArray:
		a := v.Array()
		if a == nil {
			return "[]"
		}
		parts := make([]string, a.Len())
		for i, el := range a.items {
			parts[i] = el.GoString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.String()
}

// Equal reports deep equality. Ints and floats compare numerically; arrays
// compare element by element.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if a.Type == TypeInt && b.Type == TypeInt {
			return a.Int() == b.Int()
		}
		return a.Float() == b.Float()
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeString:
		return a.Str() == b.Str()
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeArray:
		x, y := a.Array(), b.Array()
		if x == y {
			return true
		}
		if x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// TypeError reports an operation applied to unsupported kinds. It matches
// ErrType under errors.Is.
type TypeError struct {
	Verb        string
	Left, Right string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot %s %s and %s", e.Verb, e.Left, e.Right)
}

func (e *TypeError) Is(target error) bool { return target == ErrType }

func typeError(verb string, a, b Value) error {
	return &TypeError{Verb: verb, Left: a.TypeName(), Right: b.TypeName()}
}
