package value

import (
	"errors"
	"math"
)

var (
	ErrType             = errors.New("type mismatch")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrEmptyArray       = errors.New("array is empty")
)

// arith applies an operator over (int,int), (float,float) or a mixed pair,
// promoting the int side to float.
func arith(verb string, a, b Value, ints func(x, y int64) (int64, error), floats func(x, y float64) (float64, error)) (Value, error) {
	if !a.IsNumber() || !b.IsNumber() {
		return Void, typeError(verb, a, b)
	}
	if a.Type == TypeInt && b.Type == TypeInt {
		r, err := ints(a.Int(), b.Int())
		if err != nil {
			return Void, err
		}
		return NewInt(r), nil
	}
	r, err := floats(a.Float(), b.Float())
	if err != nil {
		return Void, err
	}
	return NewFloat(r), nil
}

func Add(a, b Value) (Value, error) {
	return arith("add", a, b,
		func(x, y int64) (int64, error) { return x + y, nil },
		func(x, y float64) (float64, error) { return x + y, nil })
}

func Sub(a, b Value) (Value, error) {
	return arith("subtract", a, b,
		func(x, y int64) (int64, error) { return x - y, nil },
		func(x, y float64) (float64, error) { return x - y, nil })
}

func Mul(a, b Value) (Value, error) {
	return arith("multiply", a, b,
		func(x, y int64) (int64, error) { return x * y, nil },
		func(x, y float64) (float64, error) { return x * y, nil })
}

// Div truncates toward zero for ints.
func Div(a, b Value) (Value, error) {
	return arith("divide", a, b,
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return x / y, nil
		},
		func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return x / y, nil
		})
}

// Mod takes the sign of the dividend, for ints and floats alike.
func Mod(a, b Value) (Value, error) {
	return arith("modulo", a, b,
		func(x, y int64) (int64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return x % y, nil
		},
		func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, ErrDivisionByZero
			}
			return math.Mod(x, y), nil
		})
}

// Equals compares like-typed scalars. Ints and floats compare across kinds
// by promotion; any other mismatch is a type error.
func Equals(a, b Value) (bool, error) {
	switch {
	case a.IsNumber() && b.IsNumber():
		return Equal(a, b), nil
	case a.Type == b.Type && (a.Type == TypeString || a.Type == TypeBool):
		return Equal(a, b), nil
	}
	return false, typeError("compare", a, b)
}

// Order compares two numbers or two strings, returning -1, 0 or 1. Bools only
// support equality.
func Order(a, b Value) (int, error) {
	numbers := a.IsNumber() && b.IsNumber()
	strs := a.Type == TypeString && b.Type == TypeString
	if !numbers && !strs {
		return 0, typeError("order", a, b)
	}
	return order(a, b)
}
