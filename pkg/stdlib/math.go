package stdlib

import (
	"fmt"
	"math"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func registerMath(r vm.Registry, _ Options) {
	r.Add("math", "sum", mathSum)
	r.Add("math", "abs", mathAbs)
	r.Add("math", "min", mathPick(-1))
	r.Add("math", "max", mathPick(1))
	r.Add("math", "pow", mathPow)
	r.Add("math", "sqrt", mathFloat(math.Sqrt))
	r.Add("math", "floor", mathRound(math.Floor))
	r.Add("math", "ceil", mathRound(math.Ceil))
}

// @math:sum a adds the numbers of an array. The result is an int unless a
// float is present.
func mathSum(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	sum := value.NewInt(0)
	for _, el := range a.Items() {
		if !el.IsNumber() {
			return value.Void, fmt.Errorf("expected number in array, got %s", el.TypeName())
		}
		if sum, err = value.Add(sum, el); err != nil {
			return value.Void, err
		}
	}
	return sum, nil
}

func mathAbs(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	n, err := numberArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	if n.Type == value.TypeInt {
		if n.Int() < 0 {
			return value.NewInt(-n.Int()), nil
		}
		return n, nil
	}
	return value.NewFloat(math.Abs(n.Float())), nil
}

// mathPick returns the smaller (want -1) or larger (want 1) of two numbers.
func mathPick(want int) vm.NativeFunc {
	return func(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 2); err != nil {
			return value.Void, err
		}
		c, err := value.Order(args[0], args[1])
		if err != nil {
			return value.Void, err
		}
		if c == want || c == 0 {
			return args[0], nil
		}
		return args[1], nil
	}
}

// @math:pow a b is an int for a non-negative int exponent and int base.
func mathPow(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	base, err := numberArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	exp, err := numberArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	if base.Type == value.TypeInt && exp.Type == value.TypeInt && exp.Int() >= 0 {
		result := int64(1)
		b := base.Int()
		for e := exp.Int(); e > 0; e >>= 1 {
			if e&1 == 1 {
				result *= b
			}
			b *= b
		}
		return value.NewInt(result), nil
	}
	return value.NewFloat(math.Pow(base.Float(), exp.Float())), nil
}

func mathFloat(fn func(float64) float64) vm.NativeFunc {
	return func(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Void, err
		}
		n, err := numberArg(args, 0)
		if err != nil {
			return value.Void, err
		}
		return value.NewFloat(fn(n.Float())), nil
	}
}

// mathRound applies fn and returns an int.
func mathRound(fn func(float64) float64) vm.NativeFunc {
	return func(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Void, err
		}
		n, err := numberArg(args, 0)
		if err != nil {
			return value.Void, err
		}
		if n.Type == value.TypeInt {
			return n, nil
		}
		return value.NewInt(int64(fn(n.Float()))), nil
	}
}
