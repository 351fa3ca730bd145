package stdlib

import (
	"fmt"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func arity(args []value.Value, n int) error {
	if len(args) != n {
		if n == 1 {
			return fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}
	return nil
}

func atLeast(args []value.Value, n int) error {
	if len(args) < n {
		return fmt.Errorf("expected at least %d arguments, got %d", n, len(args))
	}
	return nil
}

func mismatch(want string, got value.Value) error {
	return fmt.Errorf("expected %s, got %s", want, got.TypeName())
}

func arrayArg(args []value.Value, i int) (*value.Array, error) {
	if args[i].Type != value.TypeArray {
		return nil, mismatch("array", args[i])
	}
	return args[i].Array(), nil
}

func stringArg(args []value.Value, i int) (string, error) {
	if args[i].Type != value.TypeString {
		return "", mismatch("string", args[i])
	}
	return args[i].Str(), nil
}

func intArg(args []value.Value, i int) (int64, error) {
	if args[i].Type != value.TypeInt {
		return 0, mismatch("int", args[i])
	}
	return args[i].Int(), nil
}

func numberArg(args []value.Value, i int) (value.Value, error) {
	if !args[i].IsNumber() {
		return value.Void, mismatch("number", args[i])
	}
	return args[i], nil
}

// writeBack stores v under the identifier used for argument i, if any.
func writeBack(m *vm.Machine, names []string, i int, v value.Value) {
	if i < len(names) && names[i] != "" {
		m.Set(names[i], v)
	}
}
