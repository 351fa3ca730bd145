package stdlib

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

func registerIO(r vm.Registry, _ Options) {
	r.Add("io", "print", ioPrint(""))
	r.Add("io", "println", ioPrint("\n"))
	r.Add("io", "printf", ioPrintf)
	r.Add("io", "sprint", ioSprint)
	r.Add("io", "sprintf", ioSprintf)
	r.Add("io", "read", ioRead(false))
	r.Add("io", "readln", ioRead(true))
}

func ioPrint(suffix string) vm.NativeFunc {
	return func(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 1); err != nil {
			return value.Void, err
		}
		_, err := io.WriteString(m.Stdout, args[0].String()+suffix)
		return value.Void, err
	}
}

// format replaces each {} in the first argument with the next argument.
// Surplus placeholders are left as they are.
func format(args []value.Value) (string, error) {
	if err := atLeast(args, 1); err != nil {
		return "", err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	rest := args[1:]
	for {
		i := strings.Index(s, "{}")
		if i < 0 || len(rest) == 0 {
			break
		}
		b.WriteString(s[:i])
		b.WriteString(rest[0].String())
		rest = rest[1:]
		s = s[i+2:]
	}
	b.WriteString(s)
	if len(rest) > 0 {
		return "", fmt.Errorf("format has %d unused arguments", len(rest))
	}
	return b.String(), nil
}

func ioPrintf(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	s, err := format(args)
	if err != nil {
		return value.Void, err
	}
	_, err = io.WriteString(m.Stdout, s)
	return value.Void, err
}

func ioSprint(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	return value.NewString(args[0].String()), nil
}

func ioSprintf(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	s, err := format(args)
	if err != nil {
		return value.Void, err
	}
	return value.NewString(s), nil
}

// ioRead reads one line from the machine's input. At end of input it returns
// whatever was read, possibly "".
func ioRead(trim bool) vm.NativeFunc {
	return func(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 0); err != nil {
			return value.Void, err
		}
		line, err := m.Stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return value.Void, fmt.Errorf("failed to read line: %w", err)
		}
		if trim {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
		}
		return value.NewString(line), nil
	}
}
