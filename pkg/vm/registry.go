package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/tilde/pkg/core/value"
)

// NativeFunc is a host function callable as @module:function.
//
// names[i] is the identifier used for argument i at the call site, or "" when
// the argument was a literal. Functions that mutate an array argument write
// it back under that name. Returning value.Void means no value.
type NativeFunc func(m *Machine, names []string, args []value.Value) (value.Value, error)

// Registry maps "module:function" to its implementation.
type Registry map[string]NativeFunc

// Add registers fn under module:function.
func (r Registry) Add(module, function string, fn NativeFunc) {
	r[module+":"+function] = fn
}

// Call dispatches a native function. Natives use it to call other natives.
func (m *Machine) Call(module, function string, names []string, args []value.Value) (value.Value, error) {
	key := module + ":" + function
	fn, ok := m.Natives[key]
	if !ok {
		return value.Void, fmt.Errorf("%w: %s", ErrFunctionNotFound, key)
	}
	v, err := fn(m, names, args)
	if err != nil {
		var exit *ExitError
		if !errors.As(err, &exit) {
			m.Logger.Debug().Err(err).Str("function", key).Msg("native call failed")
		}
		return value.Void, err
	}
	return v, nil
}

// debug prints its arguments in quoted form: @vm:debug a "b".
func debug(m *Machine, _ []string, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.GoString()
	}
	fmt.Fprintf(m.Stdout, "[%s]\n", strings.Join(parts, ", "))
	return value.Void, nil
}
