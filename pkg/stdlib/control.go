package stdlib

import (
	"fmt"
	"os"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

// Control-flow natives: counted loops, label jumps, breakpoints, the operand
// stack, higher-order calls and process exit.

func registerIter(r vm.Registry, _ Options) {
	r.Add("iter", "iterate", iterIterate)
	r.Add("iter", "end", iterEnd)
}

func registerRuntime(r vm.Registry, _ Options) {
	r.Add("runtime", "gotolabel", runtimeGotoLabel)
	r.Add("runtime", "breakpoint", runtimeBreakpoint)
}

func registerStack(r vm.Registry, _ Options) {
	r.Add("stack", "push", stackPush)
	r.Add("stack", "pop", stackPop)
	r.Add("stack", "len", stackLen)
}

func registerStd(r vm.Registry, _ Options) {
	r.Add("std", "map", stdMap(true))
	r.Add("std", "mapdrop", stdMap(false))
}

func registerProcess(r vm.Registry, _ Options) {
	r.Add("process", "exit", processExit)
}

func registerEnv(r vm.Registry, _ Options) {
	r.Add("env", "get", envGet)
	r.Add("env", "args", envArgs)
}

func registerTest(r vm.Registry, _ Options) {
	r.Add("test", "is", testIs)
}

// Loop state lives in variables whose names cannot be written in source.
func iterReturn(name string) string { return "@internal:iter:" + name }
func iterLimit(name string) string  { return "@internal:iter:end:" + name }

// @iter:iterate "i" start end sets i = start and marks the next statement as
// the loop body. The body runs for start <= i < end.
func iterIterate(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Void, err
	}
	name, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	start, err := intArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	end, err := intArg(args, 2)
	if err != nil {
		return value.Void, err
	}
	if start >= end {
		return value.Void, fmt.Errorf("start must be less than end")
	}
	m.Set(name, value.NewInt(start))
	m.Set(iterLimit(name), value.NewInt(end-1))
	m.Set(iterReturn(name), value.NewInt(int64(m.PC)))
	return value.Void, nil
}

// @iter:end "i" increments i and jumps back to the body, or removes the loop
// variables once the last iteration is done.
func iterEnd(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	name, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	current, ok := m.Lookup(name)
	if !ok || current.Type != value.TypeInt {
		return value.Void, fmt.Errorf("invalid iter for current: %s", name)
	}
	limit, ok := m.Lookup(iterLimit(name))
	if !ok {
		return value.Void, fmt.Errorf("invalid iter for end: %s", name)
	}
	ret, _ := m.Lookup(iterReturn(name))

	if current.Int() >= limit.Int() {
		m.Delete(name)
		m.Delete(iterLimit(name))
		m.Delete(iterReturn(name))
		return value.Void, nil
	}
	m.Set(name, value.NewInt(current.Int()+1))
	m.PC = int(ret.Int())
	return value.Void, nil
}

func runtimeGotoLabel(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	label, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.Void, m.Jump(label)
}

func runtimeBreakpoint(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 0); err != nil {
		return value.Void, err
	}
	m.RequestBreakpoint()
	return value.Void, nil
}

func stackPush(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	m.Push(args[0])
	return value.Void, nil
}

func stackPop(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 0); err != nil {
		return value.Void, err
	}
	return m.Pop()
}

func stackLen(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 0); err != nil {
		return value.Void, err
	}
	return value.NewInt(int64(len(m.Stack))), nil
}

// stdMap calls "module" "function" on each element of an array. With collect
// set it returns a fresh array of the results, each of which must exist.
func stdMap(collect bool) vm.NativeFunc {
	return func(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
		if err := arity(args, 3); err != nil {
			return value.Void, err
		}
		module, err := stringArg(args, 0)
		if err != nil {
			return value.Void, err
		}
		function, err := stringArg(args, 1)
		if err != nil {
			return value.Void, err
		}
		a, err := arrayArg(args, 2)
		if err != nil {
			return value.Void, err
		}

		// Iterate over a snapshot so the callee may mutate the array.
		items := append([]value.Value(nil), a.Items()...)
		results := make([]value.Value, 0, len(items))
		for _, el := range items {
			v, err := m.Call(module, function, []string{""}, []value.Value{el})
			if err != nil {
				return value.Void, err
			}
			if !collect {
				continue
			}
			if v.IsVoid() {
				return value.Void, fmt.Errorf("@%s:%s did not return a value", module, function)
			}
			results = append(results, v)
		}
		if !collect {
			return value.Void, nil
		}
		return value.NewArray(value.NewArrayOf(results...)), nil
	}
}

// @process:exit [code] stops the program; the default code is 0.
func processExit(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	code := int64(0)
	switch len(args) {
	case 0:
	case 1:
		var err error
		if code, err = intArg(args, 0); err != nil {
			return value.Void, err
		}
	default:
		return value.Void, fmt.Errorf("expected at most 1 argument, got %d", len(args))
	}
	return value.Void, vm.Exit(int(code))
}

// @env:get NAME returns "" for unset variables.
func envGet(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	name, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewString(os.Getenv(name)), nil
}

// @env:args returns the script arguments as an array of strings.
func envArgs(m *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 0); err != nil {
		return value.Void, err
	}
	out := make([]value.Value, len(m.Args))
	for i, a := range m.Args {
		out[i] = value.NewString(a)
	}
	return value.NewArray(value.NewArrayOf(out...)), nil
}

// @test:is a b fails unless a equals b.
func testIs(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	if !value.Equal(args[0], args[1]) {
		return value.Void, fmt.Errorf("expected %s to be %s", args[0].GoString(), args[1].GoString())
	}
	return value.Void, nil
}
