package stdlib

import (
	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

// Operations marked "in place" mutate the shared handle, so every variable
// holding it observes the change, and also write it back under the
// argument's name.

func registerArray(r vm.Registry, _ Options) {
	r.Add("array", "new", arrayNew)
	r.Add("array", "get", arrayGet)
	r.Add("array", "set", arraySet)
	r.Add("array", "push", arrayPush)
	r.Add("array", "pop", arrayPop)
	r.Add("array", "popat", arrayPopAt)
	r.Add("array", "index", arrayIndex)
	r.Add("array", "reverse", arrayReverse)
	r.Add("array", "sort", arraySort)
	r.Add("array", "len", arrayLen)
	r.Add("array", "clone", arrayClone)
	r.Add("array", "is", arrayIs)
}

// @array:new [v...] returns a fresh array of its arguments.
func arrayNew(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	return value.NewArray(value.NewArrayOf(args...)), nil
}

func arrayGet(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	i, err := intArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	return a.Get(i)
}

// @array:set a i v, in place.
func arraySet(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 3); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	i, err := intArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	if err := a.Set(i, args[2]); err != nil {
		return value.Void, err
	}
	writeBack(m, names, 0, args[0])
	return value.Void, nil
}

// @array:push a v, in place.
func arrayPush(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	a.Push(args[1])
	writeBack(m, names, 0, args[0])
	return value.Void, nil
}

// @array:pop a, in place; returns the removed last element.
func arrayPop(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	v, err := a.Pop()
	if err != nil {
		return value.Void, err
	}
	writeBack(m, names, 0, args[0])
	return v, nil
}

// @array:popat a i, in place; returns the removed element.
func arrayPopAt(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	i, err := intArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	v, err := a.Remove(i)
	if err != nil {
		return value.Void, err
	}
	writeBack(m, names, 0, args[0])
	return v, nil
}

// @array:index a v returns the first position of v, or -1.
func arrayIndex(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewInt(int64(a.Index(args[1]))), nil
}

func arrayReverse(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	a.Reverse()
	writeBack(m, names, 0, args[0])
	return value.Void, nil
}

func arraySort(m *vm.Machine, names []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	if err := a.Sort(); err != nil {
		return value.Void, err
	}
	writeBack(m, names, 0, args[0])
	return value.Void, nil
}

func arrayLen(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewInt(int64(a.Len())), nil
}

// @array:clone a returns a detached copy.
func arrayClone(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	return value.NewArray(a.Clone()), nil
}

// @array:is a b reports whether both arguments hold the same handle.
func arrayIs(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	a, err := arrayArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	b, err := arrayArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	return value.NewBool(a == b), nil
}
