// Package stdlib provides the native functions callable from tilde scripts as
// @module:function.
package stdlib

import (
	"fmt"
	"sort"

	"github.com/agenthands/tilde/pkg/vm"
)

// Options configures the sandboxed modules. A nil FS or HTTP sandbox leaves
// the corresponding module unregistered.
type Options struct {
	FS       *FSSandbox
	HTTP     *HTTPSandbox
	Disabled []string
}

// module registers its functions into r.
type module func(r vm.Registry, opts Options)

var modules = map[string]module{
	"array":   registerArray,
	"convert": registerConvert,
	"env":     registerEnv,
	"file":    registerFile,
	"http":    registerHTTP,
	"io":      registerIO,
	"iter":    registerIter,
	"json":    registerJSON,
	"math":    registerMath,
	"process": registerProcess,
	"runtime": registerRuntime,
	"stack":   registerStack,
	"std":     registerStd,
	"string":  registerString,
	"test":    registerTest,
}

// Modules lists the module names in sorted order.
func Modules() []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry builds the native table for opts.
func Registry(opts Options) (vm.Registry, error) {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		if _, ok := modules[name]; !ok {
			return nil, fmt.Errorf("stdlib: unknown module %q", name)
		}
		disabled[name] = true
	}

	r := make(vm.Registry)
	for name, register := range modules {
		if !disabled[name] {
			register(r, opts)
		}
	}
	return r, nil
}

// Register installs the library into m. It must be called before m.Run.
func Register(m *vm.Machine, opts Options) error {
	r, err := Registry(opts)
	if err != nil {
		return err
	}
	return m.RegisterAll(r)
}
