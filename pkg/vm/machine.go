// Package vm executes a parsed tilde program statement by statement.
//
// A Machine owns the label table, the variable environment, the call stack
// used by call/ret, an operand stack for natives, and the native registry.
// Execution is single-threaded and runs to completion inside Run.
package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/diag"
)

var (
	ErrGasExhausted     = errors.New("vm: gas exhausted")
	ErrRegistryFrozen   = errors.New("vm: registry is frozen once the machine runs")
	ErrEmptyCallStack   = errors.New("vm: ret without matching call")
	ErrStackUnderflow   = errors.New("vm: operand stack underflow")
	ErrAlreadyRun       = errors.New("vm: machine has already run")
	ErrVariableNotFound = errors.New("variable not found")
	ErrLabelNotFound    = errors.New("label not found")
	ErrFunctionNotFound = errors.New("function not found")
	ErrNoReturnValue    = errors.New("function did not return a value")
)

// State is the lifecycle of a Machine.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	}
	return "halted"
}

// ExitError is returned by Run when a native function asked the process to
// terminate. It is not a diagnostic.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit builds the error a native returns to stop the machine.
func Exit(code int) error {
	return &ExitError{Code: code}
}

// BreakpointFunc is invoked after a step that requested a breakpoint.
type BreakpointFunc func(m *Machine) error

type Machine struct {
	Program   []ast.Statement
	Labels    map[string]int
	Variables map[string]value.Value
	PC        int

	// CallStack holds the indices of pending call statements.
	CallStack []int
	// Stack is the operand stack, only touched by natives.
	Stack []value.Value

	Natives Registry
	Logger  zerolog.Logger

	Stdout io.Writer
	Stdin  *bufio.Reader
	Args   []string

	// Breakpoint is called when a native requested a pause. Nil disables
	// breakpoints.
	Breakpoint BreakpointFunc

	state      State
	steps      int
	breakpoint bool
}

// New creates a ready machine with stdio wired to the process.
func New(program []ast.Statement) *Machine {
	return &Machine{
		Program:   program,
		Labels:    make(map[string]int),
		Variables: make(map[string]value.Value),
		Natives:   make(Registry),
		Logger:    zerolog.Nop(),
		Stdout:    os.Stdout,
		Stdin:     bufio.NewReader(os.Stdin),
	}
}

func (m *Machine) State() State { return m.state }

// Steps returns the number of statements executed so far.
func (m *Machine) Steps() int { return m.steps }

// Register adds a native function under "module:function". Registration is
// only allowed before Run.
func (m *Machine) Register(module, function string, fn NativeFunc) error {
	if m.state != StateReady {
		return ErrRegistryFrozen
	}
	if m.Natives == nil {
		m.Natives = make(Registry)
	}
	m.Natives[module+":"+function] = fn
	return nil
}

// RegisterAll merges a registry into the machine.
func (m *Machine) RegisterAll(r Registry) error {
	if m.state != StateReady {
		return ErrRegistryFrozen
	}
	if m.Natives == nil {
		m.Natives = make(Registry)
	}
	for k, fn := range r {
		m.Natives[k] = fn
	}
	return nil
}

// Run builds the label table and executes statements until the program
// counter leaves the program. gasLimit bounds the number of executed
// statements; zero or less means unlimited.
func (m *Machine) Run(gasLimit int) error {
	if m.state != StateReady {
		return ErrAlreadyRun
	}
	m.state = StateRunning
	defer func() { m.state = StateHalted }()
	m.init()

	if _, ok := m.Natives["vm:debug"]; !ok {
		m.Natives["vm:debug"] = debug
	}

	m.buildLabels()

	for m.PC >= 0 && m.PC < len(m.Program) {
		if gasLimit > 0 && m.steps >= gasLimit {
			return m.fail(m.Program[m.PC], ErrGasExhausted)
		}
		if err := m.step(); err != nil {
			return err
		}
		if m.breakpoint {
			m.breakpoint = false
			if m.Breakpoint != nil {
				m.Logger.Info().Int("pc", m.PC).Msg("breakpoint")
				if err := m.Breakpoint(m); err != nil {
					return err
				}
			}
		}
	}

	m.Logger.Debug().Int("steps", m.steps).Msg("program halted")
	return nil
}

// init creates the maps a Machine built without New is missing.
func (m *Machine) init() {
	if m.Natives == nil {
		m.Natives = make(Registry)
	}
	if m.Labels == nil {
		m.Labels = make(map[string]int)
	}
	if m.Variables == nil {
		m.Variables = make(map[string]value.Value)
	}
	if m.Stdout == nil {
		m.Stdout = io.Discard
	}
}

func (m *Machine) buildLabels() {
	for i, stmt := range m.Program {
		if def, ok := stmt.(*ast.GotoDef); ok {
			m.Labels[def.Label] = i
		}
	}
	m.Logger.Debug().Int("labels", len(m.Labels)).Int("statements", len(m.Program)).Msg("label table built")
}

// step executes the statement at PC, then advances PC by one. Jumps land on
// the target index so that the increment moves past it.
func (m *Machine) step() error {
	stmt := m.Program[m.PC]
	m.steps++
	m.Logger.Trace().Int("pc", m.PC).Stringer("stmt", stmt).Msg("step")

	if err := m.exec(stmt); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit
		}
		return m.fail(stmt, err)
	}
	m.PC++
	return nil
}

// fail anchors err at stmt as a runtime diagnostic.
func (m *Machine) fail(stmt ast.Statement, err error) *diag.Error {
	var de *diag.Error
	if errors.As(err, &de) {
		return de
	}
	src := stmt.Span()
	return &diag.Error{
		Stage:   diag.Runtime,
		File:    src.Token.File,
		Line:    src.Token.Line,
		Column:  src.Token.Column,
		Offset:  src.Token.Offset,
		Width:   src.Width,
		Message: err.Error(),
		Context: src.Token.Context,
		Cause:   err,
	}
}

// Current returns the statement at PC, or nil past the end.
func (m *Machine) Current() ast.Statement {
	if m.PC < 0 || m.PC >= len(m.Program) {
		return nil
	}
	return m.Program[m.PC]
}

// Lookup reads a variable.
func (m *Machine) Lookup(name string) (value.Value, bool) {
	v, ok := m.Variables[name]
	return v, ok
}

// Set writes a variable, replacing any previous value.
func (m *Machine) Set(name string, v value.Value) {
	if m.Variables == nil {
		m.Variables = make(map[string]value.Value)
	}
	m.Variables[name] = v
}

// Delete removes a variable.
func (m *Machine) Delete(name string) {
	delete(m.Variables, name)
}

// Jump moves PC to the statement defining label. Execution resumes after it.
func (m *Machine) Jump(label string) error {
	idx, ok := m.Labels[label]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLabelNotFound, label)
	}
	m.PC = idx
	return nil
}

// RequestBreakpoint asks Run to invoke the Breakpoint hook once the current
// step finishes.
func (m *Machine) RequestBreakpoint() {
	m.breakpoint = true
}

// Push adds a value to the operand stack.
func (m *Machine) Push(v value.Value) {
	m.Stack = append(m.Stack, v)
}

// Pop removes the top of the operand stack.
func (m *Machine) Pop() (value.Value, error) {
	if len(m.Stack) == 0 {
		return value.Void, ErrStackUnderflow
	}
	v := m.Stack[len(m.Stack)-1]
	m.Stack = m.Stack[:len(m.Stack)-1]
	return v, nil
}
