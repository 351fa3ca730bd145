// Package debugger implements the console opened by @runtime:breakpoint.
//
// Commands:
//
//	var NAME        print one variable
//	vars [QUERY]    list variables, optionally filtered by substring
//	labels [QUERY]  list labels and their statement index
//	goto LABEL      resume at LABEL instead of the next statement
//	stack           show the call stack and the operand stack
//	where           show the program counter and the next statement
//	continue        leave the console (also Ctrl-D)
package debugger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/agenthands/tilde/pkg/vm"
)

const prompt = "(tilde) "

// ErrAborted is returned by the hook when the console is interrupted with
// Ctrl-C; it stops the program.
var ErrAborted = errors.New("debugger: aborted")

type Console struct {
	Out io.Writer

	// history survives across breakpoints within one run.
	history bytes.Buffer
}

func New(out io.Writer) *Console {
	return &Console{Out: out}
}

// Hook returns a breakpoint handler reading commands from the terminal.
func (c *Console) Hook() vm.BreakpointFunc {
	return func(m *vm.Machine) error {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		if c.history.Len() > 0 {
			_, _ = ln.ReadHistory(bytes.NewReader(c.history.Bytes()))
		}
		defer func() {
			c.history.Reset()
			_, _ = ln.WriteHistory(&c.history)
		}()

		fmt.Fprintf(c.Out, "breakpoint at %d\n", m.PC)
		for {
			line, err := ln.Prompt(prompt)
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(c.Out)
				return nil
			}
			if errors.Is(err, liner.ErrPromptAborted) {
				return ErrAborted
			}
			if err != nil {
				return fmt.Errorf("debugger: %w", err)
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			ln.AppendHistory(line)

			resume, err := Exec(m, line, c.Out)
			if err != nil {
				fmt.Fprintf(c.Out, "error: %v\n", err)
				continue
			}
			if resume {
				return nil
			}
		}
	}
}

// Exec runs one console command against m, writing its output to w. resume
// reports whether execution should continue.
func Exec(m *vm.Machine, line string, w io.Writer) (resume bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "continue", "c":
		return true, nil

	case "var", "v":
		if len(args) != 1 {
			return false, errors.New("usage: var NAME")
		}
		v, ok := m.Lookup(args[0])
		if !ok {
			return false, fmt.Errorf("%w: %s", vm.ErrVariableNotFound, args[0])
		}
		fmt.Fprintf(w, "%s = %#v\n", args[0], v)

	case "vars":
		for _, name := range filtered(keys(m.Variables), args) {
			fmt.Fprintf(w, "%s = %#v\n", name, m.Variables[name])
		}

	case "labels":
		names := filtered(keys(m.Labels), args)
		sort.Slice(names, func(i, j int) bool { return m.Labels[names[i]] < m.Labels[names[j]] })
		for _, name := range names {
			fmt.Fprintf(w, "~%s at %d\n", name, m.Labels[name])
		}

	case "goto", "g":
		if len(args) != 1 {
			return false, errors.New("usage: goto LABEL")
		}
		if err := m.Jump(strings.TrimPrefix(args[0], "~")); err != nil {
			return false, err
		}
		return true, nil

	case "stack":
		fmt.Fprintf(w, "calls: %v\n", m.CallStack)
		fmt.Fprint(w, "operands: [")
		for i, v := range m.Stack {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%#v", v)
		}
		fmt.Fprintln(w, "]")

	case "where", "w":
		if stmt := m.Current(); stmt != nil {
			fmt.Fprintf(w, "%d: %s\n", m.PC, stmt)
		} else {
			fmt.Fprintf(w, "%d: <end of program>\n", m.PC)
		}

	case "help", "h", "?":
		fmt.Fprint(w, help)

	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

const help = `var NAME        print one variable
vars [QUERY]    list variables
labels [QUERY]  list labels
goto LABEL      resume at LABEL
stack           show call and operand stacks
where           show the next statement
continue        resume execution
`

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// filtered keeps names containing the optional query and hides the
// interpreter's own @internal bookkeeping.
func filtered(names []string, args []string) []string {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	out := names[:0]
	for _, name := range names {
		if strings.HasPrefix(name, "@internal:") {
			continue
		}
		if strings.Contains(name, query) {
			out = append(out, name)
		}
	}
	return out
}
