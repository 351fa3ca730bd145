package debugger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/tilde/pkg/compiler/lexer"
	"github.com/agenthands/tilde/pkg/compiler/parser"
	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/debugger"
	"github.com/agenthands/tilde/pkg/vm"
)

const program = `x = 1
name = "tilde"
@t:bp
y = 2
goto done
~skip
y = 3
~done
`

// pause runs program and executes lines at the breakpoint, returning the
// console output and the machine after it halts.
func pause(t *testing.T, lines ...string) (string, *vm.Machine) {
	t.Helper()
	toks, err := lexer.Tokenize("debug.tl", []byte(program))
	if err != nil {
		t.Fatal(err)
	}
	prog, err := parser.Parse(toks)
	if err != nil {
		t.Fatal(err)
	}
	m := vm.New(prog)
	m.Register("t", "bp", func(m *vm.Machine, _ []string, _ []value.Value) (value.Value, error) {
		m.RequestBreakpoint()
		return value.Void, nil
	})

	var out bytes.Buffer
	m.Breakpoint = func(m *vm.Machine) error {
		for _, line := range lines {
			resume, err := debugger.Exec(m, line, &out)
			if err != nil {
				out.WriteString("error: " + err.Error() + "\n")
			}
			if resume {
				return nil
			}
		}
		return nil
	}
	if err := m.Run(0); err != nil {
		t.Fatal(err)
	}
	return out.String(), m
}

func TestInspect(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"var name", "name = \"tilde\"\n"},
		{"vars", "name = \"tilde\"\nx = 1\n"},
		{"vars na", "name = \"tilde\"\n"},
		{"labels", "~skip at 5\n~done at 7\n"},
		{"labels do", "~done at 7\n"},
		{"where", "3: y = 2\n"},
		{"stack", "calls: []\noperands: []\n"},
		{"var nope", "error: variable not found: nope\n"},
		{"frobnicate", "error: unknown command \"frobnicate\" (try help)\n"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out, _ := pause(t, tt.line)
			if out != tt.want {
				t.Errorf("%q printed %q, want %q", tt.line, out, tt.want)
			}
		})
	}
}

func TestContinue(t *testing.T) {
	out, m := pause(t, "continue", "vars")
	if out != "" {
		t.Errorf("commands after continue ran: %q", out)
	}
	if y, _ := m.Lookup("y"); y.Int() != 2 {
		t.Errorf("y = %v, want 2", y)
	}
}

func TestGoto(t *testing.T) {
	_, m := pause(t, "goto ~skip")
	if y, _ := m.Lookup("y"); y.Int() != 3 {
		t.Errorf("y = %v, want 3", y)
	}

	out, m := pause(t, "goto nowhere", "continue")
	if !strings.Contains(out, "label not found: nowhere") {
		t.Errorf("output = %q", out)
	}
	if y, _ := m.Lookup("y"); y.Int() != 2 {
		t.Errorf("failed goto should not move execution, y = %v", y)
	}
}

func TestHiddenIterState(t *testing.T) {
	m := vm.New(nil)
	m.Set("i", value.NewInt(0))
	m.Set("@internal:iter:i", value.NewInt(4))

	var out bytes.Buffer
	if _, err := debugger.Exec(m, "vars", &out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "i = 0\n" {
		t.Errorf("vars = %q", out.String())
	}

	out.Reset()
	m.Push(value.NewString("a"))
	m.Push(value.NewInt(2))
	debugger.Exec(m, "stack", &out)
	if out.String() != "calls: []\noperands: [\"a\", 2]\n" {
		t.Errorf("stack = %q", out.String())
	}
}

func TestUsage(t *testing.T) {
	m := vm.New(nil)
	var out bytes.Buffer
	if _, err := debugger.Exec(m, "var", &out); err == nil {
		t.Error("expected usage error")
	}
	if _, err := debugger.Exec(m, "var x", &out); !errors.Is(err, vm.ErrVariableNotFound) {
		t.Errorf("expected ErrVariableNotFound, got %v", err)
	}
	if resume, _ := debugger.Exec(m, "help", &out); resume || !strings.Contains(out.String(), "continue") {
		t.Errorf("help output = %q", out.String())
	}
}
