package vm_test

import (
	"errors"
	"io"
	"testing"

	"github.com/agenthands/tilde/pkg/compiler/lexer"
	"github.com/agenthands/tilde/pkg/compiler/parser"
	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/diag"
	"github.com/agenthands/tilde/pkg/vm"
)

// FuzzRun feeds arbitrary source through the whole pipeline. Every failure
// must surface as a positioned diagnostic, never as a panic.
func FuzzRun(f *testing.F) {
	f.Add("x = 1\ny = x + 2\n")
	f.Add("~loop\nx = x - 1\ngoto loop if x > 0\n")
	f.Add("call f\nret\n~f\nret\n")
	f.Add("s = \"a\\tb\"\n@t:nop s 1 2.5 true\n")
	f.Add("z = 1 / 0\n")
	f.Add("import \"x\"\n")

	f.Fuzz(func(t *testing.T, src string) {
		lx := lexer.New()
		lx.ReadFile = func(string) ([]byte, error) { return nil, errors.New("imports disabled") }
		toks, err := lx.Tokenize("fuzz.tl", []byte(src))
		if err != nil {
			return
		}
		prog, err := parser.Parse(toks)
		if err != nil {
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("parse error is not a diagnostic: %v", err)
			}
			return
		}

		m := vm.New(prog)
		m.Stdout = io.Discard
		m.Register("t", "nop", func(*vm.Machine, []string, []value.Value) (value.Value, error) {
			return value.NewInt(0), nil
		})
		m.Variables["x"] = value.NewInt(3)
		if err := m.Run(1000); err != nil {
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("run error is not a diagnostic: %v", err)
			}
		}
	})
}
