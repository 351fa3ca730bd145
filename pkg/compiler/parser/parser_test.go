package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/compiler/lexer"
	"github.com/agenthands/tilde/pkg/compiler/parser"
	"github.com/agenthands/tilde/pkg/diag"
)

func parse(t *testing.T, src string) ([]ast.Statement, error) {
	t.Helper()
	toks, err := lexer.Tokenize("test.tl", []byte(src))
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	return parser.Parse(toks)
}

func TestParseStatements(t *testing.T) {
	src := `x = 1
y = x
z = x + 2.5
parts = @string:split s ","
a = @array:new
~loop
goto loop
goto loop if z >= 0
@io:println "hi" x
@io:newline
call sub
ret
`
	prog, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog) != 12 {
		t.Fatalf("expected 12 statements, got %d", len(prog))
	}

	lit, ok := prog[0].(*ast.AssignLiteral)
	if !ok || lit.Name != "x" {
		t.Fatalf("statement 0: got %T", prog[0])
	}
	if v, ok := lit.Value.(*ast.IntLiteral); !ok || v.Value != 1 {
		t.Errorf("statement 0 value: %#v", lit.Value)
	}

	ref := prog[1].(*ast.AssignLiteral)
	if id, ok := ref.Value.(*ast.Identifier); !ok || id.Name != "x" {
		t.Errorf("statement 1 should copy identifier x, got %#v", ref.Value)
	}

	bin, ok := prog[2].(*ast.AssignBinOp)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("statement 2: got %T", prog[2])
	}
	if f, ok := bin.RHS.(*ast.FloatLiteral); !ok || f.Value != 2.5 {
		t.Errorf("statement 2 rhs: %#v", bin.RHS)
	}

	call, ok := prog[3].(*ast.AssignCall)
	if !ok {
		t.Fatalf("statement 3: got %T", prog[3])
	}
	if call.Target.Key() != "string:split" || len(call.Args) != 2 {
		t.Errorf("statement 3: target %s with %d args", call.Target.Key(), len(call.Args))
	}

	if c := prog[4].(*ast.AssignCall); len(c.Args) != 0 || c.Target.Key() != "array:new" {
		t.Errorf("statement 4: %s", c)
	}
	if d := prog[5].(*ast.GotoDef); d.Label != "loop" {
		t.Errorf("statement 5 label %q", d.Label)
	}
	if g := prog[6].(*ast.Goto); g.Label != "loop" {
		t.Errorf("statement 6 label %q", g.Label)
	}

	gi, ok := prog[7].(*ast.GotoIf)
	if !ok || gi.Cond.Op != ast.CmpGe || gi.Label != "loop" {
		t.Fatalf("statement 7: %#v", prog[7])
	}

	c := prog[8].(*ast.Call)
	if c.Target.Module != "io" || c.Target.Function != "println" || len(c.Args) != 2 {
		t.Errorf("statement 8: %s", c)
	}
	if len(prog[9].(*ast.Call).Args) != 0 {
		t.Errorf("statement 9 should have no args")
	}
	if cl := prog[10].(*ast.CallLabel); cl.Label != "sub" {
		t.Errorf("statement 10 label %q", cl.Label)
	}
	if _, ok := prog[11].(*ast.Ret); !ok {
		t.Errorf("statement 11: got %T", prog[11])
	}
}

func TestStatementSource(t *testing.T) {
	prog, err := parse(t, "a = 1\n  total = a + 41 # sum\n")
	if err != nil {
		t.Fatal(err)
	}
	pos := prog[1].Pos()
	if pos.Line != 2 || pos.Column != 3 || pos.File != "test.tl" {
		t.Errorf("position = %s:%d:%d", pos.File, pos.Line, pos.Column)
	}
	src := prog[1].(*ast.AssignBinOp).Source
	if src.Width != len("total = a + 41") {
		t.Errorf("width = %d", src.Width)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		msg    string
		column int
	}{
		{"label missing name", "~\n", "expected identifier, found end of statement", 2},
		{"label extra token", "~a b\n", "expected end of statement, found identifier 'b'", 4},
		{"label not identifier", "~1\n", "expected identifier, found int 1", 2},
		{"call missing colon", "@io println\n", "expected ':', found identifier 'println'", 5},
		{"call bad argument", "@io:println =\n", "expected value, found '='", 13},
		{"goto missing label", "goto\n", "expected identifier, found end of statement", 5},
		{"goto without if", "goto a when x == 1\n", "expected 'if', found identifier 'when'", 8},
		{"goto bad comparator", "goto a if x + 1\n", "expected comparison operator, found '+'", 13},
		{"goto short condition", "goto a if x ==\n", "expected value, found end of statement", 15},
		{"goto trailing", "goto a if x == 1 2\n", "expected end of statement, found int 2", 18},
		{"assign without equals", "x 1\n", "expected '=', found int 1", 3},
		{"assign empty", "x =\n", "expected value, found end of statement", 4},
		{"assign operator as value", "x = +\n", "expected value, found '+'", 5},
		{"binop missing rhs", "x = a +\n", "expected value, found end of statement", 8},
		{"binop trailing", "x = a + b c\n", "expected end of statement, found identifier 'c'", 11},
		{"assign two values", "x = 1 2\n", "expected '@', found int 1", 5},
		{"assign call missing function", "x = @io:\n", "expected identifier, found end of statement", 9},
		{"call label extra", "call a b\n", "expected end of statement, found identifier 'b'", 8},
		{"ret extra", "ret 1\n", "expected end of statement, found int 1", 5},
		{"bad leading token", "= 1\n", "unexpected '=' at start of statement", 1},
		{"literal leading token", "1 = x\n", "unexpected int 1 at start of statement", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.src)
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if de.Stage != diag.Parsing {
				t.Errorf("stage = %v", de.Stage)
			}
			if de.Message != tt.msg {
				t.Errorf("message = %q, want %q", de.Message, tt.msg)
			}
			if de.Column != tt.column {
				t.Errorf("column = %d, want %d", de.Column, tt.column)
			}
		})
	}
}

func TestIncompleteStatement(t *testing.T) {
	toks := []lexer.Token{
		{Kind: lexer.KindIdentifier, Text: "x", Line: 1, Column: 1, Width: 1},
		{Kind: lexer.KindEquals, Line: 1, Column: 3, Width: 1},
	}
	_, err := parser.Parse(toks)
	if err == nil || !strings.Contains(err.Error(), "incomplete statement") {
		t.Errorf("expected incomplete statement error, got %v", err)
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	src := `s = "a,\"b\"\n\t"
f = -1.5
n = @array:len parts
ok = true
~top
x = x % 3
goto top if s != "x"
@io:printf "{} {}" x 2.0
call sub
ret
`
	first, err := parse(t, src)
	if err != nil {
		t.Fatal(err)
	}
	rewritten := ast.Format(first)

	second, err := parse(t, rewritten)
	if err != nil {
		t.Fatalf("rewritten source does not parse: %v\n%s", err, rewritten)
	}
	if again := ast.Format(second); again != rewritten {
		t.Errorf("rewrite is not stable\nfirst:\n%s\nsecond:\n%s", rewritten, again)
	}
	if !strings.Contains(rewritten, `@io:printf "{} {}" x 2.0`) {
		t.Errorf("unexpected rewrite:\n%s", rewritten)
	}
}
