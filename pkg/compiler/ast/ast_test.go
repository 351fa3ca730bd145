package ast_test

import (
	"testing"

	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/compiler/lexer"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{"a\"b", `"a\"b"`},
		{"tab\tnl\ncr\r", `"tab\tnl\ncr\r"`},
		{`back\slash`, `"back\\slash"`},
		{"nul\x00", `"nul\0"`},
	}
	for _, tt := range tests {
		if got := ast.Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		tok  lexer.Token
		want string
	}{
		{lexer.Token{Kind: lexer.KindInt, Int: -12}, "-12"},
		{lexer.Token{Kind: lexer.KindFloat, Float: 2}, "2.0"},
		{lexer.Token{Kind: lexer.KindFloat, Float: 0.125}, "0.125"},
		{lexer.Token{Kind: lexer.KindBool, Bool: true}, "true"},
		{lexer.Token{Kind: lexer.KindString, Text: "hi"}, `"hi"`},
		{lexer.Token{Kind: lexer.KindIdentifier, Text: "x"}, "x"},
	}
	for _, tt := range tests {
		v, ok := ast.ValueFromToken(tt.tok)
		if !ok {
			t.Fatalf("ValueFromToken(%v) not ok", tt.tok.Kind)
		}
		if got := v.String(); got != tt.want {
			t.Errorf("%v: got %s, want %s", tt.tok.Kind, got, tt.want)
		}
	}

	if _, ok := ast.ValueFromToken(lexer.Token{Kind: lexer.KindPlus}); ok {
		t.Error("operators are not values")
	}
}

func TestStatementStrings(t *testing.T) {
	x := &ast.Identifier{Name: "x"}
	one := &ast.IntLiteral{Value: 1}
	target := ast.CallTarget{Module: "io", Function: "println"}

	tests := []struct {
		stmt ast.Statement
		want string
	}{
		{&ast.AssignLiteral{Name: "y", Value: one}, "y = 1"},
		{&ast.AssignBinOp{Name: "y", Op: ast.OpMod, LHS: x, RHS: one}, "y = x % 1"},
		{&ast.AssignCall{Name: "n", Target: ast.CallTarget{Module: "array", Function: "len"}, Args: []ast.Value{x}}, "n = @array:len x"},
		{&ast.Call{Target: target}, "@io:println"},
		{&ast.Call{Target: target, Args: []ast.Value{x, &ast.StringLiteral{Value: "a\n"}}}, `@io:println x "a\n"`},
		{&ast.GotoDef{Label: "top"}, "~top"},
		{&ast.Goto{Label: "top"}, "goto top"},
		{&ast.GotoIf{Label: "top", Cond: ast.Comparison{Op: ast.CmpLe, LHS: x, RHS: one}}, "goto top if x <= 1"},
		{&ast.CallLabel{Label: "sub"}, "call sub"},
		{&ast.Ret{}, "ret"},
	}
	for _, tt := range tests {
		if got := tt.stmt.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}

	if got := ast.Format([]ast.Statement{tests[5].stmt, tests[9].stmt}); got != "~top\nret\n" {
		t.Errorf("Format = %q", got)
	}
}
