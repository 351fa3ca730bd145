package ast

import (
	"strconv"
	"strings"

	"github.com/agenthands/tilde/pkg/compiler/lexer"
)

// Node represents any node produced by the parser.
type Node interface {
	Pos() lexer.Token
	String() string
}

// Value is a parse-time operand: a literal or a variable reference.
type Value interface {
	Node
	valueNode()
}

// Statement represents a standalone unit of execution. Statements only refer
// to labels and variables by name.
type Statement interface {
	Node
	Span() Source
	stmtNode()
}

// Literal values

type BoolLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BoolLiteral) Pos() lexer.Token { return b.Token }
func (b *BoolLiteral) String() string   { return strconv.FormatBool(b.Value) }
func (b *BoolLiteral) valueNode()       {}

type IntLiteral struct {
	Token lexer.Token
	Value int64
}

func (i *IntLiteral) Pos() lexer.Token { return i.Token }
func (i *IntLiteral) String() string   { return strconv.FormatInt(i.Value, 10) }
func (i *IntLiteral) valueNode()       {}

type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (f *FloatLiteral) Pos() lexer.Token { return f.Token }
func (f *FloatLiteral) valueNode()       {}

// String always keeps a decimal point so the literal re-lexes as a float.
func (f *FloatLiteral) String() string {
	s := strconv.FormatFloat(f.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (s *StringLiteral) Pos() lexer.Token { return s.Token }
func (s *StringLiteral) String() string   { return Quote(s.Value) }
func (s *StringLiteral) valueNode()       {}

type Identifier struct {
	Token lexer.Token
	Name  string
}

func (i *Identifier) Pos() lexer.Token { return i.Token }
func (i *Identifier) String() string   { return i.Name }
func (i *Identifier) valueNode()       {}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
	"\x00", `\0`,
)

// Quote renders s as a tilde string literal.
func Quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// ValueFromToken converts a value token into its node. ok is false for
// tokens that are neither literals nor identifiers.
func ValueFromToken(tok lexer.Token) (v Value, ok bool) {
	switch tok.Kind {
	case lexer.KindBool:
		return &BoolLiteral{Token: tok, Value: tok.Bool}, true
	case lexer.KindInt:
		return &IntLiteral{Token: tok, Value: tok.Int}, true
	case lexer.KindFloat:
		return &FloatLiteral{Token: tok, Value: tok.Float}, true
	case lexer.KindString:
		return &StringLiteral{Token: tok, Value: tok.Text}, true
	case lexer.KindIdentifier:
		return &Identifier{Token: tok, Name: tok.Text}, true
	}
	return nil, false
}
