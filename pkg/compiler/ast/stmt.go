package ast

import (
	"strings"

	"github.com/agenthands/tilde/pkg/compiler/lexer"
)

// Source locates a statement: its leading token plus the byte width the
// statement spans on that line.
type Source struct {
	Token lexer.Token
	Width int
}

func (s Source) Pos() lexer.Token { return s.Token }

// Span returns the statement's location.
func (s Source) Span() Source { return s }

// Operator is an arithmetic operator of AssignBinOp.
type Operator uint8

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (o Operator) String() string {
	return [...]string{"+", "-", "*", "/", "%"}[o]
}

// Comparator is a relational operator of GotoIf.
type Comparator uint8

const (
	CmpEq Comparator = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLe
	CmpGe
)

func (c Comparator) String() string {
	return [...]string{"==", "!=", "<", ">", "<=", ">="}[c]
}

// Comparison is the condition of a conditional goto.
type Comparison struct {
	Op  Comparator
	LHS Value
	RHS Value
}

func (c Comparison) String() string {
	return c.LHS.String() + " " + c.Op.String() + " " + c.RHS.String()
}

// CallTarget names a native function. It is resolved at call time.
type CallTarget struct {
	Module   string
	Function string
}

// Key returns "module:function", the registry key.
func (c CallTarget) Key() string { return c.Module + ":" + c.Function }

func (c CallTarget) String() string { return "@" + c.Key() }

// AssignLiteral: NAME = VALUE
type AssignLiteral struct {
	Source
	Name  string
	Value Value
}

func (a *AssignLiteral) String() string { return a.Name + " = " + a.Value.String() }
func (a *AssignLiteral) stmtNode()      {}

// AssignBinOp: NAME = VALUE OP VALUE
type AssignBinOp struct {
	Source
	Name string
	Op   Operator
	LHS  Value
	RHS  Value
}

func (a *AssignBinOp) String() string {
	return a.Name + " = " + a.LHS.String() + " " + a.Op.String() + " " + a.RHS.String()
}
func (a *AssignBinOp) stmtNode() {}

// AssignCall: NAME = @MODULE:FUNCTION ARGS...
type AssignCall struct {
	Source
	Name   string
	Target CallTarget
	Args   []Value
}

func (a *AssignCall) String() string {
	return a.Name + " = " + callString(a.Target, a.Args)
}
func (a *AssignCall) stmtNode() {}

// GotoDef: ~LABEL
type GotoDef struct {
	Source
	Label string
}

func (g *GotoDef) String() string { return "~" + g.Label }
func (g *GotoDef) stmtNode()      {}

// Goto: goto LABEL
type Goto struct {
	Source
	Label string
}

func (g *Goto) String() string { return "goto " + g.Label }
func (g *Goto) stmtNode()      {}

// GotoIf: goto LABEL if VALUE CMP VALUE
type GotoIf struct {
	Source
	Label string
	Cond  Comparison
}

func (g *GotoIf) String() string { return "goto " + g.Label + " if " + g.Cond.String() }
func (g *GotoIf) stmtNode()      {}

// Call: @MODULE:FUNCTION ARGS...
type Call struct {
	Source
	Target CallTarget
	Args   []Value
}

func (c *Call) String() string { return callString(c.Target, c.Args) }
func (c *Call) stmtNode()      {}

// CallLabel: call LABEL
type CallLabel struct {
	Source
	Label string
}

func (c *CallLabel) String() string { return "call " + c.Label }
func (c *CallLabel) stmtNode()      {}

// Ret: ret
type Ret struct {
	Source
}

func (r *Ret) String() string { return "ret" }
func (r *Ret) stmtNode()      {}

func callString(target CallTarget, args []Value) string {
	var b strings.Builder
	b.WriteString(target.String())
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg.String())
	}
	return b.String()
}

// Format renders a program as source, one statement per line.
func Format(program []Statement) string {
	var b strings.Builder
	for _, stmt := range program {
		b.WriteString(stmt.String())
		b.WriteByte('\n')
	}
	return b.String()
}
