// Package parser turns a normalised token stream into tilde statements.
//
// Every statement has a fixed token shape, so the parser never builds
// expressions: it slices up to the next end-of-statement token and checks the
// kinds found at fixed offsets. It never backtracks.
package parser

import (
	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/compiler/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	current int
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is shorthand for New(tokens).Parse().
func Parse(tokens []lexer.Token) ([]ast.Statement, error) {
	return New(tokens).Parse()
}

// Parse consumes every token and returns the statement list. The first
// malformed statement aborts parsing.
func (p *Parser) Parse() ([]ast.Statement, error) {
	var program []ast.Statement
	for p.current < len(p.tokens) {
		if p.tokens[p.current].Kind == lexer.KindEOS {
			p.current++
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}
	return program, nil
}

// statement returns the tokens from the cursor up to and including the next
// EOS token.
func (p *Parser) statement() ([]lexer.Token, error) {
	for i := p.current; i < len(p.tokens); i++ {
		if p.tokens[i].Kind == lexer.KindEOS {
			return p.tokens[p.current : i+1], nil
		}
	}
	return nil, p.tokens[p.current].Error("incomplete statement")
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}

	var node ast.Statement
	switch stmt[0].Kind {
	case lexer.KindTilde:
		node, err = parseGotoDef(stmt)
	case lexer.KindAt:
		node, err = parseCall(stmt)
	case lexer.KindGoto:
		node, err = parseGoto(stmt)
	case lexer.KindIdentifier:
		node, err = parseAssign(stmt)
	case lexer.KindCall:
		node, err = parseCallLabel(stmt)
	case lexer.KindRet:
		node, err = parseRet(stmt)
	default:
		return nil, stmt[0].Error("unexpected %s at start of statement", stmt[0].Describe())
	}
	if err != nil {
		return nil, err
	}

	p.current += len(stmt)
	return node, nil
}

// ~ LABEL EOS
func parseGotoDef(stmt []lexer.Token) (ast.Statement, error) {
	if err := expectShape(stmt, lexer.KindTilde, lexer.KindIdentifier, lexer.KindEOS); err != nil {
		return nil, err
	}
	return &ast.GotoDef{Source: source(stmt), Label: stmt[1].Text}, nil
}

// @ MODULE : FUNCTION VALUE* EOS
func parseCall(stmt []lexer.Token) (ast.Statement, error) {
	target, args, err := callTail(stmt, 0)
	if err != nil {
		return nil, err
	}
	return &ast.Call{Source: source(stmt), Target: target, Args: args}, nil
}

// goto LABEL EOS
// goto LABEL if VALUE CMP VALUE EOS
func parseGoto(stmt []lexer.Token) (ast.Statement, error) {
	if err := expect(stmt, 1, lexer.KindIdentifier); err != nil {
		return nil, err
	}
	label := stmt[1].Text

	if stmt[2].Kind == lexer.KindEOS {
		return &ast.Goto{Source: source(stmt), Label: label}, nil
	}

	if err := expect(stmt, 2, lexer.KindIf); err != nil {
		return nil, err
	}
	lhs, err := value(stmt, 3)
	if err != nil {
		return nil, err
	}
	cmp, err := comparator(stmt, 4)
	if err != nil {
		return nil, err
	}
	rhs, err := value(stmt, 5)
	if err != nil {
		return nil, err
	}
	if err := expect(stmt, 6, lexer.KindEOS); err != nil {
		return nil, err
	}

	return &ast.GotoIf{
		Source: source(stmt),
		Label:  label,
		Cond:   ast.Comparison{Op: cmp, LHS: lhs, RHS: rhs},
	}, nil
}

// NAME = VALUE EOS
// NAME = VALUE OP VALUE EOS
// NAME = @ MODULE : FUNCTION VALUE* EOS
func parseAssign(stmt []lexer.Token) (ast.Statement, error) {
	if err := expect(stmt, 1, lexer.KindEquals); err != nil {
		return nil, err
	}
	name := stmt[0].Text

	switch {
	case len(stmt) <= 4:
		v, err := value(stmt, 2)
		if err != nil {
			return nil, err
		}
		if err := expect(stmt, 3, lexer.KindEOS); err != nil {
			return nil, err
		}
		return &ast.AssignLiteral{Source: source(stmt), Name: name, Value: v}, nil

	case stmt[3].Kind.IsBinOp():
		lhs, err := value(stmt, 2)
		if err != nil {
			return nil, err
		}
		rhs, err := value(stmt, 4)
		if err != nil {
			return nil, err
		}
		if err := expect(stmt, 5, lexer.KindEOS); err != nil {
			return nil, err
		}
		return &ast.AssignBinOp{
			Source: source(stmt),
			Name:   name,
			Op:     operator(stmt[3].Kind),
			LHS:    lhs,
			RHS:    rhs,
		}, nil

	default:
		target, args, err := callTail(stmt, 2)
		if err != nil {
			return nil, err
		}
		return &ast.AssignCall{Source: source(stmt), Name: name, Target: target, Args: args}, nil
	}
}

// call LABEL EOS
func parseCallLabel(stmt []lexer.Token) (ast.Statement, error) {
	if err := expectShape(stmt, lexer.KindCall, lexer.KindIdentifier, lexer.KindEOS); err != nil {
		return nil, err
	}
	return &ast.CallLabel{Source: source(stmt), Label: stmt[1].Text}, nil
}

// ret EOS
func parseRet(stmt []lexer.Token) (ast.Statement, error) {
	if err := expectShape(stmt, lexer.KindRet, lexer.KindEOS); err != nil {
		return nil, err
	}
	return &ast.Ret{Source: source(stmt)}, nil
}

// callTail parses "@ MODULE : FUNCTION VALUE* EOS" starting at offset at.
func callTail(stmt []lexer.Token, at int) (ast.CallTarget, []ast.Value, error) {
	for i, kind := range []lexer.Kind{lexer.KindAt, lexer.KindIdentifier, lexer.KindColon, lexer.KindIdentifier} {
		if err := expect(stmt, at+i, kind); err != nil {
			return ast.CallTarget{}, nil, err
		}
	}
	target := ast.CallTarget{Module: stmt[at+1].Text, Function: stmt[at+3].Text}

	first := at + 4
	args := make([]ast.Value, 0, len(stmt)-1-first)
	for i := first; i < len(stmt)-1; i++ {
		v, err := value(stmt, i)
		if err != nil {
			return ast.CallTarget{}, nil, err
		}
		args = append(args, v)
	}
	return target, args, nil
}
