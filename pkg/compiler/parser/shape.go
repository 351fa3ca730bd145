package parser

import (
	"github.com/agenthands/tilde/pkg/compiler/ast"
	"github.com/agenthands/tilde/pkg/compiler/lexer"
)

// at returns stmt[i], or the closing EOS when i runs past the statement, so
// a short statement reports "found end of statement".
func at(stmt []lexer.Token, i int) lexer.Token {
	if i >= len(stmt) {
		return stmt[len(stmt)-1]
	}
	return stmt[i]
}

func expect(stmt []lexer.Token, i int, kind lexer.Kind) error {
	tok := at(stmt, i)
	if tok.Kind != kind {
		return tok.Error("expected %s, found %s", kind, tok.Describe())
	}
	return nil
}

func expectShape(stmt []lexer.Token, kinds ...lexer.Kind) error {
	for i, kind := range kinds {
		if err := expect(stmt, i, kind); err != nil {
			return err
		}
	}
	return nil
}

func value(stmt []lexer.Token, i int) (ast.Value, error) {
	tok := at(stmt, i)
	v, ok := ast.ValueFromToken(tok)
	if !ok {
		return nil, tok.Error("expected value, found %s", tok.Describe())
	}
	return v, nil
}

func comparator(stmt []lexer.Token, i int) (ast.Comparator, error) {
	tok := at(stmt, i)
	switch tok.Kind {
	case lexer.KindEqualsEquals:
		return ast.CmpEq, nil
	case lexer.KindBangEquals:
		return ast.CmpNe, nil
	case lexer.KindLess:
		return ast.CmpLt, nil
	case lexer.KindGreater:
		return ast.CmpGt, nil
	case lexer.KindLessEquals:
		return ast.CmpLe, nil
	case lexer.KindGreaterEquals:
		return ast.CmpGe, nil
	}
	return 0, tok.Error("expected comparison operator, found %s", tok.Describe())
}

func operator(kind lexer.Kind) ast.Operator {
	switch kind {
	case lexer.KindMinus:
		return ast.OpSub
	case lexer.KindStar:
		return ast.OpMul
	case lexer.KindSlash:
		return ast.OpDiv
	case lexer.KindPercent:
		return ast.OpMod
	}
	return ast.OpAdd
}

// source spans the statement from its first token to the last token on the
// same line.
func source(stmt []lexer.Token) ast.Source {
	first := stmt[0]
	end := first.Offset + first.Width
	for _, tok := range stmt[1:] {
		if tok.Kind == lexer.KindEOS || tok.Line != first.Line {
			break
		}
		end = tok.Offset + tok.Width
	}
	return ast.Source{Token: first, Width: end - first.Offset}
}
