package lexer

import (
	"fmt"

	"github.com/agenthands/tilde/pkg/diag"
)

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindEOF Kind = iota
	KindEOS      // ; or newline

	// Literals
	KindBool
	KindInt
	KindFloat
	KindString

	KindIdentifier

	// Keywords
	KindIf
	KindGoto
	KindCall
	KindRet

	// Punctuation
	KindColon   // :
	KindEquals  // =
	KindAt      // @
	KindTilde   // ~
	KindPlus    // +
	KindMinus   // -
	KindStar    // *
	KindSlash   // /
	KindPercent // %
	KindLess    // <
	KindGreater // >

	KindEqualsEquals  // ==
	KindBangEquals    // !=
	KindLessEquals    // <=
	KindGreaterEquals // >=
)

var kindNames = [...]string{
	KindEOF:           "end of file",
	KindEOS:           "end of statement",
	KindBool:          "bool",
	KindInt:           "int",
	KindFloat:         "float",
	KindString:        "string",
	KindIdentifier:    "identifier",
	KindIf:            "'if'",
	KindGoto:          "'goto'",
	KindCall:          "'call'",
	KindRet:           "'ret'",
	KindColon:         "':'",
	KindEquals:        "'='",
	KindAt:            "'@'",
	KindTilde:         "'~'",
	KindPlus:          "'+'",
	KindMinus:         "'-'",
	KindStar:          "'*'",
	KindSlash:         "'/'",
	KindPercent:       "'%'",
	KindLess:          "'<'",
	KindGreater:       "'>'",
	KindEqualsEquals:  "'=='",
	KindBangEquals:    "'!='",
	KindLessEquals:    "'<='",
	KindGreaterEquals: "'>='",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsLiteral reports whether k is a bool, int, float or string literal.
func (k Kind) IsLiteral() bool {
	return k == KindBool || k == KindInt || k == KindFloat || k == KindString
}

// IsValue reports whether a token of kind k may stand where a value is expected.
func (k Kind) IsValue() bool {
	return k.IsLiteral() || k == KindIdentifier
}

// IsCompare reports whether k is one of the six relational operators.
func (k Kind) IsCompare() bool {
	switch k {
	case KindEqualsEquals, KindBangEquals, KindLess, KindGreater, KindLessEquals, KindGreaterEquals:
		return true
	}
	return false
}

// IsBinOp reports whether k is an arithmetic operator.
func (k Kind) IsBinOp() bool {
	switch k {
	case KindPlus, KindMinus, KindStar, KindSlash, KindPercent:
		return true
	}
	return false
}

// Token is a lexical unit with enough provenance to render a diagnostic.
// Literal payloads live in Text (identifier name or decoded string), Int,
// Float and Bool depending on Kind.
type Token struct {
	Kind   Kind
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte index into the file
	Width  int
	File   string

	// Context is the full source line the token sits on.
	Context string

	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// Error builds a parse-stage diagnostic anchored at t.
func (t Token) Error(format string, args ...any) *diag.Error {
	return t.diag(diag.Parsing, fmt.Sprintf(format, args...))
}

func (t Token) lexError(msg string) *diag.Error {
	return t.diag(diag.Lexing, msg)
}

func (t Token) diag(stage diag.Stage, msg string) *diag.Error {
	return &diag.Error{
		Stage:   stage,
		File:    t.File,
		Line:    t.Line,
		Column:  t.Column,
		Offset:  t.Offset,
		Width:   t.Width,
		Message: msg,
		Context: t.Context,
	}
}

// Describe names the token for error messages, including its payload.
func (t Token) Describe() string {
	switch t.Kind {
	case KindIdentifier:
		return fmt.Sprintf("identifier '%s'", t.Text)
	case KindString:
		return fmt.Sprintf("string %q", t.Text)
	case KindInt:
		return fmt.Sprintf("int %d", t.Int)
	case KindFloat:
		return fmt.Sprintf("float %g", t.Float)
	case KindBool:
		return fmt.Sprintf("bool %t", t.Bool)
	}
	return t.Kind.String()
}
