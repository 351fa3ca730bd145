package lexer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/agenthands/tilde/pkg/diag"
)

// Scanner performs lexical analysis on tilde source. It produces raw tokens;
// import splicing and EOS normalisation happen in Tokenize.
type Scanner struct {
	file   string
	source []byte

	cursor    int
	line      int
	col       int
	lineStart int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(file string, source []byte) *Scanner {
	return &Scanner{
		file:   file,
		source: source,
		line:   1,
		col:    1,
	}
}

// Reset re-initializes the scanner with new source for reuse.
func (s *Scanner) Reset(file string, source []byte) {
	s.file = file
	s.source = source
	s.cursor = 0
	s.line = 1
	s.col = 1
	s.lineStart = 0
}

// Next returns the next token from the source. At end of input it returns a
// KindEOF token on every call.
func (s *Scanner) Next() (Token, error) {
	for {
		s.skipWhitespace()
		if s.cursor >= len(s.source) {
			return s.token(KindEOF, s.cursor, 0), nil
		}
		if s.source[s.cursor] != '#' {
			break
		}
		s.skipComment()
	}

	ch := s.source[s.cursor]
	switch {
	case ch == '\n':
		tok := s.token(KindEOS, s.cursor, 1)
		s.cursor++
		s.line++
		s.col = 1
		s.lineStart = s.cursor
		return tok, nil
	case ch == ';':
		return s.single(KindEOS), nil
	case ch == '-' && isDigit(s.peek(1)):
		return s.scanNumber()
	case isDigit(ch):
		return s.scanNumber()
	case isIdentStart(ch):
		return s.scanIdentifier()
	case ch == '"':
		return s.scanString()
	}

	if s.peek(1) == '=' {
		kind := KindEOF
		switch ch {
		case '=':
			kind = KindEqualsEquals
		case '!':
			kind = KindBangEquals
		case '<':
			kind = KindLessEquals
		case '>':
			kind = KindGreaterEquals
		}
		if kind != KindEOF {
			tok := s.token(kind, s.cursor, 2)
			s.advance(2)
			return tok, nil
		}
	}

	switch ch {
	case ':':
		return s.single(KindColon), nil
	case '=':
		return s.single(KindEquals), nil
	case '@':
		return s.single(KindAt), nil
	case '~':
		return s.single(KindTilde), nil
	case '+':
		return s.single(KindPlus), nil
	case '-':
		return s.single(KindMinus), nil
	case '*':
		return s.single(KindStar), nil
	case '/':
		return s.single(KindSlash), nil
	case '%':
		return s.single(KindPercent), nil
	case '<':
		return s.single(KindLess), nil
	case '>':
		return s.single(KindGreater), nil
	}

	return Token{}, s.errorf(s.cursor, 1, "unexpected character %q", rune(ch))
}

func (s *Scanner) single(kind Kind) Token {
	tok := s.token(kind, s.cursor, 1)
	s.advance(1)
	return tok
}

func (s *Scanner) scanNumber() (Token, error) {
	start := s.cursor
	i := start
	if s.source[i] == '-' {
		i++
	}

	isFloat := false
	for i < len(s.source) {
		ch := s.source[i]
		if isDigit(ch) {
			i++
			continue
		}
		if ch != '.' {
			break
		}
		// ".." is reserved; the number ends before it.
		if i+1 < len(s.source) && s.source[i+1] == '.' {
			break
		}
		if isFloat {
			return Token{}, s.errorf(i, 1, "illegal second decimal point in float literal")
		}
		isFloat = true
		i++
	}

	if !s.boundaryAt(i) {
		return Token{}, s.errorf(i, 1, "unexpected character %q in numeric literal", rune(s.source[i]))
	}

	text := string(s.source[start:i])
	tok := s.token(KindInt, start, len(text))

	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Token{}, s.errorf(start, len(text), "invalid float literal %s", text)
		}
		tok.Kind = KindFloat
		tok.Float = f
	} else {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Token{}, s.errorf(start, len(text), "integer literal %s out of range", text)
		}
		tok.Int = n
	}

	s.advance(len(text))
	return tok, nil
}

func (s *Scanner) scanIdentifier() (Token, error) {
	start := s.cursor
	end := start
	for end < len(s.source) && isIdentPart(s.source[end]) {
		end++
	}
	if !s.boundaryAt(end) {
		return Token{}, s.errorf(end, 1, "unexpected character %q in identifier", rune(s.source[end]))
	}

	literal := s.source[start:end]
	tok := s.token(KindIdentifier, start, len(literal))
	s.advance(len(literal))

	switch {
	case bytes.Equal(literal, []byte("if")):
		tok.Kind = KindIf
	case bytes.Equal(literal, []byte("goto")):
		tok.Kind = KindGoto
	case bytes.Equal(literal, []byte("call")):
		tok.Kind = KindCall
	case bytes.Equal(literal, []byte("ret")):
		tok.Kind = KindRet
	case bytes.Equal(literal, []byte("true")):
		tok.Kind = KindBool
		tok.Bool = true
	case bytes.Equal(literal, []byte("false")):
		tok.Kind = KindBool
	default:
		tok.Text = string(literal)
	}
	return tok, nil
}

// scanString decodes a double-quoted literal. Raw newlines are allowed inside
// the quotes; the token keeps the line it started on.
func (s *Scanner) scanString() (Token, error) {
	start := s.cursor
	tok := s.token(KindString, start, 0)

	var buf []byte
	i := start + 1
	for {
		if i >= len(s.source) {
			return Token{}, s.errorf(start, 1, "unterminated string literal")
		}
		ch := s.source[i]
		if ch == '"' {
			i++
			break
		}
		if ch == '\\' {
			if i+1 >= len(s.source) {
				return Token{}, s.errorf(start, 1, "unterminated string literal")
			}
			esc, ok := unescape(s.source[i+1])
			if !ok {
				return Token{}, s.errorf(i, 2, "invalid escape sequence \\%c", rune(s.source[i+1]))
			}
			buf = append(buf, esc)
			i += 2
			continue
		}
		buf = append(buf, ch)
		i++
	}

	tok.Width = i - start
	tok.Text = string(buf)

	for s.cursor < i {
		if s.source[s.cursor] == '\n' {
			s.line++
			s.col = 1
			s.lineStart = s.cursor + 1
		} else {
			s.col++
		}
		s.cursor++
	}
	return tok, nil
}

func unescape(c byte) (byte, bool) {
	switch c {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '0':
		return 0, true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	}
	return 0, false
}

func (s *Scanner) skipWhitespace() {
	for s.cursor < len(s.source) {
		switch s.source[s.cursor] {
		case ' ', '\t', '\r':
			s.advance(1)
		default:
			return
		}
	}
}

// skipComment stops at the newline so it still terminates the statement.
func (s *Scanner) skipComment() {
	for s.cursor < len(s.source) && s.source[s.cursor] != '\n' {
		s.advance(1)
	}
}

func (s *Scanner) advance(n int) {
	s.cursor += n
	s.col += n
}

func (s *Scanner) peek(offset int) byte {
	if s.cursor+offset >= len(s.source) {
		return 0
	}
	return s.source[s.cursor+offset]
}

// boundaryAt reports whether the byte at i may follow a value or identifier
// token.
func (s *Scanner) boundaryAt(i int) bool {
	if i >= len(s.source) {
		return true
	}
	switch s.source[i] {
	case ' ', '\t', '\r', '\n', ';', '#',
		'=', '+', '-', '*', '/', '%', '!', '<', '>', ':', '~', '@':
		return true
	}
	return false
}

// token builds a token starting at byte offset start on the current line.
func (s *Scanner) token(kind Kind, start, width int) Token {
	return Token{
		Kind:    kind,
		Line:    s.line,
		Column:  s.col + (start - s.cursor),
		Offset:  start,
		Width:   width,
		File:    s.file,
		Context: s.currentLine(),
	}
}

func (s *Scanner) currentLine() string {
	end := bytes.IndexByte(s.source[s.lineStart:], '\n')
	var line []byte
	if end < 0 {
		line = s.source[s.lineStart:]
	} else {
		line = s.source[s.lineStart : s.lineStart+end]
	}
	return string(bytes.TrimRight(line, "\r"))
}

func (s *Scanner) errorf(at, width int, format string, args ...any) *diag.Error {
	tok := s.token(KindEOF, at, width)
	return tok.diag(diag.Lexing, fmt.Sprintf(format, args...))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
