// Package diag defines the single error type shared by the lexer, the parser
// and the virtual machine, and renders it as a caret-annotated snippet.
//
// Rendered form (colour optional):
//
//	Runtime error:
//	 --> main.tl 3:5 (17)
//	  |
//	3 | z = x + y
//	  |     ^^^^^ cannot add int and string
package diag

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage names the pipeline phase an Error came from.
type Stage uint8

const (
	Lexing Stage = iota
	Parsing
	Runtime
)

func (s Stage) String() string {
	switch s {
	case Lexing:
		return "Lexing"
	case Parsing:
		return "Parsing"
	case Runtime:
		return "Runtime"
	default:
		return "Unknown"
	}
}

// Error is a positioned diagnostic. Line and Column are 1-based, Offset is the
// 0-based byte index of the failing position in File.
type Error struct {
	Stage   Stage
	File    string
	Line    int
	Column  int
	Offset  int
	Width   int
	Message string
	Context string

	// Cause is the underlying error, if any. It is not rendered.
	Cause error
}

// Error returns the plain (uncoloured) rendering.
func (e *Error) Error() string {
	return e.Render(false)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Position returns "file:line:column".
func (e *Error) Position() string {
	return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
}

// Render formats the diagnostic as a multi-line snippet. With color set the
// output carries ANSI escapes.
func (e *Error) Render(color bool) string {
	p := palette{on: color}

	col := e.Column
	if col < 1 {
		col = 1
	}
	width := e.Width
	if width < 1 {
		width = 1
	}

	lineNo := strconv.Itoa(e.Line)
	gutter := strings.Repeat(" ", len(lineNo))
	bar := p.blue("|")

	var b strings.Builder
	fmt.Fprintf(&b, "%s error:\n", e.Stage)
	fmt.Fprintf(&b, "%s%s %s %d:%d (%d)\n", gutter, p.blue("-->"), p.cyan(e.File), e.Line, e.Column, e.Offset)
	fmt.Fprintf(&b, "%s %s\n", gutter, bar)
	fmt.Fprintf(&b, "%s %s %s\n", p.blue(lineNo), bar, p.green(e.Context))
	fmt.Fprintf(&b, "%s %s %s%s %s", gutter, bar, strings.Repeat(" ", col-1), p.blue(strings.Repeat("^", width)), p.red(e.Message))
	return b.String()
}

type palette struct{ on bool }

func (p palette) wrap(code, s string) string {
	if !p.on {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p palette) red(s string) string   { return p.wrap("1;31", s) }
func (p palette) green(s string) string { return p.wrap("32", s) }
func (p palette) blue(s string) string  { return p.wrap("1;34", s) }
func (p palette) cyan(s string) string  { return p.wrap("36", s) }
