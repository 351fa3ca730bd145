package lexer

import (
	"fmt"
	"os"
)

// DefaultMaxImportDepth bounds nested imports. Imports have no cycle
// detection, so a self-importing file stops here instead of exhausting the
// goroutine stack.
const DefaultMaxImportDepth = 64

// Lexer turns whole files into normalised token streams.
type Lexer struct {
	// ReadFile loads an imported path. Paths are passed through unchanged, so
	// relative imports resolve against the process working directory.
	ReadFile func(path string) ([]byte, error)

	// OnImport, if set, is called with each path before it is read.
	OnImport func(path string, depth int)

	MaxImportDepth int
}

// New returns a Lexer reading imports from the local filesystem.
func New() *Lexer {
	return &Lexer{
		ReadFile:       os.ReadFile,
		MaxImportDepth: DefaultMaxImportDepth,
	}
}

// Tokenize lexes source with a default Lexer.
func Tokenize(file string, source []byte) ([]Token, error) {
	return New().Tokenize(file, source)
}

// TokenizeFile reads path and lexes it.
func (l *Lexer) TokenizeFile(path string) ([]Token, error) {
	src, err := l.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Tokenize(path, src)
}

// Tokenize scans source, splices `import "path"` statements in place and
// collapses runs of EOS tokens. The result always ends with a single EOS
// unless it is empty. No EOF token is included.
func (l *Lexer) Tokenize(file string, source []byte) ([]Token, error) {
	return l.tokenize(file, source, 0)
}

func (l *Lexer) tokenize(file string, source []byte, depth int) ([]Token, error) {
	s := NewScanner(file, source)

	var raw []Token
	var last Token
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEOF {
			last = tok
			break
		}
		raw = append(raw, tok)
	}

	spliced, err := l.splice(raw, depth)
	if err != nil {
		return nil, err
	}

	last.Kind = KindEOS
	spliced = append(spliced, last)
	return collapseEOS(spliced), nil
}

// splice walks EOS-delimited runs and replaces every two-token run
// `import "path"` with the tokens of that file.
func (l *Lexer) splice(raw []Token, depth int) ([]Token, error) {
	out := make([]Token, 0, len(raw))
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i].Kind != KindEOS {
			continue
		}
		run := raw[start:i]
		if path, ok := importPath(run); ok {
			imported, err := l.load(run[1], path, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, imported...)
		} else {
			out = append(out, run...)
		}
		if i < len(raw) {
			out = append(out, raw[i])
		}
		start = i + 1
	}
	return out, nil
}

func (l *Lexer) load(at Token, path string, depth int) ([]Token, error) {
	limit := l.MaxImportDepth
	if limit <= 0 {
		limit = DefaultMaxImportDepth
	}
	if depth >= limit {
		return nil, at.lexError(fmt.Sprintf("import nesting deeper than %d levels at '%s'", limit, path))
	}
	if l.OnImport != nil {
		l.OnImport(path, depth+1)
	}

	read := l.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		e := at.lexError(fmt.Sprintf("failed to import file '%s': %v", path, err))
		e.Cause = err
		return nil, e
	}
	return l.tokenize(path, data, depth+1)
}

func importPath(run []Token) (string, bool) {
	if len(run) != 2 {
		return "", false
	}
	if run[0].Kind != KindIdentifier || run[0].Text != "import" || run[1].Kind != KindString {
		return "", false
	}
	return run[1].Text, true
}

// collapseEOS drops leading EOS tokens and repeated EOS tokens.
func collapseEOS(tokens []Token) []Token {
	out := tokens[:0]
	for _, tok := range tokens {
		if tok.Kind == KindEOS && (len(out) == 0 || out[len(out)-1].Kind == KindEOS) {
			continue
		}
		out = append(out, tok)
	}
	return out
}
