package ir

import (
	"strings"

	"github.com/pkg/errors"
)

// Lexer is a hand-written scanner over IR source text. It tracks a 1-based
// line number and exposes a single-token lookahead via Peek/Consume; Peek is
// idempotent.
type Lexer struct {
	src  []rune
	pos  int
	line int

	have bool
	tok  Token
	err  error
}

// NewLexer creates a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1}
}

func (l *Lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// scan reads the next token from the source, skipping spaces and tabs but not
// newlines, which are significant tokens in this grammar.
func (l *Lexer) scan() (Token, error) {
	for l.pos < len(l.src) {
		r := l.peekRune()
		if r == ' ' || r == '\t' || r == '\r' {
			l.advance()
			continue
		}
		break
	}
	line := l.line
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Line: line}, nil
	}
	r := l.advance()
	switch r {
	case '\n':
		return Token{Kind: TokNewline, Line: line}, nil
	case ':':
		if l.peekRune() == '=' {
			l.advance()
			return Token{Kind: TokAssign, Line: line}, nil
		}
		return Token{Kind: TokColon, Line: line}, nil
	case '*':
		return Token{Kind: TokStar, Line: line}, nil
	case '&':
		return Token{Kind: TokAmp, Line: line}, nil
	case '#':
		return Token{Kind: TokSharp, Line: line}, nil
	case '+':
		return Token{Kind: TokPlus, Line: line}, nil
	case '-':
		return Token{Kind: TokMinus, Line: line}, nil
	case '/':
		return Token{Kind: TokSlash, Line: line}, nil
	case '<':
		if l.peekRune() == '=' {
			l.advance()
			return Token{Kind: TokLE, Line: line}, nil
		}
		return Token{Kind: TokLT, Line: line}, nil
	case '>':
		if l.peekRune() == '=' {
			l.advance()
			return Token{Kind: TokGE, Line: line}, nil
		}
		return Token{Kind: TokGT, Line: line}, nil
	case '=':
		if l.peekRune() == '=' {
			l.advance()
			return Token{Kind: TokEQ, Line: line}, nil
		}
		return Token{}, errors.Errorf("line %d: unrecognized character %q", line, r)
	case '!':
		if l.peekRune() == '=' {
			l.advance()
			return Token{Kind: TokNE, Line: line}, nil
		}
		return Token{}, errors.Errorf("line %d: unrecognized character %q", line, r)
	}
	if isDigit(r) {
		var sb strings.Builder
		sb.WriteRune(r)
		for isDigit(l.peekRune()) {
			sb.WriteRune(l.advance())
		}
		var n int64
		for _, c := range sb.String() {
			n = n*10 + int64(c-'0')
		}
		return Token{Kind: TokInt, Int: n, Line: line}, nil
	}
	if isIdentStart(r) {
		var sb strings.Builder
		sb.WriteRune(r)
		for isIdentCont(l.peekRune()) {
			sb.WriteRune(l.advance())
		}
		name := sb.String()
		if k, ok := keywords[name]; ok {
			return Token{Kind: k, Text: name, Line: line}, nil
		}
		return Token{Kind: TokIdent, Text: name, Line: line}, nil
	}
	return Token{}, errors.Errorf("line %d: unrecognized character %q", line, r)
}

// Peek returns the next token without consuming it. Calling Peek repeatedly
// returns the same token until Consume is called.
func (l *Lexer) Peek() (Token, error) {
	if !l.have {
		l.tok, l.err = l.scan()
		l.have = true
	}
	return l.tok, l.err
}

// Consume returns the next token and advances past it.
func (l *Lexer) Consume() (Token, error) {
	t, err := l.Peek()
	l.have = false
	return t, err
}
