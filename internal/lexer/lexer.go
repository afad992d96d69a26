// Package lexer implements the tokenizer for the vela surface syntax.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vela-lang/vela/internal/position"
)

// TokenType identifies the kind of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	// Keywords
	TokenFn
	TokenLet
	TokenVar
	TokenIf
	TokenElse
	TokenSwitch
	TokenCase
	TokenDefault
	TokenDo
	TokenCatch
	TokenFor
	TokenIn
	TokenReturn
	TokenBreak
	TokenContinue
	TokenGuard
	TokenDefer
	TokenThrow
	TokenAvailable
	TokenTrue
	TokenFalse
	TokenNil

	// Punctuation and operators
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenColon
	TokenSemicolon
	TokenDot
	TokenArrow
	TokenAt
	TokenQuestion
	TokenAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAndAnd
	TokenOrOr
	TokenNot
	TokenHashWarning
	TokenHashError
)

var keywords = map[string]TokenType{
	"fn":        TokenFn,
	"let":       TokenLet,
	"var":       TokenVar,
	"if":        TokenIf,
	"else":      TokenElse,
	"switch":    TokenSwitch,
	"case":      TokenCase,
	"default":   TokenDefault,
	"do":        TokenDo,
	"catch":     TokenCatch,
	"for":       TokenFor,
	"in":        TokenIn,
	"return":    TokenReturn,
	"break":     TokenBreak,
	"continue":  TokenContinue,
	"guard":     TokenGuard,
	"defer":     TokenDefer,
	"throw":     TokenThrow,
	"available": TokenAvailable,
	"true":      TokenTrue,
	"false":     TokenFalse,
	"nil":       TokenNil,
}

// Token is one lexical token with its source span.
type Token struct {
	Type   TokenType
	Lexeme string
	Span   position.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", tokenName(t.Type), t.Lexeme)
}

func tokenName(tt TokenType) string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "ERROR"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	default:
		return "TOKEN"
	}
}

// Lexer scans one source file into tokens.
type Lexer struct {
	src      string
	filename string
	offset   int
	line     int
	column   int
}

// New creates a lexer over src.
func New(filename, src string) *Lexer {
	return &Lexer{src: src, filename: filename, line: 1, column: 1}
}

func (l *Lexer) pos() position.Position {
	return position.Position{Filename: l.filename, Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	return r
}

func (l *Lexer) advance() rune {
	if l.offset >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) match(r rune) bool {
	if l.peek() == r {
		l.advance()
		return true
	}
	return false
}

func (l *Lexer) skipSpaceAndComments() {
	for {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '/' && strings.HasPrefix(l.src[l.offset:], "//"):
			for l.peek() != '\n' && l.peek() != 0 {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	start := l.pos()

	r := l.peek()
	if r == 0 {
		return Token{Type: TokenEOF, Span: position.NewSpan(start, start)}
	}

	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.identOrKeyword(start)
	case unicode.IsDigit(r):
		return l.number(start)
	case r == '"':
		return l.stringLit(start)
	case r == '#':
		return l.directive(start)
	}

	l.advance()
	mk := func(tt TokenType) Token {
		return l.token(tt, start)
	}

	switch r {
	case '(':
		return mk(TokenLParen)
	case ')':
		return mk(TokenRParen)
	case '{':
		return mk(TokenLBrace)
	case '}':
		return mk(TokenRBrace)
	case '[':
		return mk(TokenLBracket)
	case ']':
		return mk(TokenRBracket)
	case ',':
		return mk(TokenComma)
	case ':':
		return mk(TokenColon)
	case ';':
		return mk(TokenSemicolon)
	case '.':
		return mk(TokenDot)
	case '@':
		return mk(TokenAt)
	case '?':
		return mk(TokenQuestion)
	case '+':
		return mk(TokenPlus)
	case '*':
		return mk(TokenStar)
	case '/':
		return mk(TokenSlash)
	case '-':
		if l.match('>') {
			return mk(TokenArrow)
		}
		return mk(TokenMinus)
	case '=':
		if l.match('=') {
			return mk(TokenEq)
		}
		return mk(TokenAssign)
	case '!':
		if l.match('=') {
			return mk(TokenNe)
		}
		return mk(TokenNot)
	case '<':
		if l.match('=') {
			return mk(TokenLe)
		}
		return mk(TokenLt)
	case '>':
		if l.match('=') {
			return mk(TokenGe)
		}
		return mk(TokenGt)
	case '&':
		if l.match('&') {
			return mk(TokenAndAnd)
		}
	case '|':
		if l.match('|') {
			return mk(TokenOrOr)
		}
	}

	return Token{Type: TokenError, Lexeme: string(r), Span: position.NewSpan(start, l.pos())}
}

func (l *Lexer) token(tt TokenType, start position.Position) Token {
	return Token{Type: tt, Lexeme: l.src[start.Offset:l.offset], Span: position.NewSpan(start, l.pos())}
}

func (l *Lexer) identOrKeyword(start position.Position) Token {
	for unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	lexeme := l.src[start.Offset:l.offset]
	if tt, ok := keywords[lexeme]; ok {
		return Token{Type: tt, Lexeme: lexeme, Span: position.NewSpan(start, l.pos())}
	}
	return Token{Type: TokenIdent, Lexeme: lexeme, Span: position.NewSpan(start, l.pos())}
}

func (l *Lexer) number(start position.Position) Token {
	tt := TokenInt
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && l.offset+1 < len(l.src) && unicode.IsDigit(rune(l.src[l.offset+1])) {
		tt = TokenFloat
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return l.token(tt, start)
}

func (l *Lexer) stringLit(start position.Position) Token {
	l.advance() // opening quote
	var b strings.Builder
	for {
		r := l.peek()
		if r == 0 || r == '\n' {
			return Token{Type: TokenError, Lexeme: "unterminated string", Span: position.NewSpan(start, l.pos())}
		}
		l.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return Token{Type: TokenError, Lexeme: "invalid escape", Span: position.NewSpan(start, l.pos())}
			}
			continue
		}
		b.WriteRune(r)
	}
	return Token{Type: TokenString, Lexeme: b.String(), Span: position.NewSpan(start, l.pos())}
}

func (l *Lexer) directive(start position.Position) Token {
	l.advance() // '#'
	for unicode.IsLetter(l.peek()) {
		l.advance()
	}
	switch l.src[start.Offset:l.offset] {
	case "#warning":
		return Token{Type: TokenHashWarning, Lexeme: "#warning", Span: position.NewSpan(start, l.pos())}
	case "#error":
		return Token{Type: TokenHashError, Lexeme: "#error", Span: position.NewSpan(start, l.pos())}
	default:
		return Token{Type: TokenError, Lexeme: "unknown directive", Span: position.NewSpan(start, l.pos())}
	}
}

// Tokenize scans the whole input, stopping after EOF or the first error
// token.
func (l *Lexer) Tokenize() []Token {
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return out
		}
	}
}
