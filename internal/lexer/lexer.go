package lexer

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	// EOF represents the end of the input line
	EOF TokenType = iota
	// IDENT represents a bare word: command keyword, table or column name
	IDENT
	// NUMBER represents a base-10 integer, optionally negative
	NUMBER
	// STRING represents a quoted string, quotes stripped
	STRING
	// LPAREN represents a left parenthesis
	LPAREN
	// RPAREN represents a right parenthesis
	RPAREN
	// COMMA represents a comma
	COMMA
	// COLON represents the colon in a column:type spec
	COLON
	// EQUALS represents an equals sign
	EQUALS
	// ILLEGAL represents a character or sequence the lexer cannot tokenize
	ILLEGAL
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("Token{Type: %v, Literal: %q}", t.Type, t.Literal)
}

// Lexer tokenizes a single command line
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

// New creates a new lexer for the given input line
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '(':
		tok = Token{Type: LPAREN, Literal: string(l.ch)}
	case ')':
		tok = Token{Type: RPAREN, Literal: string(l.ch)}
	case ',':
		tok = Token{Type: COMMA, Literal: string(l.ch)}
	case ':':
		tok = Token{Type: COLON, Literal: string(l.ch)}
	case '=':
		tok = Token{Type: EQUALS, Literal: string(l.ch)}
	case 0:
		tok = Token{Type: EOF, Literal: ""}
	case '"', '\'':
		quote := l.ch
		l.readChar()
		literal, ok := l.readString(quote)
		if !ok {
			return Token{Type: ILLEGAL, Literal: "unterminated string"}
		}
		tok = Token{Type: STRING, Literal: literal}
	default:
		if isLetter(l.ch) {
			tok.Type = IDENT
			tok.Literal = l.readIdentifier()
			return tok
		} else if isDigit(l.ch) || l.ch == '-' {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch)}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString consumes up to the closing quote and reports whether the
// string was terminated. Quoted strings may contain spaces and commas.
func (l *Lexer) readString(quote byte) (string, bool) {
	position := l.position
	for l.ch != quote {
		if l.ch == 0 {
			return "", false
		}
		l.readChar()
	}
	return l.input[position:l.position], true
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return unicode.IsDigit(rune(ch))
}
