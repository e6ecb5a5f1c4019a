package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/godice/pkg/registry"
	"github.com/sandrolain/godice/pkg/types"
)

const eof = -1

// Lexer converts dice notation into a sequence of tokens.
// Operators and delimiters come from a registry snapshot, so anything
// registered is lexable without changes here.
type Lexer struct {
	input   string               // Input string being scanned
	length  int                  // Length of input string
	start   int                  // Start position of current token
	current int                  // Current position in input
	width   int                  // Width of last rune read
	table   *registry.Table      // Operators and groups to recognize
	ops     []*types.OperatorDef // Operators, longest text first
	delims  []string             // Group tokens, longest first
	last    Token                // Last token emitted
	err     error                // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string, table *registry.Table) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
		table:  table,
		ops:    table.OperatorsByLength(),
		delims: table.Delimiters(),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, or after an error, Next returns
// TokenEOF for all subsequent calls.
func (l *Lexer) Next() Token {
	if l.err != nil {
		return l.eof()
	}
	l.skipWhitespace()

	if l.current >= l.length {
		return l.eof()
	}
	rest := l.input[l.current:]

	// Delimiters first: any registered pair must be lexable.
	for _, d := range l.delims {
		if strings.HasPrefix(rest, d) {
			return l.scanDelimiter(d)
		}
	}

	ch := l.nextRune()
	switch {
	case ch == ',':
		return l.emit(l.newToken(TokenSeparator))
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case ch == '-' && !l.last.producesValue() && l.peekDigit():
		// A leading minus is part of the literal unless it follows a value,
		// so "3+-2" has a negative constant while "3-2" and "1d6!-2" subtract.
		return l.scanNumber()
	case ch == '$':
		return l.scanVariable()
	}
	l.backup()

	for _, op := range l.ops {
		n := len(op.Text)
		if n <= len(rest) && strings.EqualFold(rest[:n], op.Text) {
			l.current += n
			t := l.newToken(TokenOperator)
			t.Operator = op
			return l.emit(t)
		}
	}

	r, _ := utf8.DecodeRuneInString(rest)
	l.current += utf8.RuneLen(r)
	return l.error(types.ErrUnexpectedToken, fmt.Sprintf("Unexpected token %c when parsing %s", r, l.input))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// scanDelimiter emits an open or close token for delimiter d.
// A token registered both as an opener and as a closer opens a group
// unless it follows a value.
func (l *Lexer) scanDelimiter(d string) Token {
	l.current += len(d)
	opens, isOpen := l.table.GroupByOpen(d)
	closes, isClose := l.table.GroupByClose(d)
	if isOpen && (!isClose || !l.last.producesValue()) {
		t := l.newToken(TokenOpen)
		t.Group = opens
		return l.emit(t)
	}
	t := l.newToken(TokenClose)
	t.Group = closes
	return l.emit(t)
}

// scanNumber reads a numeric literal from the current position.
// A leading minus, if any, has already been consumed.
// Format: -?[0-9]+(\.[0-9]+)?
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)

	// Decimal part, only when a digit follows the dot
	if l.current+1 < l.length && l.input[l.current] == '.' && isDigit(rune(l.input[l.current+1])) {
		l.current++
		l.acceptAll(isDigit)
	}

	t := l.newToken(TokenConstant)
	v, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		l.err = types.NewError(types.ErrUnexpectedToken,
			fmt.Sprintf("Invalid number %s when parsing %s", t.Value, l.input), t.Position).WithToken(t.Value).WithCause(err)
		return l.eof()
	}
	t.Number = v
	return l.emit(t)
}

// scanVariable reads a variable reference. The $ has already been consumed.
// Format: $name or $name; where name is letters, digits and underscores.
func (l *Lexer) scanVariable() Token {
	nameStart := l.current
	if !l.acceptAll(isNameRune) {
		return l.error(types.ErrUnexpectedToken, "Expected variable name after $")
	}
	name := l.input[nameStart:l.current]
	l.acceptRune(';')

	t := l.newToken(TokenVariable)
	t.Name = name
	return l.emit(t)
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenEOF)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return l.eof()
}

func (l *Lexer) emit(t Token) Token {
	l.last = t
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
	l.width = 0
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) peekDigit() bool {
	return l.current < l.length && isDigit(rune(l.input[l.current]))
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Tokenize lexes the whole input and checks that no two values are
// adjacent without an operator between them.
func Tokenize(input string, table *registry.Table) ([]Token, error) {
	l := NewLexer(input, table)
	var tokens []Token
	for {
		t := l.Next()
		if t.Type == TokenEOF {
			break
		}
		tokens = append(tokens, t)
	}
	if err := l.Error(); err != nil {
		return nil, err
	}
	if err := checkAdjacency(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func checkAdjacency(tokens []Token) error {
	for i := 1; i < len(tokens); i++ {
		a, b := tokens[i-1], tokens[i]
		if a.producesValue() && b.startsValue() {
			return types.NewError(types.ErrMissingOperator,
				fmt.Sprintf("Expected operator between tokens %s and %s", a.Value, b.Value), b.Position).WithToken(b.Value)
		}
	}
	return nil
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameRune(r rune) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
