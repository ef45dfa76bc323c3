package lexer

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/xplshn/gwc/pkg/token"
)

// Lexer splits printed syntax trees into tokens
type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
}

// Error is a lexical error at a source position
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Tok.Line, e.Tok.Column, e.Msg)
}

func NewLexer(source []rune, fileIndex int) *Lexer {
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1,
	}
}

func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	startPos, startCol, startLine := l.pos, l.column, l.line

	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", startPos, startCol, startLine), nil
	}

	ch := l.peek()
	if unicode.IsLetter(ch) || ch == '_' {
		return l.identifier(startPos, startCol, startLine), nil
	}

	l.advance()
	switch ch {
	case '(':
		return l.makeToken(token.LParen, "", startPos, startCol, startLine), nil
	case ')':
		return l.makeToken(token.RParen, "", startPos, startCol, startLine), nil
	case '{':
		return l.makeToken(token.LBrace, "", startPos, startCol, startLine), nil
	case '}':
		return l.makeToken(token.RBrace, "", startPos, startCol, startLine), nil
	case ':':
		return l.makeToken(token.Colon, "", startPos, startCol, startLine), nil
	case '"':
		return l.stringLiteral(startPos, startCol, startLine)
	}

	tok := l.makeToken(token.EOF, "", startPos, startCol, startLine)
	return tok, &Error{Tok: tok, Msg: fmt.Sprintf("unexpected character: '%c'", ch)}
}

// All tokenizes the whole source, the EOF token included
func (l *Lexer) All() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value, FileIndex: l.fileIndex,
		Line: startLine, Column: startCol, Len: l.pos - startPos,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\n', '\r':
			l.advance()
		case ';':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) identifier(startPos, startCol, startLine int) token.Token {
	for !l.isAtEnd() {
		ch := l.peek()
		if !(unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '.') {
			break
		}
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	return l.makeToken(token.Ident, value, startPos, startCol, startLine)
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) (token.Token, error) {
	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\n' {
			break
		}
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.isAtEnd() || l.peek() != '"' {
		tok := l.makeToken(token.String, "", startPos, startCol, startLine)
		return tok, &Error{Tok: tok, Msg: "unterminated string literal"}
	}
	l.advance()

	raw := string(l.source[startPos:l.pos])
	value, err := strconv.Unquote(raw)
	tok := l.makeToken(token.String, value, startPos, startCol, startLine)
	if err != nil {
		return tok, &Error{Tok: tok, Msg: fmt.Sprintf("invalid string literal %s", raw)}
	}
	return tok, nil
}
