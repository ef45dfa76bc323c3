package parser

import (
	"fmt"

	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/lexer"
	"github.com/xplshn/gwc/pkg/token"
)

// Parser holds the state for reading a printed tree back into nodes
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
}

// Error is a syntax error at a token
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Tok.Line, e.Tok.Column, e.Msg)
}

// NewParser creates and initializes a new Parser from a token stream
func NewParser(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	return &Parser{tokens: tokens, current: tokens[0]}
}

// ParseString tokenizes and parses a single tree
func ParseString(src string, fileIndex int) (*ast.Node, error) {
	tokens, err := lexer.NewLexer([]rune(src), fileIndex).All()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parser helpers
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.previous = p.current
		p.pos++
		p.current = p.tokens[p.pos]
	}
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, context string) error {
	if p.match(tokType) {
		return nil
	}
	return p.errorf("expected %s %s, found %s", tokType, context, p.current.Type)
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &Error{Tok: p.current, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads exactly one tree; anything after it is an error
func (p *Parser) Parse() (*ast.Node, error) {
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if !p.check(token.EOF) {
		return nil, p.errorf("unexpected %s after tree", p.current.Type)
	}
	return node, nil
}

// ParseAll reads a sequence of trees until the end of input
func (p *Parser) ParseAll() ([]*ast.Node, error) {
	var nodes []*ast.Node
	for !p.check(token.EOF) {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (p *Parser) parseNode() (*ast.Node, error) {
	openTok := p.current
	if err := p.expect(token.LParen, "to open a node"); err != nil {
		return nil, err
	}
	if p.match(token.RParen) {
		return nil, nil
	}

	kindTok := p.current
	if err := p.expect(token.Ident, "naming the node kind"); err != nil {
		return nil, err
	}
	kind, ok := ast.ParseNodeType(kindTok.Value)
	if !ok {
		return nil, &Error{Tok: kindTok, Msg: fmt.Sprintf("unknown node kind '%s'", kindTok.Value)}
	}

	node := &ast.Node{Type: kind, Tok: openTok}
	if p.match(token.String) {
		node.Value = p.previous.Value
	}
	if p.match(token.Colon) {
		typ, err := p.parseAtom("after ':'")
		if err != nil {
			return nil, err
		}
		node.Typ = typ
	}
	for p.check(token.LBrace) {
		m, err := p.parseMeta()
		if err != nil {
			return nil, err
		}
		node.Meta = append(node.Meta, m)
	}
	for !p.check(token.RParen) {
		if p.check(token.EOF) {
			return nil, &Error{Tok: openTok, Msg: fmt.Sprintf("unterminated %s node", kind)}
		}
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node.Params = append(node.Params, child)
	}
	p.advance()
	return node, nil
}

func (p *Parser) parseMeta() (ast.Meta, error) {
	p.advance()
	kindTok := p.current
	if err := p.expect(token.Ident, "naming the annotation"); err != nil {
		return ast.Meta{}, err
	}
	kind, ok := ast.ParseMetaKind(kindTok.Value)
	if !ok {
		return ast.Meta{}, &Error{Tok: kindTok, Msg: fmt.Sprintf("unknown annotation '%s'", kindTok.Value)}
	}

	var m ast.Meta
	switch kind {
	case ast.MetaTypeCast:
		to, err := p.parseAtom("as cast target")
		if err != nil {
			return ast.Meta{}, err
		}
		from, err := p.parseAtom("as cast source")
		if err != nil {
			return ast.Meta{}, err
		}
		m = ast.TypeCastMeta(to, from)
	}
	if err := p.expect(token.RBrace, "to close the annotation"); err != nil {
		return ast.Meta{}, err
	}
	return m, nil
}

func (p *Parser) parseAtom(context string) (string, error) {
	if p.match(token.Ident) || p.match(token.String) {
		return p.previous.Value, nil
	}
	return "", p.errorf("expected a name %s, found %s", context, p.current.Type)
}
