// Package ast defines the generic syntax tree handed over by the parser
package ast

import (
	"github.com/xplshn/gwc/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Identifier NodeType = iota
	Constant
	StringLiteral
	Type
	Pair
	TypeCast
	BinaryExpression
	Assignment
	FunctionCall
	ArraySubscript
	ObjectLiteral

	// Statements
	Program
	Block
	Declaration
	ReturnStatement
	Noop
)

var nodeTypeNames = [...]string{
	Identifier:       "Identifier",
	Constant:         "Constant",
	StringLiteral:    "StringLiteral",
	Type:             "Type",
	Pair:             "Pair",
	TypeCast:         "TypeCast",
	BinaryExpression: "BinaryExpression",
	Assignment:       "Assignment",
	FunctionCall:     "FunctionCall",
	ArraySubscript:   "ArraySubscript",
	ObjectLiteral:    "ObjectLiteral",
	Program:          "Program",
	Block:            "Block",
	Declaration:      "Declaration",
	ReturnStatement:  "ReturnStatement",
	Noop:             "Noop",
}

var nodeTypeMap = make(map[string]NodeType, len(nodeTypeNames))

func init() {
	for nt, name := range nodeTypeNames {
		nodeTypeMap[name] = NodeType(nt)
	}
}

func (nt NodeType) String() string {
	if nt >= 0 && int(nt) < len(nodeTypeNames) {
		return nodeTypeNames[nt]
	}
	return "Unknown"
}

// ParseNodeType looks a kind up by its name
func ParseNodeType(name string) (NodeType, bool) {
	nt, ok := nodeTypeMap[name]
	return nt, ok
}

// Node represents a node in the Abstract Syntax Tree.
// Nodes are treated as immutable once built; rewrites go through Derive.
type Node struct {
	Type   NodeType
	Value  string
	Typ    string // Resolved numeric type, empty when unknown
	Params []*Node
	Meta   []Meta
	Tok    token.Token
}

// MetaKind defines the kind of an annotation attached to a node
type MetaKind int

const (
	MetaTypeCast MetaKind = iota
)

var metaKindNames = map[MetaKind]string{
	MetaTypeCast: "typeCast",
}

var metaKindMap = map[string]MetaKind{
	"typeCast": MetaTypeCast,
}

func (k MetaKind) String() string {
	if name, ok := metaKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func ParseMetaKind(name string) (MetaKind, bool) {
	k, ok := metaKindMap[name]
	return k, ok
}

// Meta is a single annotation recording something a node went through
type Meta struct {
	Kind    MetaKind
	Payload interface{}
}

type TypeCastPayload struct{ To, From string }

// TypeCastMeta records a coercion from one type to another
func TypeCastMeta(to, from string) Meta {
	return Meta{Kind: MetaTypeCast, Payload: TypeCastPayload{To: to, From: from}}
}

// AsTypeCast returns the cast payload when the annotation is a type cast
func (m Meta) AsTypeCast() (TypeCastPayload, bool) {
	if m.Kind != MetaTypeCast {
		return TypeCastPayload{}, false
	}
	p, ok := m.Payload.(TypeCastPayload)
	return p, ok
}

// LastTypeCast returns the most recent cast annotation on the node
func (n *Node) LastTypeCast() (TypeCastPayload, bool) {
	for i := len(n.Meta) - 1; i >= 0; i-- {
		if p, ok := n.Meta[i].AsTypeCast(); ok {
			return p, true
		}
	}
	return TypeCastPayload{}, false
}

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, value, typ string, params ...*Node) *Node {
	return &Node{Type: nodeType, Tok: tok, Value: value, Typ: typ, Params: params}
}

func NewIdentifier(tok token.Token, name, typ string) *Node {
	return newNode(tok, Identifier, name, typ)
}
func NewConstant(tok token.Token, value, typ string) *Node {
	return newNode(tok, Constant, value, typ)
}
func NewType(tok token.Token, name string) *Node {
	return newNode(tok, Type, name, "")
}
func NewPair(tok token.Token, target, typeNode *Node) *Node {
	return newNode(tok, Pair, "", "", target, typeNode)
}
func NewTypeCast(tok token.Token, expr *Node, to string) *Node {
	node := newNode(tok, TypeCast, expr.Value, to, expr)
	node.Meta = []Meta{TypeCastMeta(to, expr.Typ)}
	return node
}
func NewBinaryExpression(tok token.Token, op string, params ...*Node) *Node {
	return newNode(tok, BinaryExpression, op, "", params...)
}
func NewAssignment(tok token.Token, op string, params ...*Node) *Node {
	return newNode(tok, Assignment, op, "", params...)
}
func NewNode(tok token.Token, nodeType NodeType, value string, params ...*Node) *Node {
	return newNode(tok, nodeType, value, "", params...)
}

// --- Derivation ---

// Override changes one field of a derived node
type Override func(*Node)

func WithType(nt NodeType) Override    { return func(n *Node) { n.Type = nt } }
func WithValue(v string) Override      { return func(n *Node) { n.Value = v } }
func WithTyp(typ string) Override      { return func(n *Node) { n.Typ = typ } }
func WithParams(p ...*Node) Override   { return func(n *Node) { n.Params = p } }
func WithMeta(m ...Meta) Override      { return func(n *Node) { n.Meta = m } }
func AppendMeta(m ...Meta) Override    { return func(n *Node) { n.Meta = append(n.Meta, m...) } }
func WithTok(tok token.Token) Override { return func(n *Node) { n.Tok = tok } }

// Derive copies a node, including its Params and Meta slices, and applies the overrides.
// The original node is left untouched.
func Derive(node *Node, overrides ...Override) *Node {
	out := &Node{
		Type:  node.Type,
		Value: node.Value,
		Typ:   node.Typ,
		Tok:   node.Tok,
	}
	if node.Params != nil {
		out.Params = make([]*Node, len(node.Params))
		copy(out.Params, node.Params)
	}
	if node.Meta != nil {
		out.Meta = make([]Meta, len(node.Meta))
		copy(out.Meta, node.Meta)
	}
	for _, o := range overrides {
		o(out)
	}
	return out
}
