// Package treeio reads and writes syntax trees in the formats gwc accepts:
// the printed tree text form and YAML (or JSON) documents.
package treeio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/lexer"
	"github.com/xplshn/gwc/pkg/parser"
	"github.com/xplshn/gwc/pkg/token"
)

type Format int

const (
	FormatTree Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "tree"
}

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "tree", "":
		return FormatTree, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatTree, fmt.Errorf("unknown tree format '%s', expected tree or yaml", name)
}

// FormatOf picks the input format from a file name
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML
	}
	return FormatTree
}

// document is the YAML shape of a node
type document struct {
	Kind   string      `yaml:"kind"`
	Value  string      `yaml:"value,omitempty"`
	Type   string      `yaml:"type,omitempty"`
	Line   int         `yaml:"line,omitempty"`
	Column int         `yaml:"column,omitempty"`
	Meta   []metaEntry `yaml:"meta,omitempty"`
	Params []*document `yaml:"params,omitempty"`
}

type metaEntry struct {
	Kind string `yaml:"kind"`
	To   string `yaml:"to,omitempty"`
	From string `yaml:"from,omitempty"`
}

func toDocument(n *ast.Node) *document {
	if n == nil {
		return nil
	}
	doc := &document{
		Kind:   n.Type.String(),
		Value:  n.Value,
		Type:   n.Typ,
		Line:   n.Tok.Line,
		Column: n.Tok.Column,
	}
	for _, m := range n.Meta {
		entry := metaEntry{Kind: m.Kind.String()}
		if cast, ok := m.AsTypeCast(); ok {
			entry.To, entry.From = cast.To, cast.From
		}
		doc.Meta = append(doc.Meta, entry)
	}
	for _, p := range n.Params {
		doc.Params = append(doc.Params, toDocument(p))
	}
	return doc
}

func fromDocument(doc *document, fileIndex int) (*ast.Node, error) {
	if doc == nil {
		return nil, nil
	}
	kind, ok := ast.ParseNodeType(doc.Kind)
	if !ok {
		return nil, fmt.Errorf("line %d: unknown node kind '%s'", doc.Line, doc.Kind)
	}
	node := &ast.Node{
		Type:  kind,
		Value: doc.Value,
		Typ:   doc.Type,
		Tok:   token.Token{FileIndex: fileIndex, Line: doc.Line, Column: doc.Column, Len: 1},
	}
	for _, entry := range doc.Meta {
		metaKind, ok := ast.ParseMetaKind(entry.Kind)
		if !ok {
			return nil, fmt.Errorf("line %d: unknown annotation '%s'", doc.Line, entry.Kind)
		}
		switch metaKind {
		case ast.MetaTypeCast:
			node.Meta = append(node.Meta, ast.TypeCastMeta(entry.To, entry.From))
		}
	}
	for _, p := range doc.Params {
		child, err := fromDocument(p, fileIndex)
		if err != nil {
			return nil, err
		}
		node.Params = append(node.Params, child)
	}
	return node, nil
}

// Decode reads a YAML or JSON tree document
func Decode(data []byte) (*ast.Node, error) {
	return decode(data, -1)
}

func decode(data []byte, fileIndex int) (*ast.Node, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding tree document: %w", err)
	}
	if doc.Kind == "" {
		return nil, fmt.Errorf("empty tree document")
	}
	return fromDocument(&doc, fileIndex)
}

// Encode renders a tree as a YAML document
func Encode(n *ast.Node) ([]byte, error) {
	data, err := yaml.Marshal(toDocument(n))
	if err != nil {
		return nil, fmt.Errorf("encoding tree document: %w", err)
	}
	return data, nil
}

// Load parses the contents of a named input; fileIndex ends up in every node's token
func Load(name string, data []byte, fileIndex int) (*ast.Node, error) {
	if FormatOf(name) == FormatYAML {
		return decode(data, fileIndex)
	}
	tokens, err := lexer.NewLexer([]rune(string(data)), fileIndex).All()
	if err != nil {
		return nil, err
	}
	return parser.NewParser(tokens).Parse()
}

func ReadFile(path string, fileIndex int) (*ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	return Load(path, data, fileIndex)
}

func Write(w io.Writer, n *ast.Node, f Format) error {
	if f == FormatYAML {
		data, err := Encode(n)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	_, err := fmt.Fprintln(w, ast.PrintNode(n))
	return err
}
