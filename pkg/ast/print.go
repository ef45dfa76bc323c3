package ast

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

const indentUnit = "  "

// PrintNode renders a subtree in the s-expression form read back by the parser:
//
//	(Kind "value" :typ {typeCast to from} child...)
func PrintNode(node *Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node *Node, depth int) {
	if node == nil {
		sb.WriteString("()")
		return
	}
	sb.WriteByte('(')
	sb.WriteString(node.Type.String())
	if node.Value != "" {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(node.Value))
	}
	if node.Typ != "" {
		sb.WriteString(" :")
		sb.WriteString(atom(node.Typ))
	}
	for _, m := range node.Meta {
		sb.WriteByte(' ')
		printMeta(sb, m)
	}
	for _, p := range node.Params {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(indentUnit, depth+1))
		printNode(sb, p, depth+1)
	}
	sb.WriteByte(')')
}

func printMeta(sb *strings.Builder, m Meta) {
	sb.WriteByte('{')
	sb.WriteString(m.Kind.String())
	if p, ok := m.AsTypeCast(); ok {
		sb.WriteByte(' ')
		sb.WriteString(atom(p.To))
		sb.WriteByte(' ')
		sb.WriteString(atom(p.From))
	}
	sb.WriteByte('}')
}

// atom prints s bare when the lexer would read it back as one identifier
func atom(s string) string {
	if IsBareWord(s) {
		return s
	}
	return strconv.Quote(s)
}

func IsBareWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '.'):
		default:
			return false
		}
	}
	return true
}

// Fingerprint hashes the printed form of a subtree, positions excluded
func Fingerprint(node *Node) uint64 {
	return xxhash.Sum64String(PrintNode(node))
}
