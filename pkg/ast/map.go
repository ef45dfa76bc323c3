package ast

// AnyNode keys a Visitor entry that applies to every kind
const AnyNode NodeType = -1

// MapFunc rewrites a single node without descending into it
type MapFunc func(*Node) *Node

// Visitor maps node kinds to their rewrite
type Visitor map[NodeType]MapFunc

// MapNode returns a function applying the visitor across a whole subtree.
// Each node is rewritten before its children; the children of the rewritten
// node are then mapped in turn and attached to a fresh copy.
func MapNode(v Visitor) func(*Node) *Node {
	var mapper func(*Node) *Node
	mapper = func(node *Node) *Node {
		if node == nil {
			return nil
		}

		mapped := node
		if fn, ok := v[AnyNode]; ok {
			mapped = fn(mapped)
		} else if fn, ok := v[node.Type]; ok {
			mapped = fn(mapped)
		}
		if mapped == nil {
			return nil
		}

		params := make([]*Node, len(mapped.Params))
		for i, p := range mapped.Params {
			params[i] = mapper(p)
		}
		return Derive(mapped, WithParams(params...))
	}
	return mapper
}

// Walk calls fn for every node in the subtree, parents before children.
// Returning false from fn skips the node's children.
func Walk(node *Node, fn func(*Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, p := range node.Params {
		Walk(p, fn)
	}
}
