package typeChecker

import (
	"github.com/xplshn/gwc/pkg/ast"
)

// castHook observes a cast as it is introduced; node is the resulting TypeCast
type castHook func(node *ast.Node, to, from string)

// rules carries the switches shared by the patcher and the balancer
type rules struct {
	explicitCasts bool
	onPatch       castHook
	onImplicit    castHook
}

var defaultRules = rules{explicitCasts: true}

// PatchTypeCasts turns every `target : Type` pair in the subtree into a TypeCast node
func PatchTypeCasts(node *ast.Node) *ast.Node {
	return defaultRules.patchTypeCasts(node)
}

func (r rules) patchTypeCasts(node *ast.Node) *ast.Node {
	return ast.MapNode(ast.Visitor{ast.Pair: r.patchPair})(node)
}

// patchPair leaves a pair alone unless the target has a type and the second
// half names one; object entries such as `key: value` fall through here.
func (r rules) patchPair(pair *ast.Node) *ast.Node {
	if len(pair.Params) < 2 {
		return pair
	}
	target, typeNode := pair.Params[0], pair.Params[1]
	if target == nil || typeNode == nil {
		return pair
	}
	from, to := target.Typ, typeNode.Value
	if typeNode.Type != ast.Type || from == "" || to == "" {
		return pair
	}

	// The type node is dropped, it has no runtime representation
	cast := ast.Derive(pair,
		ast.WithType(ast.TypeCast),
		ast.WithTyp(to),
		ast.WithValue(target.Value),
		ast.AppendMeta(ast.TypeCastMeta(to, from)),
		ast.WithParams(target),
	)
	if r.onPatch != nil {
		r.onPatch(cast, to, from)
	}
	return cast
}
