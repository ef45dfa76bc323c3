package typeChecker

import (
	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/ir"
)

// IsBinaryMathExpression reports whether the node's operator is arithmetic or a comparison
func IsBinaryMathExpression(node *ast.Node) bool {
	if node == nil {
		return false
	}
	switch node.Value {
	case "+", "-", "/", "*", "%", "==", ">", "<", ">=", "<=", "!=":
		return true
	default:
		return false
	}
}

// TypeWeight orders the primitive types for widening; unknown types weigh -1
func TypeWeight(typ string) int { return ir.Weight(typ) }

// BalanceTypesInMathExpression resolves explicit casts in expr and widens every
// operand to the heaviest operand type. Pairs are patched into casts and any
// expression that is not arithmetic is returned unchanged. Nested expressions
// are expected to be balanced already.
func BalanceTypesInMathExpression(expr *ast.Node) (*ast.Node, error) {
	return defaultRules.balance(expr)
}

func (r rules) balance(expr *ast.Node) (*ast.Node, error) {
	if expr == nil {
		return nil, nil
	}
	if expr.Type == ast.Pair {
		if !r.explicitCasts {
			return expr, nil
		}
		return r.patchTypeCasts(expr), nil
	}
	if !IsBinaryMathExpression(expr) {
		return expr, nil
	}

	patched := expr
	if r.explicitCasts {
		patched = r.patchTypeCasts(expr)
	}

	dominant := dominantType(patched.Params)
	if dominant == "" {
		return nil, &TypeError{Kind: MissingDominantType, Tok: patched.Tok, Node: ast.PrintNode(patched)}
	}

	params := make([]*ast.Node, len(patched.Params))
	for i, child := range patched.Params {
		if child != nil && child.Typ == dominant {
			params[i] = child
			continue
		}
		if child == nil || child.Typ == "" {
			tok := patched.Tok
			if child != nil {
				tok = child.Tok
			}
			return nil, &TypeError{Kind: MissingOperandType, Tok: tok, Node: ast.PrintNode(child)}
		}

		cast := ast.Derive(child,
			ast.WithType(ast.TypeCast),
			ast.WithTyp(dominant),
			ast.AppendMeta(ast.TypeCastMeta(dominant, child.Typ)),
			ast.WithParams(child),
		)
		if r.onImplicit != nil {
			r.onImplicit(cast, dominant, child.Typ)
		}
		params[i] = cast
	}

	return ast.Derive(patched, ast.WithParams(params...), ast.WithTyp(dominant)), nil
}

// dominantType picks the heaviest operand type, the first one seen on ties
func dominantType(params []*ast.Node) string {
	dominant := ""
	for _, child := range params {
		if child == nil {
			continue
		}
		if TypeWeight(dominant) < TypeWeight(child.Typ) {
			dominant = child.Typ
		}
	}
	return dominant
}
