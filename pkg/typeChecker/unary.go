package typeChecker

import (
	"github.com/xplshn/gwc/pkg/ast"
)

var patchUnaryExpression = ast.MapNode(ast.Visitor{
	ast.BinaryExpression: patchUnaryBinary,
	ast.Assignment:       patchUnaryAssignment,
})

// PatchUnaryExpression rewrites the single operand expressions the parser
// produces for `-x` and for subtraction shorthand in assignments.
func PatchUnaryExpression(node *ast.Node) *ast.Node {
	return patchUnaryExpression(node)
}

// negativeOne is a -1 constant standing in the position of like
func negativeOne(like *ast.Node) *ast.Node {
	return ast.Derive(like,
		ast.WithType(ast.Constant),
		ast.WithValue("-1"),
		ast.WithParams(),
		ast.WithMeta(),
	)
}

func patchUnaryBinary(binary *ast.Node) *ast.Node {
	if len(binary.Params) != 1 {
		return binary
	}
	target := binary.Params[0]
	if target == nil {
		return binary
	}

	switch binary.Value {
	case "-":
		return ast.Derive(binary,
			ast.WithValue("*"),
			ast.WithParams(target, negativeOne(target)),
		)
	case "=>", "=":
		return binary
	default:
		// An operator missing its left operand, keep the operand
		return target
	}
}

func patchUnaryAssignment(assignment *ast.Node) *ast.Node {
	if len(assignment.Params) != 1 || assignment.Params[0] == nil || len(assignment.Params[0].Params) != 2 {
		return assignment
	}
	rhs, lhs := assignment.Params[0].Params[0], assignment.Params[0].Params[1]
	if lhs == nil {
		return assignment
	}

	negated := ast.Derive(lhs,
		ast.WithType(ast.BinaryExpression),
		ast.WithValue("*"),
		ast.WithParams(lhs, negativeOne(lhs)),
	)
	return ast.Derive(assignment, ast.WithParams(rhs, negated))
}
