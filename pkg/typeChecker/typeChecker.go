package typeChecker

import (
	"github.com/xplshn/gwc/pkg/ast"
	"github.com/xplshn/gwc/pkg/config"
	"github.com/xplshn/gwc/pkg/ir"
	"github.com/xplshn/gwc/pkg/util"
)

// Stats counts the rewrites of every Check run on a TypeChecker
type Stats struct {
	CastsPatched  int
	ImplicitCasts int
	UnaryRewrites int
}

type TypeChecker struct {
	cfg   *config.Config
	stats Stats
	rules rules
}

func NewTypeChecker(cfg *config.Config) *TypeChecker {
	tc := &TypeChecker{cfg: cfg}
	tc.rules = rules{
		explicitCasts: cfg.IsFeatureEnabled(config.FeatTypeCasts),
		onPatch:       tc.castPatched,
		onImplicit:    tc.implicitCast,
	}
	return tc
}

func (tc *TypeChecker) Stats() Stats { return tc.stats }

func (tc *TypeChecker) castPatched(cast *ast.Node, to, from string) {
	tc.stats.CastsPatched++
	if ir.IsNarrowing(from, to) {
		util.Warn(tc.cfg, config.WarnNarrowingCast, cast.Tok, "narrowing cast of '%s' from '%s' to '%s' %s", cast.Value, from, to, narrowingLoss(from, to))
	}
}

func narrowingLoss(from, to string) string {
	src, dst := ir.GetType(from), ir.GetType(to)
	switch {
	case ir.IsFloat(src) && ir.IsInteger(dst):
		return "drops the fractional part"
	case ir.SizeOfType(dst) < ir.SizeOfType(src):
		return "loses range"
	}
	return "loses precision"
}

func (tc *TypeChecker) implicitCast(cast *ast.Node, to, from string) {
	tc.stats.ImplicitCasts++
	util.Warn(tc.cfg, config.WarnImplicitCast, cast.Tok, "'%s' implicitly converted from '%s' to '%s'", cast.Value, from, to)
}

// Check normalizes unary forms, then balances every arithmetic expression from
// the leaves up. The first error aborts the whole tree.
func (tc *TypeChecker) Check(root *ast.Node) (*ast.Node, error) {
	if root == nil {
		return nil, nil
	}
	if tc.cfg.IsFeatureEnabled(config.FeatUnaryPatch) {
		root = tc.patchUnary(root)
	}

	switch {
	case tc.cfg.IsFeatureEnabled(config.FeatImplicitCasts):
		return tc.checkNode(root)
	case tc.cfg.IsFeatureEnabled(config.FeatTypeCasts):
		return tc.rules.patchTypeCasts(root), nil
	}
	return root, nil
}

// patchUnary repeats the rewrite while it makes progress: a collapsed
// one-operand expression hands back its operand without mapping it.
func (tc *TypeChecker) patchUnary(root *ast.Node) *ast.Node {
	before := countUnaryForms(root)
	for before > 0 {
		root = PatchUnaryExpression(root)
		after := countUnaryForms(root)
		if after >= before {
			break
		}
		tc.stats.UnaryRewrites += before - after
		before = after
	}
	return root
}

// countUnaryForms counts the shapes PatchUnaryExpression rewrites
func countUnaryForms(root *ast.Node) int {
	count := 0
	ast.Walk(root, func(n *ast.Node) bool {
		switch n.Type {
		case ast.BinaryExpression:
			if len(n.Params) == 1 && n.Params[0] != nil && n.Value != "=>" && n.Value != "=" {
				count++
			}
		case ast.Assignment:
			if len(n.Params) == 1 && n.Params[0] != nil && len(n.Params[0].Params) == 2 && n.Params[0].Params[1] != nil {
				count++
			}
		}
		return true
	})
	return count
}

func (tc *TypeChecker) checkNode(node *ast.Node) (*ast.Node, error) {
	if node == nil {
		return nil, nil
	}

	var params []*ast.Node
	if node.Params != nil {
		params = make([]*ast.Node, len(node.Params))
		for i, child := range node.Params {
			checked, err := tc.checkNode(child)
			if err != nil {
				return nil, err
			}
			params[i] = checked
		}
	}
	node = ast.Derive(node, ast.WithParams(params...))

	switch node.Type {
	case ast.Pair:
		tc.checkUntypedPair(node)
		return tc.rules.balance(node)
	case ast.BinaryExpression:
		return tc.rules.balance(node)
	}
	return node, nil
}

// checkUntypedPair flags `x : type` pairs that stay pairs because x has no type
func (tc *TypeChecker) checkUntypedPair(pair *ast.Node) {
	if !tc.rules.explicitCasts || len(pair.Params) < 2 || pair.Params[0] == nil || pair.Params[1] == nil {
		return
	}
	target, typeNode := pair.Params[0], pair.Params[1]
	if typeNode.Type == ast.Type && typeNode.Value != "" && target.Typ == "" {
		util.Warn(tc.cfg, config.WarnExtra, pair.Tok, "'%s' has no type to cast to '%s' from, pair left as is", target.Value, typeNode.Value)
	}
}
