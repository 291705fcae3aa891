package rewrite

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
)

// expandMacro substitutes macro m's template at the CST level and
// re-lowers the result (§4.4.2). Unlike a defdec, a macro has no
// <body> placeholder convention — it expands to whatever a freestanding
// template produces, in whichever context (node or expression) the
// call site demanded.
func (r *Rewriter) expandMacro(m *ast.Defmacro, dc *ast.DefdecCall, stack []string, nodeContext bool) ast.Node {
	if len(dc.RawArgs) != len(m.Params) {
		r.bag.Errorf(diag.BS0032, dc.Span(),
			"macro %q expects %d argument(s), got %d", m.Name, len(m.Params), len(dc.RawArgs))
		return &ast.ActionCall{Base: dc.Base}
	}

	subst := make(map[string]cst.NodeID, len(m.Params))
	for i, p := range m.Params {
		subst[p] = dc.RawArgs[i]
	}

	cr := cloneWithSubst(r.tree, m.Template, subst, noBodyReplacement)
	if len(cr.unresolvedRefs) > 0 {
		r.bag.Errorf(diag.BS0035, dc.Span(), "macro %q expansion references undefined parameter %q", m.Name, cr.unresolvedRefs[0])
		return &ast.ActionCall{Base: dc.Base}
	}

	if nodeContext {
		expanded := r.lowerer.LowerNode(cr.root)
		return r.walkNode(expanded, stack)
	}
	expanded := r.lowerer.LowerExpr(cr.root)
	return r.walkExpr(expanded, stack)
}
