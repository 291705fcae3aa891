package rewrite

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
)

// expandDefdec applies defdec d at call site dc (§4.4.1): the call's
// leading arguments substitute for d's declared parameters wherever
// they appear inside the template body, and the call's trailing
// argument replaces the template's single <body> placeholder.
func (r *Rewriter) expandDefdec(d *ast.Defdec, dc *ast.DefdecCall, stack []string) ast.Node {
	if len(dc.RawArgs) != len(d.Params)+1 {
		r.bag.Errorf(diag.BS0024, dc.Span(),
			"defdec %q expects %d argument(s) plus a body, got %d", d.Name, len(d.Params), len(dc.RawArgs))
		return &ast.ActionCall{Base: dc.Base}
	}

	placeholders := countBodyPlaceholders(r.tree, d.Body.CSTOrigin())
	if placeholders == 0 {
		r.bag.Errorf(diag.BS0026, d.Span(), "defdec %q has no <body> placeholder", d.Name)
		return &ast.ActionCall{Base: dc.Base}
	}
	if placeholders > 1 {
		r.bag.Errorf(diag.BS0027, d.Span(), "defdec %q has more than one <body> placeholder", d.Name)
		return &ast.ActionCall{Base: dc.Base}
	}

	subst := make(map[string]cst.NodeID, len(d.Params))
	for i, p := range d.Params {
		subst[p] = dc.RawArgs[i]
	}
	bodyArg := dc.RawArgs[len(d.Params)]

	cr := cloneWithSubst(r.tree, d.Body.CSTOrigin(), subst, bodyArg)
	if len(cr.unresolvedRefs) > 0 {
		r.bag.Errorf(diag.BS0023, dc.Span(), "defdec %q references undefined parameter %q", d.Name, cr.unresolvedRefs[0])
		return &ast.ActionCall{Base: dc.Base}
	}

	expanded := r.lowerer.LowerNode(cr.root)
	return r.walkNode(expanded, stack)
}
