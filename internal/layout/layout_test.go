package layout

import (
	"testing"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/ir"
	"github.com/btscript/btc/internal/resolve"
	"github.com/btscript/btc/internal/rewrite"
	"github.com/btscript/btc/internal/types"
)

func layoutAgentProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Agent",
		MemberList: []hostmeta.Member{
			{Name: "Health", Type: "Integer"},
		},
		MethodList: []hostmeta.Method{
			{Name: "Attack", ReturnType: "Status"},
		},
	}
}

func buildIR(t *testing.T, src string) (*ir.Tree, *diag.Bag) {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	resolve.New(layoutAgentProvider(), nil, bag).Resolve(prog)
	types.NewChecker(bag).Check(prog)
	types.NewNullChecker(bag).Check(prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected resolve/check errors: %v", bag.All())
	}
	lw := ir.NewLowerer(ir.NewCounter(len(tree.Nodes)))
	trees := lw.LowerProgram(prog)
	return trees[0], bag
}

func TestBuildGuardLabel(t *testing.T) {
	irTree, bag := buildIR(t, "(tree T (guard (> .Health 0) (.Attack)))")
	root := Build(irTree, bag.All())
	if root.Tag != TagGuard {
		t.Fatalf("expected root tag guard, got %s", root.Tag)
	}
	if root.Label != "> .Health 0" {
		t.Fatalf("unexpected label: %q", root.Label)
	}
	if len(root.Children) != 1 || root.Children[0].Tag != TagAction {
		t.Fatalf("expected one action child, got %+v", root.Children)
	}
	if root.Children[0].Label != "Attack()" {
		t.Fatalf("unexpected action label: %q", root.Children[0].Label)
	}
}

func TestBuildPreservesOriginSpans(t *testing.T) {
	irTree, bag := buildIR(t, "(tree T (.Attack))")
	root := Build(irTree, bag.All())
	if root.Origin != irTree.Body.Origin() {
		t.Fatalf("expected root origin to match ir node origin")
	}
}

func TestBuildAttachesDiagnosticToNarrowestNode(t *testing.T) {
	irTree, bag := buildIR(t, "(tree T (seq (.Attack) (.Attack)))")
	d := diag.Diagnostic{Code: diag.BS0001, Severity: diag.Warning, Span: irTree.Body.(*ir.Sequence).Children[1].Origin()}
	root := Build(irTree, append(bag.All(), d))
	if len(root.Diagnostics) != 0 {
		t.Fatalf("expected the diagnostic to attach to the narrower child, not the sequence root")
	}
	second := root.Children[1]
	if len(second.Diagnostics) != 1 {
		t.Fatalf("expected the second action to own the diagnostic, got %+v", second.Diagnostics)
	}
}
