package rewrite

import (
	"testing"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
)

func lowerAndExpand(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	Expand(prog, tree, bag)
	return prog, bag
}

func TestDefdecExpansionSubstitutesParamAndBody(t *testing.T) {
	src := "(defdec Guarded (cond) (guard cond <body>))" +
		"(tree T (Guarded (!= .Target null) (.Attack)))"
	prog, bag := lowerAndExpand(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	guard, ok := prog.Trees[0].Body.(*ast.Guard)
	if !ok {
		t.Fatalf("expected *ast.Guard after expansion, got %T", prog.Trees[0].Body)
	}
	bin, ok := guard.Cond.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.OpNe {
		t.Fatalf("expected substituted (!= .Target null) cond, got %#v", guard.Cond)
	}
	if _, ok := guard.Body.(*ast.ActionCall); !ok {
		t.Fatalf("expected substituted body action call, got %T", guard.Body)
	}
}

func TestDefdecArityMismatch(t *testing.T) {
	src := "(defdec Guarded (cond) (guard cond <body>))" +
		"(tree T (Guarded (.Attack)))"
	_, bag := lowerAndExpand(t, src)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0024 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0024 arity mismatch, got %v", bag.All())
	}
}

func TestUndefinedDefdecName(t *testing.T) {
	src := "(tree T (Nonexistent (.Attack)))"
	_, bag := lowerAndExpand(t, src)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0023 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0023, got %v", bag.All())
	}
}

func TestMacroExpansionSubstitutes(t *testing.T) {
	src := "(defmacro Double (x) (seq x x))" +
		"(tree T (Double (.Patrol)))"
	prog, bag := lowerAndExpand(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	seq, ok := prog.Trees[0].Body.(*ast.Seq)
	if !ok {
		t.Fatalf("expected *ast.Seq after macro expansion, got %T", prog.Trees[0].Body)
	}
	if len(seq.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(seq.Children))
	}
	for _, c := range seq.Children {
		if _, ok := c.(*ast.ActionCall); !ok {
			t.Fatalf("expected ActionCall child, got %T", c)
		}
	}
}

func TestMacroArityMismatch(t *testing.T) {
	src := "(defmacro Double (x) (seq x x))" +
		"(tree T (Double (.A) (.B)))"
	_, bag := lowerAndExpand(t, src)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0032 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0032 macro arity mismatch, got %v", bag.All())
	}
}

func TestCrossTreeRefResolvesWithinSameFile(t *testing.T) {
	src := "(tree A (select (ref B) (.Patrol)))" +
		"(tree B (seq (.Attack)))"
	prog, bag := lowerAndExpand(t, src)
	w := &World{Files: map[string]*ast.Program{"f": prog}, ImportsOf: map[string][]string{}}
	ResolveCrossTree("f", w, bag)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	sel := prog.Trees[0].Body.(*ast.Select)
	ref := sel.Children[0].(*ast.Ref)
	if ref.ResolvedTree == nil || ref.ResolvedTree.Name != "B" {
		t.Fatalf("expected ref resolved to tree B, got %+v", ref.ResolvedTree)
	}
}

func TestCrossTreeRefUnresolvedEmitsBS0038(t *testing.T) {
	src := "(tree A (ref Missing))"
	prog, bag := lowerAndExpand(t, src)
	w := &World{Files: map[string]*ast.Program{"f": prog}, ImportsOf: map[string][]string{}}
	ResolveCrossTree("f", w, bag)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0038 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0038, got %v", bag.All())
	}
}
