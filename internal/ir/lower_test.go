package ir

import (
	"testing"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/resolve"
	"github.com/btscript/btc/internal/rewrite"
	"github.com/btscript/btc/internal/types"
)

func runChecks(bag *diag.Bag, prog *ast.Program) {
	types.NewChecker(bag).Check(prog)
	types.NewNullChecker(bag).Check(prog)
}

func lowerAgentProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Agent",
		MemberList: []hostmeta.Member{
			{Name: "Health", Type: "Integer"},
			{Name: "MaxHealth", Type: "Float"},
		},
		MethodList: []hostmeta.Method{
			{Name: "Attack", ReturnType: "Status"},
			{Name: "PickSubtree", ReturnType: "Node"},
			{Name: "ComputeScore", Params: []hostmeta.Param{{Name: "n", Type: "Integer"}}, ReturnType: "Float"},
		},
	}
}

func buildLowered(t *testing.T, src string) *Tree {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	resolve.New(lowerAgentProvider(), nil, bag).Resolve(prog)
	runChecks(bag, prog)
	if bag.HasErrors() {
		t.Fatalf("unexpected resolve/check errors: %v", bag.All())
	}
	lw := NewLowerer(NewCounter(1000))
	trees := lw.LowerProgram(prog)
	if len(trees) != 1 {
		t.Fatalf("expected 1 tree, got %d", len(trees))
	}
	return trees[0]
}

func TestLowerActionCallBindsMethodRef(t *testing.T) {
	tr := buildLowered(t, "(tree T (.Attack))")
	action, ok := tr.Body.(*Action)
	if !ok {
		t.Fatalf("expected *Action body, got %T", tr.Body)
	}
	if action.Method.Name != "Attack" || action.Method.DeclaringType != "Agent" {
		t.Fatalf("unexpected method ref: %+v", action.Method)
	}
	if action.IsSubtree {
		t.Fatalf("Attack returns Status, should not be a subtree action")
	}
}

func TestLowerSubtreeActionSetsIsSubtree(t *testing.T) {
	tr := buildLowered(t, "(tree T (.PickSubtree))")
	action, ok := tr.Body.(*Action)
	if !ok {
		t.Fatalf("expected *Action body, got %T", tr.Body)
	}
	if !action.IsSubtree {
		t.Fatalf("PickSubtree returns Node, should be a subtree action")
	}
}

func TestLowerPreservesIdsAndOrigins(t *testing.T) {
	tree, bag := cst.Parse("test", "(tree T (seq (.Attack) (.Attack)))")
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	resolve.New(lowerAgentProvider(), nil, bag).Resolve(prog)
	astSeq := prog.Trees[0].Body.(*ast.Seq)

	lw := NewLowerer(NewCounter(1000))
	trees := lw.LowerProgram(prog)
	irSeq := trees[0].Body.(*Sequence)

	if irSeq.ID() != astSeq.ID() {
		t.Fatalf("expected preserved id %d, got %d", astSeq.ID(), irSeq.ID())
	}
	if irSeq.Origin() != astSeq.Span() {
		t.Fatalf("expected preserved span %+v, got %+v", astSeq.Span(), irSeq.Origin())
	}
}

func TestLowerInsertsConvertForPromotedBinary(t *testing.T) {
	// .Health (Integer) compared against a float literal; set the C6
	// promotion flag by hand since this test isolates lowering alone.
	tree, bag := cst.Parse("test", "(tree T (check (> .Health 1.5)))")
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	resolve.New(lowerAgentProvider(), nil, bag).Resolve(prog)

	check := prog.Trees[0].Body.(*ast.Check)
	bin := check.Cond.(*ast.BinaryExpr)
	bin.PromoteLHS = true
	bin.ResolvedType = types.Bool

	lw := NewLowerer(NewCounter(1000))
	trees := lw.LowerProgram(prog)
	cond := trees[0].Body.(*Condition)
	binIR := cond.Expr.(*Binary)
	conv, ok := binIR.LHS.(*Convert)
	if !ok {
		t.Fatalf("expected LHS to be wrapped in Convert, got %T", binIR.LHS)
	}
	if conv.TargetType.Kind != types.KFloat {
		t.Fatalf("expected conversion target Float, got %v", conv.TargetType)
	}
	if conv.ID() <= 1000 {
		t.Fatalf("expected fresh id above counter seed, got %d", conv.ID())
	}
}
