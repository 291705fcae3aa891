package types

import (
	"testing"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/resolve"
	"github.com/btscript/btc/internal/rewrite"
)

func agentProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Agent",
		MemberList: []hostmeta.Member{
			{Name: "Health", Type: "Float"},
			{Name: "Target", Type: "Entity", Nullable: true},
		},
		MethodList: []hostmeta.Method{
			{Name: "Attack", ReturnType: "Status"},
			{Name: "ComputeScore", Params: []hostmeta.Param{{Name: "n", Type: "Integer"}}, ReturnType: "Float"},
			{Name: "BadAction", ReturnType: ""},
		},
	}
}

func build(t *testing.T, src string) (*ast.Program, *diag.Bag) {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	resolve.New(agentProvider(), nil, bag).Resolve(prog)
	NewChecker(bag).Check(prog)
	return prog, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestGuardConditionMustBeBool(t *testing.T) {
	_, bag := build(t, "(tree T (guard .Health (.Attack)))")
	if !hasCode(bag, diag.BS0007) {
		t.Fatalf("expected BS0007, got %v", bag.All())
	}
}

func TestComparisonPromotesIntToFloat(t *testing.T) {
	prog, bag := build(t, "(tree T (guard (> .Health 10) (.Attack)))")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	guard := prog.Trees[0].Body.(*ast.Guard)
	bin := guard.Cond.(*ast.BinaryExpr)
	if !bin.PromoteRHS {
		t.Fatalf("expected int literal RHS to be flagged for promotion, got %+v", bin)
	}
	if !bin.ResolvedType.IsBool() {
		t.Fatalf("expected comparison to yield bool, got %s", bin.ResolvedType)
	}
}

func TestRepeatCountMustBePositiveIntLiteral(t *testing.T) {
	_, bag := build(t, "(tree T (repeat 0 (.Attack)))")
	if !hasCode(bag, diag.BS0013) {
		t.Fatalf("expected BS0013, got %v", bag.All())
	}
}

func TestCompositeRequiresTwoChildren(t *testing.T) {
	_, bag := build(t, "(tree T (select (.Attack)))")
	if !hasCode(bag, diag.BS0015) {
		t.Fatalf("expected BS0015, got %v", bag.All())
	}
}

func TestActionMustReturnStatusOrNode(t *testing.T) {
	_, bag := build(t, "(tree T (.BadAction))")
	if !hasCode(bag, diag.BS0008) {
		t.Fatalf("expected BS0008, got %v", bag.All())
	}
}

func TestArgumentArityMismatch(t *testing.T) {
	_, bag := build(t, "(tree T (guard (!= (.ComputeScore) 0.0) (.Attack)))")
	if !hasCode(bag, diag.BS0005) {
		t.Fatalf("expected BS0005, got %v", bag.All())
	}
}

func TestCascadeSuppressionNoSecondaryDiagnostic(t *testing.T) {
	// .Nope is unknown (BS0001 from the resolver); the guard condition
	// built on top of it must not also report BS0007.
	_, bag := build(t, "(tree T (guard .Nope (.Attack)))")
	if !hasCode(bag, diag.BS0001) {
		t.Fatalf("expected BS0001, got %v", bag.All())
	}
	if hasCode(bag, diag.BS0007) {
		t.Fatalf("cascade suppression failed, got secondary BS0007: %v", bag.All())
	}
}
