package resolve

import (
	"testing"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/rewrite"
)

func agentProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Agent",
		MemberList: []hostmeta.Member{
			{Name: "Health", Type: "float64"},
			{Name: "Target", Type: "Entity", Nullable: true},
			{Name: "OldFlag", Type: "bool", Obsolete: true},
		},
		MethodList: []hostmeta.Method{
			{Name: "Attack", ReturnType: "Status"},
			{Name: "Flee", ReturnType: "Status"},
			{Name: "MoveTo", Params: []hostmeta.Param{{Name: "x", Type: "float64"}, {Name: "y", Type: "float64"}}, ReturnType: "Status"},
			{Name: "MoveTo", Params: []hostmeta.Param{{Name: "pos", Type: "Vector2"}}, ReturnType: "Status"},
		},
	}
}

func blackboardProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Blackboard",
		MemberList: []hostmeta.Member{
			{Name: "EnemyCount", Type: "int"},
		},
	}
}

func lowerExpandResolve(t *testing.T, src string, ctx, bb hostmeta.Provider) (*ast.Program, *diag.Bag) {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	prog := ast.Lower(tree, bag)
	rewrite.Expand(prog, tree, bag)
	New(ctx, bb, bag).Resolve(prog)
	return prog, bag
}

func TestResolveMemberAccessExact(t *testing.T) {
	src := "(tree T (guard (!= .Health 0) (.Attack)))"
	prog, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	guard := prog.Trees[0].Body.(*ast.Guard)
	bin := guard.Cond.(*ast.BinaryExpr)
	mem := bin.LHS.(*ast.MemberAccess)
	if mem.ResolvedSymbol == nil || mem.ResolvedSymbol.Member == nil || mem.ResolvedSymbol.Member.Name != "Health" {
		t.Fatalf("expected Health member resolved, got %+v", mem.ResolvedSymbol)
	}
}

func TestResolveActionCallBindsMethod(t *testing.T) {
	src := "(tree T (.Attack))"
	prog, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	call := prog.Trees[0].Body.(*ast.ActionCall)
	if call.ResolvedSymbol == nil || call.ResolvedSymbol.Method == nil || call.ResolvedSymbol.Method.Name != "Attack" {
		t.Fatalf("expected Attack method resolved, got %+v", call.ResolvedSymbol)
	}
}

func TestResolveUnknownMemberEmitsBS0001(t *testing.T) {
	src := "(tree T (guard (!= .Nope 0) (.Attack)))"
	_, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0001 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0001, got %v", bag.All())
	}
}

func TestResolveObsoleteMemberEmitsBS0010(t *testing.T) {
	src := "(tree T (guard (!= .OldFlag false) (.Attack)))"
	_, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0010 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0010, got %v", bag.All())
	}
}

func TestResolveOverloadNarrowedByArity(t *testing.T) {
	src := "(tree T (.MoveTo 1.0 2.0))"
	prog, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	call := prog.Trees[0].Body.(*ast.ActionCall)
	if call.ResolvedSymbol == nil || call.ResolvedSymbol.Method == nil || len(call.ResolvedSymbol.Method.Params) != 2 {
		t.Fatalf("expected 2-arg MoveTo overload resolved, got %+v", call.ResolvedSymbol)
	}
}

func TestResolveBlackboardWithoutDeclaredTypeEmitsBS0028(t *testing.T) {
	src := "(tree T (guard (!= $EnemyCount 0) (.Attack)))"
	_, bag := lowerExpandResolve(t, src, agentProvider(), nil)
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0028 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0028, got %v", bag.All())
	}
}

func TestResolveBlackboardWithDeclaredType(t *testing.T) {
	src := "(tree T (guard (!= $EnemyCount 0) (.Attack)))"
	prog, bag := lowerExpandResolve(t, src, agentProvider(), blackboardProvider())
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	guard := prog.Trees[0].Body.(*ast.Guard)
	bin := guard.Cond.(*ast.BinaryExpr)
	bb := bin.LHS.(*ast.BlackboardAccess)
	if bb.ResolvedSymbol == nil || bb.ResolvedSymbol.Member == nil || bb.ResolvedSymbol.Member.Name != "EnemyCount" {
		t.Fatalf("expected EnemyCount member resolved, got %+v", bb.ResolvedSymbol)
	}
}
