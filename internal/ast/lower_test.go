package ast

import (
	"testing"

	"github.com/btscript/btc/internal/cst"
)

func lowerSource(t *testing.T, src string) *Program {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	return Lower(tree, bag)
}

func TestLowerBareMemberInNodePositionIsActionCall(t *testing.T) {
	prog := lowerSource(t, "(tree T (select (.Patrol) (.Flee)))")
	sel, ok := prog.Trees[0].Body.(*Select)
	if !ok {
		t.Fatalf("expected *Select body, got %T", prog.Trees[0].Body)
	}
	for _, c := range sel.Children {
		ac, ok := c.(*ActionCall)
		if !ok {
			t.Fatalf("expected *ActionCall, got %T", c)
		}
		if len(ac.Args) != 0 {
			t.Fatalf("expected zero-arg action call, got %d args", len(ac.Args))
		}
	}
}

func TestLowerMemberAccessInExpressionPosition(t *testing.T) {
	prog := lowerSource(t, "(tree T (check (< .Health 30)))")
	check, ok := prog.Trees[0].Body.(*Check)
	if !ok {
		t.Fatalf("expected *Check, got %T", prog.Trees[0].Body)
	}
	bin, ok := check.Cond.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected *BinaryExpr cond, got %T", check.Cond)
	}
	ma, ok := bin.LHS.(*MemberAccess)
	if !ok {
		t.Fatalf("expected *MemberAccess LHS, got %T", bin.LHS)
	}
	if len(ma.Path) != 1 || ma.Path[0] != "Health" {
		t.Fatalf("unexpected path: %v", ma.Path)
	}
	lit, ok := bin.RHS.(*Literal)
	if !ok || lit.Kind != LitInt || lit.IntValue != 30 {
		t.Fatalf("unexpected RHS: %#v", bin.RHS)
	}
}

func TestLowerParallelWithNPolicy(t *testing.T) {
	prog := lowerSource(t, "(tree T (parallel :n 2 (.A) (.B) (.C)))")
	par, ok := prog.Trees[0].Body.(*Parallel)
	if !ok {
		t.Fatalf("expected *Parallel, got %T", prog.Trees[0].Body)
	}
	if par.Policy != ParallelN {
		t.Fatalf("expected ParallelN policy")
	}
	if par.N == nil {
		t.Fatalf("expected N operand to be set")
	}
	if lit, ok := par.N.(*Literal); !ok || lit.IntValue != 2 {
		t.Fatalf("expected N literal 2, got %#v", par.N)
	}
	if len(par.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(par.Children))
	}
}

func TestLowerDefdecBodyPlaceholder(t *testing.T) {
	prog := lowerSource(t, "(defdec Guarded (cond) (guard cond <body>))")
	if len(prog.Defdecs) != 1 {
		t.Fatalf("expected one defdec, got %d", len(prog.Defdecs))
	}
	d := prog.Defdecs[0]
	if d.Name != "Guarded" || len(d.Params) != 1 || d.Params[0] != "cond" {
		t.Fatalf("unexpected defdec header: %+v", d)
	}
	guard, ok := d.Body.(*Guard)
	if !ok {
		t.Fatalf("expected *Guard body, got %T", d.Body)
	}
	if _, ok := guard.Body.(*BodyPlaceholder); !ok {
		t.Fatalf("expected BodyPlaceholder, got %T", guard.Body)
	}
}

func TestLowerEnumLiteral(t *testing.T) {
	prog := lowerSource(t, "(tree T (check (= ::Status.Success ::Status.Success)))")
	check := prog.Trees[0].Body.(*Check)
	bin := check.Cond.(*BinaryExpr)
	lit, ok := bin.LHS.(*Literal)
	if !ok || lit.Kind != LitEnum || lit.EnumType != "Status" || lit.EnumMember != "Success" {
		t.Fatalf("unexpected enum literal: %#v", bin.LHS)
	}
}
