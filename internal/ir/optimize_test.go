package ir

import (
	"testing"

	"github.com/btscript/btc/internal/lexer"
	"github.com/btscript/btc/internal/types"
)

func intLit(id int, v int64) *Literal {
	return &Literal{base: base{Id: id, Typ: types.Int}, Kind: LitInt, IntValue: v}
}

func floatLit(id int, v float64) *Literal {
	return &Literal{base: base{Id: id, Typ: types.Float}, Kind: LitFloat, FloatValue: v}
}

func boolLit(id int, v bool) *Literal {
	return &Literal{base: base{Id: id, Typ: types.Bool}, Kind: LitBool, BoolValue: v}
}

func action(id int, name string) *Action {
	return &Action{base: base{Id: id, Typ: types.Status}, Method: MethodRef{DeclaringType: "Agent", Name: name}}
}

// condLit builds the shape a folded `check` form actually takes: a
// *Condition wrapping a bare boolean *Literal, never a bare literal
// sitting directly among a composite's children.
func condLit(id, exprID int, v bool) *Condition {
	return &Condition{base: base{Id: id, Typ: types.Bool}, Expr: boolLit(exprID, v)}
}

func TestFoldConstantsArithmetic(t *testing.T) {
	bin := &Binary{base: base{Id: 1, Typ: types.Int}, Op: OpAdd, LHS: intLit(2, 2), RHS: intLit(3, 3)}
	o := NewOptimizer(NewCounter(10))
	folded := o.foldConstants(bin)
	lit, ok := folded.(*Literal)
	if !ok || lit.Kind != LitInt || lit.IntValue != 5 {
		t.Fatalf("expected folded literal 5, got %+v", folded)
	}
}

func TestFoldConstantsComparison(t *testing.T) {
	bin := &Binary{base: base{Id: 1}, Op: OpGt, LHS: floatLit(2, 3.0), RHS: floatLit(3, 1.0)}
	o := NewOptimizer(NewCounter(10))
	folded := o.foldConstants(bin)
	lit, ok := folded.(*Literal)
	if !ok || lit.Kind != LitBool || !lit.BoolValue {
		t.Fatalf("expected folded literal true, got %+v", folded)
	}
}

func TestEliminateDeadSequenceTruncatesAtFalse(t *testing.T) {
	seq := &Sequence{base: base{Id: 1}, Children: []Node{
		action(2, "Step1"),
		condLit(3, 30, false),
		action(4, "Step2"),
	}}
	o := NewOptimizer(NewCounter(10))
	out := o.eliminateDead(seq).(*Sequence)
	if len(out.Children) != 2 {
		t.Fatalf("expected truncation to 2 children, got %d", len(out.Children))
	}
}

func TestEliminateDeadSelectorTruncatesAtTrue(t *testing.T) {
	sel := &Selector{base: base{Id: 1}, Children: []Node{
		action(2, "Step1"),
		condLit(3, 30, true),
		action(4, "Step2"),
	}}
	o := NewOptimizer(NewCounter(10))
	out := o.eliminateDead(sel).(*Selector)
	if len(out.Children) != 2 {
		t.Fatalf("expected truncation to 2 children, got %d", len(out.Children))
	}
}

// The real pipeline only ever produces a condition-wrapped literal
// after foldConstants already ran (a `check` whose expression folded to
// a constant) — eliminateDead never sees a bare Literal child. This
// drives both passes in the pipeline's own order to prove truncation
// actually fires on that shape, not just on a hand-wired *Condition.
func TestEliminateDeadFiresAfterFoldingRealCheckShape(t *testing.T) {
	cond := &Condition{base: base{Id: 3}, Expr: &Literal{base: base{Id: 30, Typ: types.Bool}, Kind: LitBool, BoolValue: false}}
	seq := &Sequence{base: base{Id: 1}, Children: []Node{
		action(2, "Step1"),
		cond,
		action(4, "Step2"),
	}}
	o := NewOptimizer(NewCounter(10))
	folded := o.foldConstants(seq)
	out := o.eliminateDead(folded).(*Sequence)
	if len(out.Children) != 2 {
		t.Fatalf("expected truncation to 2 children after folding, got %d", len(out.Children))
	}
}

func TestCollapseSingleChildSelector(t *testing.T) {
	only := action(2, "Step1")
	sel := &Selector{base: base{Id: 1}, Children: []Node{only}}
	o := NewOptimizer(NewCounter(10))
	out := o.collapseSingleChild(sel)
	if out != Node(only) {
		t.Fatalf("expected collapse to the single child, got %+v", out)
	}
}

func TestCollapseDoubleInvertCancels(t *testing.T) {
	inner := action(3, "Step1")
	outer := &Invert{base: base{Id: 2}, Child: &Invert{base: base{Id: 1}, Child: inner}}
	o := NewOptimizer(NewCounter(10))
	out := o.collapseSingleChild(outer)
	if out != Node(inner) {
		t.Fatalf("expected double invert to cancel to inner child, got %+v", out)
	}
}

func TestFuseConvertsCollapsesNestedSameTarget(t *testing.T) {
	load := &MemberLoad{base: base{Id: 2, Typ: types.Int}, Member: MemberRef{Segments: []string{"Health"}}}
	inner := &Convert{base: base{Id: 1}, Operand: load, TargetType: types.Float}
	outer := &Convert{base: base{Id: 3}, Operand: inner, TargetType: types.Float}
	o := NewOptimizer(NewCounter(10))
	out := o.fuseConverts(outer).(*Convert)
	if out.Operand != Node(load) {
		t.Fatalf("expected fused convert to skip the intermediate node, got %+v", out.Operand)
	}
}

func TestFuseConvertsFoldsIntLiteralToFloat(t *testing.T) {
	conv := &Convert{base: base{Id: 1}, Operand: intLit(2, 4), TargetType: types.Float}
	o := NewOptimizer(NewCounter(10))
	out := o.fuseConverts(conv)
	lit, ok := out.(*Literal)
	if !ok || lit.Kind != LitFloat || lit.FloatValue != 4.0 {
		t.Fatalf("expected folded float literal 4.0, got %+v", out)
	}
}

func TestOptimizeTreePreservesUntouchedNodeIds(t *testing.T) {
	act := action(5, "Step1")
	tr := &Tree{base: base{Id: 1, Sp: lexer.Span{}}, Name: "T", Body: act}
	o := NewOptimizer(NewCounter(100))
	out := o.OptimizeTree(tr)
	if out.Body.ID() != 5 {
		t.Fatalf("expected untouched action to keep id 5, got %d", out.Body.ID())
	}
}
