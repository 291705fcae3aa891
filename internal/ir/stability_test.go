package ir

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/resolve"
	"github.com/btscript/btc/internal/rewrite"
)

// Lowering and optimizing the same source from the same counter seed must
// be deterministic, since the query engine's caching (§4.10) assumes that
// recomputing an unchanged input yields an identical tree rather than one
// that merely looks equivalent.
func TestLowerIsDeterministicAcrossRuns(t *testing.T) {
	const src = "(tree T (seq (.Attack) (check (> .Health 1.5)) (.Attack)))"

	run := func() *Tree {
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
		trees := NewLowerer(NewCounter(1000)).LowerProgram(prog)
		return NewOptimizer(NewCounter(1000)).OptimizeTree(trees[0])
	}

	first := run()
	second := run()
	if diff := deep.Equal(first, second); diff != nil {
		t.Fatalf("expected identical lowered+optimized trees, got diff: %v", diff)
	}
}

// Running the optimizer's pass pipeline a second time over its own output
// must be a no-op: every pass rebuilds bottom-up, so a tree with nothing
// left to fold/eliminate/collapse/fuse should come back byte-for-byte
// (field-for-field) identical, not merely isomorphic.
func TestOptimizeTreeIsIdempotent(t *testing.T) {
	tree, bag := cst.Parse("test", "(tree T (seq (.Attack) (.Attack) (.Attack)))")
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

	lowered := NewLowerer(NewCounter(1000)).LowerProgram(prog)[0]
	once := NewOptimizer(NewCounter(1000)).OptimizeTree(lowered)
	twice := NewOptimizer(NewCounter(1000)).OptimizeTree(once)

	if diff := deep.Equal(once, twice); diff != nil {
		t.Fatalf("expected a second optimize pass to be a no-op, got diff: %v", diff)
	}
}
