package cst

import (
	"testing"

	"github.com/btscript/btc/internal/diag"
)

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"(tree T (select (seq (check (< .Health 30)) (.Flee)) (.Patrol)))",
		"(tree T ; comment\n  (select (.Patrol)))",
		"(defdec Guarded (cond) (guard cond <body>))",
		// Trivia past the first trailing newline attaches to the
		// otherwise-discarded EOF token: a second blank line...
		"(tree T (select (.Patrol)))\n\n",
		// ...and a dangling comment on its own final line.
		"(tree T (select (.Patrol)))\n; trailing note\n",
	}
	for _, src := range sources {
		tree, _ := Parse("test", src)
		got := tree.ToFullString(tree.Root)
		if got != src {
			t.Fatalf("round trip mismatch:\n got=%q\nwant=%q", got, src)
		}
	}
}

func TestIdsStrictlyIncreasingInDocumentOrder(t *testing.T) {
	tree, _ := Parse("test", "(tree T (select (.Patrol) (.Flee)))")
	for i := 1; i < len(tree.Nodes); i++ {
		if tree.Nodes[i].ID <= tree.Nodes[i-1].ID {
			t.Fatalf("ids not strictly increasing at %d", i)
		}
	}
}

func TestUnmatchedParenRecovery(t *testing.T) {
	tree, bag := Parse("test", "(tree T (select (.Patrol)")
	if tree.ToFullString(tree.Root) != "(tree T (select (.Patrol)" {
		t.Fatalf("round trip should still hold under recovery")
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0018 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0018 for unmatched paren, got %v", bag.All())
	}
}

func TestStrayCloseParen(t *testing.T) {
	_, bag := Parse("test", "(tree T (.Patrol)))")
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0019 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0019 for stray ')', got %v", bag.All())
	}
}

func TestParallelPolicyParses(t *testing.T) {
	tree, bag := Parse("test", "(tree T (parallel :any (.A) (.B)))")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	// tree -> select-less: body is the parallel node directly
	treeDef := tree.Node(tree.Children(tree.Root)[0])
	body := tree.Children(treeDef.ID)
	if len(body) == 0 {
		t.Fatalf("expected tree body child")
	}
}
