package edit

import (
	"testing"

	"github.com/btscript/btc/internal/cst"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	tree, bag := cst.Parse("test", src)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", bag.All())
	}
	return tree
}

// firstNodeOfKind finds the first node of kind k in document order, a
// convenience for locating a target id without hardcoding NodeIDs
// that shift whenever the fixture source changes.
func firstNodeOfKind(tree *cst.Tree, k cst.Kind) cst.NodeID {
	for i := range tree.Nodes {
		if tree.Nodes[i].Kind == k {
			return cst.NodeID(i)
		}
	}
	return cst.NoParent
}

func TestAddNodeAppendsLastChild(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack)))")
	seq := firstNodeOfKind(tree, cst.KSeq)
	res, err := AddNode("test", tree, seq, 1, "(.Defend)")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	want := "(tree T (seq (.Attack) (.Defend)))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestAddNodeInsertsAtIndex(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Defend)))")
	seq := firstNodeOfKind(tree, cst.KSeq)
	res, err := AddNode("test", tree, seq, 0, "(.Attack)")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	want := "(tree T (seq (.Attack) (.Defend)))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestRemoveNode(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack) (.Defend)))")
	seq := firstNodeOfKind(tree, cst.KSeq)
	children := tree.Children(seq)
	res, err := RemoveNode("test", tree, children[1])
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	want := "(tree T (seq (.Attack)))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestMoveNodeLaterInSameParent(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack) (.Defend) (.Heal)))")
	seq := firstNodeOfKind(tree, cst.KSeq)
	children := tree.Children(seq)
	res, err := MoveNode("test", tree, children[0], seq, 2)
	if err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	want := "(tree T (seq (.Defend) (.Attack) (.Heal)))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestWrapNodeInvert(t *testing.T) {
	tree := parse(t, "(tree T (.Attack))")
	call := firstNodeOfKind(tree, cst.KCall)
	res, err := WrapNode("test", tree, call, "invert")
	if err != nil {
		t.Fatalf("WrapNode: %v", err)
	}
	want := "(tree T (invert (.Attack)))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestUnwrapNodeInvert(t *testing.T) {
	tree := parse(t, "(tree T (invert (.Attack)))")
	invert := firstNodeOfKind(tree, cst.KInvert)
	res, err := UnwrapNode("test", tree, invert)
	if err != nil {
		t.Fatalf("UnwrapNode: %v", err)
	}
	want := "(tree T (.Attack))\n"
	if res.Source != want {
		t.Fatalf("got %q want %q", res.Source, want)
	}
}

func TestRemoveNodeRejectsRoot(t *testing.T) {
	tree := parse(t, "(tree T (.Attack))")
	if _, err := RemoveNode("test", tree, tree.Root); err == nil {
		t.Fatalf("expected an error removing the program root")
	}
}
