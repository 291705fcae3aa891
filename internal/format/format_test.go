package format

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

func TestFlatRenderingWithinWidth(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack) (.Defend)))")
	got := New(tree, DefaultWidth, DefaultIndent).Format()
	want := "(tree T (seq (.Attack) (.Defend)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestVerticalRenderingPastWidth(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack) (.Defend)))")
	got := New(tree, 10, DefaultIndent).Format()
	want := "(tree T\n" +
		"  (seq\n" +
		"    (.Attack)\n" +
		"    (.Defend)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestGuardRendersCondAndBodyOnSeparateLinesWhenVertical(t *testing.T) {
	tree := parse(t, "(tree T (guard (> .Health 0) (.Attack)))")
	got := New(tree, 20, DefaultIndent).Format()
	want := "(tree T\n" +
		"  (guard\n" +
		"    (> .Health 0)\n" +
		"    (.Attack)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestCommentForcesVerticalAndIsPreserved(t *testing.T) {
	src := "(tree T (seq ; retreat first\n  (.Attack) (.Defend)))"
	tree := parse(t, src)
	got := New(tree, DefaultWidth, DefaultIndent).Format()
	want := "(tree T\n" +
		"  (seq ; retreat first\n" +
		"    (.Attack)\n" +
		"    (.Defend)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestVerticalRenderingHonorsConfiguredIndent(t *testing.T) {
	tree := parse(t, "(tree T (seq (.Attack) (.Defend)))")
	got := New(tree, 10, 4).Format()
	want := "(tree T\n" +
		"    (seq\n" +
		"        (.Attack)\n" +
		"        (.Defend)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestLeadingCommentOwnsItsLine(t *testing.T) {
	src := "(tree T (seq\n  ; always attack\n  (.Attack)))"
	tree := parse(t, src)
	got := New(tree, DefaultWidth, DefaultIndent).Format()
	want := "(tree T\n" +
		"  (seq\n" +
		"    ; always attack\n" +
		"    (.Attack)))\n"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}
