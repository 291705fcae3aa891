package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// dump renders a layout tree as an indented text fixture: tag, label (if
// any), resolved type (if any), and one diagnostic code per attached
// diagnostic, recursing through children. It exists purely to give the
// snapshot tests below something stable and readable to diff against.
func dump(n *Node, depth int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(string(n.Tag))
	if n.Label != "" {
		fmt.Fprintf(&sb, " %q", n.Label)
	}
	if n.ResolvedType != "" {
		fmt.Fprintf(&sb, " :type %s", n.ResolvedType)
	}
	for _, d := range n.Diagnostics {
		fmt.Fprintf(&sb, " !%s", d.Code)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		sb.WriteString(dump(c, depth+1))
	}
	return sb.String()
}

// Snapshot tests pin the layout model's exact shape for each structural
// node kind (§4.11) against a stored fixture, so a change to a label
// format or tag name shows up as an explicit, reviewable diff instead of
// a hand-maintained `want` string scattered across individual tests.
func TestLayoutSnapshots(t *testing.T) {
	cases := map[string]string{
		"guard_with_comparison": "(tree T (guard (> .Health 0) (.Attack)))",
		"selector_of_actions":   "(tree T (select (.Attack) (.Attack)))",
		"sequence_of_actions":   "(tree T (seq (.Attack) (.Attack)))",
		"repeat_wraps_action":   "(tree T (repeat 3 (.Attack)))",
		"invert_wraps_guard":    "(tree T (invert (guard (> .Health 0) (.Attack))))",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			irTree, bag := buildIR(t, src)
			root := Build(irTree, bag.All())
			snaps.MatchSnapshot(t, dump(root, 0))
		})
	}
}
