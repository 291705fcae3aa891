// Package edit implements the text-edit commands behind the §6 editor
// protocol surface. Every command operates purely in terms of already
// existing components: it locates the affected span in the already
// lossless CST (C2), splices plain source text around it, reparses,
// and hands the result through the canonical formatter (C14) — there
// is no separate in-memory tree-mutation API, because the CST's own
// contract (internal/cst) keeps nodes immutable once built.
package edit

import (
	"fmt"

	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/format"
)

// Result is the outcome of applying a command: the reformatted source
// text, the tree reparsed from it, and whatever diagnostics that
// reparse produced (a malformed splice shows up here rather than as a
// Go error, the same way every other stage in this pipeline reports
// failure through a diag.Bag instead of panicking on bad input).
type Result struct {
	Source string
	Tree   *cst.Tree
	Diags  *diag.Bag
}

func finish(file, src string) Result {
	tree, bag := cst.Parse(file, src)
	formatted := format.New(tree, format.DefaultWidth, format.DefaultIndent).Format()
	// Re-parse the formatted text too: callers always want Tree to
	// describe Source exactly, and reformatting can itself shift spans.
	finalTree, finalBag := cst.Parse(file, formatted)
	if finalBag.HasErrors() {
		// Formatting a tree that already parsed cleanly should never
		// introduce new errors; fall back to the unformatted splice
		// rather than hand back text the formatter broke.
		return Result{Source: src, Tree: tree, Diags: bag}
	}
	return Result{Source: formatted, Tree: finalTree, Diags: finalBag}
}

// AddNode inserts newNodeSource as a new child of parent at index
// (0 means "first child", len(children) means "last child").
func AddNode(file string, tree *cst.Tree, parent cst.NodeID, index int, newNodeSource string) (Result, error) {
	offset, err := insertionOffset(tree, parent, index)
	if err != nil {
		return Result{}, err
	}
	src := tree.Source
	spliced := src[:offset] + newNodeSource + " " + src[offset:]
	return finish(file, spliced), nil
}

// RemoveNode deletes id (and nothing else) from its parent's child
// list.
func RemoveNode(file string, tree *cst.Tree, id cst.NodeID) (Result, error) {
	if id == tree.Root {
		return Result{}, fmt.Errorf("edit: cannot remove the program root")
	}
	span := tree.Span(id)
	src := tree.Source
	spliced := src[:span.Start.Offset] + src[span.End.Offset:]
	return finish(file, spliced), nil
}

// MoveNode relocates id to become a child of newParent at index,
// removing it from its current position.
func MoveNode(file string, tree *cst.Tree, id, newParent cst.NodeID, index int) (Result, error) {
	if id == tree.Root {
		return Result{}, fmt.Errorf("edit: cannot move the program root")
	}
	nodeSpan := tree.Span(id)
	nodeText := tree.Source[nodeSpan.Start.Offset:nodeSpan.End.Offset]

	insertOffset, err := insertionOffset(tree, newParent, index)
	if err != nil {
		return Result{}, err
	}
	if insertOffset > nodeSpan.Start.Offset && insertOffset < nodeSpan.End.Offset {
		return Result{}, fmt.Errorf("edit: cannot move a node inside itself")
	}

	src := tree.Source
	removedLen := nodeSpan.End.Offset - nodeSpan.Start.Offset

	var spliced string
	if insertOffset >= nodeSpan.End.Offset {
		// Insertion point is after the node being moved: remove first,
		// then insert at the shifted offset.
		withoutNode := src[:nodeSpan.Start.Offset] + src[nodeSpan.End.Offset:]
		adjusted := insertOffset - removedLen
		spliced = withoutNode[:adjusted] + nodeText + " " + withoutNode[adjusted:]
	} else {
		// Insertion point is before the node: insert first, then remove
		// the node from its original position, now shifted forward.
		withInsert := src[:insertOffset] + nodeText + " " + src[insertOffset:]
		shift := len(nodeText) + 1
		spliced = withInsert[:nodeSpan.Start.Offset+shift] + withInsert[nodeSpan.End.Offset+shift:]
	}
	return finish(file, spliced), nil
}

// WrapNode replaces id with "(wrapperHead <id's text>)", e.g.
// wrapperHead "invert" turns "(.Attack)" into "(invert (.Attack))", or
// wrapperHead "guard (> .Health 0)" turns a body node into a guard
// over it.
func WrapNode(file string, tree *cst.Tree, id cst.NodeID, wrapperHead string) (Result, error) {
	span := tree.Span(id)
	src := tree.Source
	nodeText := src[span.Start.Offset:span.End.Offset]
	wrapped := "(" + wrapperHead + " " + nodeText + ")"
	spliced := src[:span.Start.Offset] + wrapped + src[span.End.Offset:]
	return finish(file, spliced), nil
}

// UnwrapNode replaces id with the source text of its last child
// (the conventional "body" position for every single-body wrapper:
// invert, repeat, timeout, cooldown, while, reactive, guard), deleting
// the wrapper itself.
func UnwrapNode(file string, tree *cst.Tree, id cst.NodeID) (Result, error) {
	children := tree.Children(id)
	if len(children) == 0 {
		return Result{}, fmt.Errorf("edit: node %d has no child to unwrap", id)
	}
	body := children[len(children)-1]
	bodySpan := tree.Span(body)
	bodyText := tree.Source[bodySpan.Start.Offset:bodySpan.End.Offset]

	span := tree.Span(id)
	src := tree.Source
	spliced := src[:span.Start.Offset] + bodyText + src[span.End.Offset:]
	return finish(file, spliced), nil
}

// insertionOffset returns the byte offset at which a new child should
// be spliced in to land at position index among parent's existing
// children: the start of the child currently at index, or — when
// index is len(children) — the position immediately before parent's
// closing delimiter.
func insertionOffset(tree *cst.Tree, parent cst.NodeID, index int) (int, error) {
	children := tree.Children(parent)
	if index < 0 || index > len(children) {
		return 0, fmt.Errorf("edit: index %d out of range for %d children", index, len(children))
	}
	if index < len(children) {
		return tree.Span(children[index]).Start.Offset, nil
	}
	return closingDelimiterOffset(tree, parent), nil
}

// closingDelimiterOffset returns the byte offset of parent's last
// Part — its closing paren, or a KMissing recovery sentinel's own
// (zero-length) position — the generic splice point for "append as
// last child", following the same Parts-are-document-order contract
// internal/format's renderVertical relies on.
func closingDelimiterOffset(tree *cst.Tree, parent cst.NodeID) int {
	n := tree.Node(parent)
	last := n.Parts[len(n.Parts)-1]
	if last.Kind == cst.TokenPart {
		return last.Tok.Span.Start.Offset
	}
	return tree.Span(last.Child).Start.Offset
}
