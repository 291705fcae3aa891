// Package format implements the canonical CST-based pretty-printer of
// C14: a flat-or-vertical renderer that reproduces every comment at
// its anchored position while discarding the source's original
// whitespace layout.
package format

import (
	"strings"

	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/lexer"
)

// DefaultWidth is the line width a flat rendering must fit within
// before the formatter falls back to a vertical one (§4.12).
const DefaultWidth = 80

// DefaultIndent is the number of columns a vertical rendering indents
// each nesting level by, absent a btc.toml override.
const DefaultIndent = 2

// Formatter renders a single parsed file's CST as canonical source
// text.
type Formatter struct {
	tree   *cst.Tree
	width  int
	indent int
}

// New constructs a Formatter for tree, wrapping lines past width and
// indenting each vertical nesting level by indent columns.
func New(tree *cst.Tree, width, indent int) *Formatter {
	if indent <= 0 {
		indent = DefaultIndent
	}
	return &Formatter{tree: tree, width: width, indent: indent}
}

// Format renders every top-level form in document order, one trailing
// newline between forms (§4.12).
func (f *Formatter) Format() string {
	var b strings.Builder
	for _, id := range f.tree.Children(f.tree.Root) {
		b.WriteString(f.formatNode(id, 0))
		b.WriteByte('\n')
	}
	return b.String()
}

// formatNode renders id starting at column indent. The returned
// string's first line carries no indent of its own (the caller is
// responsible for that); any internal line break the rendering
// introduces is indented correctly already.
func (f *Formatter) formatNode(id cst.NodeID, indent int) string {
	n := f.tree.Node(id)
	if len(n.Parts) == 0 {
		return ""
	}
	if !isParenForm(n) {
		return f.renderToken(n.Parts[0].Tok, indent)
	}
	if !f.hasComment(id) {
		flat := f.flatText(id)
		if indent+len(flat) <= f.width {
			return flat
		}
	}
	return f.renderVertical(id, indent)
}

func isParenForm(n *cst.Node) bool {
	return n.Parts[0].Kind == cst.TokenPart && n.Parts[0].Tok.Kind == lexer.LPAREN
}

// flatText renders id with no line breaks at all. Only called once
// hasComment has confirmed id's subtree carries no comment trivia, so
// it never needs to consider trivia.
func (f *Formatter) flatText(id cst.NodeID) string {
	n := f.tree.Node(id)
	strs := make([]string, 0, len(n.Parts))
	for _, p := range n.Parts {
		switch p.Kind {
		case cst.TokenPart:
			strs = append(strs, p.Tok.Text)
		case cst.ChildPart:
			strs = append(strs, f.flatText(p.Child))
		}
	}
	var b strings.Builder
	for i, s := range strs {
		if i > 0 && strs[i-1] != "(" && s != ")" {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}
	return b.String()
}

// renderVertical renders id with one part per line (indent+f.indent),
// the form's leading keyword tokens kept on the opening "(" line, and
// the closing paren glued onto the end of the last line (Lisp style).
func (f *Formatter) renderVertical(id cst.NodeID, indent int) string {
	n := f.tree.Node(id)
	parts := n.Parts
	last := len(parts) - 1

	var b strings.Builder
	emitLeadingComments(&b, parts[0].Tok, indent)
	b.WriteByte('(')

	i := 1
	firstHeadTok := true
	for i < last {
		p := parts[i]
		if p.Kind == cst.ChildPart || (p.Kind == cst.TokenPart && p.Tok.Kind == lexer.KWARG) {
			break
		}
		if !firstHeadTok {
			b.WriteByte(' ')
		}
		b.WriteString(f.renderToken(p.Tok, indent))
		firstHeadTok = false
		i++
	}

	childIndent := indent + f.indent
	wroteBody := false
	for i < last {
		var item string
		switch {
		case parts[i].Kind == cst.TokenPart && parts[i].Tok.Kind == lexer.KWARG && i+1 < last && parts[i+1].Kind == cst.ChildPart:
			item = f.renderToken(parts[i].Tok, childIndent) + " " + f.formatNode(parts[i+1].Child, childIndent)
			i += 2
		case parts[i].Kind == cst.TokenPart:
			item = f.renderToken(parts[i].Tok, childIndent)
			i++
		default:
			item = f.formatNode(parts[i].Child, childIndent)
			i++
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", childIndent))
		b.WriteString(item)
		wroteBody = true
	}

	if last >= 0 {
		cp := parts[last]
		if cp.Kind == cst.TokenPart {
			b.WriteString(f.renderToken(cp.Tok, indent))
		} else {
			closeIndent := indent
			if wroteBody {
				closeIndent = childIndent
			}
			b.WriteString(f.formatNode(cp.Child, closeIndent))
		}
	}
	return b.String()
}

// hasComment reports whether any token in id's subtree carries a line
// comment, as leading or trailing trivia. A comment anywhere in a
// form forces that form (and every ancestor containing it) to render
// vertically, since a flat single-line rendering cannot hold a forced
// line break.
func (f *Formatter) hasComment(id cst.NodeID) bool {
	for _, tok := range f.tree.DescendantTokens(id) {
		for _, tr := range tok.LeadingTrivia {
			if tr.Kind == lexer.TriviaLineComment {
				return true
			}
		}
		for _, tr := range tok.TrailingTrivia {
			if tr.Kind == lexer.TriviaLineComment {
				return true
			}
		}
	}
	return false
}

// renderToken renders a single token together with any comment trivia
// attached to it: a leading comment gets its own line at indent above
// the token, a trailing comment is appended after the token on the
// same line (§4.12: "leading trivia of the nearest following token,
// trailing trivia of the preceding token on the same line").
func (f *Formatter) renderToken(tok lexer.Token, indent int) string {
	var b strings.Builder
	emitLeadingComments(&b, tok, indent)
	b.WriteString(tok.Text)
	for _, tr := range tok.TrailingTrivia {
		if tr.Kind == lexer.TriviaLineComment {
			b.WriteByte(' ')
			b.WriteString(strings.TrimRight(tr.Text, "\r\n"))
		}
	}
	return b.String()
}

func emitLeadingComments(b *strings.Builder, tok lexer.Token, indent int) {
	for _, tr := range tok.LeadingTrivia {
		if tr.Kind == lexer.TriviaLineComment {
			b.WriteString(strings.TrimRight(tr.Text, "\r\n"))
			b.WriteByte('\n')
			b.WriteString(strings.Repeat(" ", indent))
		}
	}
}
