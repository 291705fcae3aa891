// Package cst implements the lossless concrete syntax tree (C2's
// output) and its parser. Every CST node is immutable once built and
// lives in an arena owned by a Tree, with index-based parent pointers
// so that the natural Parent<->Child cycle never becomes a heap cycle
// (see the specification's Design Notes on mutable back-pointers).
package cst

import "github.com/btscript/btc/internal/lexer"

// NodeID identifies a node within a Tree's arena. Ids are assigned
// strictly increasing in document order as nodes are opened during
// parsing (§8, Id stability).
type NodeID int

// NoParent is the ParentID of the tree's root node.
const NoParent NodeID = -1

// Kind enumerates the CST node variants named in §3.
type Kind int

const (
	KProgram Kind = iota
	KTreeDef
	KSelect
	KSeq
	KParallel
	KGuard
	KIf
	KInvert
	KRepeat
	KTimeout
	KCooldown
	KWhile
	KReactive
	KReactiveSelect
	KCheck
	KCall // polymorphic at this layer: disambiguated in C3
	KMemberAccess
	KBlackboardAccess
	KBinaryExpr
	KUnaryExpr
	KLogicExpr
	KIntLit
	KFloatLit
	KBoolLit
	KStringLit
	KNullLit
	KEnumLit
	KDefdec
	KDefdecCall
	KDefmacro
	KBodyPlaceholder
	KRef
	KImport
	KParamRef // bare identifier inside a defdec/defmacro body, substituted at C4
	KMissing // recovery: required token absent, zero-length sentinel
	KError   // recovery: unexpected token(s) collected out of grammar position
)

var kindNames = map[Kind]string{
	KProgram: "program", KTreeDef: "tree-def", KSelect: "select", KSeq: "seq",
	KParallel: "parallel", KGuard: "guard", KIf: "if", KInvert: "invert",
	KRepeat: "repeat", KTimeout: "timeout", KCooldown: "cooldown", KWhile: "while",
	KReactive: "reactive", KReactiveSelect: "reactive-select", KCheck: "check",
	KCall: "call", KMemberAccess: "member-access", KBlackboardAccess: "blackboard-access",
	KBinaryExpr: "binary-expr", KUnaryExpr: "unary-expr", KLogicExpr: "logic-expr",
	KIntLit: "int-lit", KFloatLit: "float-lit", KBoolLit: "bool-lit", KStringLit: "string-lit",
	KNullLit: "null-lit", KEnumLit: "enum-lit", KDefdec: "defdec", KDefdecCall: "defdec-call",
	KDefmacro: "defmacro", KBodyPlaceholder: "body-placeholder", KRef: "ref", KImport: "import",
	KParamRef: "param-ref", KMissing: "missing", KError: "error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// PartKind distinguishes the two kinds of ordered element a node can
// hold: a token it owns directly, or a nested child node.
type PartKind int

const (
	TokenPart PartKind = iota
	ChildPart
)

// Part is one element of a node's document-ordered content.
type Part struct {
	Kind  PartKind
	Tok   lexer.Token
	Child NodeID
}

// Node is one CST node. Parts are stored in document order so that
// descendant-token traversal (and therefore source reconstruction)
// never needs to interleave tokens and children after the fact.
type Node struct {
	ID       NodeID
	Kind     Kind
	ParentID NodeID
	Parts    []Part

	// ParallelPolicy, when Kind == KParallel, holds the raw policy
	// keyword text (":any", ":all", or ":n") as scanned; the N operand,
	// if any, is a child expression Part.
	ParallelPolicy string
}

// Tree owns every Node produced by a single parse. Nodes are
// immutable once inserted; a rewrite produces a new Tree rather than
// mutating this one in place (§3, Ownership & lifecycle).
type Tree struct {
	Source string
	Nodes  []Node
	Root   NodeID
}

func (t *Tree) Node(id NodeID) *Node { return &t.Nodes[id] }

// Children returns id's immediate child node ids, in document order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	var out []NodeID
	for _, p := range n.Parts {
		if p.Kind == ChildPart {
			out = append(out, p.Child)
		}
	}
	return out
}

// OwnTokens returns the tokens id owns directly (not via children).
func (t *Tree) OwnTokens(id NodeID) []lexer.Token {
	n := t.Node(id)
	var out []lexer.Token
	for _, p := range n.Parts {
		if p.Kind == TokenPart {
			out = append(out, p.Tok)
		}
	}
	return out
}

// DescendantTokens returns every token spanned by id, in document
// order, including tokens owned by nested children.
func (t *Tree) DescendantTokens(id NodeID) []lexer.Token {
	n := t.Node(id)
	var out []lexer.Token
	for _, p := range n.Parts {
		switch p.Kind {
		case TokenPart:
			out = append(out, p.Tok)
		case ChildPart:
			out = append(out, t.DescendantTokens(p.Child)...)
		}
	}
	return out
}

// Span returns id's span excluding trivia.
func (t *Tree) Span(id NodeID) lexer.Span {
	toks := t.DescendantTokens(id)
	if len(toks) == 0 {
		return lexer.Span{}
	}
	return lexer.Span{Start: toks[0].Span.Start, End: toks[len(toks)-1].Span.End}
}

// FullSpan returns id's span including leading/trailing trivia.
func (t *Tree) FullSpan(id NodeID) lexer.Span {
	toks := t.DescendantTokens(id)
	if len(toks) == 0 {
		return lexer.Span{}
	}
	return lexer.Span{Start: toks[0].FullSpan().Start, End: toks[len(toks)-1].FullSpan().End}
}

// ToFullString reconstructs the exact source text spanned by id,
// trivia included. ToFullString(t.Root) must equal the original
// source (§8, CST round-trip).
func (t *Tree) ToFullString(id NodeID) string {
	var out string
	for _, tok := range t.DescendantTokens(id) {
		out += tok.FullText()
	}
	return out
}

// IsMissing reports whether id is a zero-length recovery sentinel.
func (t *Tree) IsMissing(id NodeID) bool { return t.Node(id).Kind == KMissing }

// IsError reports whether id is an error-recovery wrapper node.
func (t *Tree) IsError(id NodeID) bool { return t.Node(id).Kind == KError }

// Parent returns id's parent, or NoParent for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.Node(id).ParentID }
