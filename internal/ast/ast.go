// Package ast defines the semantic twin of the CST (C3's output):
// trivia-free nodes that link back to their CST origin for span
// information and inherit its id (§3). Resolver and type-checker
// passes mutate the ResolvedType/ResolvedSymbol slots in place, per
// the Design Notes on mutable back-pointers — there is no separate
// side table, since these fields live on arena-free, GC-managed Go
// values rather than an index-based arena (the only cycle risk in
// this layer, CST Parent<->Child, was already resolved one layer down).
package ast

import (
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/lexer"
	"github.com/btscript/btc/internal/types"
)

// Node is the common interface of every AST node.
type Node interface {
	ID() int
	CSTOrigin() cst.NodeID
	Span() lexer.Span
}

// Base carries the identity and position every node needs (§3: "each
// AST node links back to its cst_origin for span, and inherits its id").
type Base struct {
	Id     int
	Origin cst.NodeID
	Sp     lexer.Span
}

func (b Base) ID() int              { return b.Id }
func (b Base) CSTOrigin() cst.NodeID { return b.Origin }
func (b Base) Span() lexer.Span     { return b.Sp }

// SymbolKind classifies what a ResolvedSymbol points at.
type SymbolKind int

const (
	SymMember SymbolKind = iota
	SymMethod
	SymEnumMember
)

// Symbol is the resolved host-language binding a name resolver writes
// into an AST node's resolved_symbol slot (§4.5).
type Symbol struct {
	Kind          SymbolKind
	DeclaringType string
	Name          string
	Member        *hostmeta.Member
	Method        *hostmeta.Method
	EnumType      string
}

// Typed is embedded by every expression-shaped node: it holds the
// mutable resolved_type/resolved_symbol slots from §3.
type Typed struct {
	Base
	ResolvedType   *types.Type
	ResolvedSymbol *Symbol
}

func (t *Typed) GetResolvedType() *types.Type    { return t.ResolvedType }
func (t *Typed) SetResolvedType(ty *types.Type)  { t.ResolvedType = ty }
func (t *Typed) GetResolvedSymbol() *Symbol      { return t.ResolvedSymbol }
func (t *Typed) SetResolvedSymbol(s *Symbol)     { t.ResolvedSymbol = s }

// Expression is any AST node that can be type-checked and resolved.
type Expression interface {
	Node
	GetResolvedType() *types.Type
	SetResolvedType(*types.Type)
	GetResolvedSymbol() *Symbol
	SetResolvedSymbol(*Symbol)
}

// ---- Program and top-level forms ----

type Program struct {
	Base
	Trees     []*TreeDef
	Defdecs   []*Defdec
	Defmacros []*Defmacro
	Imports   []*Import
}

type TreeDef struct {
	Base
	Name           string
	BlackboardType string // never set by lowering: the tree form has no syntax declaring it
	Body           Node
}

type Import struct {
	Base
	Path string
}

type Ref struct {
	Base
	Name string

	// ResolvedTree is filled in by the cross-tree reference resolver
	// (C4.3) once the target tree is located, possibly in another file.
	ResolvedTree *TreeDef
	ResolvedFile string
}

// Defdec is a decorator template: its Body contains exactly one
// BodyPlaceholder once validated (§4.4.1).
type Defdec struct {
	Base
	Name   string
	Params []string
	Body   Node
}

type Defmacro struct {
	Base
	Name   string
	Params []string
	// Template is kept as the raw CST subtree: macro substitution
	// operates at the CST template level, then re-lowers (§4.4.2).
	Template cst.NodeID
}

type BodyPlaceholder struct{ Base }

// ParamRef is a bare identifier inside a defdec/defmacro body, naming
// one of its parameters. It is ambiguous between node and expression
// position until the rewrite pass substitutes it with the argument
// actually supplied at the call site (§4.4.1), so it carries a Typed
// slot purely so it satisfies Expression when encountered there.
type ParamRef struct {
	Typed
	Name string
}

// ---- Control nodes ----

type Select struct {
	Base
	Children []Node
}

type Seq struct {
	Base
	Children []Node
}

type ReactiveSelect struct {
	Base
	Children []Node
}

type ParallelPolicy int

const (
	ParallelAny ParallelPolicy = iota
	ParallelAll
	ParallelN
)

type Parallel struct {
	Base
	Policy   ParallelPolicy
	N        Expression // non-nil iff Policy == ParallelN
	Children []Node
}

type Guard struct {
	Base
	Cond Expression
	Body Node
}

type If struct {
	Base
	Cond Expression
	Then Node
	Else Node // nil if absent
}

type Invert struct {
	Base
	Child Node
}

type Repeat struct {
	Base
	N    Expression
	Body Node
}

type Timeout struct {
	Base
	Seconds Expression
	Body    Node
}

type Cooldown struct {
	Base
	Seconds Expression
	Body    Node
}

type While struct {
	Base
	Cond Expression
	Body Node
}

type Reactive struct {
	Base
	Cond Expression
	Body Node
}

// ---- Leaves ----

type Check struct {
	Base
	Cond Expression
}

// Arg is one call argument: a positional or keyword-tagged expression.
type Arg struct {
	Name  string // empty if positional
	Value Expression
}

// ActionCall is a node-position call (§3: "call in node position
// becomes action-call"). A bare member-access in node position lowers
// to an ActionCall with zero arguments (§4.3).
type ActionCall struct {
	Base
	Path           []string
	Args           []Arg
	ResolvedSymbol *Symbol
	ResolvedType   *types.Type // the method's declared return type, once resolved
}

func (a *ActionCall) GetResolvedType() *types.Type   { return a.ResolvedType }
func (a *ActionCall) SetResolvedType(t *types.Type)  { a.ResolvedType = t }
func (a *ActionCall) GetResolvedSymbol() *Symbol     { return a.ResolvedSymbol }
func (a *ActionCall) SetResolvedSymbol(s *Symbol)    { a.ResolvedSymbol = s }

// CallExpr is an expression-position call (§3).
type CallExpr struct {
	Typed
	Path []string
	Args []Arg
}

// DefdecCall is an as-yet-unexpanded application of a defdec or
// defmacro template (§4.4.1, §4.4.2) — the parser cannot tell the two
// apart (both are a bare-identifier head call), so it is only resolved
// once the rewrite pass looks the name up. It is only ever seen
// pre-rewrite: internal/rewrite replaces every DefdecCall with the
// template's body lowered again, so none should survive into C5. It
// embeds Typed (rather than Base) so it can stand in for an expression
// slot too, for macros whose template expands to an expression.
//
// RawArgs are kept as CST node ids, not pre-lowered expressions: a
// template parameter can be substituted into either node or expression
// position, so the right lowering context is only known once the
// rewrite pass finds where inside the template body it is used.
type DefdecCall struct {
	Typed
	Name    string
	RawArgs []cst.NodeID
}

// MemberAccess is a `.`-path expression.
type MemberAccess struct {
	Typed
	Path []string
}

// BlackboardAccess is a `$`-path expression.
type BlackboardAccess struct {
	Typed
	Path []string
}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitNull
	LitEnum
)

type Literal struct {
	Typed
	Kind       LiteralKind
	IntValue   int64
	FloatValue float64
	BoolValue  bool
	StrValue   string
	EnumType   string
	EnumMember string
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
)

type BinaryExpr struct {
	Typed
	Op    BinaryOp
	LHS   Expression
	RHS   Expression

	// PromoteLHS/PromoteRHS record which operand needs an int->float
	// IrConvert inserted at C8 (decided here at C6, per §4.6's
	// "Implicit conversion insertion is deferred to C8 but decided here").
	PromoteLHS bool
	PromoteRHS bool
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type UnaryExpr struct {
	Typed
	Op      UnaryOp
	Operand Expression
}

type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

type LogicExpr struct {
	Typed
	Op       LogicOp
	Operands []Expression
}
