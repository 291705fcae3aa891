// Package ir defines the immutable intermediate representation (C8's
// output and C9's input/output): a value-typed tree, lowered from the
// checked AST, that the external emitter turns into host code (§3).
//
// Nodes are immutable by convention, not by the type system: C8
// constructs each one once and never mutates it afterward; C9's
// passes produce new nodes (with fresh ids from Counter) rather than
// editing existing ones, preserving the id/origin invariants the
// untouched parts of a tree must keep (§4.9, §8).
package ir

import (
	"github.com/btscript/btc/internal/lexer"
	"github.com/btscript/btc/internal/types"
)

// Node is the common interface of every IR node, control or
// expression-shaped.
type Node interface {
	ID() int
	Origin() lexer.Span
	TypeRef() *types.Type // nil for a control node whose type is irrelevant
}

// Counter mints fresh, monotonically increasing ids for nodes an
// optimizer pass creates (§4.9: "newly created nodes get fresh ids
// from a monotonic counter").
type Counter struct{ next int }

// NewCounter starts a counter above every id already in use, so
// optimizer-created nodes never collide with ids inherited from the
// AST/CST (§8's id-stability invariant only binds ids that already
// existed before a given pass ran).
func NewCounter(startAbove int) *Counter {
	return &Counter{next: startAbove + 1}
}

func (c *Counter) Next() int {
	id := c.next
	c.next++
	return id
}

// base is embedded by every IR node.
type base struct {
	Id  int
	Sp  lexer.Span
	Typ *types.Type
}

func (b base) ID() int              { return b.Id }
func (b base) Origin() lexer.Span   { return b.Sp }
func (b base) TypeRef() *types.Type { return b.Typ }

// ---- Control nodes ----

type Tree struct {
	base
	Name string
	Body Node
}

type ParallelPolicy int

const (
	ParallelAny ParallelPolicy = iota
	ParallelAll
	ParallelN
)

type Selector struct {
	base
	Children []Node
}

type Sequence struct {
	base
	Children []Node
}

type ReactiveSelect struct {
	base
	Children []Node
}

type Parallel struct {
	base
	Policy   ParallelPolicy
	N        Node // an Expression-shaped node, non-nil iff Policy == ParallelN
	Children []Node
}

type Guard struct {
	base
	Cond Node
	Body Node
}

type If struct {
	base
	Cond Node
	Then Node
	Else Node // nil if absent
}

type Invert struct {
	base
	Child Node
}

type Repeat struct {
	base
	N    Node
	Body Node
}

type Timeout struct {
	base
	Seconds Node
	Body    Node
}

type Cooldown struct {
	base
	Seconds Node
	Body    Node
}

type While struct {
	base
	Cond Node
	Body Node
}

type Reactive struct {
	base
	Cond Node
	Body Node
}

// TreeRef is the lowered form of an ast.Ref: the external emitter
// turns it into a method call against the named subtree (§4.8).
type TreeRef struct {
	base
	Name string
}

// ---- Leaves ----

type Condition struct {
	base
	Expr Node
}

// MethodRef identifies a resolved callable: (declaring_type, name,
// param_types[]) per §3.
type MethodRef struct {
	DeclaringType string
	Name          string
	ParamTypes    []string
}

// Action is a node-shaped call to a host method. IsSubtree is true
// when the resolved method's return type was the runtime Node type
// (§4.8: "an action call whose resolved method returns the runtime
// node type is emitted as an IR action with is_subtree=true").
type Action struct {
	base
	Method    MethodRef
	Args      []Node
	IsAsync   bool
	IsSubtree bool
}

// ---- Expressions ----

// MemberRef identifies a resolved member chain by its original
// segment strings (§3).
type MemberRef struct {
	Segments []string
}

type MemberLoad struct {
	base
	Member MemberRef
}

type BlackboardLoad struct {
	base
	Member MemberRef
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
	base
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

type Binary struct {
	base
	Op  BinaryOp
	LHS Node
	RHS Node
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type Unary struct {
	base
	Op      UnaryOp
	Operand Node
}

type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

type Logic struct {
	base
	Op       LogicOp
	Operands []Node
}

// Call is an expression-position call to a host method.
type Call struct {
	base
	Method MethodRef
	Args   []Node
}

// Convert is an explicit conversion inserted by C8 wherever a binary
// operation combines an int and a float operand (§4.8, §8's "Convert
// placement" invariant: the backend never encounters implicit
// promotion).
type Convert struct {
	base
	Operand    Node
	TargetType *types.Type
}
