// Package layout projects an optimized IR tree into the editor-facing
// model of C13: a pure, read-only view keyed by node id, carrying a
// human label, the node's origin span, its resolved type (where one
// applies), and its children — plus whatever diagnostics land on that
// span.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/ir"
	"github.com/btscript/btc/internal/lexer"
	"github.com/btscript/btc/internal/types"
)

// Tag classifies a laid-out node, mirroring the IR node it was built
// from (§4.11).
type Tag string

const (
	TagTree           Tag = "tree"
	TagSelector       Tag = "selector"
	TagSequence       Tag = "sequence"
	TagReactiveSelect Tag = "reactive-select"
	TagParallel       Tag = "parallel"
	TagGuard          Tag = "guard"
	TagIf             Tag = "if"
	TagInvert         Tag = "invert"
	TagRepeat         Tag = "repeat"
	TagTimeout        Tag = "timeout"
	TagCooldown       Tag = "cooldown"
	TagWhile          Tag = "while"
	TagReactive       Tag = "reactive"
	TagTreeRef        Tag = "tree-ref"
	TagCondition      Tag = "condition"
	TagAction         Tag = "action"
)

// Node is one entry of the layout model (§4.11:
// "(id, node_type_tag, label?, origin_span, resolved_type?, children[])").
type Node struct {
	ID           int
	Tag          Tag
	Label        string // empty for pure structural nodes with no natural label
	Origin       lexer.Span
	ResolvedType string // empty when the node has no expression type
	Children     []*Node
	Diagnostics  []diag.Diagnostic // diagnostics whose span falls within Origin
}

// Build projects a single lowered tree into its layout model, attaching
// any diagnostic in diags whose span originates at or within a node
// (§4.11: "bundles per-node diagnostics by matching diagnostic spans
// to node origins").
func Build(t *ir.Tree, diags []diag.Diagnostic) *Node {
	root := buildNode(t.Body)
	attachDiagnostics(root, diags)
	return root
}

func buildNode(n ir.Node) *Node {
	switch v := n.(type) {
	case *ir.Selector:
		return structNode(v.ID(), TagSelector, v.Origin(), v.Children)
	case *ir.Sequence:
		return structNode(v.ID(), TagSequence, v.Origin(), v.Children)
	case *ir.ReactiveSelect:
		return structNode(v.ID(), TagReactiveSelect, v.Origin(), v.Children)
	case *ir.Parallel:
		children := append([]ir.Node{}, v.Children...)
		label := parallelLabel(v)
		return &Node{ID: v.ID(), Tag: TagParallel, Label: label, Origin: v.Origin(), Children: buildChildren(children)}
	case *ir.Guard:
		return &Node{ID: v.ID(), Tag: TagGuard, Label: exprLabel(v.Cond), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.If:
		kids := []ir.Node{v.Then}
		if v.Else != nil {
			kids = append(kids, v.Else)
		}
		return &Node{ID: v.ID(), Tag: TagIf, Label: exprLabel(v.Cond), Origin: v.Origin(), Children: buildChildren(kids)}
	case *ir.Invert:
		return structNode(v.ID(), TagInvert, v.Origin(), []ir.Node{v.Child})
	case *ir.Repeat:
		return &Node{ID: v.ID(), Tag: TagRepeat, Label: exprLabel(v.N), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.Timeout:
		return &Node{ID: v.ID(), Tag: TagTimeout, Label: exprLabel(v.Seconds), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.Cooldown:
		return &Node{ID: v.ID(), Tag: TagCooldown, Label: exprLabel(v.Seconds), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.While:
		return &Node{ID: v.ID(), Tag: TagWhile, Label: exprLabel(v.Cond), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.Reactive:
		return &Node{ID: v.ID(), Tag: TagReactive, Label: exprLabel(v.Cond), Origin: v.Origin(), Children: buildChildren([]ir.Node{v.Body})}
	case *ir.TreeRef:
		return &Node{ID: v.ID(), Tag: TagTreeRef, Label: v.Name, Origin: v.Origin()}
	case *ir.Condition:
		return &Node{ID: v.ID(), Tag: TagCondition, Label: exprLabel(v.Expr), Origin: v.Origin(), ResolvedType: typeName(v.TypeRef())}
	case *ir.Action:
		return &Node{ID: v.ID(), Tag: TagAction, Label: actionLabel(v), Origin: v.Origin(), ResolvedType: typeName(v.TypeRef())}
	default:
		panic(fmt.Sprintf("layout: Build: unhandled node type %T", n))
	}
}

func structNode(id int, tag Tag, origin lexer.Span, children []ir.Node) *Node {
	return &Node{ID: id, Tag: tag, Origin: origin, Children: buildChildren(children)}
}

func buildChildren(nodes []ir.Node) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = buildNode(n)
	}
	return out
}

func parallelLabel(p *ir.Parallel) string {
	switch p.Policy {
	case ir.ParallelAny:
		return "any"
	case ir.ParallelAll:
		return "all"
	case ir.ParallelN:
		return fmt.Sprintf("n=%s", exprLabel(p.N))
	default:
		return ""
	}
}

// actionLabel renders an action call as "Name(.arg1, .arg2)" (§4.11:
// `"Attack(.Target)"`).
func actionLabel(a *ir.Action) string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = exprLabel(arg)
	}
	return fmt.Sprintf("%s(%s)", a.Method.Name, strings.Join(args, ", "))
}

// exprLabel renders an expression for a layout label: binary and unary
// operators come first (§4.11: `"< .Health 30"`), logic operands are
// joined by && / ||.
func exprLabel(n ir.Node) string {
	switch v := n.(type) {
	case *ir.MemberLoad:
		return memberLabel(v.Member)
	case *ir.BlackboardLoad:
		return "$" + strings.Join(v.Member.Segments, ".")
	case *ir.Literal:
		return literalLabel(v)
	case *ir.Binary:
		return fmt.Sprintf("%s %s %s", binarySymbol(v.Op), exprLabel(v.LHS), exprLabel(v.RHS))
	case *ir.Unary:
		return fmt.Sprintf("%s%s", unarySymbol(v.Op), exprLabel(v.Operand))
	case *ir.Logic:
		parts := make([]string, len(v.Operands))
		for i, op := range v.Operands {
			parts[i] = exprLabel(op)
		}
		return strings.Join(parts, fmt.Sprintf(" %s ", logicSymbol(v.Op)))
	case *ir.Call:
		args := make([]string, len(v.Args))
		for i, arg := range v.Args {
			args[i] = exprLabel(arg)
		}
		return fmt.Sprintf("%s(%s)", v.Method.Name, strings.Join(args, ", "))
	case *ir.Convert:
		return exprLabel(v.Operand)
	default:
		return ""
	}
}

func memberLabel(m ir.MemberRef) string {
	return "." + strings.Join(m.Segments, ".")
}

func literalLabel(v *ir.Literal) string {
	switch v.Kind {
	case ir.LitInt:
		return fmt.Sprintf("%d", v.IntValue)
	case ir.LitFloat:
		return fmt.Sprintf("%g", v.FloatValue)
	case ir.LitBool:
		return fmt.Sprintf("%t", v.BoolValue)
	case ir.LitString:
		return fmt.Sprintf("%q", v.StrValue)
	case ir.LitNull:
		return "null"
	case ir.LitEnum:
		return fmt.Sprintf("%s.%s", v.EnumType, v.EnumMember)
	default:
		return ""
	}
}

func binarySymbol(op ir.BinaryOp) string {
	switch op {
	case ir.OpAdd:
		return "+"
	case ir.OpSub:
		return "-"
	case ir.OpMul:
		return "*"
	case ir.OpDiv:
		return "/"
	case ir.OpMod:
		return "%"
	case ir.OpLt:
		return "<"
	case ir.OpGt:
		return ">"
	case ir.OpLe:
		return "<="
	case ir.OpGe:
		return ">="
	case ir.OpEq:
		return "=="
	case ir.OpNe:
		return "!="
	default:
		return "?"
	}
}

func unarySymbol(op ir.UnaryOp) string {
	switch op {
	case ir.OpNeg:
		return "-"
	case ir.OpNot:
		return "!"
	default:
		return "?"
	}
}

func logicSymbol(op ir.LogicOp) string {
	switch op {
	case ir.OpAnd:
		return "&&"
	case ir.OpOr:
		return "||"
	default:
		return "?"
	}
}

func typeName(t *types.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// attachDiagnostics walks the layout tree once, collecting the subset
// of diags whose span starts within each node's origin span and is not
// claimed by a more specific (narrower-origin) descendant.
func attachDiagnostics(root *Node, diags []diag.Diagnostic) {
	sorted := append([]diag.Diagnostic{}, diags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start.Offset < sorted[j].Span.Start.Offset })
	for _, d := range sorted {
		if owner := deepestContaining(root, d.Span); owner != nil {
			owner.Diagnostics = append(owner.Diagnostics, d)
		}
	}
}

func deepestContaining(n *Node, span lexer.Span) *Node {
	if !contains(n.Origin, span) {
		return nil
	}
	for _, c := range n.Children {
		if found := deepestContaining(c, span); found != nil {
			return found
		}
	}
	return n
}

func contains(origin, span lexer.Span) bool {
	return span.Start.Offset >= origin.Start.Offset && span.Start.Offset <= origin.End.Offset
}
