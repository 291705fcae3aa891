package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btscript/btc/internal/types"
)

// Print renders t as the canonical IR S-expression form (§6): the
// format an external backend parses and fixture tests compare
// bit-exact. One form per tree; no trailing newline.
func Print(t *Tree) string {
	var b strings.Builder
	printNode(&b, t.Body)
	return b.String()
}

func printNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Selector:
		open(b, "ir-selector")
		printChildren(b, v.Children)
		endForm(b)
	case *Sequence:
		open(b, "ir-sequence")
		printChildren(b, v.Children)
		endForm(b)
	case *ReactiveSelect:
		open(b, "ir-reactive-select")
		printChildren(b, v.Children)
		endForm(b)
	case *Parallel:
		open(b, "ir-parallel")
		b.WriteString(parallelPolicyTag(v))
		for _, c := range v.Children {
			b.WriteByte(' ')
			printNode(b, c)
		}
		endForm(b)
	case *Guard:
		open(b, "ir-guard")
		printNode(b, v.Cond)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *If:
		open(b, "ir-if")
		printNode(b, v.Cond)
		b.WriteByte(' ')
		printNode(b, v.Then)
		if v.Else != nil {
			b.WriteByte(' ')
			printNode(b, v.Else)
		}
		endForm(b)
	case *Invert:
		open(b, "ir-invert")
		printNode(b, v.Child)
		endForm(b)
	case *Repeat:
		open(b, "ir-repeat")
		printNode(b, v.N)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *Timeout:
		open(b, "ir-timeout")
		printNode(b, v.Seconds)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *Cooldown:
		open(b, "ir-cooldown")
		printNode(b, v.Seconds)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *While:
		open(b, "ir-while")
		printNode(b, v.Cond)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *Reactive:
		open(b, "ir-reactive")
		printNode(b, v.Cond)
		b.WriteByte(' ')
		printNode(b, v.Body)
		endForm(b)
	case *TreeRef:
		open(b, "ir-tree-ref")
		printString(b, v.Name)
		endForm(b)
	case *Condition:
		open(b, "ir-condition")
		printNode(b, v.Expr)
		endForm(b)
	case *Action:
		open(b, "ir-action")
		printCallable(b, v.Method, v.Args, v.TypeRef())
		endForm(b)
	case *MemberLoad:
		open(b, "ir-member-load")
		printMember(b, v.Member, v.TypeRef())
		endForm(b)
	case *BlackboardLoad:
		open(b, "ir-blackboard-load")
		printMember(b, v.Member, v.TypeRef())
		endForm(b)
	case *Literal:
		open(b, "ir-literal")
		printLiteral(b, v)
		endForm(b)
	case *Binary:
		open(b, "ir-binary-op")
		b.WriteString(binaryOpTag(v.Op))
		b.WriteByte(' ')
		printNode(b, v.LHS)
		b.WriteByte(' ')
		printNode(b, v.RHS)
		endForm(b)
	case *Unary:
		open(b, "ir-unary-op")
		b.WriteString(unaryOpTag(v.Op))
		b.WriteByte(' ')
		printNode(b, v.Operand)
		endForm(b)
	case *Logic:
		open(b, "ir-logic-op")
		b.WriteString(logicOpTag(v.Op))
		for _, op := range v.Operands {
			b.WriteByte(' ')
			printNode(b, op)
		}
		endForm(b)
	case *Call:
		open(b, "ir-call")
		printCallable(b, v.Method, v.Args, v.TypeRef())
		endForm(b)
	case *Convert:
		open(b, "ir-convert")
		printNode(b, v.Operand)
		b.WriteString(" :to ")
		printString(b, v.TargetType.String())
		endForm(b)
	default:
		panic(fmt.Sprintf("ir: Print: unhandled node type %T", n))
	}
}

func open(b *strings.Builder, tag string) {
	b.WriteByte('(')
	b.WriteString(tag)
	b.WriteByte(' ')
}

func endForm(b *strings.Builder) {
	b.WriteByte(')')
}

func printChildren(b *strings.Builder, children []Node) {
	for i, c := range children {
		if i > 0 {
			b.WriteByte(' ')
		}
		printNode(b, c)
	}
}

func printCallable(b *strings.Builder, m MethodRef, args []Node, ty *types.Type) {
	printString(b, m.DeclaringType)
	b.WriteByte(' ')
	printString(b, m.Name)
	b.WriteString(" (")
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		printNode(b, a)
	}
	b.WriteString(") :type ")
	printString(b, typeString(ty))
}

func printMember(b *strings.Builder, m MemberRef, ty *types.Type) {
	b.WriteByte('(')
	for i, seg := range m.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		printString(b, seg)
	}
	b.WriteString(") :type ")
	printString(b, typeString(ty))
}

func typeString(ty *types.Type) string {
	if ty == nil {
		return ""
	}
	return ty.String()
}

func printLiteral(b *strings.Builder, v *Literal) {
	switch v.Kind {
	case LitInt:
		b.WriteString(strconv.FormatInt(v.IntValue, 10))
		b.WriteString(" :int")
	case LitFloat:
		b.WriteString(formatFloat(v.FloatValue))
		b.WriteString(" :float")
	case LitBool:
		b.WriteString(strconv.FormatBool(v.BoolValue))
		b.WriteString(" :bool")
	case LitString:
		printString(b, v.StrValue)
		b.WriteString(" :string")
	case LitNull:
		b.WriteString("null :null")
	case LitEnum:
		b.WriteString("::")
		b.WriteString(v.EnumType)
		b.WriteByte('.')
		b.WriteString(v.EnumMember)
		b.WriteString(" :enum")
	default:
		panic(fmt.Sprintf("ir: Print: unhandled literal kind %v", v.Kind))
	}
}

// formatFloat always keeps a decimal point, even for whole numbers
// (§6: "Floats serialize with a decimal point").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func printString(b *strings.Builder, s string) {
	b.WriteString(strconv.Quote(s))
}

func parallelPolicyTag(p *Parallel) string {
	switch p.Policy {
	case ParallelAny:
		return ":any"
	case ParallelAll:
		return ":all"
	case ParallelN:
		var n strings.Builder
		n.WriteString("(:n ")
		printNode(&n, p.N)
		n.WriteByte(')')
		return n.String()
	default:
		panic(fmt.Sprintf("ir: Print: unhandled parallel policy %v", p.Policy))
	}
}

func binaryOpTag(op BinaryOp) string {
	switch op {
	case OpAdd:
		return ":add"
	case OpSub:
		return ":sub"
	case OpMul:
		return ":mul"
	case OpDiv:
		return ":div"
	case OpMod:
		return ":mod"
	case OpLt:
		return ":lt"
	case OpGt:
		return ":gt"
	case OpLe:
		return ":le"
	case OpGe:
		return ":ge"
	case OpEq:
		return ":eq"
	case OpNe:
		return ":ne"
	default:
		panic(fmt.Sprintf("ir: Print: unhandled binary op %v", op))
	}
}

func unaryOpTag(op UnaryOp) string {
	switch op {
	case OpNeg:
		return ":negate"
	case OpNot:
		return ":not"
	default:
		panic(fmt.Sprintf("ir: Print: unhandled unary op %v", op))
	}
}

func logicOpTag(op LogicOp) string {
	switch op {
	case OpAnd:
		return ":and"
	case OpOr:
		return ":or"
	default:
		panic(fmt.Sprintf("ir: Print: unhandled logic op %v", op))
	}
}
