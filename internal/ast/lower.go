package ast

import (
	"strconv"
	"strings"

	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/lexer"
)

// Lower turns a CST into an AST (C3's operation): it discards trivia,
// resolves the call/member-access node-vs-expression ambiguity left
// open by the parser (§4.2), and parses literal tokens into typed
// values. AST node ids are inherited from their CST origin (§3).
func Lower(tree *cst.Tree, bag *diag.Bag) *Program {
	l := &lowerer{tree: tree, bag: bag}
	root := tree.Node(tree.Root)
	prog := &Program{Base: l.base(root.ID)}
	for _, childID := range tree.Children(root.ID) {
		n := l.lowerNode(childID)
		switch v := n.(type) {
		case *TreeDef:
			prog.Trees = append(prog.Trees, v)
		case *Defdec:
			prog.Defdecs = append(prog.Defdecs, v)
		case *Defmacro:
			prog.Defmacros = append(prog.Defmacros, v)
		case *Import:
			prog.Imports = append(prog.Imports, v)
		}
	}
	return prog
}

type lowerer struct {
	tree *cst.Tree
	bag  *diag.Bag
}

// Lowerer exposes the node/expression lowering primitives to the
// rewrite pass (C4), which must re-lower a raw CST argument subtree
// at the point a substituted parameter is actually used, since the
// same defdec/defmacro argument can be used in node position in one
// template and expression position in another (§4.4).
type Lowerer struct{ l *lowerer }

// NewLowerer constructs a Lowerer over tree, recording any recovery
// diagnostics lowering itself needs to raise into bag.
func NewLowerer(tree *cst.Tree, bag *diag.Bag) *Lowerer {
	return &Lowerer{l: &lowerer{tree: tree, bag: bag}}
}

func (lw *Lowerer) LowerNode(id cst.NodeID) Node       { return lw.l.lowerNode(id) }
func (lw *Lowerer) LowerExpr(id cst.NodeID) Expression { return lw.l.lowerExpr(id) }

func (l *lowerer) base(id cst.NodeID) Base {
	return Base{Id: int(id), Origin: id, Sp: l.tree.Span(id)}
}

func memberPath(text, sigil string) []string {
	trimmed := strings.TrimPrefix(text, sigil)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ".")
}

// args extracts keyword/positional call arguments from a node's parts,
// lowering each value in expression position. A `:name` KWARG token
// tags the ChildPart that immediately follows it.
func (l *lowerer) args(n *cst.Node) []Arg {
	var out []Arg
	pendingName := ""
	for _, p := range n.Parts {
		if p.Kind == cst.TokenPart && p.Tok.Kind == lexer.KWARG {
			pendingName = strings.TrimPrefix(p.Tok.Text, ":")
			continue
		}
		if p.Kind != cst.ChildPart {
			continue
		}
		out = append(out, Arg{Name: pendingName, Value: l.lowerExpr(p.Child)})
		pendingName = ""
	}
	return out
}

// lowerNode lowers id in node (behavior-tree) position.
func (l *lowerer) lowerNode(id cst.NodeID) Node {
	n := l.tree.Node(id)
	base := l.base(id)
	children := l.tree.Children(id)

	switch n.Kind {
	case cst.KTreeDef:
		name := identText(n)
		var body Node
		if len(children) > 0 {
			body = l.lowerNode(children[len(children)-1])
		}
		return &TreeDef{Base: base, Name: name, Body: body}

	case cst.KSelect:
		return &Select{Base: base, Children: l.lowerNodeList(children)}

	case cst.KSeq:
		return &Seq{Base: base, Children: l.lowerNodeList(children)}

	case cst.KReactiveSelect:
		return &ReactiveSelect{Base: base, Children: l.lowerNodeList(children)}

	case cst.KParallel:
		policy, rest := parallelPolicy(n), children
		p := &Parallel{Base: base, Policy: policy}
		if policy == ParallelN && len(rest) > 0 {
			p.N = l.lowerExpr(rest[0])
			rest = rest[1:]
		}
		p.Children = l.lowerNodeList(rest)
		return p

	case cst.KGuard:
		if len(children) < 2 {
			return &Guard{Base: base}
		}
		return &Guard{Base: base, Cond: l.lowerExpr(children[0]), Body: l.lowerNode(children[1])}

	case cst.KIf:
		f := &If{Base: base}
		if len(children) > 0 {
			f.Cond = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			f.Then = l.lowerNode(children[1])
		}
		if len(children) > 2 {
			f.Else = l.lowerNode(children[2])
		}
		return f

	case cst.KInvert:
		iv := &Invert{Base: base}
		if len(children) > 0 {
			iv.Child = l.lowerNode(children[0])
		}
		return iv

	case cst.KRepeat:
		r := &Repeat{Base: base}
		if len(children) > 0 {
			r.N = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			r.Body = l.lowerNode(children[1])
		}
		return r

	case cst.KTimeout:
		t := &Timeout{Base: base}
		if len(children) > 0 {
			t.Seconds = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			t.Body = l.lowerNode(children[1])
		}
		return t

	case cst.KCooldown:
		c := &Cooldown{Base: base}
		if len(children) > 0 {
			c.Seconds = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			c.Body = l.lowerNode(children[1])
		}
		return c

	case cst.KWhile:
		w := &While{Base: base}
		if len(children) > 0 {
			w.Cond = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			w.Body = l.lowerNode(children[1])
		}
		return w

	case cst.KReactive:
		r := &Reactive{Base: base}
		if len(children) > 0 {
			r.Cond = l.lowerExpr(children[0])
		}
		if len(children) > 1 {
			r.Body = l.lowerNode(children[1])
		}
		return r

	case cst.KCheck:
		c := &Check{Base: base}
		if len(children) > 0 {
			c.Cond = l.lowerExpr(children[0])
		}
		return c

	case cst.KRef:
		return &Ref{Base: base, Name: identText(n)}

	case cst.KImport:
		return &Import{Base: base, Path: unquote(stringTokenText(n))}

	case cst.KDefdec:
		d := &Defdec{Base: base, Name: identText(n), Params: paramNames(n)}
		if len(children) > 0 {
			d.Body = l.lowerNode(children[len(children)-1])
		}
		return d

	case cst.KDefmacro:
		m := &Defmacro{Base: base, Name: identText(n), Params: paramNames(n)}
		if len(children) > 0 {
			m.Template = children[len(children)-1]
		}
		return m

	case cst.KBodyPlaceholder:
		return &BodyPlaceholder{Base: base}

	case cst.KParamRef:
		return &ParamRef{Typed: Typed{Base: base}, Name: n.Parts[0].Tok.Text}

	case cst.KDefdecCall:
		return &DefdecCall{Typed: Typed{Base: base}, Name: n.Parts[1].Tok.Text, RawArgs: childParts(n)}

	case cst.KMemberAccess:
		// Bare member-access in node position is a zero-argument action
		// call (§4.3).
		return &ActionCall{Base: base, Path: memberPath(n.Parts[0].Tok.Text, ".")}

	case cst.KCall:
		return &ActionCall{Base: base, Path: memberPath(n.Parts[1].Tok.Text, "."), Args: l.args(n)}

	default:
		// KMissing / KError / anything else that reached node position
		// produces no AST node (§4.3): C2 already emitted the diagnostic,
		// and fabricating a placeholder action here would let a parse
		// error flow silently into resolve/check/IR as if it were real
		// code.
		return nil
	}
}

func (l *lowerer) lowerNodeList(ids []cst.NodeID) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n := l.lowerNode(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// lowerExpr lowers id in expression position.
func (l *lowerer) lowerExpr(id cst.NodeID) Expression {
	n := l.tree.Node(id)
	base := l.base(id)

	switch n.Kind {
	case cst.KMemberAccess:
		return &MemberAccess{Typed: Typed{Base: base}, Path: memberPath(n.Parts[0].Tok.Text, ".")}

	case cst.KBlackboardAccess:
		return &BlackboardAccess{Typed: Typed{Base: base}, Path: memberPath(n.Parts[0].Tok.Text, "$")}

	case cst.KCall:
		return &CallExpr{Typed: Typed{Base: base}, Path: memberPath(n.Parts[1].Tok.Text, "."), Args: l.args(n)}

	case cst.KIntLit:
		v, _ := strconv.ParseInt(n.Parts[0].Tok.Text, 10, 64)
		return &Literal{Typed: Typed{Base: base}, Kind: LitInt, IntValue: v}

	case cst.KFloatLit:
		v, _ := strconv.ParseFloat(n.Parts[0].Tok.Text, 64)
		return &Literal{Typed: Typed{Base: base}, Kind: LitFloat, FloatValue: v}

	case cst.KBoolLit:
		return &Literal{Typed: Typed{Base: base}, Kind: LitBool, BoolValue: n.Parts[0].Tok.Text == "true"}

	case cst.KStringLit:
		return &Literal{Typed: Typed{Base: base}, Kind: LitString, StrValue: unquote(n.Parts[0].Tok.Text)}

	case cst.KNullLit:
		return &Literal{Typed: Typed{Base: base}, Kind: LitNull}

	case cst.KEnumLit:
		typeName, member := splitEnumLit(n.Parts[0].Tok.Text)
		return &Literal{Typed: Typed{Base: base}, Kind: LitEnum, EnumType: typeName, EnumMember: member}

	case cst.KBinaryExpr:
		return l.lowerBinary(n, base)

	case cst.KUnaryExpr:
		return l.lowerUnary(n, base)

	case cst.KLogicExpr:
		return l.lowerLogic(n, base)

	case cst.KParamRef:
		return &ParamRef{Typed: Typed{Base: base}, Name: n.Parts[0].Tok.Text}

	case cst.KDefdecCall:
		return &DefdecCall{Typed: Typed{Base: base}, Name: n.Parts[1].Tok.Text, RawArgs: childParts(n)}

	default:
		// A node-shaped form appearing where an expression was expected
		// (e.g. a control form nested directly under an operator): wrap
		// it as a null literal placeholder so type-checking can still
		// run and report the real cause via a separate diagnostic from
		// the pass that required an expression here.
		return &Literal{Typed: Typed{Base: base}, Kind: LitNull}
	}
}

func (l *lowerer) lowerBinary(n *cst.Node, base Base) Expression {
	head := n.Parts[1].Tok
	children := childParts(n)
	be := &BinaryExpr{Typed: Typed{Base: base}}
	if len(children) > 0 {
		be.LHS = l.lowerExpr(children[0])
	}
	if len(children) > 1 {
		be.RHS = l.lowerExpr(children[1])
	}
	be.Op = binaryOpFor(head.Kind)
	return be
}

func (l *lowerer) lowerUnary(n *cst.Node, base Base) Expression {
	head := n.Parts[1].Tok
	children := childParts(n)
	ue := &UnaryExpr{Typed: Typed{Base: base}}
	if len(children) > 0 {
		ue.Operand = l.lowerExpr(children[0])
	}
	if head.Kind == lexer.KW_NOT {
		ue.Op = OpNot
	} else {
		ue.Op = OpNeg
	}
	return ue
}

func (l *lowerer) lowerLogic(n *cst.Node, base Base) Expression {
	head := n.Parts[1].Tok
	le := &LogicExpr{Typed: Typed{Base: base}}
	if head.Kind == lexer.KW_AND {
		le.Op = OpAnd
	} else {
		le.Op = OpOr
	}
	for _, id := range childParts(n) {
		le.Operands = append(le.Operands, l.lowerExpr(id))
	}
	return le
}

func binaryOpFor(k lexer.TokenKind) BinaryOp {
	switch k {
	case lexer.PLUS:
		return OpAdd
	case lexer.MINUS:
		return OpSub
	case lexer.STAR:
		return OpMul
	case lexer.SLASH:
		return OpDiv
	case lexer.PERCENT:
		return OpMod
	case lexer.LT:
		return OpLt
	case lexer.GT:
		return OpGt
	case lexer.LE:
		return OpLe
	case lexer.GE:
		return OpGe
	case lexer.ASSIGNEQ:
		return OpEq
	case lexer.NE:
		return OpNe
	default:
		return OpEq
	}
}

func childParts(n *cst.Node) []cst.NodeID {
	var out []cst.NodeID
	for _, p := range n.Parts {
		if p.Kind == cst.ChildPart {
			out = append(out, p.Child)
		}
	}
	return out
}

func identText(n *cst.Node) string {
	for _, p := range n.Parts {
		if p.Kind == cst.TokenPart && p.Tok.Kind == lexer.IDENT {
			return p.Tok.Text
		}
	}
	return ""
}

func stringTokenText(n *cst.Node) string {
	for _, p := range n.Parts {
		if p.Kind == cst.TokenPart && p.Tok.Kind == lexer.STRING {
			return p.Tok.Text
		}
	}
	return ""
}

func paramNames(n *cst.Node) []string {
	var out []string
	inParens := false
	// Skip the form's own opening '(' so only the parameter list's
	// parentheses delimit parameter names.
	for _, p := range n.Parts[1:] {
		if p.Kind != cst.TokenPart {
			continue
		}
		switch p.Tok.Kind {
		case lexer.LPAREN:
			inParens = true
		case lexer.RPAREN:
			if inParens {
				return out
			}
		case lexer.IDENT:
			if inParens {
				out = append(out, p.Tok.Text)
			}
		}
	}
	return out
}

func parallelPolicy(n *cst.Node) ParallelPolicy {
	switch n.ParallelPolicy {
	case ":all":
		return ParallelAll
	case ":n":
		return ParallelN
	default:
		return ParallelAny
	}
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\t`, "\t", `\r`, "\r")
	return replacer.Replace(s)
}

func splitEnumLit(text string) (typeName, member string) {
	trimmed := strings.TrimPrefix(text, "::")
	parts := strings.SplitN(trimmed, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return trimmed, ""
}
