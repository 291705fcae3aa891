package ir

import "github.com/btscript/btc/internal/types"

// Optimizer runs the C9 pass pipeline over a lowered tree's body in the
// fixed order the Data Model requires (§4.9): constant folding,
// dead-node elimination, single-child collapse, convert fusion. Each
// pass returns a possibly-new Node; untouched subtrees keep their
// original id and origin, new nodes mint theirs from counter.
type Optimizer struct {
	counter *Counter
}

func NewOptimizer(counter *Counter) *Optimizer {
	return &Optimizer{counter: counter}
}

// OptimizeTree runs the pass pipeline over one tree's body and returns
// a new *Tree with the optimized body (the Tree node itself is never
// replaced, since its id identifies the tree across revisions).
func (o *Optimizer) OptimizeTree(t *Tree) *Tree {
	body := o.optimizeNode(t.Body)
	return &Tree{base: t.base, Name: t.Name, Body: body}
}

func (o *Optimizer) optimizeNode(n Node) Node {
	n = o.foldConstants(n)
	n = o.eliminateDead(n)
	n = o.collapseSingleChild(n)
	n = o.fuseConverts(n)
	return n
}

// ---- children-first recursion helper ----

func (o *Optimizer) optimizeChildren(children []Node) []Node {
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = o.optimizeNode(c)
	}
	return out
}

// ---- constant folding ----

// foldConstants recurses into every composite node first (so folding
// is bottom-up), then folds a Binary/Unary/Logic node whose operands
// are all Literal into a single new Literal, preserving the node's
// resolved type.
func (o *Optimizer) foldConstants(n Node) Node {
	switch v := n.(type) {
	case *Tree:
		return &Tree{base: v.base, Name: v.Name, Body: o.foldConstants(v.Body)}
	case *Selector:
		return &Selector{base: v.base, Children: o.foldChildren(v.Children)}
	case *Sequence:
		return &Sequence{base: v.base, Children: o.foldChildren(v.Children)}
	case *ReactiveSelect:
		return &ReactiveSelect{base: v.base, Children: o.foldChildren(v.Children)}
	case *Parallel:
		return &Parallel{base: v.base, Policy: v.Policy, N: o.foldOpt(v.N), Children: o.foldChildren(v.Children)}
	case *Guard:
		return &Guard{base: v.base, Cond: o.foldConstants(v.Cond), Body: o.foldConstants(v.Body)}
	case *If:
		return &If{base: v.base, Cond: o.foldConstants(v.Cond), Then: o.foldConstants(v.Then), Else: o.foldOpt(v.Else)}
	case *Invert:
		return &Invert{base: v.base, Child: o.foldConstants(v.Child)}
	case *Repeat:
		return &Repeat{base: v.base, N: o.foldConstants(v.N), Body: o.foldConstants(v.Body)}
	case *Timeout:
		return &Timeout{base: v.base, Seconds: o.foldConstants(v.Seconds), Body: o.foldConstants(v.Body)}
	case *Cooldown:
		return &Cooldown{base: v.base, Seconds: o.foldConstants(v.Seconds), Body: o.foldConstants(v.Body)}
	case *While:
		return &While{base: v.base, Cond: o.foldConstants(v.Cond), Body: o.foldConstants(v.Body)}
	case *Reactive:
		return &Reactive{base: v.base, Cond: o.foldConstants(v.Cond), Body: o.foldConstants(v.Body)}
	case *Condition:
		return &Condition{base: v.base, Expr: o.foldConstants(v.Expr)}
	case *Action:
		return &Action{base: v.base, Method: v.Method, Args: o.foldChildren(v.Args), IsAsync: v.IsAsync, IsSubtree: v.IsSubtree}
	case *Call:
		return &Call{base: v.base, Method: v.Method, Args: o.foldChildren(v.Args)}
	case *Unary:
		operand := o.foldConstants(v.Operand)
		if lit, ok := operand.(*Literal); ok {
			if folded, ok := foldUnary(v.Op, lit, v.Typ); ok {
				return &Literal{base: base{Id: v.Id, Sp: v.Sp, Typ: v.Typ}, Kind: folded.Kind, IntValue: folded.IntValue, FloatValue: folded.FloatValue, BoolValue: folded.BoolValue}
			}
		}
		return &Unary{base: v.base, Op: v.Op, Operand: operand}
	case *Binary:
		lhs := o.foldConstants(v.LHS)
		rhs := o.foldConstants(v.RHS)
		if l, ok := lhs.(*Literal); ok {
			if r, ok2 := rhs.(*Literal); ok2 {
				if folded, ok3 := foldBinary(v.Op, l, r, v.Typ); ok3 {
					return &Literal{base: base{Id: v.Id, Sp: v.Sp, Typ: v.Typ}, Kind: folded.Kind, IntValue: folded.IntValue, FloatValue: folded.FloatValue, BoolValue: folded.BoolValue}
				}
			}
		}
		return &Binary{base: v.base, Op: v.Op, LHS: lhs, RHS: rhs}
	case *Logic:
		ops := o.foldChildren(v.Operands)
		allLit := true
		for _, op := range ops {
			if _, ok := op.(*Literal); !ok {
				allLit = false
				break
			}
		}
		if allLit && len(ops) > 0 {
			result := ops[0].(*Literal).BoolValue
			for _, op := range ops[1:] {
				b := op.(*Literal).BoolValue
				if v.Op == OpAnd {
					result = result && b
				} else {
					result = result || b
				}
			}
			return &Literal{base: base{Id: v.Id, Sp: v.Sp, Typ: v.Typ}, Kind: LitBool, BoolValue: result}
		}
		return &Logic{base: v.base, Op: v.Op, Operands: ops}
	case *Convert:
		return &Convert{base: v.base, Operand: o.foldConstants(v.Operand), TargetType: v.TargetType}
	default:
		return n
	}
}

func (o *Optimizer) foldChildren(cs []Node) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = o.foldConstants(c)
	}
	return out
}

func (o *Optimizer) foldOpt(n Node) Node {
	if n == nil {
		return nil
	}
	return o.foldConstants(n)
}

func foldUnary(op UnaryOp, v *Literal, ty *types.Type) (*Literal, bool) {
	switch op {
	case OpNot:
		if v.Kind == LitBool {
			return &Literal{Kind: LitBool, BoolValue: !v.BoolValue}, true
		}
	case OpNeg:
		switch v.Kind {
		case LitInt:
			return &Literal{Kind: LitInt, IntValue: -v.IntValue}, true
		case LitFloat:
			return &Literal{Kind: LitFloat, FloatValue: -v.FloatValue}, true
		}
	}
	return nil, false
}

func foldBinary(op BinaryOp, l, r *Literal, ty *types.Type) (*Literal, bool) {
	isFloat := l.Kind == LitFloat || r.Kind == LitFloat
	lf, rf := asFloat(l), asFloat(r)
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		if !(isNumericLit(l) && isNumericLit(r)) {
			return nil, false
		}
		if isFloat {
			var res float64
			switch op {
			case OpAdd:
				res = lf + rf
			case OpSub:
				res = lf - rf
			case OpMul:
				res = lf * rf
			case OpDiv:
				if rf == 0 {
					return nil, false
				}
				res = lf / rf
			case OpMod:
				return nil, false
			}
			return &Literal{Kind: LitFloat, FloatValue: res}, true
		}
		li, ri := l.IntValue, r.IntValue
		var res int64
		switch op {
		case OpAdd:
			res = li + ri
		case OpSub:
			res = li - ri
		case OpMul:
			res = li * ri
		case OpDiv:
			if ri == 0 {
				return nil, false
			}
			res = li / ri
		case OpMod:
			if ri == 0 {
				return nil, false
			}
			res = li % ri
		}
		return &Literal{Kind: LitInt, IntValue: res}, true
	case OpLt, OpGt, OpLe, OpGe:
		if !(isNumericLit(l) && isNumericLit(r)) {
			return nil, false
		}
		var res bool
		switch op {
		case OpLt:
			res = lf < rf
		case OpGt:
			res = lf > rf
		case OpLe:
			res = lf <= rf
		case OpGe:
			res = lf >= rf
		}
		return &Literal{Kind: LitBool, BoolValue: res}, true
	case OpEq, OpNe:
		var eq bool
		if isNumericLit(l) && isNumericLit(r) {
			eq = lf == rf
		} else if l.Kind == r.Kind {
			switch l.Kind {
			case LitBool:
				eq = l.BoolValue == r.BoolValue
			case LitString:
				eq = l.StrValue == r.StrValue
			case LitNull:
				eq = true
			case LitEnum:
				eq = l.EnumType == r.EnumType && l.EnumMember == r.EnumMember
			default:
				return nil, false
			}
		} else {
			return nil, false
		}
		if op == OpNe {
			eq = !eq
		}
		return &Literal{Kind: LitBool, BoolValue: eq}, true
	}
	return nil, false
}

func isNumericLit(l *Literal) bool { return l.Kind == LitInt || l.Kind == LitFloat }

func asFloat(l *Literal) float64 {
	if l.Kind == LitFloat {
		return l.FloatValue
	}
	return float64(l.IntValue)
}

// ---- dead-node elimination ----

// eliminateDead truncates a Sequence at a false-literal-condition
// child and a Selector at a true-literal-condition child (§4.9):
// everything after such a child can never run.
func (o *Optimizer) eliminateDead(n Node) Node {
	switch v := n.(type) {
	case *Sequence:
		children := o.eliminateChildren(v.Children)
		trimmed := truncateAt(children, func(c Node) bool { return isFalseLiteral(c) })
		return &Sequence{base: v.base, Children: trimmed}
	case *Selector:
		children := o.eliminateChildren(v.Children)
		trimmed := truncateAt(children, func(c Node) bool { return isTrueLiteral(c) })
		return &Selector{base: v.base, Children: trimmed}
	case *Tree:
		return &Tree{base: v.base, Name: v.Name, Body: o.eliminateDead(v.Body)}
	case *ReactiveSelect:
		return &ReactiveSelect{base: v.base, Children: o.eliminateChildren(v.Children)}
	case *Parallel:
		return &Parallel{base: v.base, Policy: v.Policy, N: v.N, Children: o.eliminateChildren(v.Children)}
	case *Guard:
		return &Guard{base: v.base, Cond: v.Cond, Body: o.eliminateDead(v.Body)}
	case *If:
		then := o.eliminateDead(v.Then)
		var els Node
		if v.Else != nil {
			els = o.eliminateDead(v.Else)
		}
		return &If{base: v.base, Cond: v.Cond, Then: then, Else: els}
	case *Invert:
		return &Invert{base: v.base, Child: o.eliminateDead(v.Child)}
	case *Repeat:
		return &Repeat{base: v.base, N: v.N, Body: o.eliminateDead(v.Body)}
	case *Timeout:
		return &Timeout{base: v.base, Seconds: v.Seconds, Body: o.eliminateDead(v.Body)}
	case *Cooldown:
		return &Cooldown{base: v.base, Seconds: v.Seconds, Body: o.eliminateDead(v.Body)}
	case *While:
		return &While{base: v.base, Cond: v.Cond, Body: o.eliminateDead(v.Body)}
	case *Reactive:
		return &Reactive{base: v.base, Cond: v.Cond, Body: o.eliminateDead(v.Body)}
	default:
		return n
	}
}

func (o *Optimizer) eliminateChildren(cs []Node) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = o.eliminateDead(c)
	}
	return out
}

// truncateAt keeps every child up to and including the first one that
// matches pred, dropping the rest as unreachable.
func truncateAt(children []Node, pred func(Node) bool) []Node {
	for i, c := range children {
		if pred(c) {
			return children[:i+1]
		}
	}
	return children
}

// conditionLiteral unwraps the literal a `check` form folded to: the
// lowerer always emits a *Condition wrapping a `check`'s expression
// (lower.go), never a bare child literal, so the truncation triggers
// below must see through that wrapper to notice a folded constant.
func conditionLiteral(n Node) (*Literal, bool) {
	c, ok := n.(*Condition)
	if !ok {
		return nil, false
	}
	l, ok := c.Expr.(*Literal)
	return l, ok
}

func isFalseLiteral(n Node) bool {
	l, ok := conditionLiteral(n)
	return ok && l.Kind == LitBool && !l.BoolValue
}

func isTrueLiteral(n Node) bool {
	l, ok := conditionLiteral(n)
	return ok && l.Kind == LitBool && l.BoolValue
}

// ---- single-child collapse ----

// collapseSingleChild replaces a Selector/Sequence holding exactly one
// child with that child, and cancels a double Invert (§4.9).
func (o *Optimizer) collapseSingleChild(n Node) Node {
	switch v := n.(type) {
	case *Tree:
		return &Tree{base: v.base, Name: v.Name, Body: o.collapseSingleChild(v.Body)}
	case *Selector:
		children := o.collapseChildren(v.Children)
		if len(children) == 1 {
			return children[0]
		}
		return &Selector{base: v.base, Children: children}
	case *Sequence:
		children := o.collapseChildren(v.Children)
		if len(children) == 1 {
			return children[0]
		}
		return &Sequence{base: v.base, Children: children}
	case *ReactiveSelect:
		return &ReactiveSelect{base: v.base, Children: o.collapseChildren(v.Children)}
	case *Parallel:
		return &Parallel{base: v.base, Policy: v.Policy, N: v.N, Children: o.collapseChildren(v.Children)}
	case *Guard:
		return &Guard{base: v.base, Cond: v.Cond, Body: o.collapseSingleChild(v.Body)}
	case *If:
		then := o.collapseSingleChild(v.Then)
		var els Node
		if v.Else != nil {
			els = o.collapseSingleChild(v.Else)
		}
		return &If{base: v.base, Cond: v.Cond, Then: then, Else: els}
	case *Invert:
		child := o.collapseSingleChild(v.Child)
		if inner, ok := child.(*Invert); ok {
			return inner.Child
		}
		return &Invert{base: v.base, Child: child}
	case *Repeat:
		return &Repeat{base: v.base, N: v.N, Body: o.collapseSingleChild(v.Body)}
	case *Timeout:
		return &Timeout{base: v.base, Seconds: v.Seconds, Body: o.collapseSingleChild(v.Body)}
	case *Cooldown:
		return &Cooldown{base: v.base, Seconds: v.Seconds, Body: o.collapseSingleChild(v.Body)}
	case *While:
		return &While{base: v.base, Cond: v.Cond, Body: o.collapseSingleChild(v.Body)}
	case *Reactive:
		return &Reactive{base: v.base, Cond: v.Cond, Body: o.collapseSingleChild(v.Body)}
	default:
		return n
	}
}

func (o *Optimizer) collapseChildren(cs []Node) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = o.collapseSingleChild(c)
	}
	return out
}

// ---- convert fusion ----

// fuseConverts collapses convert(convert(e,T),T) into convert(e,T)
// and convert(literal int N, float) into literal float N (§4.9).
func (o *Optimizer) fuseConverts(n Node) Node {
	switch v := n.(type) {
	case *Tree:
		return &Tree{base: v.base, Name: v.Name, Body: o.fuseConverts(v.Body)}
	case *Selector:
		return &Selector{base: v.base, Children: o.fuseChildren(v.Children)}
	case *Sequence:
		return &Sequence{base: v.base, Children: o.fuseChildren(v.Children)}
	case *ReactiveSelect:
		return &ReactiveSelect{base: v.base, Children: o.fuseChildren(v.Children)}
	case *Parallel:
		return &Parallel{base: v.base, Policy: v.Policy, N: v.N, Children: o.fuseChildren(v.Children)}
	case *Guard:
		return &Guard{base: v.base, Cond: o.fuseConverts(v.Cond), Body: o.fuseConverts(v.Body)}
	case *If:
		var els Node
		if v.Else != nil {
			els = o.fuseConverts(v.Else)
		}
		return &If{base: v.base, Cond: o.fuseConverts(v.Cond), Then: o.fuseConverts(v.Then), Else: els}
	case *Invert:
		return &Invert{base: v.base, Child: o.fuseConverts(v.Child)}
	case *Repeat:
		return &Repeat{base: v.base, N: v.N, Body: o.fuseConverts(v.Body)}
	case *Timeout:
		return &Timeout{base: v.base, Seconds: v.Seconds, Body: o.fuseConverts(v.Body)}
	case *Cooldown:
		return &Cooldown{base: v.base, Seconds: v.Seconds, Body: o.fuseConverts(v.Body)}
	case *While:
		return &While{base: v.base, Cond: o.fuseConverts(v.Cond), Body: o.fuseConverts(v.Body)}
	case *Reactive:
		return &Reactive{base: v.base, Cond: o.fuseConverts(v.Cond), Body: o.fuseConverts(v.Body)}
	case *Condition:
		return &Condition{base: v.base, Expr: o.fuseConverts(v.Expr)}
	case *Action:
		return &Action{base: v.base, Method: v.Method, Args: o.fuseChildren(v.Args), IsAsync: v.IsAsync, IsSubtree: v.IsSubtree}
	case *Call:
		return &Call{base: v.base, Method: v.Method, Args: o.fuseChildren(v.Args)}
	case *Binary:
		return &Binary{base: v.base, Op: v.Op, LHS: o.fuseConverts(v.LHS), RHS: o.fuseConverts(v.RHS)}
	case *Unary:
		return &Unary{base: v.base, Op: v.Op, Operand: o.fuseConverts(v.Operand)}
	case *Logic:
		return &Logic{base: v.base, Op: v.Op, Operands: o.fuseChildren(v.Operands)}
	case *Convert:
		operand := o.fuseConverts(v.Operand)
		if inner, ok := operand.(*Convert); ok && sameType(inner.TargetType, v.TargetType) {
			return &Convert{base: v.base, Operand: inner.Operand, TargetType: v.TargetType}
		}
		if lit, ok := operand.(*Literal); ok && lit.Kind == LitInt && v.TargetType != nil && v.TargetType.Name == "Float" {
			return &Literal{base: base{Id: v.Id, Sp: v.Sp, Typ: v.TargetType}, Kind: LitFloat, FloatValue: float64(lit.IntValue)}
		}
		return &Convert{base: v.base, Operand: operand, TargetType: v.TargetType}
	default:
		return n
	}
}

func (o *Optimizer) fuseChildren(cs []Node) []Node {
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = o.fuseConverts(c)
	}
	return out
}

func sameType(a, b *types.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
