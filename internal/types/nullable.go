package types

import (
	"strings"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/lexer"
)

// NullState is the flow-narrowed nullability of one symbol at a point
// in the tree (§4.7). Unknown defers to the symbol's declared
// nullability.
type NullState int

const (
	StateUnknown NullState = iota
	StateNotNull
	StateMaybeNull
)

// flowEnv is the immutable map threaded through the walk; narrowing
// never mutates a caller's env, it produces a new one, since sibling
// branches (e.g. if's then/else) must see different narrowings of the
// same starting point.
type flowEnv map[string]NullState

func (e flowEnv) narrowed(key string, s NullState) flowEnv {
	ne := make(flowEnv, len(e)+1)
	for k, v := range e {
		ne[k] = v
	}
	ne[key] = s
	return ne
}

// NullChecker runs C7's flow-sensitive nullable analysis (§4.7).
type NullChecker struct {
	bag *diag.Bag
}

func NewNullChecker(bag *diag.Bag) *NullChecker {
	return &NullChecker{bag: bag}
}

func (nc *NullChecker) Check(prog *ast.Program) {
	for _, t := range prog.Trees {
		nc.walkNode(t.Body, flowEnv{})
	}
}

func (nc *NullChecker) walkNode(n ast.Node, env flowEnv) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.Select:
		for _, c := range v.Children {
			nc.walkNode(c, env) // branches are independent, no forward narrowing
		}
	case *ast.Seq:
		cur := env
		for _, c := range v.Children {
			nc.walkNode(c, cur)
			cur = nc.narrowAfter(c, cur) // "check narrows all later siblings" (§4.7)
		}
	case *ast.ReactiveSelect:
		for _, c := range v.Children {
			nc.walkNode(c, env)
		}
	case *ast.Parallel:
		nc.walkExpr(v.N, env)
		for _, c := range v.Children {
			nc.walkNode(c, env)
		}
	case *ast.Guard:
		nc.walkExpr(v.Cond, env)
		nc.walkNode(v.Body, nc.narrowFor(v.Cond, env, true))
	case *ast.If:
		nc.walkExpr(v.Cond, env)
		nc.walkNode(v.Then, nc.narrowFor(v.Cond, env, true))
		nc.walkNode(v.Else, nc.narrowFor(v.Cond, env, false))
	case *ast.Invert:
		nc.walkNode(v.Child, env)
	case *ast.Repeat:
		nc.walkExpr(v.N, env)
		nc.walkNode(v.Body, env)
	case *ast.Timeout:
		nc.walkExpr(v.Seconds, env)
		nc.walkNode(v.Body, env)
	case *ast.Cooldown:
		nc.walkExpr(v.Seconds, env)
		nc.walkNode(v.Body, env)
	case *ast.While:
		nc.walkExpr(v.Cond, env)
		nc.walkNode(v.Body, nc.narrowFor(v.Cond, env, true))
	case *ast.Reactive:
		nc.walkExpr(v.Cond, env)
		nc.walkNode(v.Body, nc.narrowFor(v.Cond, env, true))
	case *ast.Check:
		nc.walkExpr(v.Cond, env)
	case *ast.ActionCall:
		for i := range v.Args {
			nc.walkExpr(v.Args[i].Value, env)
		}
	}
}

// narrowAfter computes the env a Seq's later siblings should see after
// n, which only contributes a narrowing when n is a `check` node
// (§4.7: "check narrows all later siblings inside an enclosing
// sequence").
func (nc *NullChecker) narrowAfter(n ast.Node, env flowEnv) flowEnv {
	chk, ok := n.(*ast.Check)
	if !ok {
		return env
	}
	return nc.narrowFor(chk.Cond, env, true)
}

// narrowFor computes the env that holds inside the branch taken when
// cond evaluates to `positive` (true for guard/if-then/check/while
// bodies, false for if-else), per §4.7's narrowing transitions.
func (nc *NullChecker) narrowFor(cond ast.Expression, env flowEnv, positive bool) flowEnv {
	switch v := cond.(type) {
	case *ast.BinaryExpr:
		key, isNullCmp, _ := nullComparisonOperand(v)
		if !isNullCmp {
			return env
		}
		// (!= x null) true narrows x non-null; (== x null) true narrows
		// x maybe-null. `positive` flips which branch we're computing.
		wantNotNull := (v.Op == ast.OpNe) == positive
		if wantNotNull {
			return env.narrowed(key, StateNotNull)
		}
		return env.narrowed(key, StateMaybeNull)
	case *ast.LogicExpr:
		if v.Op == ast.OpAnd && positive {
			cur := env
			for _, op := range v.Operands {
				cur = nc.narrowFor(op, cur, true)
			}
			return cur
		}
		return env
	default:
		return env
	}
}

func (nc *NullChecker) walkExpr(e ast.Expression, env flowEnv) {
	switch v := e.(type) {
	case nil:
		return
	case *ast.MemberAccess:
		nc.checkDeref(v.Path, v.ResolvedSymbol, env, v.Span())
	case *ast.BlackboardAccess:
		nc.checkDeref(v.Path, v.ResolvedSymbol, env, v.Span())
	case *ast.CallExpr:
		for i := range v.Args {
			nc.walkExpr(v.Args[i].Value, env)
		}
	case *ast.BinaryExpr:
		if key, isNullLit, nullable := nullComparisonOperand(v); isNullLit {
			nc.checkComparisonTriviality(v, key, nullable, env)
			return // the compared operand itself is not a "dereference"
		}
		nc.walkExpr(v.LHS, env)
		nc.walkExpr(v.RHS, env)
	case *ast.UnaryExpr:
		nc.walkExpr(v.Operand, env)
	case *ast.LogicExpr:
		if v.Op == ast.OpAnd {
			cur := env
			for _, op := range v.Operands {
				nc.walkExpr(op, cur)
				cur = nc.narrowFor(op, cur, true)
			}
			return
		}
		for _, op := range v.Operands {
			nc.walkExpr(op, env)
		}
	}
}

// checkDeref warns (BS0044) when reading a member/blackboard access
// that resolves to a nullable host member and the current flow state
// hasn't narrowed it to non-null.
func (nc *NullChecker) checkDeref(path []string, sym *ast.Symbol, env flowEnv, span lexer.Span) {
	if !symbolNullable(sym) {
		return
	}
	if env[nullKey(path)] == StateNotNull {
		return
	}
	nc.bag.Warnf(diag.BS0044, span, "%q may be null here", strings.Join(path, "."))
}

// checkComparisonTriviality reports the two §4.7 flavors of a
// `(op path null)` comparison that adds no information: BS0045/BS0046
// when the operand's *declared* type can never be null (the
// comparison's outcome is a compile-time constant), and BS0047 when
// the operand is already known non-null from the current flow state
// (the check is syntactically live but redundant given prior
// narrowing) — see DESIGN.md for why these are kept distinct.
func (nc *NullChecker) checkComparisonTriviality(b *ast.BinaryExpr, key string, staticallyNullable bool, env flowEnv) {
	if !staticallyNullable {
		if b.Op == ast.OpNe {
			nc.bag.Warnf(diag.BS0045, b.Span(), "%q is never null, comparison is always true", key)
		} else {
			nc.bag.Warnf(diag.BS0046, b.Span(), "%q is never null, comparison is always false", key)
		}
		return
	}
	if env[key] == StateNotNull {
		nc.bag.Infof(diag.BS0047, b.Span(), "%q is already known non-null here, redundant null check", key)
	}
}

func nullKey(path []string) string { return strings.Join(path, ".") }

func symbolNullable(sym *ast.Symbol) bool {
	return sym != nil && sym.Member != nil && sym.Member.Nullable
}

// nullComparisonOperand reports whether b is a `(op path null)` or
// `(op null path)` shape, returning the narrowed symbol's key and
// whether it is statically nullable.
func nullComparisonOperand(b *ast.BinaryExpr) (key string, isNullLit bool, nullable bool) {
	if b.Op != ast.OpEq && b.Op != ast.OpNe {
		return "", false, false
	}
	if k, sym, ok := pathAndSymbol(b.LHS); ok && isNullLiteral(b.RHS) {
		return k, true, symbolNullable(sym)
	}
	if k, sym, ok := pathAndSymbol(b.RHS); ok && isNullLiteral(b.LHS) {
		return k, true, symbolNullable(sym)
	}
	return "", false, false
}

func pathAndSymbol(e ast.Expression) (string, *ast.Symbol, bool) {
	switch v := e.(type) {
	case *ast.MemberAccess:
		return nullKey(v.Path), v.ResolvedSymbol, true
	case *ast.BlackboardAccess:
		return nullKey(v.Path), v.ResolvedSymbol, true
	default:
		return "", nil, false
	}
}

func isNullLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.LitNull
}
