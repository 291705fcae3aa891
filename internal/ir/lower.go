package ir

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/types"
)

// Lowerer translates a checked AST into IR (C8), preserving node ids
// and origins (§4.8) and minting fresh ids only for nodes the AST
// never had, namely the Convert nodes inserted for int->float
// promotion.
type Lowerer struct {
	counter *Counter
}

func NewLowerer(counter *Counter) *Lowerer {
	return &Lowerer{counter: counter}
}

// LowerProgram lowers every tree in prog.
func (lw *Lowerer) LowerProgram(prog *ast.Program) []*Tree {
	out := make([]*Tree, 0, len(prog.Trees))
	for _, t := range prog.Trees {
		out = append(out, &Tree{
			base: base{Id: t.ID(), Sp: t.Span()},
			Name: t.Name,
			Body: lw.lowerNode(t.Body),
		})
	}
	return out
}

func (lw *Lowerer) lowerNode(n ast.Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.Select:
		return &Selector{base: base{Id: v.ID(), Sp: v.Span()}, Children: lw.lowerNodeList(v.Children)}
	case *ast.Seq:
		return &Sequence{base: base{Id: v.ID(), Sp: v.Span()}, Children: lw.lowerNodeList(v.Children)}
	case *ast.ReactiveSelect:
		return &ReactiveSelect{base: base{Id: v.ID(), Sp: v.Span()}, Children: lw.lowerNodeList(v.Children)}
	case *ast.Parallel:
		return &Parallel{
			base:     base{Id: v.ID(), Sp: v.Span()},
			Policy:   ParallelPolicy(v.Policy),
			N:        lw.lowerExprNode(v.N),
			Children: lw.lowerNodeList(v.Children),
		}
	case *ast.Guard:
		return &Guard{base: base{Id: v.ID(), Sp: v.Span()}, Cond: lw.lowerExprNode(v.Cond), Body: lw.lowerNode(v.Body)}
	case *ast.If:
		return &If{base: base{Id: v.ID(), Sp: v.Span()}, Cond: lw.lowerExprNode(v.Cond), Then: lw.lowerNode(v.Then), Else: lw.lowerNode(v.Else)}
	case *ast.Invert:
		return &Invert{base: base{Id: v.ID(), Sp: v.Span()}, Child: lw.lowerNode(v.Child)}
	case *ast.Repeat:
		return &Repeat{base: base{Id: v.ID(), Sp: v.Span()}, N: lw.lowerExprNode(v.N), Body: lw.lowerNode(v.Body)}
	case *ast.Timeout:
		return &Timeout{base: base{Id: v.ID(), Sp: v.Span()}, Seconds: lw.lowerExprNode(v.Seconds), Body: lw.lowerNode(v.Body)}
	case *ast.Cooldown:
		return &Cooldown{base: base{Id: v.ID(), Sp: v.Span()}, Seconds: lw.lowerExprNode(v.Seconds), Body: lw.lowerNode(v.Body)}
	case *ast.While:
		return &While{base: base{Id: v.ID(), Sp: v.Span()}, Cond: lw.lowerExprNode(v.Cond), Body: lw.lowerNode(v.Body)}
	case *ast.Reactive:
		return &Reactive{base: base{Id: v.ID(), Sp: v.Span()}, Cond: lw.lowerExprNode(v.Cond), Body: lw.lowerNode(v.Body)}
	case *ast.Check:
		return &Condition{base: base{Id: v.ID(), Sp: v.Span()}, Expr: lw.lowerExprNode(v.Cond)}
	case *ast.Ref:
		return &TreeRef{base: base{Id: v.ID(), Sp: v.Span()}, Name: v.Name}
	case *ast.ActionCall:
		return lw.lowerAction(v)
	default:
		return nil
	}
}

func (lw *Lowerer) lowerNodeList(ns []ast.Node) []Node {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		out = append(out, lw.lowerNode(n))
	}
	return out
}

// lowerExprNode lowers an ast.Expression used where IR wants a plain
// Node (control-node fields like Guard.Cond hold expression IR, but
// the IR Node interface doesn't distinguish control/expression shape
// the way ast.Node/ast.Expression do).
func (lw *Lowerer) lowerExprNode(e ast.Expression) Node {
	if e == nil {
		return nil
	}
	return lw.lowerExpr(e)
}

func (lw *Lowerer) lowerAction(v *ast.ActionCall) Node {
	sym := v.ResolvedSymbol
	method := methodRefOf(sym)
	isSubtree := v.ResolvedType != nil && v.ResolvedType.Kind == types.KNode
	isAsync := sym != nil && sym.Method != nil && sym.Method.IsAsync
	return &Action{
		base:      base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType},
		Method:    method,
		Args:      lw.lowerArgs(v.Args),
		IsAsync:   isAsync,
		IsSubtree: isSubtree,
	}
}

func (lw *Lowerer) lowerArgs(args []ast.Arg) []Node {
	out := make([]Node, 0, len(args))
	for _, a := range args {
		out = append(out, lw.lowerExpr(a.Value))
	}
	return out
}

func methodRefOf(sym *ast.Symbol) MethodRef {
	if sym == nil || sym.Method == nil {
		return MethodRef{}
	}
	params := make([]string, len(sym.Method.Params))
	for i, p := range sym.Method.Params {
		params[i] = p.Type
	}
	return MethodRef{DeclaringType: sym.DeclaringType, Name: sym.Method.Name, ParamTypes: params}
}

func (lw *Lowerer) lowerExpr(e ast.Expression) Node {
	switch v := e.(type) {
	case nil:
		return nil
	case *ast.MemberAccess:
		return &MemberLoad{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Member: MemberRef{Segments: v.Path}}
	case *ast.BlackboardAccess:
		return &BlackboardLoad{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Member: MemberRef{Segments: v.Path}}
	case *ast.Literal:
		return lw.lowerLiteral(v)
	case *ast.BinaryExpr:
		return lw.lowerBinary(v)
	case *ast.UnaryExpr:
		return &Unary{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Op: UnaryOp(v.Op), Operand: lw.lowerExpr(v.Operand)}
	case *ast.LogicExpr:
		ops := make([]Node, len(v.Operands))
		for i, op := range v.Operands {
			ops[i] = lw.lowerExpr(op)
		}
		return &Logic{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Op: LogicOp(v.Op), Operands: ops}
	case *ast.CallExpr:
		return &Call{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Method: methodRefOf(v.ResolvedSymbol), Args: lw.lowerArgs(v.Args)}
	default:
		return nil
	}
}

func (lw *Lowerer) lowerLiteral(v *ast.Literal) Node {
	b := base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}
	switch v.Kind {
	case ast.LitInt:
		return &Literal{base: b, Kind: LitInt, IntValue: v.IntValue}
	case ast.LitFloat:
		return &Literal{base: b, Kind: LitFloat, FloatValue: v.FloatValue}
	case ast.LitBool:
		return &Literal{base: b, Kind: LitBool, BoolValue: v.BoolValue}
	case ast.LitString:
		return &Literal{base: b, Kind: LitString, StrValue: v.StrValue}
	case ast.LitNull:
		return &Literal{base: b, Kind: LitNull}
	case ast.LitEnum:
		return &Literal{base: b, Kind: LitEnum, EnumType: v.EnumType, EnumMember: v.EnumMember}
	default:
		return &Literal{base: b, Kind: LitNull}
	}
}

// lowerBinary lowers a BinaryExpr, inserting an explicit Convert on
// whichever side C6 flagged for int->float promotion (§4.8, §8's
// Convert placement invariant) so the backend never has to reason
// about implicit promotion itself.
func (lw *Lowerer) lowerBinary(v *ast.BinaryExpr) Node {
	lhs := lw.lowerExpr(v.LHS)
	rhs := lw.lowerExpr(v.RHS)
	if v.PromoteLHS {
		lhs = lw.convert(lhs, types.Float)
	}
	if v.PromoteRHS {
		rhs = lw.convert(rhs, types.Float)
	}
	return &Binary{base: base{Id: v.ID(), Sp: v.Span(), Typ: v.ResolvedType}, Op: BinaryOp(v.Op), LHS: lhs, RHS: rhs}
}

func (lw *Lowerer) convert(operand Node, target *types.Type) Node {
	id := operand.ID()
	if lw.counter != nil {
		id = lw.counter.Next()
	}
	return &Convert{base: base{Id: id, Sp: operand.Origin(), Typ: target}, Operand: operand, TargetType: target}
}

var _ = hostmeta.Param{} // method signatures flow through hostmeta.Method.Params; referenced for doc purposes only
