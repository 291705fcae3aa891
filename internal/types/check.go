package types

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/lexer"
)

// Checker runs C6's two sub-passes over an already name-resolved
// program: bottom-up type inference, then the top-down constraint
// checks that depend on it (§4.6). Both share this one semantic
// model rather than being separate walks, since the constraint checks
// need the freshly inferred types of their children.
type Checker struct {
	bag *diag.Bag
}

func NewChecker(bag *diag.Bag) *Checker {
	return &Checker{bag: bag}
}

// Check infers and checks every tree body in prog, in place.
func (c *Checker) Check(prog *ast.Program) {
	for _, t := range prog.Trees {
		c.checkNode(t.Body)
	}
}

// checkNode applies the top-down node-shaped constraints (§4.6),
// recursing first so every child expression already carries its
// inferred type.
func (c *Checker) checkNode(n ast.Node) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.Select:
		c.checkNodeList(v.Children)
		c.requireTwoChildren(len(v.Children), v.Span(), "select")
	case *ast.Seq:
		c.checkNodeList(v.Children)
		c.requireTwoChildren(len(v.Children), v.Span(), "seq")
	case *ast.ReactiveSelect:
		c.checkNodeList(v.Children)
		c.requireTwoChildren(len(v.Children), v.Span(), "reactive-select")
	case *ast.Parallel:
		c.checkNodeList(v.Children)
		c.requireTwoChildren(len(v.Children), v.Span(), "parallel")
		if v.Policy == ast.ParallelN && v.N != nil {
			c.inferExpr(v.N)
			if !isPositiveIntLiteral(v.N) {
				c.bag.Errorf(diag.BS0013, v.N.Span(), "parallel N count must be a positive integer literal")
			}
		}
	case *ast.Guard:
		c.requireBool(v.Cond, diag.BS0007, "guard condition")
		c.checkNode(v.Body)
	case *ast.If:
		c.requireBool(v.Cond, diag.BS0007, "if condition")
		c.checkNode(v.Then)
		c.checkNode(v.Else)
	case *ast.Invert:
		c.checkNode(v.Child)
	case *ast.Repeat:
		c.inferExpr(v.N)
		if !isPositiveIntLiteral(v.N) {
			c.bag.Errorf(diag.BS0013, v.N.Span(), "repeat count must be a positive integer literal")
		}
		c.checkNode(v.Body)
	case *ast.Timeout:
		c.inferExpr(v.Seconds)
		if !isPositiveNumericLiteral(v.Seconds) {
			c.bag.Errorf(diag.BS0014, v.Seconds.Span(), "timeout duration must be a positive numeric literal")
		}
		c.checkNode(v.Body)
	case *ast.Cooldown:
		c.inferExpr(v.Seconds)
		if !isPositiveNumericLiteral(v.Seconds) {
			c.bag.Errorf(diag.BS0014, v.Seconds.Span(), "cooldown duration must be a positive numeric literal")
		}
		c.checkNode(v.Body)
	case *ast.While:
		c.requireBool(v.Cond, diag.BS0021, "while condition")
		c.checkNode(v.Body)
	case *ast.Reactive:
		c.requireBool(v.Cond, diag.BS0021, "reactive condition")
		c.checkNode(v.Body)
	case *ast.Check:
		c.requireBool(v.Cond, diag.BS0007, "check condition")
	case *ast.ActionCall:
		c.checkActionCall(v)
	}
}

func (c *Checker) checkNodeList(ns []ast.Node) {
	for _, n := range ns {
		c.checkNode(n)
	}
}

func (c *Checker) requireTwoChildren(n int, span lexer.Span, what string) {
	if n < 2 {
		c.bag.Errorf(diag.BS0015, span, "%s requires at least two children", what)
	}
}

func (c *Checker) requireBool(cond ast.Expression, code diag.Code, what string) {
	ty := c.inferExpr(cond)
	if !ty.IsError() && !ty.IsBool() {
		c.bag.Errorf(code, cond.Span(), "%s must be boolean, got %s", what, ty)
	}
}

// checkActionCall validates argument arity/types against the
// resolved method signature and that the method's declared return
// type is the runtime Status or Node type (BS0008).
func (c *Checker) checkActionCall(call *ast.ActionCall) {
	for i := range call.Args {
		c.inferExpr(call.Args[i].Value)
	}
	sym := call.ResolvedSymbol
	if sym == nil || sym.Method == nil {
		return // already diagnosed by the resolver (BS0001/BS0011)
	}
	method := sym.Method
	c.checkArgs(call.Span(), call.Args, method.Params)

	switch method.ReturnType {
	case "Status":
		call.ResolvedType = Status
	case "Node":
		call.ResolvedType = Node
	default:
		c.bag.Errorf(diag.BS0008, call.Span(), "action %q must return Status or Node, declared return type is %q", sym.Name, method.ReturnType)
		call.ResolvedType = Error
	}
}

// checkCallExpr does the same argument validation for an
// expression-position call, yielding its declared return type (which
// need not be Status/Node, unlike an action call).
func (c *Checker) checkCallExpr(call *ast.CallExpr) *Type {
	for i := range call.Args {
		c.inferExpr(call.Args[i].Value)
	}
	sym := call.ResolvedSymbol
	if sym == nil || sym.Method == nil {
		return Error
	}
	method := sym.Method
	c.checkArgs(call.Span(), call.Args, method.Params)
	return returnTypeOf(method)
}

// checkArgs position-matches arguments against declared parameters by
// type, emitting BS0005 on arity mismatch and BS0006 per mismatched
// argument (§4.6). A mismatched overload candidate surviving from C5
// (diag.BS0012, or a zero-arity-match placeholder) is exactly what
// this re-validates against a concrete signature.
func (c *Checker) checkArgs(span lexer.Span, args []ast.Arg, params []hostmeta.Param) {
	if len(args) != len(params) {
		c.bag.Errorf(diag.BS0005, span, "expected %d argument(s), got %d", len(params), len(args))
		return
	}
	for i, p := range params {
		argTy := typeOfExpr(args[i].Value)
		if argTy.IsError() {
			continue
		}
		if !argTypeMatches(argTy, p.Type) {
			c.bag.Errorf(diag.BS0006, args[i].Value.Span(), "argument %d (%s) does not match parameter %q of type %s", i+1, argTy, p.Name, p.Type)
		}
	}
}

// argTypeMatches compares an inferred argument type against a
// parameter's declared host type name, allowing the same int->float
// promotion bottom-up inference allows for arithmetic (§4.6).
func argTypeMatches(argTy *Type, paramType string) bool {
	if argTy.Name == paramType {
		return true
	}
	if argTy.Kind == KInt && paramType == Float.Name {
		return true
	}
	if argTy.Kind == KNull && paramType != "" {
		return true // nullability of the parameter itself is a C7 concern
	}
	return false
}

func returnTypeOf(m *hostmeta.Method) *Type {
	switch m.ReturnType {
	case "Status":
		return Status
	case "Node":
		return Node
	case "":
		return Error
	default:
		return Host(m.ReturnType, false)
	}
}

func isPositiveIntLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.LitInt && lit.IntValue > 0
}

func isPositiveNumericLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	if !ok {
		return false
	}
	switch lit.Kind {
	case ast.LitInt:
		return lit.IntValue > 0
	case ast.LitFloat:
		return lit.FloatValue > 0
	default:
		return false
	}
}

// typeOfExpr reads back an expression's already-inferred type without
// re-inferring it, for call sites (e.g. checkArgs) that run after
// inferExpr has already visited every argument.
func typeOfExpr(e ast.Expression) *Type {
	if t := e.GetResolvedType(); t != nil {
		return t
	}
	return Error
}
