package types

import (
	"strings"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/diag"
)

// inferExpr computes e's bottom-up type (§4.6), writes it into e's
// resolved_type slot (mutable back-pointer, per the ast package's
// Design-Notes-grounded pattern), and returns it so a caller
// threading through a larger expression doesn't need a second lookup.
func (c *Checker) inferExpr(e ast.Expression) *Type {
	if e == nil {
		return Error
	}
	ty := c.inferExprUncached(e)
	e.SetResolvedType(ty)
	return ty
}

func (c *Checker) inferExprUncached(e ast.Expression) *Type {
	switch v := e.(type) {
	case *ast.Literal:
		return inferLiteral(v)

	case *ast.MemberAccess:
		return symbolType(v.ResolvedSymbol)

	case *ast.BlackboardAccess:
		return symbolType(v.ResolvedSymbol)

	case *ast.BinaryExpr:
		return c.inferBinary(v)

	case *ast.UnaryExpr:
		return c.inferUnary(v)

	case *ast.LogicExpr:
		return c.inferLogic(v)

	case *ast.CallExpr:
		return c.checkCallExpr(v)

	case *ast.ParamRef:
		// A ParamRef surviving to C6 means rewrite left a substitution
		// unresolved; the rewrite pass already reported BS0023/BS0035.
		return Error

	case *ast.DefdecCall:
		// Same: an unexpanded template call surviving past C4 was
		// already diagnosed (BS0023/BS0048) by the rewrite pass.
		return Error

	default:
		return Error
	}
}

func inferLiteral(lit *ast.Literal) *Type {
	switch lit.Kind {
	case ast.LitInt:
		return Int
	case ast.LitFloat:
		return Float
	case ast.LitBool:
		return Bool
	case ast.LitString:
		return String
	case ast.LitNull:
		return Null
	case ast.LitEnum:
		return Enum(lit.EnumType)
	default:
		return Error
	}
}

// symbolType reads the type carried by a resolved member/method
// symbol. Common host primitive spellings ("int", "float64", "bool",
// "string", and their capitalized DWScript-flavored equivalents) map
// onto the builtin kinds so arithmetic/comparison rules apply to host
// members the same as to literals; anything else is an opaque host
// type.
func symbolType(sym *ast.Symbol) *Type {
	if sym == nil {
		return Error
	}
	if sym.Kind == ast.SymEnumMember {
		return Enum(sym.EnumType)
	}
	if sym.Member != nil {
		return hostTypeToType(sym.Member.Type, sym.Member.Nullable)
	}
	if sym.Method != nil {
		return returnTypeOf(sym.Method)
	}
	return Error
}

func hostTypeToType(name string, nullable bool) *Type {
	switch strings.ToLower(name) {
	case "int", "int32", "int64", "integer":
		return Int
	case "float", "float32", "float64":
		return Float
	case "bool", "boolean":
		return Bool
	case "string":
		return String
	default:
		return Host(name, nullable)
	}
}

func (c *Checker) inferBinary(b *ast.BinaryExpr) *Type {
	lhs := c.inferExpr(b.LHS)
	rhs := c.inferExpr(b.RHS)

	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		ty, ok := PromoteArithmetic(lhs, rhs)
		if !ok {
			c.bag.Errorf(diag.BS0022, b.Span(), "arithmetic operator requires numeric operands, got %s and %s", lhs, rhs)
			return Error
		}
		b.PromoteLHS, b.PromoteRHS = NeedsIntToFloatConvert(lhs, rhs)
		return ty

	case ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe, ast.OpEq, ast.OpNe:
		if !Comparable(lhs, rhs) {
			c.bag.Errorf(diag.BS0003, b.Span(), "operands are not comparable: %s and %s", lhs, rhs)
			return Error
		}
		b.PromoteLHS, b.PromoteRHS = NeedsIntToFloatConvert(lhs, rhs)
		return Bool

	default:
		return Error
	}
}

func (c *Checker) inferUnary(u *ast.UnaryExpr) *Type {
	operandTy := c.inferExpr(u.Operand)
	switch u.Op {
	case ast.OpNeg:
		if operandTy.IsError() {
			return Error
		}
		if !operandTy.IsNumeric() {
			c.bag.Errorf(diag.BS0022, u.Span(), "unary - requires a numeric operand, got %s", operandTy)
			return Error
		}
		return operandTy
	case ast.OpNot:
		if operandTy.IsError() {
			return Error
		}
		if !operandTy.IsBool() {
			c.bag.Errorf(diag.BS0004, u.Span(), "unary not requires a boolean operand, got %s", operandTy)
			return Error
		}
		return Bool
	default:
		return Error
	}
}

func (c *Checker) inferLogic(l *ast.LogicExpr) *Type {
	allError := true
	for _, op := range l.Operands {
		ty := c.inferExpr(op)
		if ty.IsError() {
			continue
		}
		allError = false
		if !ty.IsBool() {
			c.bag.Errorf(diag.BS0004, op.Span(), "logical operand must be boolean, got %s", ty)
		}
	}
	if allError {
		return Error
	}
	return Bool
}
