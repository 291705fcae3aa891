// Package rewrite implements the three fixed-order AST rewriting
// passes between C3 and C5 (§4.4): defdec expansion, macro expansion,
// and cross-tree reference resolution.
package rewrite

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
)

const maxExpansionDepth = 100

// pushStack returns a new slice with name appended, never aliasing
// stack's backing array — sibling subtrees walk with the same stack
// value and must not observe each other's pushes.
func pushStack(stack []string, name string) []string {
	ns := make([]string, len(stack)+1)
	copy(ns, stack)
	ns[len(stack)] = name
	return ns
}

// Rewriter runs defdec and macro expansion over a single file's AST.
// It owns the CST tree the AST was lowered from, since macro (and, by
// reuse, defdec) expansion clones and re-lowers CST template subtrees
// rather than deep-copying already-lowered AST nodes (§4.4).
type Rewriter struct {
	tree    *cst.Tree
	bag     *diag.Bag
	defdecs map[string]*ast.Defdec
	macros  map[string]*ast.Defmacro
	lowerer *ast.Lowerer
}

// Expand runs defdec then macro expansion over every tree body in
// prog, in place, and returns prog for chaining.
func Expand(prog *ast.Program, tree *cst.Tree, bag *diag.Bag) *ast.Program {
	r := &Rewriter{
		tree:    tree,
		bag:     bag,
		defdecs: make(map[string]*ast.Defdec, len(prog.Defdecs)),
		macros:  make(map[string]*ast.Defmacro, len(prog.Defmacros)),
		lowerer: ast.NewLowerer(tree, bag),
	}
	for _, d := range prog.Defdecs {
		r.defdecs[d.Name] = d
	}
	for _, m := range prog.Defmacros {
		r.macros[m.Name] = m
	}
	for _, t := range prog.Trees {
		t.Body = r.walkNode(t.Body, nil)
	}
	return prog
}

// walkNode recurses through a node-shaped AST subtree, expanding any
// DefdecCall it finds (whether it names a defdec or a macro) and
// replacing it in place with the expanded result.
func (r *Rewriter) walkNode(n ast.Node, stack []string) ast.Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.DefdecCall:
		return r.expandCall(v, stack, true)
	case *ast.Select:
		for i, c := range v.Children {
			v.Children[i] = r.walkNode(c, stack)
		}
	case *ast.Seq:
		for i, c := range v.Children {
			v.Children[i] = r.walkNode(c, stack)
		}
	case *ast.ReactiveSelect:
		for i, c := range v.Children {
			v.Children[i] = r.walkNode(c, stack)
		}
	case *ast.Parallel:
		if v.N != nil {
			v.N = r.walkExpr(v.N, stack)
		}
		for i, c := range v.Children {
			v.Children[i] = r.walkNode(c, stack)
		}
	case *ast.Guard:
		v.Cond = r.walkExpr(v.Cond, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.If:
		v.Cond = r.walkExpr(v.Cond, stack)
		v.Then = r.walkNode(v.Then, stack)
		if v.Else != nil {
			v.Else = r.walkNode(v.Else, stack)
		}
	case *ast.Invert:
		v.Child = r.walkNode(v.Child, stack)
	case *ast.Repeat:
		v.N = r.walkExpr(v.N, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.Timeout:
		v.Seconds = r.walkExpr(v.Seconds, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.Cooldown:
		v.Seconds = r.walkExpr(v.Seconds, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.While:
		v.Cond = r.walkExpr(v.Cond, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.Reactive:
		v.Cond = r.walkExpr(v.Cond, stack)
		v.Body = r.walkNode(v.Body, stack)
	case *ast.Check:
		v.Cond = r.walkExpr(v.Cond, stack)
	case *ast.ActionCall:
		for i := range v.Args {
			v.Args[i].Value = r.walkExpr(v.Args[i].Value, stack)
		}
	}
	return n
}

// walkExpr recurses through an expression-shaped AST subtree.
func (r *Rewriter) walkExpr(e ast.Expression, stack []string) ast.Expression {
	switch v := e.(type) {
	case nil:
		return nil
	case *ast.DefdecCall:
		if n := r.expandCall(v, stack, false); n != nil {
			if expr, ok := n.(ast.Expression); ok {
				return expr
			}
		}
		return v
	case *ast.CallExpr:
		for i := range v.Args {
			v.Args[i].Value = r.walkExpr(v.Args[i].Value, stack)
		}
	case *ast.BinaryExpr:
		v.LHS = r.walkExpr(v.LHS, stack)
		v.RHS = r.walkExpr(v.RHS, stack)
	case *ast.UnaryExpr:
		v.Operand = r.walkExpr(v.Operand, stack)
	case *ast.LogicExpr:
		for i, op := range v.Operands {
			v.Operands[i] = r.walkExpr(op, stack)
		}
	}
	return e
}

// expandCall is the single dispatch point for a DefdecCall AST node:
// it does not know, without consulting the symbol tables, whether the
// source author wrote a defdec-call or a macro-call — the grammar is
// identical (§4.4).
func (r *Rewriter) expandCall(dc *ast.DefdecCall, stack []string, nodeContext bool) ast.Node {
	for _, s := range stack {
		if s == dc.Name {
			if _, isDefdec := r.defdecs[dc.Name]; isDefdec {
				r.bag.Errorf(diag.BS0025, dc.Span(), "recursive defdec expansion of %q", dc.Name)
			} else {
				r.bag.Errorf(diag.BS0034, dc.Span(), "recursive macro expansion of %q", dc.Name)
			}
			return &ast.ActionCall{Base: dc.Base}
		}
	}
	if len(stack) >= maxExpansionDepth {
		r.bag.Errorf(diag.BS0033, dc.Span(), "macro/defdec expansion depth exceeded for %q", dc.Name)
		return &ast.ActionCall{Base: dc.Base}
	}

	if d, ok := r.defdecs[dc.Name]; ok {
		return r.expandDefdec(d, dc, pushStack(stack, dc.Name))
	}
	if m, ok := r.macros[dc.Name]; ok {
		return r.expandMacro(m, dc, pushStack(stack, dc.Name), nodeContext)
	}

	if nodeContext {
		r.bag.Errorf(diag.BS0023, dc.Span(), "undefined decorator %q", dc.Name)
	} else {
		r.bag.Errorf(diag.BS0048, dc.Span(), "undefined macro %q", dc.Name)
	}
	return &ast.ActionCall{Base: dc.Base}
}
