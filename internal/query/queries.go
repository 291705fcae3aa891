package query

import (
	"fmt"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/ir"
	"github.com/btscript/btc/internal/lexer"
	"github.com/btscript/btc/internal/resolve"
	"github.com/btscript/btc/internal/rewrite"
	"github.com/btscript/btc/internal/types"
)

// computeDerived is the shared cache/recompute/propagate machinery
// every derived query in this file is built from (§4.10's "Derived
// read" and "Dependency recording" contracts).
func computeDerived[T any](db *DB, k kind, file FileID, compute func() (T, error)) (T, error) {
	key := depKey{k, file}
	if e, ok := db.cacheGet(key); ok && db.depsStillValid(e.deps) {
		db.propagate(e.deps)
		v, _ := e.value.(T)
		return v, nil
	}

	db.log.WithFields(logrusFields(k, file)).Debug("recompute")
	db.pushFrame()
	value, err := func() (res T, rerr error) {
		defer func() {
			if p := recover(); p != nil {
				var zero T
				res = zero
				rerr = fmt.Errorf("query %s/%s panicked: %v", k, file, p)
			}
		}()
		return compute()
	}()
	deps := db.popFrame()

	if err != nil {
		return value, err
	}
	db.cachePut(key, &entry{value: value, deps: deps})
	db.propagate(deps)
	return value, nil
}

// ---- lex ----

// LexResult is the lex query's value: the raw token stream.
type LexResult struct {
	Tokens []lexer.Token
}

func (db *DB) Lex(file FileID) (LexResult, error) {
	return computeDerived(db, kindLex, file, func() (LexResult, error) {
		src, err := db.readSourceText(file)
		if err != nil {
			return LexResult{}, err
		}
		return LexResult{Tokens: lexer.Tokenize(src)}, nil
	})
}

// ---- parse ----

// ParseResult is the parse query's value. Parsing re-tokenizes its own
// source internally (cst.Parse is a source-to-tree function, not a
// tokens-to-tree one), so this query reads source_text directly rather
// than chaining through Lex's cached tokens; both queries still depend
// on the same input, so invalidation behaves identically either way.
type ParseResult struct {
	Tree *cst.Tree
	Bag  *diag.Bag
}

func (db *DB) Parse(file FileID) (ParseResult, error) {
	return computeDerived(db, kindParse, file, func() (ParseResult, error) {
		src, err := db.readSourceText(file)
		if err != nil {
			return ParseResult{}, err
		}
		tree, bag := cst.Parse(string(file), src)
		return ParseResult{Tree: tree, Bag: bag}, nil
	})
}

// ---- lower ----

// LowerResult is the lower query's value: a fully expanded AST (C3's
// lowering plus C4's defdec/macro/cross-tree-ref rewriting folded into
// one query, since the engine's query list has no separate rewrite
// stage).
type LowerResult struct {
	Tree *cst.Tree
	Prog *ast.Program
	Bag  *diag.Bag
}

func (db *DB) Lower(file FileID) (LowerResult, error) {
	return computeDerived(db, kindLower, file, func() (LowerResult, error) {
		p, err := db.Parse(file)
		if err != nil {
			return LowerResult{}, err
		}
		// bag holds only this stage's own diagnostics (rewrite/cross-tree
		// ref resolution); parse's diagnostics stay in p.Bag and are
		// merged in exactly once, by AllDiagnostics, in pipeline order.
		bag := diag.NewBag(string(file))
		prog := ast.Lower(p.Tree, bag)
		rewrite.Expand(prog, p.Tree, bag)
		db.resolveImports(file, prog, bag)
		return LowerResult{Tree: p.Tree, Prog: prog, Bag: bag}, nil
	})
}

// resolveImports builds a rewrite.World covering file and its direct
// imports (loaded via db.loader, §6) and runs cross-tree ref
// resolution over it. An ambiguous import is reported as BS0039 and
// skipped; a missing import, or any import when the loader is nil, adds
// no file. ResolveCrossTree then reports BS0038 for every Ref that no
// visible tree satisfies.
func (db *DB) resolveImports(file FileID, prog *ast.Program, bag *diag.Bag) {
	world := &rewrite.World{
		Files:     map[string]*ast.Program{string(file): prog},
		ImportsOf: map[string][]string{},
	}
	var importIDs []string
	if db.loader != nil {
		for _, imp := range prog.Imports {
			contents, fileID, found, ambiguous := db.loader.Resolve(imp.Path)
			if ambiguous {
				bag.Errorf(diag.BS0039, imp.Span(), "ambiguous import %q", imp.Path)
				continue
			}
			if !found {
				continue
			}
			impTree, impBag := cst.Parse(fileID, contents)
			impProg := ast.Lower(impTree, impBag)
			rewrite.Expand(impProg, impTree, impBag)
			world.Files[fileID] = impProg
			importIDs = append(importIDs, fileID)
		}
	}
	world.ImportsOf[string(file)] = importIDs
	rewrite.ResolveCrossTree(string(file), world, bag)
}

// ---- resolve ----

// ResolveResult is the resolve query's value: the same Program as
// Lower, with every node/expression's ResolvedSymbol/ResolvedType slot
// filled in by name resolution (§4.5).
type ResolveResult struct {
	Prog *ast.Program
	Bag  *diag.Bag
}

func (db *DB) Resolve(file FileID) (ResolveResult, error) {
	return computeDerived(db, kindResolve, file, func() (ResolveResult, error) {
		l, err := db.Lower(file)
		if err != nil {
			return ResolveResult{}, err
		}
		ctxSet, err := db.readContextType(file)
		if err != nil {
			return ResolveResult{}, err
		}
		bag := diag.NewBag(string(file))
		ctx := ctxSet.Context
		if ctx != nil && ctx.IsGeneric() {
			closed := types.InstantiateContext(ctx, ctxSet.TypeArgs, bag, lexer.Span{})
			if closed != nil {
				ctx = closed
			}
		}
		resolverBag := diag.NewBag(string(file))
		resolve.New(ctx, ctxSet.Blackboard, resolverBag).Resolve(l.Prog)
		bag.Merge(resolverBag)
		return ResolveResult{Prog: l.Prog, Bag: bag}, nil
	})
}

// ---- type_check ----

// TypeCheckResult is the type_check query's value: the same Program,
// fully resolved and type-checked (C6/C7).
type TypeCheckResult struct {
	Prog *ast.Program
	Bag  *diag.Bag
}

func (db *DB) TypeCheck(file FileID) (TypeCheckResult, error) {
	return computeDerived(db, kindTypeCheck, file, func() (TypeCheckResult, error) {
		r, err := db.Resolve(file)
		if err != nil {
			return TypeCheckResult{}, err
		}
		bag := diag.NewBag(string(file))
		types.NewChecker(bag).Check(r.Prog)
		types.NewNullChecker(bag).Check(r.Prog)
		return TypeCheckResult{Prog: r.Prog, Bag: bag}, nil
	})
}

// ---- all_diagnostics ----

// AllDiagnostics merges every stage's diagnostics in pipeline order
// (§4.10): parse, lower (incl. rewrite), resolve, type_check.
func (db *DB) AllDiagnostics(file FileID) (*diag.Bag, error) {
	return computeDerived(db, kindAllDiagnostics, file, func() (*diag.Bag, error) {
		p, err := db.Parse(file)
		if err != nil {
			return nil, err
		}
		l, err := db.Lower(file)
		if err != nil {
			return nil, err
		}
		r, err := db.Resolve(file)
		if err != nil {
			return nil, err
		}
		tc, err := db.TypeCheck(file)
		if err != nil {
			return nil, err
		}
		out := diag.NewBag(string(file))
		out.Merge(p.Bag)
		out.Merge(l.Bag)
		out.Merge(r.Bag)
		out.Merge(tc.Bag)
		return out, nil
	})
}

// ---- emit_ir ----

// EmitIR lowers the type-checked program to optimized IR (C8 then C9).
func (db *DB) EmitIR(file FileID) ([]*ir.Tree, error) {
	return computeDerived(db, kindEmitIR, file, func() ([]*ir.Tree, error) {
		tc, err := db.TypeCheck(file)
		if err != nil {
			return nil, err
		}
		l, err := db.Lower(file)
		if err != nil {
			return nil, err
		}
		maxID := len(l.Tree.Nodes)
		lw := ir.NewLowerer(ir.NewCounter(maxID))
		trees := lw.LowerProgram(tc.Prog)
		opt := ir.NewOptimizer(ir.NewCounter(maxID))
		out := make([]*ir.Tree, len(trees))
		for i, t := range trees {
			out[i] = opt.OptimizeTree(t)
		}
		return out, nil
	})
}

func logrusFields(k kind, file FileID) map[string]any {
	return map[string]any{"query": k.String(), "file_id": string(file)}
}
