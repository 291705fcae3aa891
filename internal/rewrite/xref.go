package rewrite

import (
	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/lexer"
)

// World is the set of already lowered-and-expanded programs available
// to cross-tree reference resolution (§4.4.3): the file under
// resolution plus every file reachable through its `import` forms.
// The query engine (C10) is responsible for using the external file
// loader (§6) to populate this before calling ResolveCrossTree.
type World struct {
	Files     map[string]*ast.Program
	ImportsOf map[string][]string // fileID -> the fileIDs its import forms resolved to
}

// ResolveCrossTree resolves every ref in fileID's program against its
// own trees, then against the trees of its direct imports, writing the
// result into each Ref's ResolvedTree/ResolvedFile.
func ResolveCrossTree(fileID string, w *World, bag *diag.Bag) {
	if detectImportCycle(fileID, w) {
		bag.Errorf(diag.BS0037, lexer.Span{}, "circular import graph starting at %q", fileID)
		return
	}

	prog := w.Files[fileID]
	if prog == nil {
		return
	}
	imports := w.ImportsOf[fileID]

	for _, t := range prog.Trees {
		visited := map[string]bool{fileID + "::" + t.Name: true}
		resolveRefsIn(t.Body, fileID, prog, imports, w, bag, visited)
	}
}

func resolveRefsIn(n ast.Node, fileID string, prog *ast.Program, imports []string, w *World, bag *diag.Bag, visiting map[string]bool) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.Ref:
		resolveOneRef(v, fileID, prog, imports, w, bag, visiting)
	case *ast.Select:
		for _, c := range v.Children {
			resolveRefsIn(c, fileID, prog, imports, w, bag, visiting)
		}
	case *ast.Seq:
		for _, c := range v.Children {
			resolveRefsIn(c, fileID, prog, imports, w, bag, visiting)
		}
	case *ast.ReactiveSelect:
		for _, c := range v.Children {
			resolveRefsIn(c, fileID, prog, imports, w, bag, visiting)
		}
	case *ast.Parallel:
		for _, c := range v.Children {
			resolveRefsIn(c, fileID, prog, imports, w, bag, visiting)
		}
	case *ast.Guard:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	case *ast.If:
		resolveRefsIn(v.Then, fileID, prog, imports, w, bag, visiting)
		resolveRefsIn(v.Else, fileID, prog, imports, w, bag, visiting)
	case *ast.Invert:
		resolveRefsIn(v.Child, fileID, prog, imports, w, bag, visiting)
	case *ast.Repeat:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	case *ast.Timeout:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	case *ast.Cooldown:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	case *ast.While:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	case *ast.Reactive:
		resolveRefsIn(v.Body, fileID, prog, imports, w, bag, visiting)
	}
}

func resolveOneRef(ref *ast.Ref, fileID string, prog *ast.Program, imports []string, w *World, bag *diag.Bag, visiting map[string]bool) {
	if t := findTree(prog, ref.Name); t != nil {
		ref.ResolvedTree = t
		ref.ResolvedFile = fileID
		followRef(t, fileID, prog, imports, w, bag, visiting)
		return
	}
	for _, imp := range imports {
		other := w.Files[imp]
		if other == nil {
			bag.Errorf(diag.BS0040, ref.Span(), "import %q could not be loaded", imp)
			continue
		}
		if t := findTree(other, ref.Name); t != nil {
			ref.ResolvedTree = t
			ref.ResolvedFile = imp
			followRef(t, imp, other, w.ImportsOf[imp], w, bag, visiting)
			return
		}
	}
	bag.Errorf(diag.BS0038, ref.Span(), "unresolved tree reference %q", ref.Name)
}

// followRef walks into the resolved target tree to detect a ref cycle
// (BS0036): if target's own body (transitively) refs back to a tree
// already on the current visiting path, that is circular.
func followRef(target *ast.TreeDef, fileID string, prog *ast.Program, imports []string, w *World, bag *diag.Bag, visiting map[string]bool) {
	key := fileID + "::" + target.Name
	if visiting[key] {
		bag.Errorf(diag.BS0036, target.Span(), "circular tree reference graph at %q", target.Name)
		return
	}
	visiting[key] = true
	resolveRefsIn(target.Body, fileID, prog, imports, w, bag, visiting)
	delete(visiting, key)
}

func findTree(prog *ast.Program, name string) *ast.TreeDef {
	for _, t := range prog.Trees {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func detectImportCycle(start string, w *World) bool {
	visiting := map[string]bool{}
	var dfs func(string) bool
	dfs = func(f string) bool {
		if visiting[f] {
			return true
		}
		visiting[f] = true
		for _, dep := range w.ImportsOf[f] {
			if dfs(dep) {
				return true
			}
		}
		delete(visiting, f)
		return false
	}
	return dfs(start)
}
