// Package engine is the public facade over the incremental query
// engine (C10): the one entry point the CLI and any future editor
// transport are expected to hold onto. It owns the query.DB, injects
// the structured field logger every derived query logs through, and
// adds the few read-only projections (IR text, layout, formatted
// text) and text-edit commands that sit one layer above the raw
// query graph.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/edit"
	"github.com/btscript/btc/internal/format"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/ir"
	"github.com/btscript/btc/internal/layout"
	"github.com/btscript/btc/internal/query"
)

// FileID re-exports query.FileID so callers never need to import
// internal/query directly.
type FileID = query.FileID

// ContextSet re-exports query.ContextSet for the same reason.
type ContextSet = query.ContextSet

// Engine wraps a query.DB with the read-only projections and
// text-edit commands a host (CLI, editor) needs.
type Engine struct {
	db  *query.DB
	log logrus.FieldLogger
}

// New constructs an Engine. loader resolves `import` forms against
// external files (§6); log receives structured recompute records and
// defaults to a standard logrus.Logger when nil.
func New(loader hostmeta.FileLoader, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{db: query.New(loader, log), log: log}
}

// SetSource installs or updates a file's source text.
func (e *Engine) SetSource(file FileID, src string) {
	e.db.SetSourceText(file, src)
}

// SetContext installs or updates a file's host context-type binding.
func (e *Engine) SetContext(file FileID, ctx ContextSet) {
	e.db.SetContextType(file, ctx)
}

// RemoveFile evicts every cache entry and input belonging to file.
func (e *Engine) RemoveFile(file FileID) {
	e.db.RemoveFile(file)
}

// Tokens returns file's token stream (C1).
func (e *Engine) Tokens(file FileID) (query.LexResult, error) {
	return e.db.Lex(file)
}

// Tree returns file's lossless CST (C2).
func (e *Engine) Tree(file FileID) (*cst.Tree, error) {
	r, err := e.db.Parse(file)
	if err != nil {
		return nil, err
	}
	return r.Tree, nil
}

// Diagnostics returns every diagnostic produced by the full
// lex/parse/lower/resolve/type-check pipeline for file, in pipeline
// order (§4.10's all_diagnostics query).
func (e *Engine) Diagnostics(file FileID) ([]diag.Diagnostic, error) {
	bag, err := e.db.AllDiagnostics(file)
	if err != nil {
		return nil, err
	}
	return bag.All(), nil
}

// IR returns file's optimized IR trees, one per top-level tree
// definition (C8/C9).
func (e *Engine) IR(file FileID) ([]*ir.Tree, error) {
	return e.db.EmitIR(file)
}

// PrintIR returns file's optimized IR rendered as the C11
// S-expression form, one form per top-level tree definition joined by
// blank lines.
func (e *Engine) PrintIR(file FileID) (string, error) {
	trees, err := e.db.EmitIR(file)
	if err != nil {
		return "", err
	}
	out := ""
	for i, t := range trees {
		if i > 0 {
			out += "\n"
		}
		out += ir.Print(t)
		out += "\n"
	}
	return out, nil
}

// Layout projects file's optimized IR into the editor-facing layout
// model of C13, one root per top-level tree definition.
func (e *Engine) Layout(file FileID) ([]*layout.Node, error) {
	trees, err := e.db.EmitIR(file)
	if err != nil {
		return nil, err
	}
	diags, err := e.Diagnostics(file)
	if err != nil {
		return nil, err
	}
	out := make([]*layout.Node, len(trees))
	for i, t := range trees {
		out[i] = layout.Build(t, diags)
	}
	return out, nil
}

// Format renders file's canonical source text (C14), operating
// directly on the CST rather than the IR, so it round-trips content
// the type checker would reject too.
func (e *Engine) Format(file FileID, width, indent int) (string, error) {
	if width <= 0 {
		width = format.DefaultWidth
	}
	if indent <= 0 {
		indent = format.DefaultIndent
	}
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	return format.New(tree, width, indent).Format(), nil
}

// editResult re-parses an edit.Result's reformatted source back into
// file's source_text input and returns the fresh diagnostics, so every
// edit command leaves the engine already caught up rather than
// requiring a separate SetSource round-trip from the caller.
func (e *Engine) editResult(file FileID, res edit.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}
	e.SetSource(file, res.Source)
	if res.Diags.HasErrors() {
		return res.Source, fmt.Errorf("edit: reformatted source failed to parse: %v", res.Diags.All())
	}
	return res.Source, nil
}

// AddNode inserts newNodeSource as a new child of parent at index,
// reformats, and commits the result as file's new source text (§6).
func (e *Engine) AddNode(file FileID, parent cst.NodeID, index int, newNodeSource string) (string, error) {
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	res, err := edit.AddNode(string(file), tree, parent, index, newNodeSource)
	return e.editResult(file, res, err)
}

// RemoveNode deletes id from its parent's child list (§6).
func (e *Engine) RemoveNode(file FileID, id cst.NodeID) (string, error) {
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	res, err := edit.RemoveNode(string(file), tree, id)
	return e.editResult(file, res, err)
}

// MoveNode relocates id to become a child of newParent at index (§6).
func (e *Engine) MoveNode(file FileID, id, newParent cst.NodeID, index int) (string, error) {
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	res, err := edit.MoveNode(string(file), tree, id, newParent, index)
	return e.editResult(file, res, err)
}

// WrapNode wraps id in a new "(wrapperHead id)" form (§6).
func (e *Engine) WrapNode(file FileID, id cst.NodeID, wrapperHead string) (string, error) {
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	res, err := edit.WrapNode(string(file), tree, id, wrapperHead)
	return e.editResult(file, res, err)
}

// UnwrapNode replaces id with its body child's source text (§6).
func (e *Engine) UnwrapNode(file FileID, id cst.NodeID) (string, error) {
	tree, err := e.Tree(file)
	if err != nil {
		return "", err
	}
	res, err := edit.UnwrapNode(string(file), tree, id)
	return e.editResult(file, res, err)
}
