// Package query implements the incremental, dependency-tracked
// computation cache of C10: a revisioned database over three input
// queries (source_text, context_type, roslyn_compilation) and seven
// derived queries (lex, parse, lower, resolve, type_check,
// all_diagnostics, emit_ir), per §4.10.
package query

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/btscript/btc/internal/hostmeta"
)

// FileID identifies a single source file (or REPL snippet) across the
// whole query graph.
type FileID string

// Revision is the engine's single monotonic 64-bit counter (§4.10).
type Revision uint64

type kind int

const (
	kindSourceText kind = iota
	kindContextType
	kindRoslynCompilation
	kindLex
	kindParse
	kindLower
	kindResolve
	kindTypeCheck
	kindAllDiagnostics
	kindEmitIR
)

func (k kind) String() string {
	switch k {
	case kindSourceText:
		return "source_text"
	case kindContextType:
		return "context_type"
	case kindRoslynCompilation:
		return "roslyn_compilation"
	case kindLex:
		return "lex"
	case kindParse:
		return "parse"
	case kindLower:
		return "lower"
	case kindResolve:
		return "resolve"
	case kindTypeCheck:
		return "type_check"
	case kindAllDiagnostics:
		return "all_diagnostics"
	case kindEmitIR:
		return "emit_ir"
	default:
		return "?"
	}
}

type depKey struct {
	kind kind
	file FileID
}

// ContextSet is the value of the context_type input: the host type
// the `.` paths of a file resolve against, its blackboard type (may be
// nil if the file's trees declare no blackboard), and any type
// arguments configured for a generic context (§4.7 — the DSL has no
// type-argument syntax of its own, so this is supplied externally).
type ContextSet struct {
	Context    hostmeta.Provider
	Blackboard hostmeta.Provider
	TypeArgs   []string
}

// frame is one dependency-recording scope: the set of inputs read
// while computing one derived query, with the input revision observed
// at the moment it was read (§4.10: "pushes (kind, file_id,
// current_revision) into the top frame").
type frame map[depKey]Revision

type entry struct {
	value any
	deps  frame
}

// inputSlot[T] stores one input's current value and the revision it
// was last written at.
type inputSlot[T any] struct {
	value    T
	revision Revision
	present  bool
}

// DB is the query engine: single-threaded cooperative, per §4.10 --
// callers must serialize their own access.
type DB struct {
	rev Revision

	sourceText        map[FileID]*inputSlot[string]
	contextType       map[FileID]*inputSlot[ContextSet]
	roslynCompilation map[FileID]*inputSlot[any]

	loader hostmeta.FileLoader

	cache     *lru.Cache[depKey, *entry]
	cacheKeys map[FileID]map[depKey]bool // side index so RemoveFile can purge by file

	frames []frame

	log logrus.FieldLogger
}

// defaultCacheSize bounds the LRU layer sitting in front of the
// revision-checked cache so a long editor session touching many files
// doesn't grow it without limit; eviction here is purely a memory
// heuristic; an evicted-but-still-valid entry just recomputes on next
// read like any other cache miss, so correctness never depends on it.
const defaultCacheSize = 4096

// New constructs an empty query database. loader resolves `import`
// forms against external files when populating cross-tree state for
// the resolve/lower queries (§4.4.3, §6). log receives structured
// per-recompute records (fields "query", "file_id"); a nil log falls
// back to a default logrus.Logger rather than going silent, since the
// engine entry point is expected to inject its own field logger but
// package-level callers (tests, tools) should not be forced to.
func New(loader hostmeta.FileLoader, log logrus.FieldLogger) *DB {
	c, err := lru.New[depKey, *entry](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &DB{
		sourceText:        map[FileID]*inputSlot[string]{},
		contextType:       map[FileID]*inputSlot[ContextSet]{},
		roslynCompilation: map[FileID]*inputSlot[any]{},
		loader:            loader,
		cache:             c,
		cacheKeys:         map[FileID]map[depKey]bool{},
		log:               log,
	}
}

// bump advances the global revision and returns it.
func (db *DB) bump() Revision {
	db.rev++
	return db.rev
}

// ---- frame stack ----

func (db *DB) pushFrame() {
	db.frames = append(db.frames, frame{})
}

func (db *DB) popFrame() frame {
	n := len(db.frames)
	f := db.frames[n-1]
	db.frames = db.frames[:n-1]
	return f
}

// recordRead pushes (kind, file, revision) into the top recording
// frame, if any is active (top-level queries outside any derived
// computation have nothing to record into).
func (db *DB) recordRead(k kind, file FileID, rev Revision) {
	if len(db.frames) == 0 {
		return
	}
	db.frames[len(db.frames)-1][depKey{k, file}] = rev
}

// propagate merges a completed/cached computation's recorded
// dependencies into the enclosing frame (§4.10: "propagated into the
// enclosing frame, so transitively-cached queries still register the
// correct leaves").
func (db *DB) propagate(deps frame) {
	if len(db.frames) == 0 {
		return
	}
	top := db.frames[len(db.frames)-1]
	for k, v := range deps {
		top[k] = v
	}
}

// ---- cache bookkeeping ----

func (db *DB) cacheGet(key depKey) (*entry, bool) {
	return db.cache.Get(key)
}

func (db *DB) cachePut(key depKey, e *entry) {
	db.cache.Add(key, e)
	keys := db.cacheKeys[key.file]
	if keys == nil {
		keys = map[depKey]bool{}
		db.cacheKeys[key.file] = keys
	}
	keys[key] = true
}

// depsStillValid reports whether every recorded dependency's input
// still exists and is still at the revision it was read at.
func (db *DB) depsStillValid(deps frame) bool {
	for k, rev := range deps {
		cur, ok := db.currentInputRevision(k.kind, k.file)
		if !ok || cur != rev {
			return false
		}
	}
	return true
}

func (db *DB) currentInputRevision(k kind, file FileID) (Revision, bool) {
	switch k {
	case kindSourceText:
		s, ok := db.sourceText[file]
		if !ok || !s.present {
			return 0, false
		}
		return s.revision, true
	case kindContextType:
		s, ok := db.contextType[file]
		if !ok || !s.present {
			return 0, false
		}
		return s.revision, true
	case kindRoslynCompilation:
		s, ok := db.roslynCompilation[file]
		if !ok || !s.present {
			return 0, false
		}
		return s.revision, true
	default:
		return 0, false
	}
}

// RemoveFile evicts every cached value and input belonging to file
// (§4.10: "Removing a file evicts all of its caches and inputs").
func (db *DB) RemoveFile(file FileID) {
	delete(db.sourceText, file)
	delete(db.contextType, file)
	delete(db.roslynCompilation, file)
	for key := range db.cacheKeys[file] {
		db.cache.Remove(key)
	}
	delete(db.cacheKeys, file)
}
