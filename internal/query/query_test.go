package query

import (
	"testing"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
)

func queryAgentProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name: "Agent",
		MemberList: []hostmeta.Member{
			{Name: "Health", Type: "Float"},
		},
		MethodList: []hostmeta.Method{
			{Name: "Attack", ReturnType: "Status"},
		},
	}
}

func setupFile(db *DB, file FileID, src string) {
	db.SetSourceText(file, src)
	db.SetContextType(file, ContextSet{Context: queryAgentProvider()})
}

func TestParseCachesUntilSourceChanges(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (.Attack))")

	p1, err := db.Parse("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := db.Parse("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.Tree != p2.Tree {
		t.Fatalf("expected cached tree to be returned unchanged")
	}

	db.SetSourceText("a.bt", "(tree T (seq (.Attack) (.Attack)))")
	p3, err := db.Parse("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p3.Tree == p1.Tree {
		t.Fatalf("expected a fresh tree after source_text changed")
	}
}

func TestTypeCheckPropagatesThroughLowerAndResolve(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (guard (> .Health 0) (.Attack)))")

	tc, err := db.TypeCheck("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.Bag.HasErrors() {
		t.Fatalf("unexpected type errors: %v", tc.Bag.All())
	}

	// Re-reading type_check without any input change must hit cache and
	// still return a usable, resolved program.
	tc2, err := db.TypeCheck("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc2.Prog != tc.Prog {
		t.Fatalf("expected cached program to be returned unchanged")
	}
}

func TestAllDiagnosticsMergesEveryStage(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (guard .Nope (.Attack)))")

	bag, err := db.AllDiagnostics("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0001 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0001 to surface through all_diagnostics, got %v", bag.All())
	}
}

// A parse-stage diagnostic must appear exactly once in all_diagnostics,
// even though Lower's own query reads Parse's result internally — it
// must not also re-merge Parse's bag into its own, or the same
// diagnostic would be double-counted once AllDiagnostics merges every
// stage's bag.
func TestAllDiagnosticsDoesNotDuplicateParseDiagnostics(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (.Attack)")

	bag, err := db.AllDiagnostics("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	count := 0
	for _, d := range bag.All() {
		if d.Code == diag.BS0018 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected BS0018 to appear exactly once, got %d: %v", count, bag.All())
	}
}

func TestEmitIRProducesOptimizedTree(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (select (.Attack) (.Attack)))")

	trees, err := db.EmitIR("a.bt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trees) != 1 {
		t.Fatalf("expected 1 tree, got %d", len(trees))
	}
}

func TestReadingAbsentInputIsAnError(t *testing.T) {
	db := New(nil, nil)
	if _, err := db.Parse("missing.bt"); err == nil {
		t.Fatalf("expected an error reading an unset source_text input")
	}
}

func TestRemoveFileEvictsCachesAndInputs(t *testing.T) {
	db := New(nil, nil)
	setupFile(db, "a.bt", "(tree T (.Attack))")
	if _, err := db.Parse("a.bt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	db.RemoveFile("a.bt")
	if _, err := db.Parse("a.bt"); err == nil {
		t.Fatalf("expected an error after RemoveFile evicted the input")
	}
}

func TestSameSourceTextWriteIsANoOp(t *testing.T) {
	db := New(nil, nil)
	db.SetSourceText("a.bt", "(tree T (.Attack))")
	before := db.rev
	db.SetSourceText("a.bt", "(tree T (.Attack))")
	if db.rev != before {
		t.Fatalf("expected identical source_text write to be a no-op, revision moved from %d to %d", before, db.rev)
	}
}
