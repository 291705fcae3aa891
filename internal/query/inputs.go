package query

import "fmt"

// ErrAbsentInput is returned by a derived query that reads an input
// no SetXxx call has established yet (§4.10: "reads of absent inputs
// are treated as errors, not silently defaulted").
type ErrAbsentInput struct {
	Kind string
	File FileID
}

func (e *ErrAbsentInput) Error() string {
	return fmt.Sprintf("query: %s not set for file %q", e.Kind, e.File)
}

// SetSourceText writes the source_text input. Writing the same string
// already stored is a no-op; writing a different one bumps the global
// revision (§4.10: "default equality for strings").
func (db *DB) SetSourceText(file FileID, text string) {
	if s, ok := db.sourceText[file]; ok && s.present && s.value == text {
		return
	}
	db.sourceText[file] = &inputSlot[string]{value: text, revision: db.bump(), present: true}
}

func (db *DB) readSourceText(file FileID) (string, error) {
	s, ok := db.sourceText[file]
	if !ok || !s.present {
		return "", &ErrAbsentInput{Kind: "source_text", File: file}
	}
	db.recordRead(kindSourceText, file, s.revision)
	return s.value, nil
}

// SetContextType writes the context_type input. Provider values are
// compared by reference identity, per hostmeta.Provider's documented
// contract (§4.10: "reference identity for host symbols and
// compilations").
func (db *DB) SetContextType(file FileID, ctx ContextSet) {
	if s, ok := db.contextType[file]; ok && s.present && sameContextSet(s.value, ctx) {
		return
	}
	db.contextType[file] = &inputSlot[ContextSet]{value: ctx, revision: db.bump(), present: true}
}

func sameContextSet(a, b ContextSet) bool {
	if a.Context != b.Context || a.Blackboard != b.Blackboard {
		return false
	}
	if len(a.TypeArgs) != len(b.TypeArgs) {
		return false
	}
	for i := range a.TypeArgs {
		if a.TypeArgs[i] != b.TypeArgs[i] {
			return false
		}
	}
	return true
}

func (db *DB) readContextType(file FileID) (ContextSet, error) {
	s, ok := db.contextType[file]
	if !ok || !s.present {
		return ContextSet{}, &ErrAbsentInput{Kind: "context_type", File: file}
	}
	db.recordRead(kindContextType, file, s.revision)
	return s.value, nil
}

// SetRoslynCompilation writes the roslyn_compilation input: an opaque
// handle the cross-tree resolver uses to see other files' state (the
// host-language compilation object in the source system; here, it
// fronts the FileLoader + already-registered files used for imports).
// Compared by reference identity.
func (db *DB) SetRoslynCompilation(file FileID, compilation any) {
	if s, ok := db.roslynCompilation[file]; ok && s.present && s.value == compilation {
		return
	}
	db.roslynCompilation[file] = &inputSlot[any]{value: compilation, revision: db.bump(), present: true}
}

func (db *DB) readRoslynCompilation(file FileID) (any, error) {
	s, ok := db.roslynCompilation[file]
	if !ok || !s.present {
		return nil, &ErrAbsentInput{Kind: "roslyn_compilation", File: file}
	}
	db.recordRead(kindRoslynCompilation, file, s.revision)
	return s.value, nil
}
