package types

import (
	"testing"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/lexer"
)

func genericProvider() *hostmeta.StaticProvider {
	return &hostmeta.StaticProvider{
		Name:        "Container",
		GenericArgs: []hostmeta.TypeArgConstraint{{ParamName: "T", Constraint: "Comparable"}},
	}
}

func TestInstantiateContextRejectsOpenType(t *testing.T) {
	bag := diag.NewBag("test")
	InstantiateContext(genericProvider(), nil, bag, lexer.Span{})
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0043 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0043, got %v", bag.All())
	}
}

func TestInstantiateContextArityMismatch(t *testing.T) {
	bag := diag.NewBag("test")
	InstantiateContext(genericProvider(), []string{"Int", "String"}, bag, lexer.Span{})
	found := false
	for _, d := range bag.All() {
		if d.Code == diag.BS0042 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BS0042, got %v", bag.All())
	}
}

func TestInstantiateContextClosesSuccessfully(t *testing.T) {
	bag := diag.NewBag("test")
	closed := InstantiateContext(genericProvider(), []string{"Integer"}, bag, lexer.Span{})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.All())
	}
	if closed.IsGeneric() {
		t.Fatalf("expected closed provider to report non-generic")
	}
}
