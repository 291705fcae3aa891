package types

import (
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/lexer"
)

// InstantiateContext resolves an open generic context/blackboard type
// against the type arguments supplied alongside it (configured, not
// parsed from DSL source — the grammar has no type-argument syntax;
// see DESIGN.md), checking arity and per-argument constraints before
// C5-C7 ever see the provider (§4.7). typeArgs is empty for a
// non-generic provider.
//
// Returns the provider to resolve against (the closed instantiation on
// success, or the original open provider so later passes still have
// something to call into after an error has already been reported).
func InstantiateContext(provider hostmeta.Provider, typeArgs []string, bag *diag.Bag, span lexer.Span) hostmeta.Provider {
	if provider == nil {
		return nil
	}
	if !provider.IsGeneric() {
		return provider
	}
	if len(typeArgs) == 0 {
		bag.Errorf(diag.BS0043, span, "%q is an open generic type and cannot be used without type arguments", provider.TypeName())
		return provider
	}

	params := provider.TypeParams()
	if len(typeArgs) != len(params) {
		bag.Errorf(diag.BS0042, span, "%q expects %d type argument(s), got %d", provider.TypeName(), len(params), len(typeArgs))
		return provider
	}

	closed, ok := provider.Instantiate(typeArgs)
	if !ok {
		for i, p := range params {
			bag.Errorf(diag.BS0041, span, "type argument %q does not satisfy constraint %q for parameter %q", typeArgs[i], p.Constraint, p.ParamName)
		}
		return provider
	}
	return closed
}
