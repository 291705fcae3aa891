package resolve

import (
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
	"github.com/btscript/btc/internal/lexer"
)

// narrowByArity picks the overload of methods matching argCount, the
// first step of §4.5's overload resolution ("Method overloads are
// narrowed first by argument count; further disambiguation occurs in
// C6"), grounded on the SignatureDistance/SignaturesEqual matching
// scheme. If more than one overload shares argCount, BS0012 is
// emitted and the first is used as a placeholder so type-checking can
// still proceed; if none match, the first overload is returned
// unmodified so C6's argument checker can report the concrete BS0005
// mismatch against a real signature instead of resolution giving up.
func narrowByArity(bag *diag.Bag, span lexer.Span, name string, methods []hostmeta.Method, argCount int) hostmeta.Method {
	var matched []hostmeta.Method
	for _, m := range methods {
		if len(m.Params) == argCount {
			matched = append(matched, m)
		}
	}
	if len(matched) == 0 {
		return methods[0]
	}
	if len(matched) > 1 {
		bag.Warnf(diag.BS0012, span, "%q has more than one overload accepting %d argument(s)", name, argCount)
	}
	return matched[0]
}
