// Package hostmeta defines the context-type metadata provider
// capability set (§6): the external collaborator C5-C7 use to turn
// member paths and calls into host-language symbols. It also ships two
// concrete providers — a table-driven StaticProvider for tests and
// tooling, and a reflect.Type-backed ReflectProvider, the closest Go
// analogue to the source's host-language reflection (per the
// specification's Design Notes on reflection: no dynamic reflection
// should leak past this boundary into the core).
package hostmeta

import "reflect"

// Member describes one field-shaped member of a context or blackboard
// type: a property the DSL can read via a `.` or `$` path segment.
type Member struct {
	Name       string
	Type       string // fully-qualified type name
	Nullable   bool
	Obsolete   bool
}

// Param describes one method parameter.
type Param struct {
	Name string
	Type string
}

// Method describes one callable member: an action, a condition
// predicate, or a plain expression-producing method.
type Method struct {
	Name       string
	Params     []Param
	ReturnType string // "", "Status", "Node", or a value type name
	IsAsync    bool
	Obsolete   bool
}

// EnumType describes a host enum type reachable via `::Type.Member`.
type EnumType struct {
	Name    string
	Members []string
}

// TypeArgConstraint names a generic parameter's constraint (an
// interface or base type the supplied type argument must satisfy).
type TypeArgConstraint struct {
	ParamName  string
	Constraint string
}

// Provider is the capability set injected into C5-C7: enumerate
// members and methods of a type, test interface implementation,
// resolve enum types, report nullability and obsolescence, and
// construct closed generic types from an open type plus arguments.
//
// Implementations must be reference-equatable for the query engine's
// change detection (§4.10): the same logical type description handed
// to two calls of query.SetContextType must compare == under Go's
// interface equality, or the engine's revision bump will fire on every
// read even when nothing changed.
type Provider interface {
	// TypeName returns the fully-qualified name of the context type
	// (or blackboard type) this provider describes.
	TypeName() string

	// Members enumerates the type's field-shaped members.
	Members() []Member

	// Methods enumerates the type's callable members.
	Methods() []Method

	// Member looks up a single member by exact (case-sensitive) name.
	Member(name string) (Member, bool)

	// Method looks up overloads of a method by exact name.
	Method(name string) []Method

	// Implements reports whether the type implements the named
	// interface (used by the generics pass's constraint checks).
	Implements(interfaceName string) bool

	// ResolveEnum resolves a `::Type` reference to its member set.
	ResolveEnum(typeName string) (EnumType, bool)

	// IsGeneric reports whether this type is an open generic type.
	IsGeneric() bool

	// TypeParams returns the open type's generic parameter names and
	// constraints, empty if IsGeneric() is false.
	TypeParams() []TypeArgConstraint

	// Instantiate constructs a closed generic type from this open type
	// and the given type arguments, verifying each argument against
	// its constraint. ok is false if arity or a constraint fails.
	Instantiate(args []string) (Provider, bool)
}

// StaticProvider is a reflection-free, table-driven Provider used by
// tests. The CLI has no flag that loads one.
type StaticProvider struct {
	Name        string
	MemberList  []Member
	MethodList  []Method
	Enums       map[string]EnumType
	Interfaces  map[string]bool
	GenericArgs []TypeArgConstraint
}

func (s *StaticProvider) TypeName() string     { return s.Name }
func (s *StaticProvider) Members() []Member    { return s.MemberList }
func (s *StaticProvider) Methods() []Method    { return s.MethodList }
func (s *StaticProvider) IsGeneric() bool      { return len(s.GenericArgs) > 0 }
func (s *StaticProvider) TypeParams() []TypeArgConstraint { return s.GenericArgs }

func (s *StaticProvider) Member(name string) (Member, bool) {
	for _, m := range s.MemberList {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func (s *StaticProvider) Method(name string) []Method {
	var out []Method
	for _, m := range s.MethodList {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (s *StaticProvider) Implements(name string) bool { return s.Interfaces[name] }

func (s *StaticProvider) ResolveEnum(name string) (EnumType, bool) {
	e, ok := s.Enums[name]
	return e, ok
}

func (s *StaticProvider) Instantiate(args []string) (Provider, bool) {
	if len(args) != len(s.GenericArgs) {
		return nil, false
	}
	// A StaticProvider's constraint satisfaction is assumed to have
	// been validated by whoever constructed the fixture; Instantiate
	// here just produces a closed, non-generic clone for downstream
	// type-reference printing.
	clone := *s
	clone.GenericArgs = nil
	return &clone, true
}

// ReflectProvider adapts a real Go struct type as a context type,
// using reflect the way a systems rewrite uses host-language
// reflection at the C5-C7 boundary only (never deeper).
type ReflectProvider struct {
	T reflect.Type
}

func NewReflectProvider(v any) *ReflectProvider {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return &ReflectProvider{T: t}
}

func (r *ReflectProvider) TypeName() string { return r.T.Name() }

func (r *ReflectProvider) Members() []Member {
	var out []Member
	for i := 0; i < r.T.NumField(); i++ {
		f := r.T.Field(i)
		if !f.IsExported() {
			continue
		}
		_, nullable := f.Tag.Lookup("nullable")
		_, obsolete := f.Tag.Lookup("obsolete")
		out = append(out, Member{Name: f.Name, Type: f.Type.String(), Nullable: nullable, Obsolete: obsolete})
	}
	return out
}

func (r *ReflectProvider) Member(name string) (Member, bool) {
	for _, m := range r.Members() {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func (r *ReflectProvider) Methods() []Method {
	var out []Method
	mt := reflect.PointerTo(r.T)
	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		var params []Param
		ft := m.Func.Type()
		for j := 1; j < ft.NumIn(); j++ { // skip receiver
			params = append(params, Param{Name: "", Type: ft.In(j).String()})
		}
		ret := ""
		if ft.NumOut() > 0 {
			ret = ft.Out(0).String()
		}
		out = append(out, Method{Name: m.Name, Params: params, ReturnType: ret})
	}
	return out
}

func (r *ReflectProvider) Method(name string) []Method {
	var out []Method
	for _, m := range r.Methods() {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

func (r *ReflectProvider) Implements(name string) bool { return false }
func (r *ReflectProvider) ResolveEnum(name string) (EnumType, bool) { return EnumType{}, false }
func (r *ReflectProvider) IsGeneric() bool { return false }
func (r *ReflectProvider) TypeParams() []TypeArgConstraint { return nil }
func (r *ReflectProvider) Instantiate(args []string) (Provider, bool) { return nil, false }
