// Package types implements the type representation shared by the
// inferer/checker (C6), the generics and nullable passes (C7), and the
// IR lowering's conversion-insertion logic (C8).
package types

import "fmt"

// Kind classifies a Type.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KNull   // the type of the `null` literal itself
	KStatus // the runtime Status return type
	KNode   // the runtime Node return type (subtree actions)
	KEnum
	KHost // an opaque host-language value type (a context/blackboard member's declared type)
	KError
)

// Type is an immutable type value. Expression IR nodes carry a
// non-null Type (§3); control IR nodes may have a nil *Type.
type Type struct {
	Kind     Kind
	Name     string   // fully-qualified name, for KHost/KEnum
	Nullable bool     // true if this value may be null
	EnumName string   // set when Kind == KEnum
	Args     []*Type  // closed generic type arguments, if any
}

var (
	Int    = &Type{Kind: KInt, Name: "Integer"}
	Float  = &Type{Kind: KFloat, Name: "Float"}
	Bool   = &Type{Kind: KBool, Name: "Boolean"}
	String = &Type{Kind: KString, Name: "String"}
	Null   = &Type{Kind: KNull, Name: "Null"}
	Status = &Type{Kind: KStatus, Name: "Status"}
	Node   = &Type{Kind: KNode, Name: "Node"}

	// Error is the cascade-suppression sentinel (§4.6): any constraint
	// checked against an expression of this type is silently
	// satisfied, so one root cause yields one diagnostic.
	Error = &Type{Kind: KError, Name: "<error>"}
)

// Host constructs an opaque host-value type, optionally nullable.
func Host(name string, nullable bool) *Type {
	return &Type{Kind: KHost, Name: name, Nullable: nullable}
}

// Enum constructs an enum type reference.
func Enum(name string) *Type {
	return &Type{Kind: KEnum, Name: name, EnumName: name}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	s := t.Name
	if t.Nullable {
		s += "?"
	}
	return s
}

// IsError reports whether t is the cascade-suppression sentinel.
func (t *Type) IsError() bool { return t != nil && t.Kind == KError }

// IsNumeric reports whether t is Integer or Float.
func (t *Type) IsNumeric() bool { return t != nil && (t.Kind == KInt || t.Kind == KFloat) }

// IsBool reports whether t is Boolean.
func (t *Type) IsBool() bool { return t != nil && t.Kind == KBool }

// IsNullableCompatible reports whether t can be compared against null:
// it is itself the null literal type, or a host/enum type marked
// nullable.
func (t *Type) IsNullableCompatible() bool {
	if t == nil {
		return false
	}
	return t.Kind == KNull || t.Nullable
}

// Equal reports structural equality between two types, treating the
// error sentinel as equal to everything (cascade suppression, §4.6).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.IsError() || b.IsError() {
		return true
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.Nullable != b.Nullable {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !Equal(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// Comparable reports whether two types may appear on either side of an
// equality/inequality comparison (§4.6): identical types, numeric
// types (promotable), or one side null with the other a
// nullable-compatible type.
func Comparable(a, b *Type) bool {
	if a.IsError() || b.IsError() {
		return true
	}
	if Equal(a, b) {
		return true
	}
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	if a.Kind == KNull && b.IsNullableCompatible() {
		return true
	}
	if b.Kind == KNull && a.IsNullableCompatible() {
		return true
	}
	return false
}

// PromoteArithmetic applies the int/float promotion table from §4.6:
// int,int -> int; any float -> float; string or bool -> error.
func PromoteArithmetic(a, b *Type) (*Type, bool) {
	if a.IsError() || b.IsError() {
		return Error, true
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return nil, false
	}
	if a.Kind == KFloat || b.Kind == KFloat {
		return Float, true
	}
	return Int, true
}

// NeedsIntToFloatConvert reports whether a binary operation combining
// a and b requires an explicit int->float IrConvert on the int side
// (§4.6, §4.8, and the Convert placement invariant in §8).
func NeedsIntToFloatConvert(a, b *Type) (lhs, rhs bool) {
	if a.IsError() || b.IsError() {
		return false, false
	}
	if a.Kind == KInt && b.Kind == KFloat {
		return true, false
	}
	if b.Kind == KInt && a.Kind == KFloat {
		return false, true
	}
	return false, false
}

func (t *Type) GoString() string { return fmt.Sprintf("Type(%s)", t.String()) }
