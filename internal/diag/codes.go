package diag

// Code identifies a diagnostic by its stable BSxxxx number. Codes are
// grouped into ranges by concern, mirroring the partitioning in the
// specification: parse, name-resolution, type, structure, defdec,
// blackboard, macro, multi-tree, generics, nullable, obsolete, ICE.
type Code string

const (
	// Parse (C2)
	BS0009 Code = "BS0009" // generic parse error
	BS0016 Code = "BS0016" // unexpected token in node position
	BS0017 Code = "BS0017" // unterminated string literal
	BS0018 Code = "BS0018" // missing closing paren at EOF
	BS0019 Code = "BS0019" // stray closing paren
	BS0020 Code = "BS0020" // malformed literal

	// Name resolution (C5)
	BS0001 Code = "BS0001" // unknown member
	BS0011 Code = "BS0011" // unknown action/call target
	BS0012 Code = "BS0012" // ambiguous overload after arity narrowing
	BS0101 Code = "BS0101" // unresolved tree reference
	BS0102 Code = "BS0102" // duplicate tree definition
	BS0103 Code = "BS0103" // unknown parallel policy
	BS0104 Code = "BS0104" // ambiguous same-priority name candidates (warning)

	// Type (C6)
	BS0002 Code = "BS0002" // type mismatch
	BS0003 Code = "BS0003" // non-comparable operands
	BS0004 Code = "BS0004" // logical operator requires bool
	BS0005 Code = "BS0005" // argument arity mismatch
	BS0006 Code = "BS0006" // argument type mismatch
	BS0007 Code = "BS0007" // condition must be bool
	BS0008 Code = "BS0008" // action must return Status or Node
	BS0021 Code = "BS0021" // while/reactive condition must be bool
	BS0022 Code = "BS0022" // arithmetic on non-numeric operand

	// Structure (C3/C6)
	BS0013 Code = "BS0013" // repeat count must be positive integer literal
	BS0014 Code = "BS0014" // timeout/cooldown duration must be positive numeric literal
	BS0015 Code = "BS0015" // composite requires at least two children
	BS0301 Code = "BS0301" // tree has no root form
	BS0302 Code = "BS0302" // duplicate blackboard declaration

	// Defdec (C4.1)
	BS0023 Code = "BS0023" // undefined defdec name
	BS0024 Code = "BS0024" // defdec parameter arity mismatch
	BS0025 Code = "BS0025" // defdec recursion
	BS0026 Code = "BS0026" // defdec missing <body> placeholder
	BS0027 Code = "BS0027" // defdec has more than one <body> placeholder

	// Blackboard (C5)
	BS0028 Code = "BS0028" // blackboard path has no declared blackboard type
	BS0029 Code = "BS0029" // unknown blackboard member
	BS0030 Code = "BS0030" // obsolete blackboard member
	BS0031 Code = "BS0031" // inaccessible blackboard member

	// Macro (C4.2) -- BS0031 reassigned per Open Question resolution
	BS0048 Code = "BS0048" // unknown macro (was colliding with BS0031)
	BS0032 Code = "BS0032" // macro arity mismatch
	BS0033 Code = "BS0033" // macro expansion depth exceeded
	BS0034 Code = "BS0034" // macro recursion
	BS0035 Code = "BS0035" // invalid macro expansion result

	// Multi-tree / cross-file (C4.3)
	BS0036 Code = "BS0036" // circular ref graph
	BS0037 Code = "BS0037" // circular import graph
	BS0038 Code = "BS0038" // unresolved ref target
	BS0039 Code = "BS0039" // ambiguous import
	BS0040 Code = "BS0040" // missing import file

	// Generics (C7)
	BS0041 Code = "BS0041" // type argument fails constraint
	BS0042 Code = "BS0042" // type argument arity mismatch
	BS0043 Code = "BS0043" // open generic type used where closed required

	// Nullable (C7)
	BS0044 Code = "BS0044" // dereference of maybe-null value (warning)
	BS0045 Code = "BS0045" // trivially-true null comparison
	BS0046 Code = "BS0046" // trivially-false null comparison
	BS0047 Code = "BS0047" // redundant null check on non-nullable (info)

	// Obsolete (C5)
	BS0010 Code = "BS0010" // use of obsolete member

	// Internal compiler error
	BS0901 Code = "BS0901" // invariant violated
)
