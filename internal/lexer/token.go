// Package lexer turns behavior-tree DSL source text into a token stream
// with attached trivia, per component C1 of the specification.
package lexer

import "fmt"

// Position is a single point in source text.
type Position struct {
	Offset int // byte offset from the start of the file
	Line   int // 1-based line number
	Column int // 1-based rune column within the line
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open [Start, End) byte range in source text.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Len reports the span's length in bytes.
func (s Span) Len() int { return s.End.Offset - s.Start.Offset }

// TokenKind classifies a token. See §3 of the specification.
type TokenKind int

const (
	ILLEGAL TokenKind = iota
	EOF

	// Literals
	INT
	FLOAT
	STRING
	BOOL
	NULLLIT
	ENUMLIT // ::TypeName.Member

	// Identifiers and paths
	IDENT
	MEMBER // .Foo[.Bar...]
	BBPATH // $Foo[.Bar...]
	KWARG  // :ident

	// Punctuation
	LPAREN
	RPAREN

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	LT
	GT
	LE
	GE
	ASSIGNEQ // '=' (the DSL's only equality/assign operator, context-sensitive)
	NE

	// Keywords
	KW_TREE
	KW_SELECT
	KW_SEQ
	KW_PARALLEL
	KW_GUARD
	KW_IF
	KW_INVERT
	KW_REPEAT
	KW_TIMEOUT
	KW_COOLDOWN
	KW_WHILE
	KW_REACTIVE
	KW_REACTIVE_SELECT
	KW_CHECK
	KW_DEFDEC
	KW_DEFMACRO
	KW_REF
	KW_IMPORT
	KW_AND
	KW_OR
	KW_NOT
	KW_ANY
	KW_ALL
	KW_N

	BODYPLACEHOLDER // <body>

	COMMENT // ; to end of line -- only surfaces as trivia
)

var tokenKindNames = map[TokenKind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	INT: "INT", FLOAT: "FLOAT", STRING: "STRING", BOOL: "BOOL", NULLLIT: "NULL", ENUMLIT: "ENUM",
	IDENT: "IDENT", MEMBER: "MEMBER", BBPATH: "BBPATH", KWARG: "KWARG",
	LPAREN: "(", RPAREN: ")",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	LT: "<", GT: ">", LE: "<=", GE: ">=", ASSIGNEQ: "=", NE: "!=",
	KW_TREE: "tree", KW_SELECT: "select", KW_SEQ: "seq", KW_PARALLEL: "parallel",
	KW_GUARD: "guard", KW_IF: "if", KW_INVERT: "invert", KW_REPEAT: "repeat",
	KW_TIMEOUT: "timeout", KW_COOLDOWN: "cooldown", KW_WHILE: "while",
	KW_REACTIVE: "reactive", KW_REACTIVE_SELECT: "reactive-select", KW_CHECK: "check",
	KW_DEFDEC: "defdec", KW_DEFMACRO: "defmacro", KW_REF: "ref", KW_IMPORT: "import",
	KW_AND: "and", KW_OR: "or", KW_NOT: "not", KW_ANY: ":any", KW_ALL: ":all", KW_N: ":n",
	BODYPLACEHOLDER: "<body>", COMMENT: "COMMENT",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// keywords maps the literal spelling of reserved words to their kind.
// Looked up only for plain IDENT-shaped lexemes; member/blackboard/enum
// paths are never keywords.
var keywords = map[string]TokenKind{
	"tree": KW_TREE, "select": KW_SELECT, "seq": KW_SEQ, "parallel": KW_PARALLEL,
	"guard": KW_GUARD, "if": KW_IF, "invert": KW_INVERT, "repeat": KW_REPEAT,
	"timeout": KW_TIMEOUT, "cooldown": KW_COOLDOWN, "while": KW_WHILE,
	"reactive": KW_REACTIVE, "reactive-select": KW_REACTIVE_SELECT, "check": KW_CHECK,
	"defdec": KW_DEFDEC, "defmacro": KW_DEFMACRO, "ref": KW_REF, "import": KW_IMPORT,
	"and": KW_AND, "or": KW_OR, "not": KW_NOT,
	"true": BOOL, "false": BOOL, "null": NULLLIT,
}

// TriviaKind classifies a piece of trivia attached to a token.
type TriviaKind int

const (
	TriviaWhitespace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
)

// Trivia is a run of whitespace, a newline, or a line comment.
type Trivia struct {
	Kind TriviaKind
	Text string
	Span Span
}

// Token is a single lexical token with its attached trivia, per §3.
//
// FullSpan extends from the first leading trivia to the last trailing
// trivia; Span excludes trivia. Trivia attribution follows the
// "Roslyn rule": leading trivia is whitespace/comments up to the
// token; trailing trivia extends to and including the next newline.
type Token struct {
	Kind            TokenKind
	Text            string
	Span            Span
	LeadingTrivia   []Trivia
	TrailingTrivia  []Trivia
}

// FullSpan is the token's span including its attached trivia.
func (t Token) FullSpan() Span {
	s := t.Span
	if len(t.LeadingTrivia) > 0 {
		s.Start = t.LeadingTrivia[0].Span.Start
	}
	if len(t.TrailingTrivia) > 0 {
		s.End = t.TrailingTrivia[len(t.TrailingTrivia)-1].Span.End
	}
	return s
}

// FullText reconstructs the token's text together with its trivia, so
// that concatenating FullText() over a token stream reproduces the
// original source exactly (the CST round-trip invariant in §8).
func (t Token) FullText() string {
	var b []byte
	for _, tr := range t.LeadingTrivia {
		b = append(b, tr.Text...)
	}
	b = append(b, t.Text...)
	for _, tr := range t.TrailingTrivia {
		b = append(b, tr.Text...)
	}
	return string(b)
}

func (t Token) IsMissing() bool { return t.Kind == EOF && t.Text == "" && t.Span.Len() == 0 }
