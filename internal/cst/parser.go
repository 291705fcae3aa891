package cst

import (
	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/internal/lexer"
)

// Parser is a recursive-descent parser over a token stream, producing
// a lossless CST with error recovery, per §4.2. It never backtracks:
// the grammar's head-token dispatch is enough to decide every
// production without lookahead beyond one token.
type Parser struct {
	toks []lexer.Token
	pos  int
	b    *builder
	bag  *diag.Bag
}

// Parse scans and parses source into a CST, together with any
// recovery diagnostics. The CST is produced even under errors:
// unexpected tokens are wrapped in KError nodes, missing required
// tokens become zero-length KMissing sentinels (§4.2 contracts).
func Parse(file, source string) (*Tree, *diag.Bag) {
	toks := lexer.Tokenize(source)
	p := &Parser{toks: toks, b: newBuilder(source), bag: diag.NewBag(file)}
	root := p.parseProgram()
	p.b.tree.Root = root
	return p.b.tree, p.bag
}

func (p *Parser) cur() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peek(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

// missingToken synthesizes a zero-length sentinel token at the
// current position, for the KMissing recovery case (§4.2 policy b).
func (p *Parser) missingToken() lexer.Token {
	pos := p.cur().Span.Start
	return lexer.Token{Kind: lexer.EOF, Text: "", Span: lexer.Span{Start: pos, End: pos}}
}

// expectRParen consumes a ')' token, or records BS0018 and synthesizes
// a KMissing node in its place.
func (p *Parser) expectRParen() Part {
	if p.cur().Kind == lexer.RPAREN {
		return Part{Kind: TokenPart, Tok: p.advance()}
	}
	// Missing ')': close the form here; the caller is responsible for
	// deciding whether this cascades to EOF (policy b) or just this form.
	id := p.b.reserve()
	mt := p.missingToken()
	p.b.finalize(id, KMissing, []Part{{Kind: TokenPart, Tok: mt}})
	p.bag.Errorf(diag.BS0018, lexer.Span{Start: mt.Span.Start, End: mt.Span.End}, "missing ')'")
	return Part{Kind: ChildPart, Child: id}
}

// parseProgram parses a sequence of top-level forms: tree, defdec,
// defmacro, import (§4.2).
func (p *Parser) parseProgram() NodeID {
	id := p.b.reserve()
	var parts []Part
	for !p.atEOF() {
		if p.cur().Kind == lexer.RPAREN {
			// Stray ')' at top level (policy c).
			tok := p.advance()
			p.bag.Errorf(diag.BS0019, tok.Span, "unexpected ')'")
			continue
		}
		child := p.parseForm()
		parts = append(parts, Part{Kind: ChildPart, Child: child})
	}
	// The EOF token carries whatever trivia followed the last real
	// token past its own trailing newline (a second blank line, a
	// dangling comment line): scanTrailingTrivia only ever attaches the
	// first such newline to the preceding token, the rest lands as the
	// EOF token's leading trivia. Keep it as a Part so ToFullString
	// still reproduces it instead of silently dropping it (§8).
	parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
	p.b.finalize(id, KProgram, parts)
	return id
}

// parseForm parses exactly one form, whether it appears in node
// position or expression position: the grammar's head token decides
// the shape; the node-vs-expression interpretation of ambiguous shapes
// (bare member-access, call) is left to C3 lowering, per §4.2's
// contract that node/expression context is not resolved here.
func (p *Parser) parseForm() NodeID {
	tok := p.cur()
	switch tok.Kind {
	case lexer.LPAREN:
		return p.parseParenForm()
	case lexer.MEMBER:
		p.advance()
		id := p.b.reserve()
		p.b.finalize(id, KMemberAccess, []Part{{Kind: TokenPart, Tok: tok}})
		return id
	case lexer.BBPATH:
		p.advance()
		id := p.b.reserve()
		p.b.finalize(id, KBlackboardAccess, []Part{{Kind: TokenPart, Tok: tok}})
		return id
	case lexer.INT:
		return p.leaf(KIntLit)
	case lexer.FLOAT:
		return p.leaf(KFloatLit)
	case lexer.STRING:
		return p.leaf(KStringLit)
	case lexer.BOOL:
		return p.leaf(KBoolLit)
	case lexer.NULLLIT:
		return p.leaf(KNullLit)
	case lexer.ENUMLIT:
		return p.leaf(KEnumLit)
	case lexer.BODYPLACEHOLDER:
		return p.leaf(KBodyPlaceholder)
	case lexer.IDENT:
		// A bare identifier in form position only appears inside a
		// defdec/defmacro body, naming one of its parameters; it is
		// substituted away before C5 ever sees it (§4.4.1).
		return p.leaf(KParamRef)
	default:
		return p.recoverUnexpected()
	}
}

func (p *Parser) leaf(kind Kind) NodeID {
	tok := p.advance()
	id := p.b.reserve()
	p.b.finalize(id, kind, []Part{{Kind: TokenPart, Tok: tok}})
	return id
}

// recoverUnexpected wraps a single unexpected token in a KError node
// and advances past it (policy a).
func (p *Parser) recoverUnexpected() NodeID {
	tok := p.advance()
	id := p.b.reserve()
	p.bag.Errorf(diag.BS0016, tok.Span, "unexpected token %q", tok.Text)
	p.b.finalize(id, KError, []Part{{Kind: TokenPart, Tok: tok}})
	return id
}

func (p *Parser) parseParenForm() NodeID {
	id := p.b.reserve()
	var parts []Part
	lparen := p.advance() // consume '('
	parts = append(parts, Part{Kind: TokenPart, Tok: lparen})

	head := p.cur()
	kind, extra := p.dispatchHead(id, head, &parts)
	parts = append(parts, extra...)
	parts = append(parts, p.expectRParen())
	p.b.finalize(id, kind, parts)
	return id
}

// dispatchHead decides the node kind from the head token and parses
// the remainder of the form's content (everything up to, but not
// including, the closing ')'). The returned parts are appended after
// the already-consumed '(' and before the ')' the caller will consume.
func (p *Parser) dispatchHead(id NodeID, head lexer.Token, base *[]Part) (Kind, []Part) {
	var parts []Part
	switch head.Kind {
	case lexer.KW_TREE:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseIdentPart())
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KTreeDef, parts

	case lexer.KW_SELECT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseChildListUntilClose()...)
		return KSelect, parts

	case lexer.KW_SEQ:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseChildListUntilClose()...)
		return KSeq, parts

	case lexer.KW_REACTIVE_SELECT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseChildListUntilClose()...)
		return KReactiveSelect, parts

	case lexer.KW_PARALLEL:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		if p.cur().Kind == lexer.KW_ANY || p.cur().Kind == lexer.KW_ALL || p.cur().Kind == lexer.KW_N {
			policyTok := p.advance()
			p.b.tree.Nodes[id].ParallelPolicy = policyTok.Text
			parts = append(parts, Part{Kind: TokenPart, Tok: policyTok})
		}
		parts = append(parts, p.parseChildListUntilClose()...)
		return KParallel, parts

	case lexer.KW_GUARD:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // cond
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // body
		return KGuard, parts

	case lexer.KW_IF:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // cond
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // then
		if p.cur().Kind != lexer.RPAREN && !p.atEOF() {
			parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // else
		}
		return KIf, parts

	case lexer.KW_INVERT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KInvert, parts

	case lexer.KW_REPEAT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // count
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // body
		return KRepeat, parts

	case lexer.KW_TIMEOUT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // seconds
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // body
		return KTimeout, parts

	case lexer.KW_COOLDOWN:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KCooldown, parts

	case lexer.KW_WHILE:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KWhile, parts

	case lexer.KW_REACTIVE:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KReactive, parts

	case lexer.KW_CHECK:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KCheck, parts

	case lexer.KW_REF:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseIdentPart())
		return KRef, parts

	case lexer.KW_IMPORT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		if p.cur().Kind == lexer.STRING {
			parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		}
		return KImport, parts

	case lexer.KW_DEFDEC:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseIdentPart())
		parts = append(parts, p.parseParamList()...)
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // body with <body>
		return KDefdec, parts

	case lexer.KW_DEFMACRO:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseIdentPart())
		parts = append(parts, p.parseParamList()...)
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()}) // template
		return KDefmacro, parts

	case lexer.KW_AND, lexer.KW_OR:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseChildListUntilClose()...)
		return KLogicExpr, parts

	case lexer.KW_NOT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KUnaryExpr, parts

	case lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.ASSIGNEQ, lexer.NE:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KBinaryExpr, parts

	case lexer.PLUS, lexer.STAR, lexer.SLASH, lexer.PERCENT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
		return KBinaryExpr, parts

	case lexer.MINUS:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		first := p.parseForm()
		if p.cur().Kind == lexer.RPAREN || p.atEOF() {
			parts = append(parts, Part{Kind: ChildPart, Child: first})
			return KUnaryExpr, parts
		}
		second := p.parseForm()
		parts = append(parts, Part{Kind: ChildPart, Child: first}, Part{Kind: ChildPart, Child: second})
		return KBinaryExpr, parts

	case lexer.MEMBER:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseArgListUntilClose()...)
		return KCall, parts

	case lexer.IDENT:
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		parts = append(parts, p.parseArgListUntilClose()...)
		return KDefdecCall, parts

	default:
		// Unexpected head: collect it into an error node and skip to
		// the next '(' or matching ')' (policy a), but still return a
		// usable node so the enclosing list can continue.
		tok := p.advance()
		p.bag.Errorf(diag.BS0016, tok.Span, "unexpected token %q in node position", tok.Text)
		parts = append(parts, Part{Kind: TokenPart, Tok: tok})
		for p.cur().Kind != lexer.LPAREN && p.cur().Kind != lexer.RPAREN && !p.atEOF() {
			parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		}
		return KError, parts
	}
}

func (p *Parser) parseIdentPart() Part {
	if p.cur().Kind == lexer.IDENT {
		return Part{Kind: TokenPart, Tok: p.advance()}
	}
	tok := p.missingToken()
	p.bag.Errorf(diag.BS0016, tok.Span, "expected identifier")
	return Part{Kind: TokenPart, Tok: tok}
}

// parseParamList parses a parenthesized list of identifiers, used by
// defdec/defmacro parameter lists.
func (p *Parser) parseParamList() []Part {
	var parts []Part
	if p.cur().Kind != lexer.LPAREN {
		return parts
	}
	parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
	for p.cur().Kind == lexer.IDENT {
		parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
	}
	parts = append(parts, p.expectRParen())
	return parts
}

// parseChildListUntilClose parses zero or more node-position forms
// until ')' or EOF, cascading the missing-')' recovery up through
// every open form when EOF is hit mid-list (policy b).
func (p *Parser) parseChildListUntilClose() []Part {
	var parts []Part
	for p.cur().Kind != lexer.RPAREN && !p.atEOF() {
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
	}
	return parts
}

// parseArgListUntilClose parses call arguments: each argument may be
// preceded by a `:ident` keyword-argument tag, which is kept as a
// token part immediately before the value it tags.
func (p *Parser) parseArgListUntilClose() []Part {
	var parts []Part
	for p.cur().Kind != lexer.RPAREN && !p.atEOF() {
		if p.cur().Kind == lexer.KWARG {
			parts = append(parts, Part{Kind: TokenPart, Tok: p.advance()})
		}
		parts = append(parts, Part{Kind: ChildPart, Child: p.parseForm()})
	}
	return parts
}
