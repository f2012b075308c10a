package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marl-lang/phcore/lexer"
	"github.com/marl-lang/phcore/token"
)

// descCall and descIndex back the function-call `(` and subscript `[`
// postfix forms: these never arrive from the lexer as OP tokens (they
// are structural LPAREN/OSB tokens), but the operator table still
// carries their precedence/associativity, so the builder looks them
// up once at init rather than hard-coding the precedence number.
var (
	descCall, _  = token.LookupOperator("(")
	descIndex, _ = token.LookupOperator("[")
)

// ceilAll is the loosest precedence threshold the builder ever climbs
// to. The table's prec-22 comma is deliberately not wired as a binary
// operator here: every comma-separated construct (call arguments,
// array/list elements) is built by dedicated list-parsing code that
// consumes commas itself, so a bare expression never needs to absorb
// one via the generic infix loop.
const ceilAll = 21

// Builder turns a token stream into an expression/statement tree,
// accumulating syntax errors rather than stopping at the first one
// (§4.7 "Failure semantics"): each bad statement is reported and
// skipped up to its next `;`, and the builder moves on.
type Builder struct {
	l      *lexer.Lexer
	errors []string
	pend   []token.Token // raw tokens read ahead and requeued by cast folding

	cur, peek, peekPeek token.Token
}

// New wraps an already-constructed lexer.
func New(l *lexer.Lexer) *Builder {
	b := &Builder{l: l}
	b.cur = b.nextFolded()
	b.peek = b.nextFolded()
	b.peekPeek = b.nextFolded()
	return b
}

// NewFromSource is a convenience constructor for a fresh source unit.
func NewFromSource(src string, startLine int) *Builder {
	return New(lexer.New(src, startLine))
}

// Errors returns every syntax error accumulated so far.
func (b *Builder) Errors() []string { return b.errors }

func (b *Builder) errorf(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf("line %d: "+format, append([]any{tok.Line}, args...)...)
	b.errors = append(b.errors, msg)
}

func (b *Builder) nextToken() {
	b.cur = b.peek
	b.peek = b.peekPeek
	b.peekPeek = b.nextFolded()
}

// rawNext returns the next lexer token, draining any tokens a prior
// fold attempt had to requeue before reading further ahead.
func (b *Builder) rawNext() token.Token {
	if len(b.pend) > 0 {
		t := b.pend[0]
		b.pend = b.pend[1:]
		return t
	}
	return b.l.NextToken()
}

// nextFolded applies §4.6's type-cast folding (`( TYPE )` -> one OP
// token) on the fly, mirroring lexer.Tokenize's batch pass so the
// builder sees identical cast tokens whether fed one at a time or via
// a pre-scanned slice.
func (b *Builder) nextFolded() token.Token {
	t1 := b.rawNext()
	if t1.Kind != token.LPAREN {
		return t1
	}
	t2 := b.rawNext()
	if !t2.Kind.Has(token.KEYWORD) {
		b.pend = append(b.pend, t2)
		return t1
	}
	t3 := b.rawNext()
	var d *token.OpDescriptor
	var ok bool
	if kw, isKw := t2.Aux.(token.KeywordID); isKw {
		d, ok = token.CastOperator(kw)
	}
	if t3.Kind != token.RPAREN || !ok {
		b.pend = append(b.pend, t2, t3)
		return t1
	}
	return token.Token{Start: t1.Start, End: t3.End, Line: t1.Line, Kind: token.OP, Literal: d.Text, Aux: d}
}

func (b *Builder) expectPeek(k token.Kind) bool {
	if b.peek.Kind == k {
		b.nextToken()
		return true
	}
	b.errorf(b.peek, "expected %s, got %s", k, b.peek.Kind)
	return false
}

func (b *Builder) peekIsKeyword(ids ...token.KeywordID) bool {
	if !b.peek.Kind.Has(token.KEYWORD) {
		return false
	}
	for _, id := range ids {
		if b.peek.Aux == id {
			return true
		}
	}
	return false
}

// ParseProgram consumes the whole token stream, recovering from a bad
// statement by resynchronizing at the next `;` (§4.7, supplemented by
// original_source/parse.c's statement-level panic mode).
func (b *Builder) ParseProgram() *Program {
	prog := &Program{}
	for b.cur.Kind != token.EOF {
		if b.cur.Kind == token.SEMI {
			b.nextToken()
			continue
		}
		if b.cur.Kind == token.INLINE_HTML {
			prog.Statements = append(prog.Statements, &InlineHTML{Tok: b.cur, Text: b.cur.Literal})
			b.nextToken()
			continue
		}
		before := len(b.errors)
		tok := b.cur
		expr := b.parseExpression(ceilAll)
		if len(b.errors) > before || expr == nil {
			b.recoverToSemi()
			b.nextToken()
			continue
		}
		prog.Statements = append(prog.Statements, &ExprStmt{Tok: tok, Expr: expr})
		if b.peek.Kind == token.SEMI {
			b.nextToken()
		}
		b.nextToken()
	}
	return prog
}

// recoverToSemi advances past tokens until the current token is `;`
// or EOF, per §4.7's "continues with the next statement delimited by
// `;`" failure semantics.
func (b *Builder) recoverToSemi() {
	for b.cur.Kind != token.SEMI && b.cur.Kind != token.EOF {
		b.nextToken()
	}
}

// ParseExpression parses a single top-level expression (e.g. for
// embedding a script-fragment evaluator); callers driving a whole
// source unit should use ParseProgram instead.
func (b *Builder) ParseExpression() Node {
	return b.parseExpression(ceilAll)
}

// parseExpression is the precedence-climbing core of §4.7: prec
// numbers run 1 (tightest) to 22 (loosest), so "ceiling" is the
// loosest precedence this call is allowed to fold in; associativity
// controls how tight the right-hand recursion's own ceiling is.
func (b *Builder) parseExpression(ceiling int) Node {
	left := b.parsePrefix()
	if left == nil {
		return nil
	}
	lastPrec := -1
	for {
		desc, closeKind, ok := b.peekInfixDesc()
		if !ok || desc.Prec > ceiling {
			break
		}
		if desc.Prec == lastPrec && desc.Assoc == token.NonAssoc {
			// a < b < c: non-associative operators never chain.
			b.errorf(b.peek, "non-associative operator %s cannot be chained", desc.Text)
			break
		}
		b.nextToken()
		switch {
		case desc.ID == token.OpTernary:
			left = b.parseTernary(left, desc)
		case desc.ID == token.OpPostIncr, desc.ID == token.OpPostDecr:
			left = &Op{Tok: b.cur, Desc: desc, Left: left}
		case desc.ID == token.OpMember, desc.ID == token.OpStaticMember:
			left = b.parseMemberAccess(left, desc)
		case desc.ID == token.OpIndex:
			left = b.parseIndex(left, desc, closeKind)
		case desc.ID == token.OpCall:
			left = b.parseCall(left, desc)
		default:
			left = b.parseBinary(left, desc)
		}
		lastPrec = desc.Prec
	}
	return left
}

// peekInfixDesc resolves the lookahead token to an operator
// descriptor usable in infix/postfix position, covering the shapes
// that never arrive as an OP-kind token: `(` call, `[` subscript, the
// `{` legacy-subscript rewrite of `$a{'k'}` (§4.7 "Node extraction"),
// and `=`, which the lexer tags EQUAL while still attaching its
// descriptor.
func (b *Builder) peekInfixDesc() (*token.OpDescriptor, token.Kind, bool) {
	switch {
	case b.peek.Kind.Has(token.OP):
		if d := b.peek.Op(); d != nil {
			return d, 0, true
		}
		return nil, 0, false
	case b.peek.Kind == token.EQUAL:
		if d := b.peek.Op(); d != nil {
			return d, 0, true
		}
		return nil, 0, false
	case b.peek.Kind.Has(token.KEYWORD):
		if d, ok := token.LookupOperator(b.peek.Literal); ok {
			return d, 0, true
		}
		return nil, 0, false
	case b.peek.Kind == token.LPAREN:
		return descCall, token.RPAREN, true
	case b.peek.Kind == token.OSB:
		return descIndex, token.CSB, true
	case b.peek.Kind == token.OCB:
		return descIndex, token.CCB, true
	default:
		return nil, 0, false
	}
}

func rightCeiling(desc *token.OpDescriptor) int {
	if desc.Assoc == token.RightAssoc {
		return desc.Prec
	}
	return desc.Prec - 1
}

func (b *Builder) parseBinary(left Node, desc *token.OpDescriptor) Node {
	tok := b.cur
	b.nextToken()
	right := b.parseExpression(rightCeiling(desc))
	switch desc.ID {
	case token.OpAssign, token.OpRefAssign:
		if !IsLValue(left) && !isListLeaf(left) {
			b.errorf(tok, "invalid assignment target")
		}
	}
	return &Op{Tok: tok, Desc: desc, Left: left, Right: right}
}

func isListLeaf(n Node) bool {
	l, ok := n.(*Leaf)
	return ok && l.Kind == ListConstructLeaf
}

func (b *Builder) parseMemberAccess(left Node, desc *token.OpDescriptor) Node {
	tok := b.cur
	b.nextToken()

	var name Node
	switch {
	case b.cur.Kind == token.VARIABLE:
		name = &Leaf{Tok: b.cur, Kind: VariableLeaf, Lit: variableName(b.cur)}
	case b.cur.Kind.Has(token.ID) || b.cur.Kind.Has(token.KEYWORD):
		name = &Leaf{Tok: b.cur, Kind: SimpleStringLeaf, Lit: b.cur.Literal}
	case b.cur.Kind == token.OCB:
		b.nextToken()
		name = b.parseExpression(ceilAll)
		if !b.expectPeek(token.CCB) {
			return nil
		}
	default:
		b.errorf(b.cur, "expected member name, got %s", b.cur.Kind)
		return nil
	}

	op := &Op{Tok: tok, Desc: desc, Left: left, Right: name}
	if b.peek.Kind == token.LPAREN {
		b.nextToken()
		return b.parseCall(op, descCall)
	}
	return op
}

func (b *Builder) parseIndex(left Node, desc *token.OpDescriptor, closeKind token.Kind) Node {
	tok := b.cur
	if b.peek.Kind == closeKind {
		b.nextToken()
		return &Op{Tok: tok, Desc: desc, Left: left} // `$a[] = ...` push form
	}
	b.nextToken()
	idx := b.parseExpression(ceilAll)
	if !b.expectPeek(closeKind) {
		return nil
	}
	return &Op{Tok: tok, Desc: desc, Left: left, Right: idx}
}

func (b *Builder) parseCall(callee Node, desc *token.OpDescriptor) Node {
	tok := b.cur
	args := b.parseArgList(token.RPAREN)
	return &Op{Tok: tok, Desc: desc, Left: callee, Args: args}
}

func (b *Builder) parseArgList(close token.Kind) []Node {
	var args []Node
	if b.peek.Kind == close {
		b.nextToken()
		return args
	}
	b.nextToken()
	args = append(args, b.parseArgItem())
	for b.peek.Kind == token.COMMA {
		b.nextToken()
		b.nextToken()
		args = append(args, b.parseArgItem())
	}
	if !b.expectPeek(close) {
		return nil
	}
	return args
}

func (b *Builder) parseArgItem() Node {
	if b.cur.Kind == token.AMPER {
		tok := b.cur
		b.nextToken()
		inner := b.parseExpression(ceilAll)
		return &Op{Tok: tok, Desc: descRefMarker, Right: inner, Flags: ByRef}
	}
	return b.parseExpression(ceilAll)
}

// descRefMarker tags a by-reference call argument (`f(&$x)`); it has
// no table entry of its own since it never participates in precedence
// climbing, only in wrapping an already-parsed argument.
var descRefMarker = &token.OpDescriptor{Text: "&", ID: token.OpBitAnd, Prec: 0, Opcode: "OP_ARG_REF"}

func (b *Builder) parseTernary(cond Node, desc *token.OpDescriptor) Node {
	tok := b.cur
	if b.peek.Kind == token.COLON {
		b.nextToken()
		b.nextToken()
		elseExpr := b.parseExpression(desc.Prec)
		return &Op{Tok: tok, Desc: desc, Cond: cond, Right: elseExpr}
	}
	b.nextToken()
	then := b.parseExpression(ceilAll)
	if !b.expectPeek(token.COLON) {
		return nil
	}
	b.nextToken()
	elseExpr := b.parseExpression(desc.Prec)
	return &Op{Tok: tok, Desc: desc, Cond: cond, Left: then, Right: elseExpr}
}

// parsePrefix dispatches on the current token to build a leaf, a
// prefix/unary operator node, or a parenthesized/bracketed construct.
func (b *Builder) parsePrefix() Node {
	tok := b.cur
	switch {
	case tok.Kind == token.VARIABLE:
		return &Leaf{Tok: tok, Kind: VariableLeaf, Lit: variableName(tok)}
	case tok.Kind == token.INT:
		return b.parseIntLiteral(tok)
	case tok.Kind == token.FLOAT:
		return b.parseFloatLiteral(tok)
	case tok.Kind == token.SSTR:
		return &Leaf{Tok: tok, Kind: SimpleStringLeaf, Lit: unescapeSingleQuoted(stripQuotes(tok.Literal))}
	case tok.Kind == token.NOWDOC:
		return &Leaf{Tok: tok, Kind: SimpleStringLeaf, Lit: tok.Literal}
	case tok.Kind == token.DSTR, tok.Kind == token.BSTR:
		return &Leaf{Tok: tok, Kind: InterpolatedStringLeaf, Lit: b.segmentInterpolated(stripQuotes(tok.Literal), tok.Line)}
	case tok.Kind == token.HEREDOC:
		return &Leaf{Tok: tok, Kind: InterpolatedStringLeaf, Lit: b.segmentInterpolated(tok.Literal, tok.Line)}
	case tok.Kind == token.LPAREN:
		return b.parseGrouped()
	case tok.Kind == token.OSB:
		return b.parseArrayLiteral(tok, token.CSB)
	case tok.IsKeyword(token.KwTrue):
		return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: true}
	case tok.IsKeyword(token.KwFalse):
		return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: false}
	case tok.IsKeyword(token.KwNull):
		return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: nil}
	case tok.IsKeyword(token.KwArray):
		return b.parseArrayKeyword(tok)
	case tok.IsKeyword(token.KwList):
		return b.parseListConstruct(tok)
	case tok.IsKeyword(token.KwIsset), tok.IsKeyword(token.KwEmpty), tok.IsKeyword(token.KwUnset):
		return b.parseLanguageConstructParens(tok)
	case tok.IsKeyword(token.KwEcho), tok.IsKeyword(token.KwPrint):
		return b.parseLanguageConstructList(tok)
	case tok.IsKeyword(token.KwNew):
		return b.parseNew(tok)
	case tok.IsKeyword(token.KwClone):
		return b.parseCloneOrUnary(tok)
	case tok.IsKeyword(token.KwFunction), tok.IsKeyword(token.KwFn):
		return b.parseAnonFunction(tok, false)
	case tok.IsKeyword(token.KwStatic) && b.peekIsKeyword(token.KwFunction, token.KwFn):
		b.nextToken()
		return b.parseAnonFunction(tok, true)
	case tok.Kind.Has(token.OP):
		return b.parsePrefixOp(tok)
	case tok.Kind.Has(token.ID), tok.Kind.Has(token.KEYWORD):
		return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: tok.Literal}
	default:
		b.errorf(tok, "no prefix parse function for %s", tok.Kind)
		return nil
	}
}

func variableName(tok token.Token) string {
	if s, ok := tok.Aux.(string); ok {
		return s
	}
	return strings.TrimPrefix(tok.Literal, "$")
}

func (b *Builder) parseIntLiteral(tok token.Token) Node {
	text := strings.ReplaceAll(tok.Literal, "_", "")
	var v int64
	var err error
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v, err = strconv.ParseInt(text[2:], 16, 64)
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		v, err = strconv.ParseInt(text[2:], 2, 64)
	case len(text) > 1 && text[0] == '0':
		v, err = strconv.ParseInt(text, 8, 64)
	default:
		v, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		b.errorf(tok, "invalid integer literal %q", tok.Literal)
		return nil
	}
	return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: v}
}

func (b *Builder) parseFloatLiteral(tok token.Token) Node {
	text := strings.ReplaceAll(tok.Literal, "_", "")
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		b.errorf(tok, "invalid float literal %q", tok.Literal)
		return nil
	}
	return &Leaf{Tok: tok, Kind: LiteralLeaf, Lit: f}
}

func (b *Builder) parseGrouped() Node {
	b.nextToken()
	exp := b.parseExpression(ceilAll)
	if !b.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// parsePrefixOp handles every OP-kind prefix form: right-associative
// unaries/casts at precedence 4, and `++`/`--` in prefix position
// (PRE_INCR per §3.4 distinguishing it from the postfix form sharing
// the same operator descriptor).
func (b *Builder) parsePrefixOp(tok token.Token) Node {
	desc := tok.Op()
	if desc == nil {
		b.errorf(tok, "unrecognized operator %q", tok.Literal)
		return nil
	}
	if desc.ID == token.OpPostIncr || desc.ID == token.OpPostDecr {
		b.nextToken()
		operand := b.parseExpression(desc.Prec)
		if !IsLValue(operand) {
			b.errorf(tok, "%s requires a variable", desc.Text)
		}
		return &Op{Tok: tok, Desc: desc, Right: operand, Flags: PreIncr}
	}
	b.nextToken()
	operand := b.parseExpression(rightCeiling(desc))
	return &Op{Tok: tok, Desc: desc, Right: operand}
}

func (b *Builder) parseCloneOrUnary(tok token.Token) Node {
	desc, _ := token.LookupOperator("clone")
	b.nextToken()
	operand := b.parseExpression(rightCeiling(desc))
	return &Op{Tok: tok, Desc: desc, Right: operand}
}

// parseNew builds `new ClassNameExpr(args...)`; the class reference
// is either a bare name (kept as a LiteralLeaf naming it) or a
// variable/member chain holding the class name at runtime.
func (b *Builder) parseNew(tok token.Token) Node {
	desc, _ := token.LookupOperator("new")
	b.nextToken()
	class := b.parseClassRef()
	op := &Op{Tok: tok, Desc: desc, Right: class}
	if b.peek.Kind == token.LPAREN {
		b.nextToken()
		op.Args = b.parseArgList(token.RPAREN)
	}
	return op
}

// parseClassRef parses the class-name operand of `new`: a bare name,
// or a variable/member/index chain (`$this->class`, `self::$map[$k]`)
// stopping short of a trailing `(`, which `new` claims for its own
// constructor argument list rather than treating it as a method call.
func (b *Builder) parseClassRef() Node {
	left := b.parsePrefix()
	for {
		desc, closeKind, ok := b.peekInfixDesc()
		if !ok {
			break
		}
		switch desc.ID {
		case token.OpMember, token.OpStaticMember:
			b.nextToken()
			mtok := b.cur
			b.nextToken()
			var name Node
			if b.cur.Kind == token.VARIABLE {
				name = &Leaf{Tok: b.cur, Kind: VariableLeaf, Lit: variableName(b.cur)}
			} else {
				name = &Leaf{Tok: b.cur, Kind: SimpleStringLeaf, Lit: b.cur.Literal}
			}
			left = &Op{Tok: mtok, Desc: desc, Left: left, Right: name}
		case token.OpIndex:
			b.nextToken()
			left = b.parseIndex(left, desc, closeKind)
		default:
			return left
		}
	}
	return left
}

// parseArrayKeyword builds `array(...)`.
func (b *Builder) parseArrayKeyword(tok token.Token) Node {
	if !b.expectPeek(token.LPAREN) {
		return nil
	}
	elems := b.parseArrayElems(token.RPAREN)
	return &Leaf{Tok: tok, Kind: ArrayConstructLeaf, Lit: elems}
}

// parseArrayLiteral builds the short `[...]` array-literal form.
func (b *Builder) parseArrayLiteral(tok token.Token, close token.Kind) Node {
	elems := b.parseArrayElems(close)
	return &Leaf{Tok: tok, Kind: ArrayConstructLeaf, Lit: elems}
}

func (b *Builder) parseArrayElems(close token.Kind) []*ArrayElem {
	var elems []*ArrayElem
	if b.peek.Kind == close {
		b.nextToken()
		return elems
	}
	b.nextToken()
	elems = append(elems, b.parseArrayElem())
	for b.peek.Kind == token.COMMA {
		b.nextToken()
		if b.peek.Kind == close { // trailing comma
			break
		}
		b.nextToken()
		elems = append(elems, b.parseArrayElem())
	}
	if !b.expectPeek(close) {
		return nil
	}
	return elems
}

func (b *Builder) parseArrayElem() *ArrayElem {
	byRef := false
	if b.cur.Kind == token.AMPER {
		byRef = true
		b.nextToken()
	}
	first := b.parseExpression(ceilAll)
	if b.peek.Kind == token.ARRAYOP {
		b.nextToken()
		byRef = false
		if b.peek.Kind == token.AMPER {
			b.nextToken()
			byRef = true
		}
		b.nextToken()
		value := b.parseExpression(ceilAll)
		return &ArrayElem{Key: first, Value: value, ByRef: byRef}
	}
	return &ArrayElem{Value: first, ByRef: byRef}
}

// parseListConstruct builds `list(...)`, valid only as an assignment
// target (§4.7 L-value rules).
func (b *Builder) parseListConstruct(tok token.Token) Node {
	if !b.expectPeek(token.LPAREN) {
		return nil
	}
	var elems []*ListElem
	if b.peek.Kind == token.RPAREN {
		b.nextToken()
		return &Leaf{Tok: tok, Kind: ListConstructLeaf, Lit: elems}
	}
	b.nextToken()
	elems = append(elems, b.parseListElem())
	for b.peek.Kind == token.COMMA {
		b.nextToken() // cur = comma
		if b.peek.Kind == token.RPAREN {
			elems = append(elems, nil)
			break
		}
		if b.peek.Kind == token.COMMA {
			elems = append(elems, nil) // skipped slot: list($a, , $c)
			continue
		}
		b.nextToken()
		elems = append(elems, b.parseListElem())
	}
	if !b.expectPeek(token.RPAREN) {
		return nil
	}
	return &Leaf{Tok: tok, Kind: ListConstructLeaf, Lit: elems}
}

func (b *Builder) parseListElem() *ListElem {
	first := b.parseExpression(ceilAll)
	if b.peek.Kind == token.ARRAYOP {
		b.nextToken()
		b.nextToken()
		target := b.parseExpression(ceilAll)
		return &ListElem{Key: first, Target: target}
	}
	return &ListElem{Target: first}
}

// parseLanguageConstructParens builds isset(...)/empty(...)/unset(...).
func (b *Builder) parseLanguageConstructParens(tok token.Token) Node {
	if !b.expectPeek(token.LPAREN) {
		return nil
	}
	args := b.parseArgList(token.RPAREN)
	return &Leaf{Tok: tok, Kind: LanguageConstructLeaf, Lit: &LanguageConstruct{Keyword: tok.Aux.(token.KeywordID), Args: args}}
}

// parseLanguageConstructList builds echo/print, each taking one or
// more comma-separated argument expressions without parentheses.
func (b *Builder) parseLanguageConstructList(tok token.Token) Node {
	b.nextToken()
	args := []Node{b.parseExpression(ceilAll)}
	for b.peek.Kind == token.COMMA {
		b.nextToken()
		b.nextToken()
		args = append(args, b.parseExpression(ceilAll))
	}
	return &Leaf{Tok: tok, Kind: LanguageConstructLeaf, Lit: &LanguageConstruct{Keyword: tok.Aux.(token.KeywordID), Args: args}}
}

// parseAnonFunction parses a closure's signature (params, `use`
// captures, and `=>` arrow-body expression); a `{ ... }` statement
// body is balanced and skipped since statement-level emission is out
// of scope here — only the leaf's call-site shape (§3.4) is retained.
func (b *Builder) parseAnonFunction(tok token.Token, static bool) Node {
	isArrow := b.cur.IsKeyword(token.KwFn)
	if !b.expectPeek(token.LPAREN) {
		return nil
	}
	params := b.parseParamList()
	fn := &AnonFunction{Params: params, Static: static}

	if !isArrow && b.peekIsKeyword(token.KwUse) {
		b.nextToken()
		if b.expectPeek(token.LPAREN) {
			fn.Uses = b.parseParamList()
		}
	}

	if b.peek.Kind == token.COLON {
		b.nextToken()
		b.nextToken() // skip the return-type token
	}

	if isArrow {
		if !b.expectPeek(token.ARRAYOP) {
			return &Leaf{Tok: tok, Kind: AnonFunctionLeaf, Lit: fn}
		}
		b.nextToken()
		fn.Body = b.parseExpression(ceilAll)
		return &Leaf{Tok: tok, Kind: AnonFunctionLeaf, Lit: fn}
	}

	if b.expectPeek(token.OCB) {
		b.skipBalanced(token.OCB, token.CCB)
	}
	return &Leaf{Tok: tok, Kind: AnonFunctionLeaf, Lit: fn}
}

func (b *Builder) parseParamList() []Param {
	var params []Param
	if b.peek.Kind == token.RPAREN {
		b.nextToken()
		return params
	}
	b.nextToken()
	params = append(params, b.parseParam())
	for b.peek.Kind == token.COMMA {
		b.nextToken()
		b.nextToken()
		params = append(params, b.parseParam())
	}
	b.expectPeek(token.RPAREN)
	return params
}

func (b *Builder) parseParam() Param {
	byRef := false
	// Skip an optional type hint: NAME|?NAME preceding the variable.
	for b.cur.Kind != token.VARIABLE && b.cur.Kind != token.AMPER && b.cur.Kind != token.RPAREN {
		b.nextToken()
	}
	if b.cur.Kind == token.AMPER {
		byRef = true
		b.nextToken()
	}
	name := variableName(b.cur)
	p := Param{Name: name, ByRef: byRef}
	if b.peek.Kind == token.EQUAL {
		b.nextToken()
		b.nextToken()
		p.Default = b.parseExpression(ceilAll)
	}
	return p
}

// skipBalanced consumes tokens, having already consumed the opening
// delimiter, until the matching closing delimiter at depth zero.
func (b *Builder) skipBalanced(open, close token.Kind) {
	depth := 1
	for depth > 0 && b.cur.Kind != token.EOF {
		b.nextToken()
		switch b.cur.Kind {
		case open:
			depth++
		case close:
			depth--
		}
	}
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
