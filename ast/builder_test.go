package ast

import (
	"testing"

	"github.com/marl-lang/phcore/lexer"
	"github.com/marl-lang/phcore/token"
)

func checkBuilderErrors(t *testing.T, b *Builder) {
	t.Helper()
	errs := b.Errors()
	if len(errs) == 0 {
		return
	}
	t.Errorf("builder has %d errors", len(errs))
	for _, msg := range errs {
		t.Errorf("builder error: %s", msg)
	}
	t.FailNow()
}

func parseOneExpr(t *testing.T, src string) Node {
	t.Helper()
	b := New(lexer.New("<?php "+src+";", 1))
	prog := b.ParseProgram()
	checkBuilderErrors(t, b)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt, ok := prog.Statements[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Statements[0])
	}
	return stmt.Expr
}

func opID(t *testing.T, n Node) token.OpID {
	t.Helper()
	op, ok := n.(*Op)
	if !ok {
		t.Fatalf("expected *Op, got %T", n)
	}
	return op.Desc.ID
}

// TestArithmeticPrecedence covers §8.3's `$a = 1 + 2 * 3;` shape: the
// assignment tree must nest as `$a = (1 + (2 * 3))`.
func TestArithmeticPrecedence(t *testing.T) {
	expr := parseOneExpr(t, "$a = 1 + 2 * 3")

	assign, ok := expr.(*Op)
	if !ok || assign.Desc.ID != token.OpAssign {
		t.Fatalf("expected top-level OpAssign, got %#v", expr)
	}
	lhs, ok := assign.Left.(*Leaf)
	if !ok || lhs.Kind != VariableLeaf || lhs.Lit != "a" {
		t.Fatalf("expected variable leaf $a, got %#v", assign.Left)
	}

	add, ok := assign.Right.(*Op)
	if !ok || add.Desc.ID != token.OpAdd {
		t.Fatalf("expected OpAdd on the right of =, got %#v", assign.Right)
	}
	one, ok := add.Left.(*Leaf)
	if !ok || one.Lit != int64(1) {
		t.Fatalf("expected literal 1, got %#v", add.Left)
	}
	mul, ok := add.Right.(*Op)
	if !ok || mul.Desc.ID != token.OpMul {
		t.Fatalf("expected OpMul nested under +, got %#v", add.Right)
	}
	two, ok := mul.Left.(*Leaf)
	if !ok || two.Lit != int64(2) {
		t.Fatalf("expected literal 2, got %#v", mul.Left)
	}
	three, ok := mul.Right.(*Leaf)
	if !ok || three.Lit != int64(3) {
		t.Fatalf("expected literal 3, got %#v", mul.Right)
	}
}

// TestKeywordLogicalLowestPrecedence covers §8.3's `$x = true or false;`
// shape: `or` (prec 21) binds looser than `=` (prec 18), so the tree
// must be `($x = true) or false`, not `$x = (true or false)`.
func TestKeywordLogicalLowestPrecedence(t *testing.T) {
	expr := parseOneExpr(t, "$x = true or false")

	or, ok := expr.(*Op)
	if !ok || or.Desc.ID != token.OpOrKw {
		t.Fatalf("expected top-level `or`, got %#v", expr)
	}
	assign, ok := or.Left.(*Op)
	if !ok || assign.Desc.ID != token.OpAssign {
		t.Fatalf("expected $x = true nested under or, got %#v", or.Left)
	}
	if _, ok := assign.Left.(*Leaf); !ok {
		t.Fatalf("expected variable leaf, got %#v", assign.Left)
	}
	falseLeaf, ok := or.Right.(*Leaf)
	if !ok || falseLeaf.Lit != false {
		t.Fatalf("expected literal false on the right of or, got %#v", or.Right)
	}
}

func TestNonAssocComparisonRejectsChaining(t *testing.T) {
	b := New(lexer.New("<?php $a < $b < $c;", 1))
	b.ParseProgram()
	if len(b.Errors()) == 0 {
		t.Fatal("expected a syntax error for chained non-associative comparison")
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := parseOneExpr(t, "$a = $b = 1")
	outer, ok := expr.(*Op)
	if !ok || outer.Desc.ID != token.OpAssign {
		t.Fatalf("expected OpAssign, got %#v", expr)
	}
	inner, ok := outer.Right.(*Op)
	if !ok || inner.Desc.ID != token.OpAssign {
		t.Fatalf("expected $b = 1 nested on the right, got %#v", outer.Right)
	}
}

func TestMemberAccessChainsIntoCall(t *testing.T) {
	expr := parseOneExpr(t, `$obj->method($x)`)
	call, ok := expr.(*Op)
	if !ok || call.Desc.ID != token.OpCall {
		t.Fatalf("expected OpCall at top, got %#v", expr)
	}
	member, ok := call.Left.(*Op)
	if !ok || member.Desc.ID != token.OpMember {
		t.Fatalf("expected OpMember as callee, got %#v", call.Left)
	}
	if len(call.Args) != 1 {
		t.Fatalf("expected 1 call argument, got %d", len(call.Args))
	}
}

func TestIndexChain(t *testing.T) {
	expr := parseOneExpr(t, `$a[0][1]`)
	outer := expr.(*Op)
	if outer.Desc.ID != token.OpIndex {
		t.Fatalf("expected outer OpIndex, got %v", outer.Desc.ID)
	}
	inner, ok := outer.Left.(*Op)
	if !ok || inner.Desc.ID != token.OpIndex {
		t.Fatalf("expected inner OpIndex, got %#v", outer.Left)
	}
}

func TestPrefixVsPostfixIncrementShareDescriptor(t *testing.T) {
	pre := parseOneExpr(t, "++$i").(*Op)
	post := parseOneExpr(t, "$i++").(*Op)

	if pre.Desc.ID != token.OpPostIncr || post.Desc.ID != token.OpPostIncr {
		t.Fatalf("expected both forms to share OpPostIncr, got %v / %v", pre.Desc.ID, post.Desc.ID)
	}
	if !pre.Flags.Has(PreIncr) {
		t.Fatal("expected PreIncr flag on ++$i")
	}
	if post.Flags.Has(PreIncr) {
		t.Fatal("did not expect PreIncr flag on $i++")
	}
}

func TestTernaryAndShortTernary(t *testing.T) {
	full := parseOneExpr(t, "$a ? $b : $c").(*Op)
	if full.Desc.ID != token.OpTernary || full.Cond == nil || full.Left == nil || full.Right == nil {
		t.Fatalf("expected full ternary with cond/then/else, got %#v", full)
	}

	short := parseOneExpr(t, "$a ?: $c").(*Op)
	if short.Desc.ID != token.OpTernary || short.Cond == nil || short.Left != nil || short.Right == nil {
		t.Fatalf("expected short ternary with nil Left, got %#v", short)
	}
}

func TestArrayLiteralWithKeys(t *testing.T) {
	expr := parseOneExpr(t, `['a' => 1, 2, 3]`)
	leaf, ok := expr.(*Leaf)
	if !ok || leaf.Kind != ArrayConstructLeaf {
		t.Fatalf("expected ArrayConstructLeaf, got %#v", expr)
	}
	elems := leaf.Lit.([]*ArrayElem)
	if len(elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elems))
	}
	if elems[0].Key == nil {
		t.Fatal("expected first element to carry an explicit key")
	}
	if elems[1].Key != nil || elems[2].Key != nil {
		t.Fatal("expected second/third elements to be auto-indexed")
	}
}

func TestListDestructuring(t *testing.T) {
	expr := parseOneExpr(t, `list($a, , $c) = $arr`)
	assign := expr.(*Op)
	if assign.Desc.ID != token.OpAssign {
		t.Fatalf("expected OpAssign, got %v", assign.Desc.ID)
	}
	listLeaf, ok := assign.Left.(*Leaf)
	if !ok || listLeaf.Kind != ListConstructLeaf {
		t.Fatalf("expected ListConstructLeaf on the left, got %#v", assign.Left)
	}
	elems := listLeaf.Lit.([]*ListElem)
	if len(elems) != 3 {
		t.Fatalf("expected 3 list slots, got %d", len(elems))
	}
	if elems[1] != nil {
		t.Fatal("expected the skipped slot to be nil")
	}
}

func TestNewWithArgsAndWithoutParens(t *testing.T) {
	withArgs := parseOneExpr(t, `new Foo($a, $b)`).(*Op)
	if withArgs.Desc.ID != token.OpNew || len(withArgs.Args) != 2 {
		t.Fatalf("expected new Foo with 2 args, got %#v", withArgs)
	}

	bare := parseOneExpr(t, `new Foo`).(*Op)
	if bare.Desc.ID != token.OpNew || bare.Args != nil {
		t.Fatalf("expected bare new Foo with no args, got %#v", bare)
	}
}

func TestIssetConstruct(t *testing.T) {
	expr := parseOneExpr(t, `isset($a, $b)`)
	leaf, ok := expr.(*Leaf)
	if !ok || leaf.Kind != LanguageConstructLeaf {
		t.Fatalf("expected LanguageConstructLeaf, got %#v", expr)
	}
	lc := leaf.Lit.(*LanguageConstruct)
	if lc.Keyword != token.KwIsset || len(lc.Args) != 2 {
		t.Fatalf("expected isset with 2 args, got %#v", lc)
	}
}

func TestArrowFunctionBody(t *testing.T) {
	expr := parseOneExpr(t, `fn($x) => $x + 1`)
	leaf, ok := expr.(*Leaf)
	if !ok || leaf.Kind != AnonFunctionLeaf {
		t.Fatalf("expected AnonFunctionLeaf, got %#v", expr)
	}
	fn := leaf.Lit.(*AnonFunction)
	if len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("expected single param x, got %#v", fn.Params)
	}
	if fn.Body == nil {
		t.Fatal("expected arrow function body to be parsed")
	}
	if _, ok := fn.Body.(*Op); !ok {
		t.Fatalf("expected body to be $x + 1, got %#v", fn.Body)
	}
}

func TestSimpleStringEscapes(t *testing.T) {
	expr := parseOneExpr(t, `'it\'s a \\test'`)
	leaf := expr.(*Leaf)
	if leaf.Kind != SimpleStringLeaf {
		t.Fatalf("expected SimpleStringLeaf, got %#v", expr)
	}
	want := `it's a \test`
	if leaf.Lit != want {
		t.Fatalf("expected %q, got %q", want, leaf.Lit)
	}
}

func TestInterpolatedStringSegments(t *testing.T) {
	expr := parseOneExpr(t, `"hello $name, you have {$count} items"`)
	leaf, ok := expr.(*Leaf)
	if !ok || leaf.Kind != InterpolatedStringLeaf {
		t.Fatalf("expected InterpolatedStringLeaf, got %#v", expr)
	}
	segs := leaf.Lit.([]Segment)

	var exprSegs int
	for _, s := range segs {
		if s.Expr != nil {
			exprSegs++
		}
	}
	if exprSegs != 2 {
		t.Fatalf("expected 2 embedded expression segments, got %d (%#v)", exprSegs, segs)
	}
}

func TestCastFoldsToUnaryOperator(t *testing.T) {
	expr := parseOneExpr(t, `(int)$a`)
	op, ok := expr.(*Op)
	if !ok || op.Desc.ID != token.OpCastInt {
		t.Fatalf("expected OpCastInt, got %#v", expr)
	}
}
