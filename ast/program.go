package ast

import "github.com/marl-lang/phcore/token"

// Program is the root of a parsed unit: a flat list of statements.
// Statement-level constructs beyond the expression layer (if/while/
// function declarations, …) are out of scope; a Program only ever
// holds ExprStmt and the inline-HTML passthrough InlineHTML, which is
// all §4.7's expression-tree builder is asked to produce.
type Program struct {
	Statements []Statement
}

// Statement is either an ExprStmt or InlineHTML.
type Statement interface {
	stmt()
}

// ExprStmt is `<expr> ;`.
type ExprStmt struct {
	Tok  token.Token
	Expr Node
}

func (*ExprStmt) stmt() {}

// InlineHTML is a raw-text span outside <?php ... ?>, passed through
// verbatim by the code generator.
type InlineHTML struct {
	Tok  token.Token
	Text string
}

func (*InlineHTML) stmt() {}
