// Package token defines the lexical token kinds of the scripting
// language core, the ~60-entry keyword set, and the operator
// descriptor table consulted by the expression-tree builder.
package token

import "strings"

// Kind is a bitmask so that a single token can be queried with
// `tok.Kind & MASK`, matching a hand-coded lexer's need to test
// several categories at once (e.g. "is this a string of any flavor").
type Kind uint32

const (
	ILLEGAL Kind = 1 << iota
	EOF

	LPAREN // (
	RPAREN // )
	OSB    // [
	CSB    // ]
	OCB    // {
	CCB    // }
	COMMA  // ,
	SEMI   // ;
	COLON    // :
	DOLLAR   // $
	VARIABLE // $name (already assembled by the lexer)

	OP      // any operator recognized by the operator table
	ID      // bare identifier, not in the keyword set
	KEYWORD // one of the closed set of language keywords

	SSTR    // 'single quoted'
	DSTR    // "double quoted"
	BSTR    // `backtick`
	HEREDOC // <<<ID ... ID
	NOWDOC  // <<<'ID' ... ID

	NSSEP   // \ namespace separator
	ARRAYOP // =>
	AMPER   // &
	EQUAL   // =

	INT   // integer literal
	FLOAT // floating literal

	INLINE_HTML // raw text outside <?php ... ?>
)

// Has reports whether tok carries every bit in mask.
func (k Kind) Has(mask Kind) bool { return k&mask == mask }

// Any reports whether tok carries at least one bit of mask.
func (k Kind) Any(mask Kind) bool { return k&mask != 0 }

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	LPAREN: "(", RPAREN: ")", OSB: "[", CSB: "]", OCB: "{", CCB: "}",
	COMMA: ",", SEMI: ";", COLON: ":", DOLLAR: "$", VARIABLE: "VARIABLE",
	OP: "OP", ID: "ID", KEYWORD: "KEYWORD",
	SSTR: "SSTR", DSTR: "DSTR", BSTR: "BSTR", HEREDOC: "HEREDOC", NOWDOC: "NOWDOC",
	NSSEP: "\\", ARRAYOP: "=>", AMPER: "&", EQUAL: "=",
	INT: "INT", FLOAT: "FLOAT", INLINE_HTML: "INLINE_HTML",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	var parts []string
	for bit, name := range kindNames {
		if k.Has(bit) {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Token is a single lexical unit: a byte range into the source, a
// kind bitmask, the source line it starts on, and an opaque user-data
// slot the lexer uses to cache an *OpDescriptor (for OP) or a
// KeywordID (for KEYWORD) so the tree builder never re-parses text.
type Token struct {
	Start, End int
	Line       int
	Kind       Kind
	Literal    string
	Aux        any
}

// IsKeyword reports whether tok is a KEYWORD token of kind id.
func (t Token) IsKeyword(id KeywordID) bool {
	return t.Kind.Has(KEYWORD) && t.Aux == id
}

// Op returns the operator descriptor attached to an OP token, or nil.
func (t Token) Op() *OpDescriptor {
	if d, ok := t.Aux.(*OpDescriptor); ok {
		return d
	}
	return nil
}
