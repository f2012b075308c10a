// Package ast defines the expression/statement node catalog of
// spec §3.4 and the precedence-climbing tree builder of §4.7: leaf
// nodes for the terminal forms (variable, literal, string, list- and
// array-construct, anonymous function, language construct) and
// operator nodes carrying a descriptor, left/right/condition children
// and an ordered argument list for calls and subscripts.
package ast

import "github.com/marl-lang/phcore/token"

// LeafKind is the code-generation dispatch tag a leaf node carries,
// per §3.4 ("a code-generation dispatch tag naming the handler").
type LeafKind int

const (
	VariableLeaf LeafKind = iota
	LiteralLeaf
	SimpleStringLeaf
	InterpolatedStringLeaf
	ListConstructLeaf
	ArrayConstructLeaf
	AnonFunctionLeaf
	LanguageConstructLeaf
)

func (k LeafKind) String() string {
	switch k {
	case VariableLeaf:
		return "Variable"
	case LiteralLeaf:
		return "Literal"
	case SimpleStringLeaf:
		return "SimpleString"
	case InterpolatedStringLeaf:
		return "InterpolatedString"
	case ListConstructLeaf:
		return "ListConstruct"
	case ArrayConstructLeaf:
		return "ArrayConstruct"
	case AnonFunctionLeaf:
		return "AnonFunction"
	case LanguageConstructLeaf:
		return "LanguageConstruct"
	default:
		return "Unknown"
	}
}

// Flag holds node-level bits distinguishing otherwise-identical
// shapes, e.g. PreIncr separating `++$x` from `$x++` (§3.4).
type Flag uint8

const (
	PreIncr Flag = 1 << iota
	// ByRef marks a by-reference call argument (`f(&$x)`); array
	// elements carry their own ArrayElem.ByRef field instead.
	ByRef
)

func (f Flag) Has(mask Flag) bool { return f&mask == mask }

// Node is any expression tree node: a Leaf or an Op.
type Node interface {
	// Pos returns the token the node is anchored on, for error
	// reporting and source-range recovery.
	Pos() token.Token
	node()
}

// Leaf is a terminal expression node (§3.4).
type Leaf struct {
	Tok  token.Token
	Kind LeafKind

	// Lit holds the kind-specific payload:
	//   LiteralLeaf            -> int64, float64, bool, or nil (NULL)
	//   VariableLeaf           -> string (the name, without the $)
	//   SimpleStringLeaf       -> string (fully unescaped)
	//   InterpolatedStringLeaf -> []Segment
	//   ListConstructLeaf      -> []*ListElem
	//   ArrayConstructLeaf     -> []*ArrayElem
	//   AnonFunctionLeaf       -> *AnonFunction
	//   LanguageConstructLeaf  -> *LanguageConstruct
	Lit any
}

func (l *Leaf) Pos() token.Token { return l.Tok }
func (*Leaf) node()              {}

// Segment is one piece of an interpolated string: either a literal
// run of text or an embedded expression.
type Segment struct {
	Literal string
	Expr    Node // nil for a literal-only segment
}

// ListElem is one slot of a list(...) destructuring target; Key is
// nil for a positional slot.
type ListElem struct {
	Key    Node
	Target Node // a skipped slot, list(, $b), is a nil *ListElem instead
}

// ArrayElem is one entry of an array(...)/[...] literal.
type ArrayElem struct {
	Key   Node // nil for an auto-indexed entry
	Value Node
	ByRef bool
}

// AnonFunction is a closure literal's surface shape; its body is
// opaque at this layer (statement/bytecode emission is out of
// scope), so only the signature needed for call-site arity checks
// and `use` capture is retained.
type AnonFunction struct {
	Params []Param
	Uses   []Param
	Static bool
	ByRef  bool // closure returns by reference
	// Body holds an arrow function's expression body (`fn(...) => expr`);
	// nil for a `function(...) { ... }` closure, whose statement body is
	// out of scope for this tree.
	Body Node
}

// Param is one formal parameter or `use` capture.
type Param struct {
	Name    string
	ByRef   bool
	Default Node // nil if none
}

// LanguageConstruct covers the handful of keyword-led forms that look
// like calls but are not function calls: isset(...), empty(...),
// unset(...), echo ..., print .... `clone` and `new` are built as Op
// nodes instead.
type LanguageConstruct struct {
	Keyword token.KeywordID
	Args    []Node
}

// Op is an operator node (§3.4): a descriptor plus up to three child
// pointers and an ordered argument list for calls/subscripts/member
// names.
type Op struct {
	Tok   token.Token
	Desc  *token.OpDescriptor
	Left  Node
	Right Node
	Cond  Node // ternary condition; nil otherwise
	Args  []Node
	Flags Flag
}

func (o *Op) Pos() token.Token { return o.Tok }
func (*Op) node()              {}

// IsLValue reports whether n satisfies the §4.7 l-value rule: a bare
// variable, or a postfix chain of `[`, `->`, `::` ending in a
// variable. list(...) is accepted by the caller separately, since it
// is only valid as the left side of plain assignment.
func IsLValue(n Node) bool {
	for {
		switch v := n.(type) {
		case *Leaf:
			return v.Kind == VariableLeaf
		case *Op:
			switch v.Desc.ID {
			case token.OpIndex, token.OpMember, token.OpStaticMember:
				n = v.Left
				continue
			}
			return false
		default:
			return false
		}
	}
}
