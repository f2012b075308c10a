package token

// Assoc is an operator's associativity.
type Assoc int

const (
	LeftAssoc Assoc = iota
	RightAssoc
	NonAssoc
)

// OpID identifies one operator entry in the table below. It is the
// value an OP token's Aux slot resolves through *OpDescriptor, and is
// also what an external code generator switches on to pick a VM
// opcode — the symbolic Opcode string on OpDescriptor is the contract
// with that (out-of-scope) generator.
type OpID int

const (
	_ OpID = iota
	OpNew
	OpClone

	OpMember       // ->
	OpStaticMember // ::
	OpIndex        // [ ... ] subscript
	OpCall         // ( ... ) function call

	OpPostIncr // $x++
	OpPostDecr // $x--
	OpPreIncr  // ++$x (same textual operator as OpPostIncr, PRE_INCR node flag distinguishes)
	OpPreDecr

	OpUnaryMinus
	OpUnaryPlus
	OpBitNot  // ~
	OpNot     // !
	OpSuppress // @
	OpCastInt
	OpCastFloat
	OpCastBool
	OpCastString
	OpCastArray
	OpCastObject
	OpCastUnset

	OpInstanceof
	OpMul
	OpDiv
	OpMod

	OpAdd
	OpSub
	OpConcat // .

	OpShl
	OpShr

	OpLt
	OpGt
	OpLe
	OpGe
	OpDiamondNe // <>

	OpEq
	OpNeq
	OpEqKw // `eq`
	OpNeKw // `ne`
	OpIdentical
	OpNotIdentical

	OpBitAnd
	OpRefAssign // =&

	OpBitXor
	OpBitOr
	OpAndAnd
	OpOrOr

	OpTernary // ?  (and its paired :)

	OpAssign
	OpAddAssign
	OpSubAssign
	OpConcatAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpShlAssign
	OpShrAssign

	OpAndKw // `and`
	OpXorKw // `xor`
	OpOrKw  // `or`

	OpComma
)

// OpDescriptor is the static record pairing an operator's textual
// form with its id, precedence (1 highest, 22 lowest, per §4.7),
// associativity, and the symbolic VM opcode an external code
// generator would emit.
type OpDescriptor struct {
	Text  string
	ID    OpID
	Prec  int
	Assoc Assoc
	// Opcode names the VM opcode an external generator maps this
	// operator to. Never interpreted by this module.
	Opcode string
	// Alpha marks operators matched case-insensitively (and, or,
	// xor, new, clone, instanceof, eq, ne) rather than byte-wise.
	Alpha bool
}

// operatorTable lists every descriptor; init indexes Alpha entries by
// lower-cased text and symbolic entries by exact text, and
// LookupOperator below picks the right index.
var operatorTable = []*OpDescriptor{
	{"new", OpNew, 1, NonAssoc, "OP_NEW", true},
	{"clone", OpClone, 1, NonAssoc, "OP_CLONE", true},

	{"->", OpMember, 2, LeftAssoc, "OP_MEMBER", false},
	{"::", OpStaticMember, 2, LeftAssoc, "OP_STATIC_MEMBER", false},
	{"[", OpIndex, 2, LeftAssoc, "OP_INDEX", false},
	{"(", OpCall, 2, LeftAssoc, "OP_CALL", false},

	{"++", OpPostIncr, 3, NonAssoc, "OP_POST_INC", false},
	{"--", OpPostDecr, 3, NonAssoc, "OP_POST_DEC", false},

	{"u-", OpUnaryMinus, 4, RightAssoc, "OP_NEG", false},
	{"u+", OpUnaryPlus, 4, RightAssoc, "OP_UPLUS", false},
	{"~", OpBitNot, 4, RightAssoc, "OP_BIT_NOT", false},
	{"!", OpNot, 4, RightAssoc, "OP_NOT", false},
	{"@", OpSuppress, 4, RightAssoc, "OP_SUPPRESS", false},
	{"(int)", OpCastInt, 4, RightAssoc, "OP_CAST_INT", false},
	{"(float)", OpCastFloat, 4, RightAssoc, "OP_CAST_FLOAT", false},
	{"(bool)", OpCastBool, 4, RightAssoc, "OP_CAST_BOOL", false},
	{"(string)", OpCastString, 4, RightAssoc, "OP_CAST_STRING", false},
	{"(array)", OpCastArray, 4, RightAssoc, "OP_CAST_ARRAY", false},
	{"(object)", OpCastObject, 4, RightAssoc, "OP_CAST_OBJECT", false},
	{"(unset)", OpCastUnset, 4, RightAssoc, "OP_CAST_UNSET", false},

	{"instanceof", OpInstanceof, 7, LeftAssoc, "OP_INSTANCEOF", true},
	{"*", OpMul, 7, LeftAssoc, "OP_MUL", false},
	{"/", OpDiv, 7, LeftAssoc, "OP_DIV", false},
	{"%", OpMod, 7, LeftAssoc, "OP_MOD", false},

	{"+", OpAdd, 8, LeftAssoc, "OP_ADD", false},
	{"-", OpSub, 8, LeftAssoc, "OP_SUB", false},
	{".", OpConcat, 8, LeftAssoc, "OP_CONCAT", false},

	{"<<", OpShl, 9, LeftAssoc, "OP_SHL", false},
	{">>", OpShr, 9, LeftAssoc, "OP_SHR", false},

	{"<", OpLt, 10, NonAssoc, "OP_LT", false},
	{">", OpGt, 10, NonAssoc, "OP_GT", false},
	{"<=", OpLe, 10, NonAssoc, "OP_LE", false},
	{">=", OpGe, 10, NonAssoc, "OP_GE", false},
	{"<>", OpDiamondNe, 10, NonAssoc, "OP_NEQ", false},

	{"==", OpEq, 11, NonAssoc, "OP_EQ", false},
	{"!=", OpNeq, 11, NonAssoc, "OP_NEQ", false},
	{"eq", OpEqKw, 11, NonAssoc, "OP_EQ", true},
	{"ne", OpNeKw, 11, NonAssoc, "OP_NEQ", true},
	{"===", OpIdentical, 11, NonAssoc, "OP_IDENTICAL", false},
	{"!==", OpNotIdentical, 11, NonAssoc, "OP_NOT_IDENTICAL", false},

	{"&", OpBitAnd, 12, LeftAssoc, "OP_BIT_AND", false},
	{"=&", OpRefAssign, 12, LeftAssoc, "OP_REF_ASSIGN", false},

	{"^", OpBitXor, 13, LeftAssoc, "OP_BIT_XOR", false},
	{"|", OpBitOr, 14, LeftAssoc, "OP_BIT_OR", false},
	{"&&", OpAndAnd, 15, LeftAssoc, "OP_AND_AND", false},
	{"||", OpOrOr, 16, LeftAssoc, "OP_OR_OR", false},

	{"?", OpTernary, 17, LeftAssoc, "OP_TERNARY", false},

	{"=", OpAssign, 18, RightAssoc, "OP_ASSIGN", false},
	{"+=", OpAddAssign, 18, RightAssoc, "OP_ADD_ASSIGN", false},
	{"-=", OpSubAssign, 18, RightAssoc, "OP_SUB_ASSIGN", false},
	{".=", OpConcatAssign, 18, RightAssoc, "OP_CONCAT_ASSIGN", false},
	{"*=", OpMulAssign, 18, RightAssoc, "OP_MUL_ASSIGN", false},
	{"/=", OpDivAssign, 18, RightAssoc, "OP_DIV_ASSIGN", false},
	{"%=", OpModAssign, 18, RightAssoc, "OP_MOD_ASSIGN", false},
	{"&=", OpAndAssign, 18, RightAssoc, "OP_AND_ASSIGN", false},
	{"|=", OpOrAssign, 18, RightAssoc, "OP_OR_ASSIGN", false},
	{"^=", OpXorAssign, 18, RightAssoc, "OP_XOR_ASSIGN", false},
	{"<<=", OpShlAssign, 18, RightAssoc, "OP_SHL_ASSIGN", false},
	{">>=", OpShrAssign, 18, RightAssoc, "OP_SHR_ASSIGN", false},

	{"and", OpAndKw, 19, LeftAssoc, "OP_AND_AND", true},
	{"xor", OpXorKw, 20, LeftAssoc, "OP_XOR", true},
	{"or", OpOrKw, 21, LeftAssoc, "OP_OR_OR", true},

	{",", OpComma, 22, LeftAssoc, "OP_SEQ", false},
}

var (
	opByText  = map[string]*OpDescriptor{}
	opByAlpha = map[string]*OpDescriptor{}
)

func init() {
	for _, d := range operatorTable {
		if d.Alpha {
			opByAlpha[lowerASCII(d.Text)] = d
		} else {
			opByText[d.Text] = d
		}
	}
}

// LookupOperator resolves operator text to its descriptor. Alphabetic
// operators are matched case-insensitively; everything else byte-wise.
// "u-" and "u+" are the synthetic keys for the unary forms of +/-;
// the lexer is responsible for picking those over the binary "+"/"-"
// entries per the ambiguity rule in §4.6.
func LookupOperator(text string) (*OpDescriptor, bool) {
	if d, ok := opByText[text]; ok {
		return d, true
	}
	d, ok := opByAlpha[lowerASCII(text)]
	return d, ok
}

// CastOperator maps a parenthesized cast keyword to its operator,
// used by the lexer's type-cast folding pass (§4.6).
func CastOperator(kw KeywordID) (*OpDescriptor, bool) {
	switch kw {
	case KwInt:
		d, ok := opByText["(int)"]
		return d, ok
	case KwFloat:
		d, ok := opByText["(float)"]
		return d, ok
	case KwBool:
		d, ok := opByText["(bool)"]
		return d, ok
	case KwString:
		d, ok := opByText["(string)"]
		return d, ok
	case KwArray:
		d, ok := opByText["(array)"]
		return d, ok
	case KwObject:
		d, ok := opByText["(object)"]
		return d, ok
	case KwUnset:
		d, ok := opByText["(unset)"]
		return d, ok
	}
	return nil, false
}
