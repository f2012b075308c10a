package value

import "github.com/marl-lang/phcore/hashmap"

// Cmp implements the total order of §4.2.2. strict enables the
// type-flag short-circuit (step 1) and reference-identity object
// equality (step 4); non-strict falls through to the value rules.
//
// The Open Question on array/scalar ordering is resolved per §9:
// composite always compares greater than scalar, regardless of which
// side it's on — a single symmetric rule rather than the source's
// asymmetric one.
func Cmp(a, b *Cell, strict bool) int {
	if strict && a.flags.primaryOf() != b.flags.primaryOf() {
		return stableTypeOrder(a.flags) - stableTypeOrder(b.flags)
	}

	if a.flags.Any(Null|Bool|Resource) || b.flags.Any(Null|Bool|Resource) {
		if !(a.flags.Has(Array) || b.flags.Has(Array) || a.flags.Has(Object) || b.flags.Has(Object)) {
			av, bv := 0, 0
			if a.coerceBool() {
				av = 1
			}
			if b.coerceBool() {
				bv = 1
			}
			return av - bv
		}
	}

	if a.flags.Has(Array) || b.flags.Has(Array) {
		return compareComposite(a, b, strict, cmpArrays)
	}
	if a.flags.Has(Object) || b.flags.Has(Object) {
		return compareComposite(a, b, strict, cmpObjects)
	}

	if a.flags.Has(String) && b.flags.Has(String) && !strict {
		an, bn := a.IsNumeric(), b.IsNumeric()
		if !an || !bn {
			return compareBytesShorterSmaller(a.buf.String(), b.buf.String())
		}
	}

	if a.flags.Has(Real) || b.flags.Has(Real) ||
		(a.flags.Has(String) && a.stringNumericKind() == numReal) ||
		(b.flags.Has(String) && b.stringNumericKind() == numReal) {
		af, bf := a.coerceFloat(), b.coerceFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	ai, bi := a.coerceInt(), b.coerceInt()
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

// compareComposite handles rule 3/4: the non-composite side is
// always "less"; two composites of the same kind defer to fn.
func compareComposite(a, b *Cell, strict bool, fn func(a, b *Cell, strict bool) int) int {
	aComposite := a.flags.Has(Array) || a.flags.Has(Object)
	bComposite := b.flags.Has(Array) || b.flags.Has(Object)
	switch {
	case aComposite && !bComposite:
		return 1
	case !aComposite && bComposite:
		return -1
	default:
		return fn(a, b, strict)
	}
}

// cmpArrays implements "two arrays compare by size then element-wise
// per §4.4": same size, then walk the left operand's insertion order
// looking up each key in the right operand and comparing pairwise,
// stopping at the first non-zero result.
func cmpArrays(a, b *Cell, strict bool) int {
	al, bl := 0, 0
	if a.arr != nil {
		al = a.arr.Len()
	}
	if b.arr != nil {
		bl = b.arr.Len()
	}
	if al != bl {
		return al - bl
	}
	if a.arr == nil {
		return 0
	}
	result := 0
	a.arr.Each(func(n *hashmap.Node[*Cell]) bool {
		if b.arr == nil {
			result = 1
			return false
		}
		bn, ok := b.arr.Lookup(n.Key())
		if !ok {
			result = 1
			return false
		}
		if c := Cmp(n.Value, bn.Value, strict); c != 0 {
			result = c
			return false
		}
		return true
	})
	return result
}

// cmpObjects implements §4.2.2 rule 4: strict comparison is
// reference identity only; non-strict walks attributes in the left
// operand's insertion order, descending into nested arrays with a
// recursion budget.
func cmpObjects(a, b *Cell, strict bool) int {
	if strict {
		if a.obj == b.obj {
			return 0
		}
		return 1
	}
	if a.obj == nil || b.obj == nil {
		if a.obj == b.obj {
			return 0
		}
		return 1
	}
	if a.obj.ClassName != b.obj.ClassName {
		if a.obj.ClassName < b.obj.ClassName {
			return -1
		}
		return 1
	}
	al, bl := 0, 0
	if a.obj.Attrs != nil {
		al = a.obj.Attrs.Len()
	}
	if b.obj.Attrs != nil {
		bl = b.obj.Attrs.Len()
	}
	if al != bl {
		return al - bl
	}
	result := 0
	if a.obj.Attrs != nil {
		a.obj.Attrs.Each(func(n *hashmap.Node[*Cell]) bool {
			if b.obj.Attrs == nil {
				result = 1
				return false
			}
			bn, ok := b.obj.Attrs.Lookup(n.Key())
			if !ok {
				result = 1
				return false
			}
			if c := cmpWithBudget(n.Value, bn.Value, cloneBudgetDefault); c != 0 {
				result = c
				return false
			}
			return true
		})
	}
	return result
}

// cmpWithBudget recurses into nested arrays up to budget levels deep
// (§4.2.2's "recursion budget of 32"), falling back to non-recursive
// Cmp once exhausted.
func cmpWithBudget(a, b *Cell, budget int) int {
	if budget <= 0 || !(a.flags.Has(Array) && b.flags.Has(Array)) {
		return Cmp(a, b, false)
	}
	al, bl := 0, 0
	if a.arr != nil {
		al = a.arr.Len()
	}
	if b.arr != nil {
		bl = b.arr.Len()
	}
	if al != bl {
		return al - bl
	}
	if a.arr == nil {
		return 0
	}
	result := 0
	a.arr.Each(func(n *hashmap.Node[*Cell]) bool {
		if b.arr == nil {
			result = 1
			return false
		}
		bn, ok := b.arr.Lookup(n.Key())
		if !ok {
			result = 1
			return false
		}
		if c := cmpWithBudget(n.Value, bn.Value, budget-1); c != 0 {
			result = c
			return false
		}
		return true
	})
	return result
}

// compareBytesShorterSmaller implements "byte-wise compare with
// shorter-is-smaller when a prefix matches".
func compareBytesShorterSmaller(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

func stableTypeOrder(f Flag) int {
	switch {
	case f.Has(Null):
		return 0
	case f.Has(Bool):
		return 1
	case f.Has(Int):
		return 2
	case f.Has(Real):
		return 3
	case f.Has(String):
		return 4
	case f.Has(Array):
		return 5
	case f.Has(Object):
		return 6
	case f.Has(Resource):
		return 7
	default:
		return -1
	}
}

// primaryOf strips the cached-representation bit so INT|REAL and
// plain INT compare as the same primary type for step 1's purposes.
func (f Flag) primaryOf() Flag {
	switch {
	case f.Has(Null):
		return Null
	case f.Has(Array):
		return Array
	case f.Has(Object):
		return Object
	case f.Has(Resource):
		return Resource
	case f.Has(String):
		return String
	case f.Has(Bool):
		return Bool
	case f.Has(Real):
		return Real
	case f.Has(Int):
		return Int
	default:
		return 0
	}
}
