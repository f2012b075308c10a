package value

import (
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/hashmap"
)

// Store copies src's value into dest. Scalars are copied by value
// (so the §8.1 "scalar copy-on-store" invariant holds trivially: a
// later to_int/to_real/to_string on dest only ever mutates dest's own
// fields). Composite payloads are shared by Go pointer rather than
// hand-rolled refcounting — the GC reclaims the hashmap.Map/
// ObjectPayload once the last cell referencing it is unreachable,
// which is the idiomatic substitution for "increment refcount on
// store, decrement on release" in a garbage-collected host language.
func Store(dest, src *Cell) {
	dest.releaseComposite()
	dest.buf.Reset()
	dest.flags = src.flags
	dest.i, dest.f = src.i, src.f
	dest.Dispatcher = src.Dispatcher
	dest.numericChecked, dest.numericKind = src.numericChecked, src.numericKind
	switch {
	case src.flags.Has(String):
		dest.buf.AppendString(src.buf.String())
	case src.flags.Has(Array):
		dest.arr = src.arr
	case src.flags.Has(Object):
		dest.obj = src.obj
	case src.flags.Has(Resource):
		dest.res = src.res
	}
}

// Load is Store, except the string representation is borrowed
// read-only (copy-on-write) instead of eagerly copied, per §4.2's
// "load borrows the string buffer read-only".
func Load(dest, src *Cell) {
	dest.releaseComposite()
	dest.flags = src.flags
	dest.i, dest.f = src.i, src.f
	dest.Dispatcher = src.Dispatcher
	dest.numericChecked, dest.numericKind = src.numericChecked, src.numericKind
	if src.flags.Has(String) {
		dest.buf.Borrow(src.buf.Bytes())
	} else {
		dest.buf.Reset()
	}
	switch {
	case src.flags.Has(Array):
		dest.arr = src.arr
	case src.flags.Has(Object):
		dest.obj = src.obj
	case src.flags.Has(Resource):
		dest.res = src.res
	}
}

// Release returns c to the NULL state, dropping its own reference to
// any composite payload (§4.2's `release`: "type -> NULL; for
// composites, decrement refcount and possibly destroy").
func (c *Cell) Release() { c.ToNull() }

// Add is the overloaded `+` operator of §4.2: numeric addition when
// neither operand is an array, array union when both are. The result
// is written into dst, which may alias a or b for in-place `+=`
// semantics (the add_store case).
func Add(dst, a, b *Cell) error {
	if a.flags.Has(Array) && b.flags.Has(Array) {
		return addArrays(dst, a, b)
	}
	if bothIntLike(a, b) {
		ai, bi := a.coerceInt(), b.coerceInt()
		sum := ai + bi
		if overflowsAdd(ai, bi, sum) {
			dst.InitReal(float64(ai) + float64(bi))
			return nil
		}
		dst.InitInt(sum)
		return nil
	}
	dst.InitReal(a.coerceFloat() + b.coerceFloat())
	return nil
}

func bothIntLike(a, b *Cell) bool {
	return !a.flags.Has(Real) && !b.flags.Has(Real) &&
		a.stringKindOrExact() != numReal && b.stringKindOrExact() != numReal
}

// stringKindOrExact reports numReal only when the cell is a string
// that looks like a float; non-strings never veto the int-like path
// here (their own coerceFloat/coerceInt already handles exactness).
func (c *Cell) stringKindOrExact() numKind {
	if c.flags.Has(String) {
		return c.stringNumericKind()
	}
	return numNone
}

func overflowsAdd(a, b, sum int64) bool {
	if b > 0 && sum < a {
		return true
	}
	if b < 0 && sum > a {
		return true
	}
	return false
}

// addArrays implements array union: for each node in b absent from a
// (by key), copy it into the union result (left operand wins on
// conflict). dst receives a fresh map so that `$a + $b` never
// aliases either operand's storage.
func addArrays(dst, a, b *Cell) error {
	out := NewMap()
	var unionErr error
	if a.arr != nil {
		a.arr.Each(func(n *hashmap.Node[*Cell]) bool {
			cp, err := Clone(n.Value, cloneBudgetDefault)
			if err != nil {
				unionErr = err
				return false
			}
			out.Insert(n.Key(), cp, 0)
			return true
		})
	}
	if unionErr != nil {
		return unionErr
	}
	if b.arr != nil {
		b.arr.Each(func(n *hashmap.Node[*Cell]) bool {
			if _, ok := out.Lookup(n.Key()); ok {
				return true
			}
			cp, err := Clone(n.Value, cloneBudgetDefault)
			if err != nil {
				unionErr = err
				return false
			}
			out.Insert(n.Key(), cp, 0)
			return true
		})
	}
	if unionErr != nil {
		return errkind.Wrap(errkind.MEM, unionErr, "array union")
	}
	dst.releaseComposite()
	dst.buf.Reset()
	dst.flags = Array
	dst.arr = out
	return nil
}
