package hashmap

// Clone lets composite operations copy a value when they need to
// insert a node owning a value that used to belong to another map
// (caller supplies whatever "copy" means for V — typically
// value.Clone for *value.Cell).
type Clone[V any] func(v V) V

// nextValueIndex lets composite operations mint placeholder value
// indices for copied entries when the caller has no pool wired up
// (tests, or maps of plain scalars); pool-backed callers should
// instead build composites directly against their own pool and
// reuse these helpers only for the linked-list bookkeeping.
type nextValueIndex[V any] func(v V) uint32

// Union implements `array1 + array2` (§4.4): for each node in src
// absent from dst, clone src's value and value index in; existing
// dst keys are left untouched (the left operand wins).
func Union[V any](dst, src *Map[V], clone Clone[V], nextIdx nextValueIndex[V]) {
	src.Each(func(n *Node[V]) bool {
		if _, ok := dst.Lookup(n.key); !ok {
			v := clone(n.Value)
			dst.Insert(n.key, v, nextIdx(v))
		}
		return true
	})
}

// Merge implements array_merge semantics: integer keys from src are
// re-appended under fresh auto-indices, string keys overwrite.
func Merge[V any](dst, src *Map[V], clone Clone[V], nextIdx nextValueIndex[V]) {
	src.Each(func(n *Node[V]) bool {
		v := clone(n.Value)
		if n.key.Kind == IntKeyKind {
			dst.InsertAuto(v, nextIdx(v))
		} else {
			dst.Insert(n.key, v, nextIdx(v))
		}
		return true
	})
}

// Replace inserts or overwrites dst by key for every node in src.
func Replace[V any](dst, src *Map[V], clone Clone[V], nextIdx nextValueIndex[V]) {
	src.Each(func(n *Node[V]) bool {
		v := clone(n.Value)
		dst.Insert(n.key, v, nextIdx(v))
		return true
	})
}

// EqFn reports whether two values compare equal, honoring strict.
type EqFn[V any] func(a, b V, strict bool) bool

// Intersect produces a new map, preserving a's insertion order,
// containing every node of a whose key is present in b and (if cb is
// non-nil) for which cb(a-value, b-value) agrees, else whose values
// compare equal per eq.
func Intersect[V any](a, b *Map[V], strict bool, eq EqFn[V], cb func(av, bv V) bool, clone Clone[V], nextIdx nextValueIndex[V]) *Map[V] {
	out := New[V]()
	a.Each(func(n *Node[V]) bool {
		bn, ok := b.Lookup(n.key)
		if !ok {
			return true
		}
		if cb != nil {
			if !cb(n.Value, bn.Value) {
				return true
			}
		} else if !eq(n.Value, bn.Value, strict) {
			return true
		}
		v := clone(n.Value)
		out.Insert(n.key, v, nextIdx(v))
		return true
	})
	return out
}

// Diff is Intersect's complement: nodes of a whose key is absent
// from b, or present but unequal.
func Diff[V any](a, b *Map[V], strict bool, eq EqFn[V], cb func(av, bv V) bool, clone Clone[V], nextIdx nextValueIndex[V]) *Map[V] {
	out := New[V]()
	a.Each(func(n *Node[V]) bool {
		bn, ok := b.Lookup(n.key)
		keep := !ok
		if ok {
			if cb != nil {
				keep = !cb(n.Value, bn.Value)
			} else {
				keep = !eq(n.Value, bn.Value, strict)
			}
		}
		if keep {
			v := clone(n.Value)
			out.Insert(n.key, v, nextIdx(v))
		}
		return true
	})
	return out
}

// Equal implements §4.4's map equality: same entry count, and for
// every key in a, b holds the same key with an equal value under eq.
// strict additionally requires matching key kinds (already implied by
// Key.Equal, since Kind is part of the key), i.e. a string key "5"
// would have normalized to an int key already and so never reaches
// here as a mismatch — strict only changes what eq considers equal.
func Equal[V any](a, b *Map[V], strict bool, eq EqFn[V]) bool {
	if a.Len() != b.Len() {
		return false
	}
	ok := true
	a.Each(func(n *Node[V]) bool {
		bn, found := b.Lookup(n.key)
		if !found || !eq(n.Value, bn.Value, strict) {
			ok = false
			return false
		}
		return true
	})
	return ok
}
