package value

import "github.com/marl-lang/phcore/hashmap"

// Map is a hashmap of value cells, instantiating the generic
// hashmap.Map over *Cell. value imports hashmap (here and in its
// coercion, clone, compare and copy code) while hashmap imports
// nothing from value, keeping hashmap itself free of any
// value-semantics dependency (see hashmap's package doc).
type Map = hashmap.Map[*Cell]

// NewMap returns an empty array-valued map.
func NewMap() *Map { return hashmap.New[*Cell]() }

// NewGlobalsMap returns the distinguished immutable $GLOBALS map.
func NewGlobalsMap() *Map { return hashmap.NewGlobals[*Cell]() }

// NormalizeKey turns a PHP subscript expression's already-coerced
// key value into a hashmap.Key, applying the scalar-to-key rules used
// at `$a[$k]`: ints key as ints, bools/floats truncate to int, null
// keys as the empty string, strings normalize per §4.4.
func NormalizeKey(k *Cell) hashmap.Key {
	switch {
	case k.flags.Has(Int):
		return hashmap.IntKey(k.i)
	case k.flags.Has(Real):
		return hashmap.IntKey(int64(k.f))
	case k.flags.Has(Bool):
		if k.i != 0 {
			return hashmap.IntKey(1)
		}
		return hashmap.IntKey(0)
	case k.flags.Has(Null):
		return hashmap.StrKey("")
	case k.flags.Has(String):
		return hashmap.StrKey(k.buf.String())
	default:
		return hashmap.StrKey(k.buf.String())
	}
}

// CloneValue returns a deep-enough copy of v for use as a freshly
// owned map entry (composite operations need to insert a copy, never
// alias another map's cell) — see Clone in clone.go for the
// recursion-budget-aware version callers should prefer at the
// value-cell API boundary.
func CloneValue(v *Cell, budget int) *Cell {
	cp, _ := Clone(v, budget)
	return cp
}
