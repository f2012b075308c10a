package value

import (
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/hashmap"
)

// cloneBudgetDefault is the recursion budget used where the spec
// names one without threading it through an API (§4.2.2's nested
// comparison budget; array union passes it to Clone, which itself
// has no default).
const cloneBudgetDefault = 32

// Clone deep-copies v, recursing into arrays up to budget levels
// (the §9 design note: "make the recursion budget a thread-through
// parameter of the clone routine; forbid mutable state inside method
// descriptors" — budget replaces the source's mutable mutable-counter
// field on the class method). Objects are shallow-copied: the copy
// shares v's *ObjectPayload, and no __clone hook is run
// (CastDispatcher has no clone method).
func Clone(v *Cell, budget int) (*Cell, error) {
	if v == nil {
		return nil, nil
	}
	cp := &Cell{
		flags:      v.flags,
		i:          v.i,
		f:          v.f,
		PoolIndex:  ConstIndex,
		Dispatcher: v.Dispatcher,
	}
	switch {
	case v.flags.Has(String):
		cp.buf.AppendString(v.buf.String())
	case v.flags.Has(Array):
		m, err := cloneMap(v.arr, budget)
		if err != nil {
			return nil, err
		}
		cp.arr = m
	case v.flags.Has(Object):
		cp.obj = v.obj // shallow: object identity is reference semantics in PHP's object model
	case v.flags.Has(Resource):
		cp.res = v.res
	}
	return cp, nil
}

// cloneMap copies every entry of m into a fresh, non-foreign map
// (the §9 Open Question decision: array-of-array duplication is
// "copy-and-drop" — clones never retain a foreign slot or a
// reference-table back-reference, since those belong to the
// original's pool-mediated lifetime, not the copy's).
func cloneMap(m *Map, budget int) (*Map, error) {
	if m == nil {
		return nil, nil
	}
	if budget <= 0 {
		return nil, errkind.New(errkind.LIMIT, "value: clone recursion budget exhausted")
	}
	out := hashmap.New[*Cell]()
	var cloneErr error
	m.Each(func(n *hashmap.Node[*Cell]) bool {
		v, err := Clone(n.Value, budget-1)
		if err != nil {
			cloneErr = err
			return false
		}
		out.Insert(n.Key(), v, 0)
		return true
	})
	if cloneErr != nil {
		return nil, cloneErr
	}
	return out, nil
}
