// Package pool implements the value pool and reference table of
// spec §3.2/§4.3: a stable-index container of value cells with a
// LIFO free list, and the secondary index of back-references that
// propagates unset() into any hashmap holding a value by reference.
//
// It imports both value and hashmap (instantiated over *value.Cell),
// since orchestrating "release a cell, then unlink everything that
// pointed at it" inherently needs both vocabularies; value imports
// hashmap but not this package, and hashmap imports neither, which is
// what keeps the dependency graph acyclic despite
// arrays-holding-values-holding-arrays.
package pool

import (
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/hashmap"
	"github.com/marl-lang/phcore/value"
)

// ValuePool is an ordered container of value cells with stable 32-bit
// indices; indices remain valid until explicit release, and released
// indices are reused LIFO.
type ValuePool struct {
	cells []*value.Cell
	free  []uint32

	refs      *ReferenceTable
	releasing map[uint32]bool // reentrancy guard, §4.3
}

// New returns an empty value pool.
func New() *ValuePool {
	return &ValuePool{refs: NewReferenceTable(), releasing: make(map[uint32]bool)}
}

// Reserve allocates a fresh, zeroed (NULL) cell and returns its
// stable index and a pointer to it.
func (p *ValuePool) Reserve() (uint32, *value.Cell) {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		c := p.cells[idx]
		c.Init()
		c.PoolIndex = idx
		return idx, c
	}
	c := &value.Cell{}
	c.Init()
	idx := uint32(len(p.cells))
	c.PoolIndex = idx
	p.cells = append(p.cells, c)
	return idx, c
}

// At is O(1) access to the cell at idx.
func (p *ValuePool) At(idx uint32) *value.Cell {
	if idx == value.ConstIndex || int(idx) >= len(p.cells) {
		return nil
	}
	return p.cells[idx]
}

// Release invokes to_null on the cell at idx, walks every registered
// back-reference and has it unlink itself, then returns idx to the
// free list. A recursion guard stops a destructor-triggered release
// of the same index from re-entering this function (§4.3).
func (p *ValuePool) Release(idx uint32) error {
	if idx == value.ConstIndex {
		return nil
	}
	if int(idx) >= len(p.cells) {
		return errkind.New(errkind.CORRUPT, "pool: release of unknown index %d", idx)
	}
	if p.releasing[idx] {
		return nil
	}
	p.releasing[idx] = true
	defer delete(p.releasing, idx)

	for _, ref := range p.refs.take(idx) {
		ref.Unlink()
	}

	p.cells[idx].ToNull()
	p.free = append(p.free, idx)
	return nil
}

// InstallRef registers ref as a back-reference to valueIndex.
func (p *ValuePool) InstallRef(valueIndex uint32, ref BackRef) { p.refs.Install(valueIndex, ref) }

// RemoveRef drops a previously installed back-reference.
func (p *ValuePool) RemoveRef(valueIndex uint32, ref BackRef) { p.refs.Remove(valueIndex, ref) }

// mapBackRef adapts a hashmap node into a BackRef: unlinking it
// detaches the node from its map without touching the value cell,
// since ValuePool.Release is already the one releasing the cell.
//
// It is a plain comparable value (not a pointer) so that two
// independently constructed mapBackRef{m, n} values naming the same
// map/node compare equal as interfaces — RemoveRef can be called with
// a freshly built value and still find the one InstallRef registered.
type mapBackRef struct {
	m *value.Map
	n *hashmap.Node[*value.Cell]
}

func (b mapBackRef) Unlink() { b.m.Unlink(b.n, false, nil) }

// ArrayInsert reserves a fresh cell, copies v into it (or leaves it
// NULL if v is nil), and inserts it into m under key, installing the
// back-reference that lets a later pool-level unset of that index
// unlink this node (§4.4 "install a back-reference").
func (p *ValuePool) ArrayInsert(m *value.Map, key hashmap.Key, v *value.Cell) (*hashmap.Node[*value.Cell], error) {
	idx, cell := p.Reserve()
	if v != nil {
		value.Store(cell, v)
	}
	n, err := m.Insert(key, cell, idx)
	if err != nil {
		p.Release(idx)
		return nil, err
	}
	p.InstallRef(idx, mapBackRef{m: m, n: n})
	return n, nil
}

// ArrayInsertAuto is ArrayInsert under the map's current auto-index.
func (p *ValuePool) ArrayInsertAuto(m *value.Map, v *value.Cell) (*hashmap.Node[*value.Cell], error) {
	return p.ArrayInsert(m, hashmap.IntKey(m.AutoIndex()), v)
}

// ArrayInsertByRef inserts a foreign node at key aliasing the cell
// already living at existingIndex (`$arr[] =& $x`): releasing the
// node later must not free that cell.
func (p *ValuePool) ArrayInsertByRef(m *value.Map, key hashmap.Key, existingIndex uint32) (*hashmap.Node[*value.Cell], error) {
	cell := p.At(existingIndex)
	if cell == nil {
		return nil, errkind.New(errkind.CORRUPT, "pool: insert_by_ref of unknown index %d", existingIndex)
	}
	n, err := m.InsertByRef(key, cell, existingIndex)
	if err != nil {
		return nil, err
	}
	p.InstallRef(existingIndex, mapBackRef{m: m, n: n})
	return n, nil
}

// ArrayUnset implements `unset($arr[key])`: detaches node from m,
// drops its back-reference registration, and — unless the node is
// foreign — releases its value cell, recursively propagating through
// the reference table (§4.4 unlink, §4.3 release).
func (p *ValuePool) ArrayUnset(m *value.Map, n *hashmap.Node[*value.Cell]) {
	m.Unlink(n, true, func(valueIndex uint32, foreign bool) {
		p.RemoveRef(valueIndex, mapBackRef{m: m, n: n})
		if !foreign {
			p.Release(valueIndex)
		}
	})
}
