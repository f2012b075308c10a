package pool

// BackRef is anything the reference table can ask to detach itself
// from a value index without the table needing to know what kind of
// holder it is — a hashmap node back-reference (§3.2/§4.3) or a
// variable-frame slot. Keeping this as an interface, rather than a
// concrete hashmap.Node pointer, is what lets this package avoid
// importing hashmap's node internals and lets callers register
// variable-frame slots the same way.
type BackRef interface {
	// Unlink detaches this holder from the value index it was
	// registered under, without itself trying to release the cell —
	// that is ReferenceTable's job, to avoid the two sides racing to
	// free the same resource.
	Unlink()
}

// ReferenceTable maps a value-pool index to the set of back-references
// that would need to be unlinked if that index were released (§3.2).
type ReferenceTable struct {
	entries map[uint32][]BackRef
}

// NewReferenceTable returns an empty reference table.
func NewReferenceTable() *ReferenceTable {
	return &ReferenceTable{entries: make(map[uint32][]BackRef)}
}

// Install registers ref as a back-reference to valueIndex.
func (rt *ReferenceTable) Install(valueIndex uint32, ref BackRef) {
	rt.entries[valueIndex] = append(rt.entries[valueIndex], ref)
}

// Remove drops one previously installed back-reference.
func (rt *ReferenceTable) Remove(valueIndex uint32, ref BackRef) {
	refs := rt.entries[valueIndex]
	for i, r := range refs {
		if r == ref {
			rt.entries[valueIndex] = append(refs[:i], refs[i+1:]...)
			break
		}
	}
	if len(rt.entries[valueIndex]) == 0 {
		delete(rt.entries, valueIndex)
	}
}

// take detaches and returns every back-reference registered for
// valueIndex, clearing the table entry first so that a reentrant
// Unlink() cannot observe (and re-walk) the same set.
func (rt *ReferenceTable) take(valueIndex uint32) []BackRef {
	refs := rt.entries[valueIndex]
	delete(rt.entries, valueIndex)
	return refs
}
