package hashmap

// Node is one entry: a key, the opaque value-pool index of its
// value (interpreted by the pool package, not here), a foreign flag
// (reference-inserted, not owned), and the two intrusive lists it
// threads through — the bucket chain and the insertion-order chain.
type Node[V any] struct {
	key        Key
	Value      V
	ValueIndex uint32
	Foreign    bool

	hnext, hprev *Node[V]
	inext, iprev *Node[V]

	owner *Map[V]
}

// Key returns the node's key.
func (n *Node[V]) Key() Key { return n.key }

const initialBuckets = 16
const growLoadNumerator = 3 // grow when entries >= buckets * 3

// Map is an order-preserving hashmap: a power-of-two bucket array for
// O(1) lookup, threaded by an insertion-order doubly-linked list for
// iteration, matching PHP's array semantics.
type Map[V any] struct {
	buckets   []*Node[V]
	count     int
	autoIndex int64

	head, tail *Node[V]
	cursor     *Node[V]

	immutable bool // true only for $GLOBALS
}

// New returns an empty map with the default bucket size.
func New[V any]() *Map[V] {
	return &Map[V]{buckets: make([]*Node[V], initialBuckets)}
}

// NewGlobals returns the distinguished immutable $GLOBALS instance:
// inserts and releases through the ordinary API are refused (§4.4).
func NewGlobals[V any]() *Map[V] {
	m := New[V]()
	m.immutable = true
	return m
}

func (m *Map[V]) Len() int           { return m.count }
func (m *Map[V]) AutoIndex() int64   { return m.autoIndex }
func (m *Map[V]) Immutable() bool    { return m.immutable }
func (m *Map[V]) bucketIdx(h uint32) int { return int(h) & (len(m.buckets) - 1) }

// Lookup finds the live node for key, or (nil, false).
func (m *Map[V]) Lookup(key Key) (*Node[V], bool) {
	if m.count == 0 {
		return nil, false
	}
	for n := m.buckets[m.bucketIdx(key.hash)]; n != nil; n = n.hnext {
		if n.key.hash == key.hash && n.key.Equal(key) {
			return n, true
		}
	}
	return nil, false
}

// ErrImmutable is returned (as a non-fatal condition, per §4.4) when
// an insert or release is attempted against $GLOBALS.
var ErrImmutable = immutableErr{}

type immutableErr struct{}

func (immutableErr) Error() string { return "hashmap: $GLOBALS is immutable" }

// Insert normalizes key, overwrites in place if present, else links
// a fresh owned node carrying value/valueIndex at the bucket head and
// the insertion-list tail, advancing the auto-index past any integer
// key at least as large as the current one (§4.4).
func (m *Map[V]) Insert(key Key, value V, valueIndex uint32) (*Node[V], error) {
	if m.immutable {
		return nil, ErrImmutable
	}
	if n, ok := m.Lookup(key); ok {
		n.Value = value
		n.ValueIndex = valueIndex
		return n, nil
	}
	n := m.linkNew(key, value, valueIndex, false)
	return n, nil
}

// InsertByRef is Insert, but the node is marked foreign: it does not
// own existingValueIndex, so unlinking it never releases the value.
func (m *Map[V]) InsertByRef(key Key, value V, existingValueIndex uint32) (*Node[V], error) {
	if m.immutable {
		return nil, ErrImmutable
	}
	if n, ok := m.Lookup(key); ok {
		n.Value = value
		n.ValueIndex = existingValueIndex
		n.Foreign = true
		return n, nil
	}
	n := m.linkNew(key, value, existingValueIndex, true)
	return n, nil
}

// InsertAuto inserts under the current auto-index, as PHP's `$a[] = x`
// does, then advances the auto-index.
func (m *Map[V]) InsertAuto(value V, valueIndex uint32) (*Node[V], error) {
	return m.Insert(IntKey(m.autoIndex), value, valueIndex)
}

func (m *Map[V]) linkNew(key Key, value V, valueIndex uint32, foreign bool) *Node[V] {
	if m.count+1 >= len(m.buckets)*growLoadNumerator {
		m.grow()
	}
	n := &Node[V]{key: key, Value: value, ValueIndex: valueIndex, Foreign: foreign, owner: m}

	idx := m.bucketIdx(key.hash)
	n.hnext = m.buckets[idx]
	if n.hnext != nil {
		n.hnext.hprev = n
	}
	m.buckets[idx] = n

	n.iprev = m.tail
	if m.tail != nil {
		m.tail.inext = n
	} else {
		m.head = n
	}
	m.tail = n

	m.count++
	if key.Kind == IntKeyKind && key.I >= m.autoIndex {
		m.autoIndex = key.I + 1
		m.advanceAutoIndexPastCollisions()
	}
	return n
}

// advanceAutoIndexPastCollisions implements the worst-case-quadratic
// loop the spec's Open Questions §9 explicitly permits: after landing
// on a fresh auto-index, skip forward over any key already present.
func (m *Map[V]) advanceAutoIndexPastCollisions() {
	for {
		if _, ok := m.Lookup(IntKey(m.autoIndex)); !ok {
			return
		}
		m.autoIndex++
	}
}

func (m *Map[V]) grow() {
	old := m.buckets
	m.buckets = make([]*Node[V], len(old)*2)
	for _, head := range old {
		for n := head; n != nil; {
			next := n.hnext
			n.hnext, n.hprev = nil, nil
			idx := m.bucketIdx(n.key.hash)
			n.hnext = m.buckets[idx]
			if n.hnext != nil {
				n.hnext.hprev = n
			}
			m.buckets[idx] = n
			n = next
		}
	}
}

// Unlink detaches n from the bucket chain and insertion list,
// retreating the cursor if it pointed at n. If restore is true and
// free is non-nil, free is invoked with n's value index and foreign
// flag before the node is discarded — callers that layer a value
// pool and reference table on top of Map supply free to release the
// cell and drop the back-reference (§4.3/§4.4); Map itself does not
// know what a "value pool" is.
func (m *Map[V]) Unlink(n *Node[V], restore bool, free func(valueIndex uint32, foreign bool)) {
	if n == nil || n.owner != m {
		return
	}
	if m.immutable {
		return
	}

	if n.hprev != nil {
		n.hprev.hnext = n.hnext
	} else {
		m.buckets[m.bucketIdx(n.key.hash)] = n.hnext
	}
	if n.hnext != nil {
		n.hnext.hprev = n.hprev
	}

	if n.iprev != nil {
		n.iprev.inext = n.inext
	} else {
		m.head = n.inext
	}
	if n.inext != nil {
		n.inext.iprev = n.iprev
	} else {
		m.tail = n.iprev
	}

	if m.cursor == n {
		m.cursor = n.iprev
	}

	m.count--
	if restore && free != nil {
		free(n.ValueIndex, n.Foreign)
	}

	n.owner = nil
	n.hnext, n.hprev, n.inext, n.iprev = nil, nil, nil, nil

	if m.count == 0 && !m.immutable {
		m.buckets = make([]*Node[V], initialBuckets)
	}
}

// ResetCursor rewinds the iteration cursor to the first entry.
func (m *Map[V]) ResetCursor() { m.cursor = m.head }

// NextEntry yields the entry at the cursor and advances it, or
// (nil, false) at end of iteration.
func (m *Map[V]) NextEntry() (*Node[V], bool) {
	if m.cursor == nil {
		return nil, false
	}
	n := m.cursor
	m.cursor = m.cursor.inext
	return n, true
}

// Each walks the insertion list without disturbing the cursor.
func (m *Map[V]) Each(fn func(n *Node[V]) bool) {
	for n := m.head; n != nil; n = n.inext {
		if !fn(n) {
			return
		}
	}
}

// First returns the head of the insertion list, or nil.
func (m *Map[V]) First() *Node[V] { return m.head }
