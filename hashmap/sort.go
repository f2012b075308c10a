package hashmap

// Comparator returns negative/zero/positive comparing two nodes, in
// whatever terms the caller needs (by value, by key, ...). The six
// required flavors (§4.4) are built by the comparator constructors
// below around a value-level Cmp supplied by the caller, since this
// package has no notion of value semantics.
type Comparator[V any] func(a, b *Node[V]) int

// ByKey compares nodes by key: integer keys order numerically and
// sort before any string key; string keys order byte-wise.
func ByKey[V any]() Comparator[V] {
	return func(a, b *Node[V]) int {
		ak, bk := a.key, b.key
		if ak.Kind != bk.Kind {
			if ak.Kind == IntKeyKind {
				return -1
			}
			return 1
		}
		if ak.Kind == IntKeyKind {
			switch {
			case ak.I < bk.I:
				return -1
			case ak.I > bk.I:
				return 1
			default:
				return 0
			}
		}
		if ak.S < bk.S {
			return -1
		}
		if ak.S > bk.S {
			return 1
		}
		return 0
	}
}

// ByValue wraps a value-level comparator (e.g. value.Cmp) as a node
// comparator — the "by-value standard" flavor.
func ByValue[V any](cmp func(a, b V) int) Comparator[V] {
	return func(a, b *Node[V]) int { return cmp(a.Value, b.Value) }
}

// Reverse flips the sign of an existing comparator — the
// "reverse-of-standard" flavor.
func Reverse[V any](c Comparator[V]) Comparator[V] {
	return func(a, b *Node[V]) int { return -c(a, b) }
}

// ByCallback adapts a host-supplied callback (invoked with two
// values, per §4.4's by-user-callback flavor) into a Comparator.
func ByCallback[V any](cb func(a, b V) int) Comparator[V] {
	return func(a, b *Node[V]) int { return cb(a.Value, b.Value) }
}

// Sort performs a stable merge sort over the insertion list using
// cmp, relinking the list (and, if reindex is true, discarding old
// keys and re-assigning sequential integer keys from 0 — the
// "numeric-sort" flavor of §4.4). Bucket placement is rebuilt to
// match, since key changes invalidate bucket hashes.
func (m *Map[V]) Sort(cmp Comparator[V], reindex bool) {
	if m.count < 2 && !reindex {
		return
	}
	nodes := make([]*Node[V], 0, m.count)
	m.Each(func(n *Node[V]) bool { nodes = append(nodes, n); return true })

	nodes = mergeSort(nodes, cmp)

	if reindex {
		for i, n := range nodes {
			n.key = IntKey(int64(i))
		}
		m.autoIndex = int64(len(nodes))
	}

	m.relink(nodes)
}

// relink rebuilds the insertion list and bucket array from an
// explicitly ordered slice, without touching node Value/ValueIndex.
func (m *Map[V]) relink(nodes []*Node[V]) {
	m.buckets = make([]*Node[V], bucketSizeFor(len(nodes)))
	m.head, m.tail, m.cursor = nil, nil, nil

	for _, n := range nodes {
		n.hnext, n.hprev, n.inext, n.iprev = nil, nil, nil, nil

		idx := m.bucketIdx(n.key.hash)
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
	}
}

func bucketSizeFor(n int) int {
	size := initialBuckets
	for n >= size*growLoadNumerator {
		size *= 2
	}
	return size
}

// mergeSort is a classic stable bottom-up merge sort; the spec's
// "32-bucket radix-buffer accumulator" is one valid implementation of
// the same stability contract (a stable O(n log n) sort over the
// insertion list) — this is the idiomatic Go rendition of it.
func mergeSort[V any](nodes []*Node[V], cmp Comparator[V]) []*Node[V] {
	if len(nodes) < 2 {
		return nodes
	}
	buf := make([]*Node[V], len(nodes))
	for width := 1; width < len(nodes); width *= 2 {
		for lo := 0; lo < len(nodes); lo += 2 * width {
			mid := min(lo+width, len(nodes))
			hi := min(lo+2*width, len(nodes))
			merge(nodes[lo:mid], nodes[mid:hi], buf[lo:hi], cmp)
			copy(nodes[lo:hi], buf[lo:hi])
		}
	}
	return nodes
}

// merge is the classic two-way merge step; min is the Go 1.21+ builtin.
func merge[V any](a, b, out []*Node[V], cmp Comparator[V]) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(a[i], b[j]) <= 0 {
			out[k] = a[i]
			i++
		} else {
			out[k] = b[j]
			j++
		}
		k++
	}
	for i < len(a) {
		out[k] = a[i]
		i++
		k++
	}
	for j < len(b) {
		out[k] = b[j]
		j++
		k++
	}
}
