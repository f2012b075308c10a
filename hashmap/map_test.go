package hashmap

import "testing"

func TestStringKeyNormalization(t *testing.T) {
	m := New[string]()
	m.Insert(StrKey("42"), "a", 1)
	m.Insert(StrKey("42"), "b", 2)

	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	n, ok := m.Lookup(IntKey(42))
	if !ok {
		t.Fatal("lookup(42) miss after inserting \"42\" twice")
	}
	if n.Value != "b" {
		t.Fatalf("value = %q, want %q", n.Value, "b")
	}
	if n.key.Kind != IntKeyKind {
		t.Fatalf("key kind = %v, want IntKeyKind", n.key.Kind)
	}
}

func TestAutoIndexAdvancement(t *testing.T) {
	m := New[string]()
	n, _ := m.InsertAuto("x", 0)
	if n.key.I != 0 || m.AutoIndex() != 1 {
		t.Fatalf("first auto key = %d, autoIndex = %d", n.key.I, m.AutoIndex())
	}
	m.Insert(IntKey(5), "y", 0)
	if m.AutoIndex() != 6 {
		t.Fatalf("autoIndex after explicit 5 = %d, want 6", m.AutoIndex())
	}
	n, _ = m.InsertAuto("z", 0)
	if n.key.I != 6 {
		t.Fatalf("next auto key = %d, want 6", n.key.I)
	}
}

func TestAutoIndexSkipsCollisions(t *testing.T) {
	m := New[string]()
	m.Insert(IntKey(0), "a", 0)
	m.Insert(IntKey(1), "b", 0)
	n, _ := m.InsertAuto("c", 0)
	if n.key.I != 2 {
		t.Fatalf("auto key landed on %d, want 2", n.key.I)
	}
}

func TestLookupNotFoundOnEmpty(t *testing.T) {
	m := New[int]()
	if _, ok := m.Lookup(IntKey(0)); ok {
		t.Fatal("lookup on empty map should miss")
	}
}

func TestUnlinkCursorRetreats(t *testing.T) {
	m := New[string]()
	m.InsertAuto("a", 0)
	n2, _ := m.InsertAuto("b", 0)
	m.InsertAuto("c", 0)

	m.ResetCursor()
	first, _ := m.NextEntry()
	if first.Value != "a" {
		t.Fatalf("first = %q", first.Value)
	}
	cur, _ := m.NextEntry() // at "b"
	if cur != n2 {
		t.Fatal("cursor expected at b")
	}

	m.cursor = n2 // simulate cursor sitting on the node about to be unlinked
	m.Unlink(n2, false, nil)

	n, ok := m.NextEntry()
	if !ok || n.Value != "a" {
		t.Fatalf("after unlinking cursor node, NextEntry = %v, %v, want a (cursor retreated to the prior entry)", n, ok)
	}
}

func TestIterationOrderAndCount(t *testing.T) {
	m := New[int]()
	for i := 0; i < 5; i++ {
		m.InsertAuto(i, 0)
	}
	got := 0
	m.Each(func(n *Node[int]) bool {
		if n.Value != got {
			t.Fatalf("entry %d out of order: got value %d", got, n.Value)
		}
		got++
		return true
	})
	if got != m.Len() {
		t.Fatalf("walked %d entries, Len() = %d", got, m.Len())
	}
}

func TestGlobalsImmutable(t *testing.T) {
	g := NewGlobals[int]()
	if _, err := g.Insert(StrKey("x"), 1, 0); err != ErrImmutable {
		t.Fatalf("insert into $GLOBALS err = %v, want ErrImmutable", err)
	}
	if g.Len() != 0 {
		t.Fatal("$GLOBALS should remain empty after a refused insert")
	}
}

func TestSortByKeyOrder(t *testing.T) {
	m := New[string]()
	m.Insert(IntKey(3), "c", 0)
	m.Insert(IntKey(1), "a", 0)
	m.Insert(IntKey(2), "b", 0)
	m.Sort(ByKey[string](), false)

	var order []string
	m.Each(func(n *Node[string]) bool { order = append(order, n.Value); return true })
	want := []string{"a", "b", "c"}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSortReindex(t *testing.T) {
	m := New[string]()
	m.Insert(StrKey("x"), "second", 0)
	m.Insert(StrKey("y"), "first", 0)
	cmp := func(a, b *Node[string]) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		default:
			return 0
		}
	}
	m.Sort(cmp, true)

	var keys []int64
	m.Each(func(n *Node[string]) bool { keys = append(keys, n.key.I); return true })
	if len(keys) != 2 || keys[0] != 0 || keys[1] != 1 {
		t.Fatalf("reindexed keys = %v, want [0 1]", keys)
	}
}

func TestUnionIdempotent(t *testing.T) {
	clone := func(v string) string { return v }
	nextIdx := func(string) uint32 { return 0 }

	build := func() *Map[string] {
		m := New[string]()
		m.Insert(IntKey(0), "a", 0)
		m.Insert(StrKey("k"), "b", 0)
		return m
	}
	m := build()
	Union(m, build(), clone, nextIdx)

	if m.Len() != 2 {
		t.Fatalf("union(m, m) grew to %d entries, want 2", m.Len())
	}
	if n, _ := m.Lookup(IntKey(0)); n.Value != "a" {
		t.Fatal("union should keep the left operand's value on conflict")
	}
}

func TestEqualSameInsertionOrder(t *testing.T) {
	eq := func(a, b string, strict bool) bool { return a == b }
	a, b := New[string](), New[string]()
	for _, kv := range [][2]string{{"0", "x"}, {"k", "y"}} {
		a.Insert(StrKey(kv[0]), kv[1], 0)
		b.Insert(StrKey(kv[0]), kv[1], 0)
	}
	if !Equal(a, b, false, eq) {
		t.Fatal("maps built from identical (key,value) sequences should compare equal")
	}
}
