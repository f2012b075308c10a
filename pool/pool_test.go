package pool

import (
	"testing"

	"github.com/marl-lang/phcore/hashmap"
	"github.com/marl-lang/phcore/value"
)

func TestReserveAndRelease(t *testing.T) {
	p := New()
	idx, cell := p.Reserve()
	cell.InitInt(5)

	if got := p.At(idx); got != cell {
		t.Fatal("At(idx) should return the same cell Reserve handed out")
	}
	if err := p.Release(idx); err != nil {
		t.Fatal(err)
	}
	if !cell.Flags().Has(value.Null) {
		t.Fatal("Release should leave the cell NULL")
	}
}

func TestReleaseReusesIndexLIFO(t *testing.T) {
	p := New()
	idx1, _ := p.Reserve()
	idx2, _ := p.Reserve()
	p.Release(idx2)
	p.Release(idx1)

	idx3, _ := p.Reserve()
	if idx3 != idx1 {
		t.Fatalf("expected LIFO reuse of idx1 (%d), got %d", idx1, idx3)
	}
}

func TestUnsetPropagatesThroughReference(t *testing.T) {
	// $a = 10; $b[] =& $a; unset($a); -> $b becomes empty (§8.2).
	p := New()
	aIdx, aCell := p.Reserve()
	aCell.InitInt(10)

	b := value.NewMap()
	_, err := p.ArrayInsertByRef(b, hashmap.IntKey(0), aIdx)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 1 {
		t.Fatalf("b.Len() = %d, want 1", b.Len())
	}

	if err := p.Release(aIdx); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 0 {
		t.Fatalf("unset($a) should propagate and empty $b, got Len() = %d", b.Len())
	}
}

func TestArrayUnsetOwnedReleasesCell(t *testing.T) {
	p := New()
	m := value.NewMap()
	var v value.Cell
	v.InitInt(7)

	n, err := p.ArrayInsert(m, hashmap.IntKey(0), &v)
	if err != nil {
		t.Fatal(err)
	}
	idx := n.ValueIndex
	cell := p.At(idx)

	p.ArrayUnset(m, n)

	if m.Len() != 0 {
		t.Fatal("ArrayUnset should remove the entry")
	}
	if !cell.Flags().Has(value.Null) {
		t.Fatal("unsetting an owned (non-foreign) entry should release its cell")
	}
}

func TestArrayUnsetForeignDoesNotReleaseCell(t *testing.T) {
	p := New()
	aIdx, aCell := p.Reserve()
	aCell.InitInt(1)

	m := value.NewMap()
	n, err := p.ArrayInsertByRef(m, hashmap.IntKey(0), aIdx)
	if err != nil {
		t.Fatal(err)
	}
	p.ArrayUnset(m, n)

	if aCell.Flags().Has(value.Null) {
		t.Fatal("unsetting a foreign (reference) entry must not release the aliased cell")
	}
}
