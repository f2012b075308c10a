package arena

import "testing"

func TestPoolAllocReusesFreed(t *testing.T) {
	a := New(0)
	buf1, err := a.PoolAlloc(32)
	if err != nil {
		t.Fatal(err)
	}
	buf1[0] = 0xAB
	a.PoolFree(32, buf1)

	buf2, err := a.PoolAlloc(32)
	if err != nil {
		t.Fatal(err)
	}
	if buf2[0] != 0 {
		t.Fatal("pool-freed chunk should be cleared before reuse")
	}
}

func TestAllocBudgetExhausted(t *testing.T) {
	a := New(16)
	if _, err := a.Alloc(8); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Alloc(100); err == nil {
		t.Fatal("expected NOMEM once the budget is exceeded")
	}
}

func TestAllocBudgetFiresMemErr(t *testing.T) {
	a := New(8)
	var requested int
	a.SetMemErrFunc(func(n int) { requested = n })
	if _, err := a.Alloc(100); err == nil {
		t.Fatal("expected error")
	}
	if requested != 100 {
		t.Fatalf("memErr called with %d, want 100", requested)
	}
}

func TestByteBufferAppendf(t *testing.T) {
	var b ByteBuffer
	b.Appendf("%s=%d (%qd) %z%%", "x", 3, int64(-7), "tail")
	if got, want := b.String(), "x=3 (-7) tail%"; got != want {
		t.Fatalf("Appendf = %q, want %q", got, want)
	}
}

func TestByteBufferBorrowCopyOnWrite(t *testing.T) {
	src := []byte("hello")
	var b ByteBuffer
	b.Borrow(src)
	b.AppendString(" world")
	if string(src) != "hello" {
		t.Fatal("mutating a borrowed buffer must not touch the original backing array")
	}
	if b.String() != "hello world" {
		t.Fatalf("got %q", b.String())
	}
}

func TestByteBufferNullTerminate(t *testing.T) {
	var b ByteBuffer
	b.AppendString("abc")
	b.NullTerminate()
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (null terminator must not count)", b.Len())
	}
	if len(b.Bytes()) != 3 {
		t.Fatalf("Bytes() length = %d, want 3", len(b.Bytes()))
	}
}

func TestByteBufferReset(t *testing.T) {
	var b ByteBuffer
	b.AppendString("data")
	b.Reset()
	if b.Len() != 0 {
		t.Fatal("Reset should empty the buffer")
	}
}
