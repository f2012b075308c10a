// Package arena implements the host-replaceable allocator and
// growable byte buffer of spec §4.1: pool allocation of fixed
// per-request sizes chunked from large blocks, general allocation,
// and a byte buffer with format-append, reset, null-termination, and
// a read-only borrow mode.
//
// The size-class/chunk-from-block design is grounded in the pack's
// indirect buffer pool (hayabusa-cloud-iobuf's IndirectPool[T]):
// rather than importing that package's private-registry dependencies
// (code.hybscloud.com/iox, spin), the same "big block sliced into
// fixed-size chunks, free list of indices" shape is reimplemented
// natively against Go's GC instead of manual refcounting.
package arena

import "github.com/marl-lang/phcore/errkind"

// AllocFunc is a host-replaceable allocator methods table: given a
// size it returns a zeroed buffer of at least that length, or nil on
// failure. The zero value of Arena uses Go's make().
type AllocFunc func(n int) []byte

// MemErrFunc is the host's memory-failure callback (§4.1): invoked,
// if set, whenever an allocation request cannot be satisfied.
type MemErrFunc func(requested int)

const blockSize = 64 * 1024

// Arena is the per-engine/per-VM parent allocator. All allocations
// within one engine or VM share one Arena (§4.1's "share one parent
// allocator" contract).
type Arena struct {
	maxBytes int64
	used     int64

	alloc  AllocFunc
	memErr MemErrFunc

	classes map[int]*sizeClass
}

type sizeClass struct {
	size  int
	block []byte // current large block being sliced
	off   int
	free  [][]byte // pool-freed chunks available for reuse, no compaction
}

// New returns an Arena with an optional byte budget (0 = unbounded)
// and the default make()-backed allocator.
func New(maxBytes int64) *Arena {
	return &Arena{
		maxBytes: maxBytes,
		alloc:    func(n int) []byte { return make([]byte, n) },
		classes:  make(map[int]*sizeClass),
	}
}

// SetAllocFunc installs a host-replaceable allocator methods table.
func (a *Arena) SetAllocFunc(fn AllocFunc) {
	if fn != nil {
		a.alloc = fn
	}
}

// SetMemErrFunc installs the host's out-of-memory notification hook.
func (a *Arena) SetMemErrFunc(fn MemErrFunc) { a.memErr = fn }

func (a *Arena) reserve(n int) bool {
	if a.maxBytes == 0 {
		return true
	}
	if a.used+int64(n) > a.maxBytes {
		return false
	}
	a.used += int64(n)
	return true
}

// Alloc performs a general allocation of n bytes, counted against the
// arena's budget if one is set. Returns NOMEM (and fires the
// host's memory-failure callback) on exhaustion.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if !a.reserve(n) {
		if a.memErr != nil {
			a.memErr(n)
		}
		return nil, errkind.New(errkind.NOMEM, "arena: out of memory allocating %d bytes", n)
	}
	buf := a.alloc(n)
	if buf == nil {
		a.used -= int64(n)
		if a.memErr != nil {
			a.memErr(n)
		}
		return nil, errkind.New(errkind.NOMEM, "arena: allocator returned nil for %d bytes", n)
	}
	return buf, nil
}

// classOf rounds n up to the nearest size class the arena has seen,
// which for our purposes is just n itself: every distinct request
// size chunked from the same size class's blocks.
func (a *Arena) classOf(n int) *sizeClass {
	c, ok := a.classes[n]
	if !ok {
		c = &sizeClass{size: n}
		a.classes[n] = c
	}
	return c
}

// PoolAlloc returns a zeroed n-byte chunk, preferring a previously
// pool-freed chunk of the same size class, else slicing one from the
// class's current large block (allocating a new block via Alloc when
// the current one is exhausted).
func (a *Arena) PoolAlloc(n int) ([]byte, error) {
	c := a.classOf(n)
	if len(c.free) > 0 {
		buf := c.free[len(c.free)-1]
		c.free = c.free[:len(c.free)-1]
		clear(buf)
		return buf, nil
	}
	need := n
	if need < blockSize {
		need = blockSize
	}
	if c.block == nil || c.off+n > len(c.block) {
		blk, err := a.Alloc(need)
		if err != nil {
			return nil, err
		}
		c.block = blk
		c.off = 0
	}
	buf := c.block[c.off : c.off+n : c.off+n]
	c.off += n
	return buf, nil
}

// PoolFree returns buf to its size class's free list; per §4.1 there
// is no compaction, so the underlying block is never reclaimed until
// the whole Arena is dropped.
func (a *Arena) PoolFree(n int, buf []byte) {
	c := a.classOf(n)
	c.free = append(c.free, buf)
}

// Used reports the arena's current accounting against its budget.
func (a *Arena) Used() int64 { return a.used }
