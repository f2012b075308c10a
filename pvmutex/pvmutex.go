// Package pvmutex implements the §5 concurrency model's locking
// primitives: a library-wide mutex held during one-time subsystem init
// (allocator, mutex provider, VFS), and a reentrant per-engine/per-VM
// mutex acquired on every public API entry under multi-thread mode.
//
// Single-thread mode (the default, §6.1's THREAD_LEVEL_SINGLE) makes
// every operation here a no-op: the engine is assumed single-threaded
// per VM and paying for atomic/lock overhead on every call would be
// pure waste. THREAD_LEVEL_MULTI switches all of it on.
//
// Deadlock detection is via github.com/sasha-s/go-deadlock, a
// drop-in sync.Mutex replacement that panics with the cycle on
// contention it can prove is a deadlock, rather than hanging the
// process silently the way sync.Mutex would. Reentrancy tracking
// (the same goroutine may re-enter a Mutex it already holds, since
// nested engine calls from within a foreign-function callback are a
// normal code path per §5) uses github.com/petermattis/goid to read
// the calling goroutine's id.
package pvmutex

import (
	"sync/atomic"

	"github.com/petermattis/goid"
	deadlock "github.com/sasha-s/go-deadlock"
)

// Level is the §6.1 THREAD_LEVEL_SINGLE/THREAD_LEVEL_MULTI switch.
type Level int32

const (
	Single Level = iota
	Multi
)

// level is process-wide: the library-wide mutex mode applies to every
// engine in the process, matching §5's "library-wide mutex" wording.
var level int32 = int32(Single)

// SetLevel installs the THREAD_LEVEL_* library configuration verb.
func SetLevel(l Level) { atomic.StoreInt32(&level, int32(l)) }

// CurrentLevel reports the active thread level.
func CurrentLevel() Level { return Level(atomic.LoadInt32(&level)) }

// Mutex is a reentrant lock: a goroutine already holding it may lock
// it again without blocking, tracked via its goroutine id. It is a
// no-op under Single thread level.
type Mutex struct {
	inner  deadlock.Mutex
	holder int64 // goroutine id of the current holder, 0 if unlocked
	depth  int
}

// New returns an unlocked Mutex.
func New() *Mutex { return &Mutex{} }

// Lock acquires m, reentrantly: a goroutine that already holds m
// increments its hold depth instead of blocking on itself.
func (m *Mutex) Lock() {
	if CurrentLevel() == Single {
		return
	}
	gid := goid.Get()
	if atomic.LoadInt64(&m.holder) == gid {
		m.depth++
		return
	}
	m.inner.Lock()
	atomic.StoreInt64(&m.holder, gid)
	m.depth = 1
}

// Unlock releases one level of m's reentrant hold. Unlocking a Mutex
// not held by the calling goroutine is a caller bug, matching the
// underlying deadlock.Mutex/sync.Mutex contract.
func (m *Mutex) Unlock() {
	if CurrentLevel() == Single {
		return
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	atomic.StoreInt64(&m.holder, 0)
	m.inner.Unlock()
}

// Library is the process-wide mutex held during one-time subsystem
// init: allocator setup, mutex provider installation, VFS installation
// (§6.1's library configuration verbs, which must all be issued before
// any engine is created).
var Library = New()

// Provider lets a host override mutex construction via the USER_MUTEX
// library verb (§6.1), e.g. to supply a platform-specific
// implementation instead of go-deadlock's.
type Provider func() *Mutex

var provider Provider = New

// SetProvider installs a custom Mutex constructor. Passing nil
// restores the default go-deadlock-backed Provider.
func SetProvider(p Provider) {
	if p == nil {
		p = New
	}
	provider = p
}

// NewFromProvider builds a Mutex via the currently installed Provider,
// used by engine/VM construction so USER_MUTEX takes effect for every
// subsequently created lock.
func NewFromProvider() *Mutex { return provider() }
