package engine

import (
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/pvmutex"
	"github.com/marl-lang/phcore/vfs"
)

// Verb names one §6.1 engine configuration verb. Verbs split into two
// families: library verbs, which must be issued before the first
// engine is created and configure process-wide subsystems, and engine
// verbs, which configure one already-created Engine.
type Verb int

const (
	// Engine verbs.
	ErrOutput Verb = iota
	ErrLog
	ErrAbort

	// Library verbs.
	VFSVerb
	UserMalloc
	MemErrCallback
	UserMutex
	ThreadLevelSingle
	ThreadLevelMulti
)

// Config is a typed configuration value for one verb. Each verb has
// exactly one Config implementation; the unexported marker method
// keeps the sum type closed to this package, mirroring how
// token.OpDescriptor closes the operator table to entries this module
// defines.
type Config interface {
	verb() Verb
}

// ErrOutputConfig, ErrLogConfig, ErrAbortConfig are reserved engine
// verbs (§6.1 lists them as present but no-op pending a fuller error
// pipeline than §7 specifies); they still round-trip through the verb
// table so a host issuing them gets OK rather than CORRUPT.
type ErrOutputConfig struct{}
type ErrLogConfig struct{}
type ErrAbortConfig struct{}

func (ErrOutputConfig) verb() Verb { return ErrOutput }
func (ErrLogConfig) verb() Verb    { return ErrLog }
func (ErrAbortConfig) verb() Verb  { return ErrAbort }

// VFSConfig installs fs as the filesystem backing include/require and
// the file functions for every VM created after this call.
type VFSConfig struct{ FS vfs.FS }

func (VFSConfig) verb() Verb { return VFSVerb }

// UserMallocConfig records a host allocator in userAlloc. Nothing in
// this module reads userAlloc, so installing one does not change how
// any arena allocates. Alloc must return a zeroed slice of exactly n
// bytes.
type UserMallocConfig struct{ Alloc func(n int) []byte }

func (UserMallocConfig) verb() Verb { return UserMalloc }

// MemErrCallbackConfig records a callback in memErrCallback. Nothing
// in this module reads memErrCallback, so the callback is never
// invoked when an allocation fails; arena.Arena's own SetMemErrFunc
// hook is not set by this verb.
type MemErrCallbackConfig struct{ Callback func(err error) }

func (MemErrCallbackConfig) verb() Verb { return MemErrCallback }

// UserMutexConfig overrides Mutex construction (§5's "user mutex
// provider" hook), e.g. to swap in a platform futex instead of the
// default go-deadlock-backed implementation.
type UserMutexConfig struct{ Provider pvmutex.Provider }

func (UserMutexConfig) verb() Verb { return UserMutex }

// ThreadLevelConfig switches the process between THREAD_LEVEL_SINGLE
// (default, no locking) and THREAD_LEVEL_MULTI (every public API entry
// acquires the relevant mutex, §5).
type ThreadLevelConfig struct{ Level pvmutex.Level }

func (c ThreadLevelConfig) verb() Verb {
	if c.Level == pvmutex.Multi {
		return ThreadLevelMulti
	}
	return ThreadLevelSingle
}

// verbHandler applies one Config value to global/library state.
type verbHandler func(Config) error

// verbTable dispatches Verb -> handler, the same table-driven idiom
// the token package uses for its operator descriptors: a closed set of
// keys, each naming the handler responsible for it, with an explicit
// CORRUPT fallback for anything not in the table (§6.1: "unrecognized
// verbs return CORRUPT").
var verbTable = map[Verb]verbHandler{
	ErrOutput: func(Config) error { return nil },
	ErrLog:    func(Config) error { return nil },
	ErrAbort:  func(Config) error { return nil },

	VFSVerb: func(c Config) error {
		cfg := c.(VFSConfig)
		if cfg.FS == nil {
			return errkind.New(errkind.CORRUPT, "engine: VFS verb with nil FS")
		}
		installedFS = cfg.FS
		return nil
	},
	UserMalloc: func(c Config) error {
		cfg := c.(UserMallocConfig)
		if cfg.Alloc == nil {
			return errkind.New(errkind.CORRUPT, "engine: USER_MALLOC verb with nil Alloc")
		}
		// Recorded only: no engine, VM or arena reads userAlloc.
		userAlloc = cfg.Alloc
		return nil
	},
	MemErrCallback: func(c Config) error {
		cfg := c.(MemErrCallbackConfig)
		memErrCallback = cfg.Callback
		return nil
	},
	UserMutex: func(c Config) error {
		cfg := c.(UserMutexConfig)
		pvmutex.SetProvider(cfg.Provider)
		return nil
	},
	ThreadLevelSingle: func(Config) error {
		pvmutex.SetLevel(pvmutex.Single)
		return nil
	},
	ThreadLevelMulti: func(Config) error {
		pvmutex.SetLevel(pvmutex.Multi)
		return nil
	},
}

// Process-wide state the library verbs above install. Guarded by
// pvmutex.Library, since §5 requires the library mutex held during
// one-time subsystem init.
var (
	installedFS    vfs.FS
	userAlloc      func(n int) []byte
	memErrCallback func(err error)
)

// Configure applies one library configuration verb. Library verbs
// (VFS, USER_MALLOC, MEM_ERR_CALLBACK, USER_MUTEX, THREAD_LEVEL_*)
// must be issued before the first Engine is created (§6.1); calling
// Configure after engines exist is accepted but only affects
// subsequently created engines/VMs.
func Configure(cfg Config) error {
	pvmutex.Library.Lock()
	defer pvmutex.Library.Unlock()

	h, ok := verbTable[cfg.verb()]
	if !ok {
		return errkind.New(errkind.CORRUPT, "engine: unrecognized configuration verb")
	}
	return h(cfg)
}

// currentFS returns the installed VFS, defaulting to the real OS
// filesystem if VFSConfig was never applied.
func currentFS() vfs.FS {
	if installedFS == nil {
		return vfs.NewOS()
	}
	return installedFS
}
