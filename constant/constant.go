// Package constant implements the script-visible constant registry of
// spec §4.5: a process-wide-per-VM name→expander map, with `Create`/
// `Delete` for host- and extension-registered constants plus the
// built-in seeding of §6.3's literal table (PHP_INT_MAX, E_*,
// DIRECTORY_SEPARATOR, the magic __FILE__ family, ...).
//
// A constant is not a value: it is a recipe for producing one
// on reference ("expander" in spec terms); every Materialize call runs
// the expander again, and no produced value is cached. Concurrent
// references of the same name under multi-thread mode are deduplicated
// with golang.org/x/sync/singleflight, so overlapping calls share one
// expander run.
package constant

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/value"
)

// Expander materializes a constant's value into cell. userData is the
// opaque pointer supplied at Create time, passed back unchanged.
type Expander func(cell *value.Cell, userData any) error

type entry struct {
	expander Expander
	userData any
}

// Registry is the name→expander map for one VM. The zero value is not
// usable; use New.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
}

// New returns a Registry seeded with the §6.3 built-in constants.
func New() *Registry {
	r := &Registry{entries: make(map[string]*entry)}
	seedBuiltins(r)
	return r
}

// Create installs name with the given expander and opaque userData.
// Names are case-sensitive byte sequences (§4.5); an empty name or a
// redefinition of an existing name is rejected, matching PHP's
// define()-cannot-redefine semantics.
func (r *Registry) Create(name string, expander Expander, userData any) error {
	if name == "" {
		return errkind.New(errkind.CORRUPT, "constant: empty name")
	}
	if expander == nil {
		return errkind.New(errkind.CORRUPT, "constant: nil expander for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return errkind.New(errkind.CORRUPT, "constant: %q already defined", name)
	}
	r.entries[name] = &entry{expander: expander, userData: userData}
	return nil
}

// Delete removes name, so a later reference resolves as undefined.
// Deleting a name that was never created is not an error (idempotent
// teardown, matching the rest of the module's release paths).
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Lookup reports whether name is registered, without materializing it.
func (r *Registry) Lookup(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Materialize resolves name into cell, running its expander. Repeated
// calls for the same still-registered name under concurrent access
// are collapsed onto a single expander invocation via singleflight;
// every caller gets an independently cloned cell so none can mutate
// another's copy through a shared pointer.
func (r *Registry) Materialize(name string, cell *value.Cell) error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return errkind.New(errkind.NOTFOUND, "constant: %q is undefined", name)
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		var tmp value.Cell
		if err := e.expander(&tmp, e.userData); err != nil {
			return nil, err
		}
		return &tmp, nil
	})
	if err != nil {
		return errkind.Wrap(errkind.VM, err, "expanding constant "+name)
	}
	clone, err := value.Clone(v.(*value.Cell), 0)
	if err != nil {
		return errkind.Wrap(errkind.NOMEM, err, "cloning constant "+name)
	}
	*cell = *clone
	return nil
}

// literalExpander wraps a fixed value, computed once at seed time, as
// an Expander, the same shape host code passes to Create; seedBuiltins
// stores these in r.entries directly, without going through Create.
func literalExpander(set func(c *value.Cell)) Expander {
	return func(c *value.Cell, _ any) error {
		set(c)
		return nil
	}
}

// errorLevel bits, §6.3.
const (
	eError           = 1
	eWarning         = 2
	eParse           = 4
	eNotice          = 8
	eCoreError       = 16
	eCoreWarning     = 32
	eCompileError    = 64
	eCompileWarning  = 128
	eUserError       = 256
	eUserWarning     = 512
	eUserNotice      = 1024
	eStrict          = 2048
	eRecoverable     = 4096
	eDeprecated      = 8192
	eUserDeprecated  = 16384
	eAll             = 32767
)

func seedBuiltins(r *Registry) {
	str := func(s string) func(*value.Cell) { return func(c *value.Cell) { c.InitString(s) } }
	i64 := func(i int64) func(*value.Cell) { return func(c *value.Cell) { c.InitInt(i) } }

	def := func(name string, set func(*value.Cell)) {
		r.entries[name] = &entry{expander: literalExpander(set)}
	}

	// Engine/host identity.
	def("PHP_VERSION", str(EngineVersion))
	def("PHP_OS", str(hostOSName()))
	def("PHP_OS_FAMILY", str(hostOSFamily()))

	// Integer limits (§6.3).
	def("PHP_INT_MAX", i64(1<<63-1))
	def("PHP_INT_MIN", i64(-1 << 63))
	def("PHP_INT_SIZE", i64(8))

	// Line endings / path conventions: Windows vs everything else.
	def("PHP_EOL", str(eol()))
	def("DIRECTORY_SEPARATOR", str(string(os.PathSeparator)))
	def("PATH_SEPARATOR", str(string(os.PathListSeparator)))

	// Error-reporting bitmask family.
	def("E_ERROR", i64(eError))
	def("E_WARNING", i64(eWarning))
	def("E_PARSE", i64(eParse))
	def("E_NOTICE", i64(eNotice))
	def("E_CORE_ERROR", i64(eCoreError))
	def("E_CORE_WARNING", i64(eCoreWarning))
	def("E_COMPILE_ERROR", i64(eCompileError))
	def("E_COMPILE_WARNING", i64(eCompileWarning))
	def("E_USER_ERROR", i64(eUserError))
	def("E_USER_WARNING", i64(eUserWarning))
	def("E_USER_NOTICE", i64(eUserNotice))
	def("E_STRICT", i64(eStrict))
	def("E_RECOVERABLE_ERROR", i64(eRecoverable))
	def("E_DEPRECATED", i64(eDeprecated))
	def("E_USER_DEPRECATED", i64(eUserDeprecated))
	def("E_ALL", i64(eAll))

	// Sort/case/count option constants.
	def("CASE_LOWER", i64(0))
	def("CASE_UPPER", i64(1))
	def("SORT_REGULAR", i64(0))
	def("SORT_NUMERIC", i64(1))
	def("SORT_STRING", i64(2))
	def("SORT_DESC", i64(3))
	def("SORT_ASC", i64(4))
	def("COUNT_NORMAL", i64(0))
	def("COUNT_RECURSIVE", i64(1))
	def("SEEK_SET", i64(0))
	def("SEEK_CUR", i64(1))
	def("SEEK_END", i64(2))

	// Magic constants are ordinarily rebound per compile scope
	// (current file/line/class); the registry seeds placeholder
	// expanders here so name lookups resolve. Nothing in this module
	// rebinds them, so they expand to these placeholder values.
	def("__FILE__", str(""))
	def("__DIR__", str(""))
	def("__LINE__", i64(0))
	def("__CLASS__", str(""))
	def("__FUNCTION__", str(""))
	def("__METHOD__", str(""))
	def("__NAMESPACE__", str(""))
}

// EngineVersion is the script-visible PHP_VERSION string this engine
// reports; kept as a single source of truth for cmd/phrun's version
// subcommand and the constant table.
const EngineVersion = "8.3.0-phcore"

func hostOSName() string {
	switch runtime.GOOS {
	case "windows":
		return "WINNT"
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	default:
		return strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
	}
}

func hostOSFamily() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin", "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "Unix"
	default:
		return fmt.Sprintf("%s", runtime.GOOS)
	}
}

func eol() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
