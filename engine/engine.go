// Package engine implements the §4.8 host API surface and the §5
// engine/VM lifecycle: an Engine owns a set of VMs, an output
// consumer, a buffered compile-error log forwarded to an error
// consumer, and the configuration verbs of §6.1 (see config.go). Each
// VM owns its own value pool, constant registry, and foreign-function
// table, matching §5's resource-ownership split.
//
// Structured logging follows the teacher's convention of a
// per-component *logrus.Entry rather than the package-level logger:
// every Engine and VM carries one pre-populated with its identity, so
// a host aggregating logs from many engines can filter on the
// "engine"/"vm" fields rather than parsing messages.
package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/marl-lang/phcore/constant"
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/pool"
	"github.com/marl-lang/phcore/pvmutex"
	"github.com/marl-lang/phcore/value"
)

// OutputConsumer receives one chunk of script output (echo/print,
// §4.8). Returning true aborts the VM that produced it, the
// cooperative cancellation point described in §5.
type OutputConsumer func(chunk string) (abort bool)

// ErrorConsumer receives one buffered compile or runtime error.
// Returning true aborts the engine's remaining compile units, mirroring
// OutputConsumer's cooperative-abort contract.
type ErrorConsumer func(err error) (abort bool)

// ForeignFunc is a host function installed under a script-visible
// name (§4.8): it receives already-coerced argument cells and writes
// its result into ret.
type ForeignFunc func(args []*value.Cell, ret *value.Cell) error

var engineSeq int64

// Engine owns a set of VMs and the output/error consumers shared by
// them. Create one with New; release it and every VM it owns with
// Release.
type Engine struct {
	id  int64
	mu  *pvmutex.Mutex
	log *logrus.Entry

	vms []*VM

	outputConsumer OutputConsumer
	errorConsumer  ErrorConsumer
	compileErrors  []error
}

// New creates an Engine. Library configuration verbs (Configure) take
// effect for VMs created after this call; an Engine created before a
// later Configure call keeps using whatever was installed at its own
// creation time for anything it already cached (the mutex provider),
// while each new VM reads the VFS installed at that moment through
// currentFS().
func New() *Engine {
	id := atomic.AddInt64(&engineSeq, 1)
	e := &Engine{
		id:  id,
		mu:  pvmutex.NewFromProvider(),
		log: logrus.NewEntry(defaultLogger()).WithField("engine", id),
	}
	e.log.Debug("engine created")
	return e
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetLogger replaces e's logger, e.g. to route this engine's log
// lines through a host's own logrus.Logger instance.
func (e *Engine) SetLogger(l *logrus.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = logrus.NewEntry(l).WithField("engine", e.id)
}

// SetOutputConsumer installs the callback invoked for script output
// (§4.8). A nil consumer discards output silently.
func (e *Engine) SetOutputConsumer(c OutputConsumer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outputConsumer = c
}

// SetErrorConsumer installs the callback invoked as compile/runtime
// errors are buffered (§7). A nil consumer leaves errors queued in
// CompileErrors only.
func (e *Engine) SetErrorConsumer(c ErrorConsumer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorConsumer = c
}

// emitOutput forwards chunk to the installed OutputConsumer, if any,
// reporting whether the VM producing it should abort.
func (e *Engine) emitOutput(chunk string) (abort bool) {
	e.mu.Lock()
	c := e.outputConsumer
	e.mu.Unlock()
	if c == nil {
		return false
	}
	return c(chunk)
}

// bufferError appends err to the engine's compile-error log and
// forwards it to the installed ErrorConsumer, reporting whether
// remaining compile units should be abandoned (§7: "don't abort
// subsequent statements unless consumer aborts").
func (e *Engine) bufferError(err error) (abort bool) {
	e.mu.Lock()
	e.compileErrors = append(e.compileErrors, err)
	c := e.errorConsumer
	e.mu.Unlock()

	e.log.WithError(err).WithField("kind", errkind.KindOf(err).String()).Warn("compile error")
	if c == nil {
		return false
	}
	return c(err)
}

// CompileErrors returns every error buffered on e so far, oldest
// first.
func (e *Engine) CompileErrors() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.compileErrors))
	copy(out, e.compileErrors)
	return out
}

// NewVM creates a VM owned by e and tracks it in e's VM list (§5:
// "per-engine VM list").
func (e *Engine) NewVM() *VM {
	e.mu.Lock()
	defer e.mu.Unlock()

	vm := &VM{
		engine:    e,
		mu:        pvmutex.NewFromProvider(),
		pool:      pool.New(),
		consts:    constant.New(),
		functions: make(map[string]ForeignFunc),
		fs:        currentFS(),
	}
	vm.log = e.log.WithField("vm", len(e.vms)+1)
	e.vms = append(e.vms, vm)
	vm.log.Debug("vm created")
	return vm
}

// Release tears down e and every VM it owns. Releasing an engine
// twice is a no-op.
func (e *Engine) Release() {
	e.mu.Lock()
	vms := e.vms
	e.vms = nil
	e.mu.Unlock()

	for _, vm := range vms {
		vm.Release()
	}
	e.log.Debug("engine released")
}

// VMs returns e's currently live VM list, for host introspection.
func (e *Engine) VMs() []*VM {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*VM, len(e.vms))
	copy(out, e.vms)
	return out
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine#%d(%d vms)", e.id, len(e.VMs()))
}

// installForeign trims name and validates it is non-empty before
// installing fn on vm (§4.8: "name trimmed, must be non-empty").
func installForeign(vm *VM, name string, fn ForeignFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errkind.New(errkind.CORRUPT, "engine: foreign function name is empty")
	}
	if fn == nil {
		return errkind.New(errkind.CORRUPT, "engine: nil foreign function for %q", name)
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, exists := vm.functions[name]; exists {
		return errkind.New(errkind.CORRUPT, "engine: foreign function %q already installed", name)
	}
	vm.functions[name] = fn
	return nil
}
