package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/marl-lang/phcore/constant"
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/hashmap"
	"github.com/marl-lang/phcore/pool"
	"github.com/marl-lang/phcore/pvmutex"
	"github.com/marl-lang/phcore/value"
	"github.com/marl-lang/phcore/vfs"
)

// ClassInstance is the minimal per-VM bookkeeping record for a live
// object (§5: "per-VM list of active class instances"); class-method
// dispatch itself is out of scope here (value.CastDispatcher is the
// extension point a class system plugs into).
type ClassInstance struct {
	ClassName string
	Payload   *value.ObjectPayload
}

// VM is one execution context within an Engine: its own value pool,
// constant registry, foreign-function table, and active class
// instance list, matching §5's ownership split ("hashmap owns
// buckets/nodes...; value pool holds weak indices").
type VM struct {
	engine *Engine
	mu     *pvmutex.Mutex
	log    *logrus.Entry

	pool      *pool.ValuePool
	consts    *constant.Registry
	functions map[string]ForeignFunc
	instances []*ClassInstance
	fs        vfs.FS

	released bool
}

// Engine returns the Engine that owns vm.
func (vm *VM) Engine() *Engine { return vm.engine }

// Constants returns vm's constant registry (§4.5).
func (vm *VM) Constants() *constant.Registry { return vm.consts }

// FS returns the filesystem vm resolves include/require/file-function
// paths against.
func (vm *VM) FS() vfs.FS { return vm.fs }

// InstallForeign installs fn under name on vm (§4.8).
func (vm *VM) InstallForeign(name string, fn ForeignFunc) error {
	return installForeign(vm, name, fn)
}

// CallForeign invokes the foreign function installed under name, or
// returns a NOTFOUND error if none is installed.
func (vm *VM) CallForeign(name string, args []*value.Cell, ret *value.Cell) error {
	vm.mu.Lock()
	fn, ok := vm.functions[name]
	vm.mu.Unlock()
	if !ok {
		return errkind.New(errkind.NOTFOUND, "engine: no foreign function %q", name)
	}
	return fn(args, ret)
}

// NewCell reserves a value cell from vm's pool (§5: "value cell
// create/release owned by VM").
func (vm *VM) NewCell() (uint32, *value.Cell) {
	return vm.pool.Reserve()
}

// ReleaseCell releases a cell previously obtained from NewCell.
func (vm *VM) ReleaseCell(idx uint32) error {
	return vm.pool.Release(idx)
}

// Cell returns the cell at idx without releasing it.
func (vm *VM) Cell(idx uint32) *value.Cell {
	return vm.pool.At(idx)
}

// NewArray returns a fresh, empty array value.
func (vm *VM) NewArray() *value.ArrayValue {
	return value.NewMap()
}

// ArraySet inserts v under key into m by string key, auto-growing
// $GLOBALS-style auto-index arrays is the caller's responsibility via
// ArrayPush (§5: "array entry by int/string key/auto-index").
func (vm *VM) ArraySet(m *value.ArrayValue, key string, v *value.Cell) error {
	_, err := vm.pool.ArrayInsert(m, hashmap.StrKey(key), v)
	return err
}

// ArraySetInt inserts v under the integer key idx.
func (vm *VM) ArraySetInt(m *value.ArrayValue, idx int64, v *value.Cell) error {
	_, err := vm.pool.ArrayInsert(m, hashmap.IntKey(idx), v)
	return err
}

// ArrayPush appends v to m under the next auto-index.
func (vm *VM) ArrayPush(m *value.ArrayValue, v *value.Cell) error {
	_, err := vm.pool.ArrayInsertAuto(m, v)
	return err
}

// ArrayGet looks up key in m by string key.
func (vm *VM) ArrayGet(m *value.ArrayValue, key string) (*value.Cell, bool) {
	n, ok := m.Lookup(hashmap.StrKey(key))
	if !ok {
		return nil, false
	}
	return n.Value, true
}

// Echo forwards chunk to the owning engine's output consumer,
// reporting whether vm should abort (§4.8).
func (vm *VM) Echo(chunk string) (abort bool) {
	return vm.engine.emitOutput(chunk)
}

// ThrowError buffers err on the owning engine and forwards it to the
// error consumer (§7: "runtime errors ... produce PHP-visible records
// but continue unless fatal").
func (vm *VM) ThrowError(err error) (abort bool) {
	return vm.engine.bufferError(err)
}

// TrackInstance records inst as live on vm.
func (vm *VM) TrackInstance(inst *ClassInstance) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.instances = append(vm.instances, inst)
}

// Instances returns vm's currently tracked class instances.
func (vm *VM) Instances() []*ClassInstance {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]*ClassInstance, len(vm.instances))
	copy(out, vm.instances)
	return out
}

// Release tears down vm: its class instances are dropped; its pool is
// left as it is. Releasing a VM twice is a no-op.
func (vm *VM) Release() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.released {
		return
	}
	vm.released = true
	vm.instances = nil
	vm.log.Debug("vm released")
}
