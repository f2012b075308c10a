// Package value implements the tagged, polymorphic value cell of
// spec §3.1/§4.2: in-place coercion between null/bool/int/float/
// string/array/object/resource, total-order comparison, and
// copy/load/release with composite refcounting. It has no knowledge
// of the value pool that indexes cells (package pool sits above it)
// and no knowledge of the class system beyond the CastDispatcher
// extension point (§9 design note).
package value

import "github.com/marl-lang/phcore/arena"

// Flag is the bitmask of type flags carried by a cell. INT and REAL
// may coexist (the cached-numeric-representation invariant); every
// other primary flag is exclusive with the rest.
type Flag uint16

const (
	Null Flag = 1 << iota
	Bool
	Int
	Real
	String
	Array
	Object
	Resource
)

// Scalar is the derived flag grouping the four primitive kinds.
const Scalar = Bool | Int | Real | String

func (f Flag) Has(mask Flag) bool { return f&mask == mask }
func (f Flag) Any(mask Flag) bool { return f&mask != 0 }

func (f Flag) String() string {
	switch {
	case f.Has(Null):
		return "NULL"
	case f.Has(Array):
		return "ARRAY"
	case f.Has(Object):
		return "OBJECT"
	case f.Has(Resource):
		return "RESOURCE"
	case f.Has(Int) && f.Has(Real):
		return "INT|REAL"
	case f.Has(Int):
		return "INT"
	case f.Has(Real):
		return "REAL"
	case f.Has(String):
		return "STRING"
	case f.Has(Bool):
		return "BOOL"
	default:
		return "UNSET"
	}
}

// ConstIndex is the pool-index sentinel marking a cell as a constant,
// not subject to pool reuse (§3.1).
const ConstIndex uint32 = 1<<32 - 1

// CastDispatcher is the VM-provided extension point consulted by
// to_int/to_bool/to_string/to_real when the cell holds an OBJECT (and
// by to_object for its constructor call), keeping this package free
// of class-system details (§9
// design note: "model as an extension point").
type CastDispatcher interface {
	ToInt(obj *ObjectPayload) (int64, bool)
	ToFloat(obj *ObjectPayload) (float64, bool)
	ToBool(obj *ObjectPayload) (bool, bool)
	ToString(obj *ObjectPayload) (string, bool)
	// Construct runs a one-argument constructor on a freshly
	// instantiated built-in empty class, if the dispatcher's class
	// defines one; ok is false if there is nothing to call.
	Construct(obj *ObjectPayload, arg *Cell) bool
}

// ArrayValue is the array payload: an order-preserving map from
// normalized keys to *Cell, instantiated over the hashmap package in
// array.go to break the value<->hashmap import cycle that would
// otherwise exist (a hashmap of cells, cells that can hold a
// hashmap).
type ArrayValue = Map

// ObjectPayload is the minimal object representation the value
// package needs: an attribute bag and a class name, sufficient for
// cast-dispatch hooks without implementing the class system.
type ObjectPayload struct {
	ClassName string
	Attrs     *Map
}

// ResourcePayload is an opaque host handle plus a descriptive kind
// ("stream", "dir", ...) used only for to_string/to_bool/to_int.
type ResourcePayload struct {
	Handle uint64
	Kind   string
}

// Cell is one value: a type-flag bitmask, a scalar payload (i/f), a
// composite payload (one of arr/obj/res), and a cached string
// representation in buf.
type Cell struct {
	flags Flag

	i int64
	f float64

	arr *ArrayValue
	obj *ObjectPayload
	res *ResourcePayload

	buf arena.ByteBuffer

	// PoolIndex is the cell's 32-bit handle in its owning pool, or
	// ConstIndex if this cell is a constant never recycled.
	PoolIndex uint32

	// Dispatcher is consulted for OBJECT coercions; nil means "no
	// class system wired", in which case objects behave as their
	// spec-mandated fallback (§4.2.1).
	Dispatcher CastDispatcher

	// numericChecked/numericKind cache the last is_numeric() probe of
	// the string buffer (a SPEC_FULL supplement grounded in PH7's
	// numeric-string fast path), invalidated whenever the buffer is
	// rewritten.
	numericChecked bool
	numericKind    numKind
}

type numKind uint8

const (
	numNone numKind = iota
	numInt
	numReal
)

// Init zeroes cell and sets it to NULL. Unlike §4.2's init(vm) it
// takes no vm: ownership is tracked by whichever pool reserved the
// cell, not by the cell itself.
func (c *Cell) Init() {
	*c = Cell{flags: Null}
}

func (c *Cell) InitNull()  { c.Init() }
func (c *Cell) InitBool(b bool) {
	c.Init()
	c.flags = Bool
	if b {
		c.i = 1
	}
}
func (c *Cell) InitInt(i int64) {
	c.Init()
	c.flags = Int
	c.i = i
}
func (c *Cell) InitReal(f float64) {
	c.Init()
	c.flags = Real
	c.f = f
}
func (c *Cell) InitString(s string) {
	c.Init()
	c.flags = String
	c.buf.AppendString(s)
}
func (c *Cell) InitArray(m *ArrayValue) {
	c.Init()
	c.flags = Array
	c.arr = m
}

// Flags reports the cell's current type-flag bitmask.
func (c *Cell) Flags() Flag { return c.flags }

// IsNull, IsArray, etc. are thin readability wrappers over Flags().
func (c *Cell) IsNull() bool  { return c.flags.Has(Null) }
func (c *Cell) IsArray() bool { return c.flags.Has(Array) }

// BoolVal, IntVal, RealVal give raw payload access for callers that
// have already established the corresponding flag is set (e.g. right
// after to_bool/to_int); they do not coerce.
func (c *Cell) BoolVal() bool    { return c.i != 0 }
func (c *Cell) IntVal() int64    { return c.i }
func (c *Cell) RealVal() float64 { return c.f }
func (c *Cell) ArrVal() *ArrayValue { return c.arr }
func (c *Cell) ObjVal() *ObjectPayload { return c.obj }
func (c *Cell) ResVal() *ResourcePayload { return c.res }

// StringBuf exposes the raw string buffer for callers (to_string)
// that have already produced a cached representation.
func (c *Cell) StringBuf() string { return c.buf.String() }

func (c *Cell) invalidateNumericCache() { c.numericChecked = false }
