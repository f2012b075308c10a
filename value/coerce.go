package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/marl-lang/phcore/hashmap"
)

// ToInt replaces the cell's payload with its integer coercion and
// releases the string buffer, per §4.2.1.
func (c *Cell) ToInt() {
	i := c.coerceInt()
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Int
	c.i = i
}

// ToReal coerces to float, then re-attempts an integer cache if the
// round trip is lossless (the INT|REAL coexistence invariant, §3.1).
func (c *Cell) ToReal() {
	f := c.coerceFloat()
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Real
	c.f = f
	if i := int64(f); float64(i) == f && i != math.MinInt64 && i != math.MaxInt64 {
		c.flags |= Int
		c.i = i
	}
}

// ToBool coerces to 0/1 per §4.2.1.
func (c *Cell) ToBool() {
	b := c.coerceBool()
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Bool
	if b {
		c.i = 1
	} else {
		c.i = 0
	}
}

// ToString produces a string representation in the buffer and
// clears every other flag (§4.2: "keeps other flags cleared").
// strict selects BOOL false's textual form: "" if strict, "FALSE"
// otherwise, per §4.2.1.
func (c *Cell) ToString(strict bool) {
	s := c.coerceString(strict)
	c.releaseComposite()
	c.buf.Reset()
	c.buf.AppendString(s)
	c.flags = String
	c.invalidateNumericCache()
}

// ToNull releases composite resources, clears every flag, and sets
// NULL.
func (c *Cell) ToNull() {
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Null
	c.i, c.f = 0, 0
}

// ToHashmap wraps the current scalar as a single-element array keyed
// 0; NULL becomes an empty array (§4.2).
func (c *Cell) ToHashmap() {
	if c.flags.Has(Array) {
		return
	}
	m := NewMap()
	if !c.flags.Has(Null) {
		elem := &Cell{}
		*elem = *c
		elem.PoolIndex = ConstIndex
		m.Insert(indexZero, elem, 0)
	}
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Array
	c.arr = m
}

// ToObject instantiates the built-in empty class, stores the current
// value under attribute "value", and invokes a one-argument
// constructor if the dispatcher provides one (§4.2).
func (c *Cell) ToObject() {
	if c.flags.Has(Object) {
		return
	}
	held := &Cell{}
	*held = *c
	held.PoolIndex = ConstIndex
	attrs := NewMap()
	attrs.Insert(keyValue, held, 0)

	obj := &ObjectPayload{ClassName: "stdClass", Attrs: attrs}
	dispatcher := c.Dispatcher
	c.releaseComposite()
	c.buf.Reset()
	c.flags = Object
	c.obj = obj
	c.Dispatcher = dispatcher
	if c.Dispatcher != nil {
		c.Dispatcher.Construct(obj, held)
	}
}

var indexZero = hashmap.IntKey(0)
var keyValue = hashmap.StrKey("value")

// IsNumeric inspects (without mutating) whether the cell's current
// value would coerce to a number without loss, caching the result on
// the string buffer per the numeric-string fast path (SPEC_FULL §4).
func (c *Cell) IsNumeric() bool {
	switch {
	case c.flags.Has(Int) || c.flags.Has(Real):
		return true
	case c.flags.Has(String):
		return c.stringNumericKind() != numNone
	default:
		return false
	}
}

// IsEmpty inspects without mutating (arrays are peeked, not
// dereferenced for ownership purposes — "un-refed if peeked").
func (c *Cell) IsEmpty() bool {
	switch {
	case c.flags.Has(Null):
		return true
	case c.flags.Has(Bool), c.flags.Has(Int), c.flags.Has(Real):
		return !c.coerceBool()
	case c.flags.Has(String):
		return !c.coerceBool()
	case c.flags.Has(Array):
		return c.arr == nil || c.arr.Len() == 0
	default:
		return false
	}
}

// coerceInt implements the to_int rule table without mutating c.
func (c *Cell) coerceInt() int64 {
	switch {
	case c.flags.Has(Int):
		return c.i
	case c.flags.Has(Real):
		return clampRealToInt(c.f)
	case c.flags.Has(Bool):
		return c.i
	case c.flags.Has(Null):
		return 0
	case c.flags.Has(String):
		return stringToInt(c.buf.String())
	case c.flags.Has(Array):
		n := int64(0)
		if c.arr != nil {
			n = int64(c.arr.Len())
		}
		return n
	case c.flags.Has(Object):
		if c.Dispatcher != nil {
			if v, ok := c.Dispatcher.ToInt(c.obj); ok {
				return v
			}
		}
		return 1
	case c.flags.Has(Resource):
		if c.res != nil && c.res.Handle != 0 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func clampRealToInt(f float64) int64 {
	if math.IsNaN(f) {
		return math.MinInt64
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func (c *Cell) coerceFloat() float64 {
	switch {
	case c.flags.Has(Real):
		return c.f
	case c.flags.Has(Int):
		return float64(c.i)
	case c.flags.Has(Bool):
		return float64(c.i)
	case c.flags.Has(Null):
		return 0
	case c.flags.Has(String):
		return stringToFloat(c.buf.String())
	case c.flags.Has(Array):
		if c.arr != nil && c.arr.Len() > 0 {
			return 1
		}
		return 0
	case c.flags.Has(Object):
		if c.Dispatcher != nil {
			if v, ok := c.Dispatcher.ToFloat(c.obj); ok {
				return v
			}
		}
		return 1
	default:
		return 0
	}
}

func (c *Cell) coerceBool() bool {
	switch {
	case c.flags.Has(Null):
		return false
	case c.flags.Has(Int):
		return c.i != 0
	case c.flags.Has(Real):
		return c.f != 0
	case c.flags.Has(Bool):
		return c.i != 0
	case c.flags.Has(String):
		return stringToBool(c.buf.String())
	case c.flags.Has(Array):
		return c.arr != nil && c.arr.Len() > 0
	case c.flags.Has(Object):
		if c.Dispatcher != nil {
			if v, ok := c.Dispatcher.ToBool(c.obj); ok {
				return v
			}
		}
		return true
	case c.flags.Has(Resource):
		return c.res != nil && c.res.Handle != 0
	default:
		return false
	}
}

func (c *Cell) coerceString(strict bool) string {
	switch {
	case c.flags.Has(String):
		return c.buf.String()
	case c.flags.Has(Null):
		return ""
	case c.flags.Has(Bool):
		if c.i != 0 {
			return "TRUE"
		}
		if strict {
			return ""
		}
		return "FALSE"
	case c.flags.Has(Int):
		return strconv.FormatInt(c.i, 10)
	case c.flags.Has(Real):
		return strconv.FormatFloat(c.f, 'g', 15, 64)
	case c.flags.Has(Array):
		return "Array"
	case c.flags.Has(Object):
		if c.Dispatcher != nil {
			if s, ok := c.Dispatcher.ToString(c.obj); ok && s != "" {
				return s
			}
		}
		return "Object"
	case c.flags.Has(Resource):
		handle := uint64(0)
		if c.res != nil {
			handle = c.res.Handle
		}
		return "ResourceID_" + strconv.FormatUint(handle, 16)
	default:
		return ""
	}
}

// stringToInt: hex/binary/octal prefix detection, else decimal,
// parsing until the first non-digit; empty or non-numeric prefix is 0.
func stringToInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	neg := false
	i := 0
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		i++
	}
	rest := s[i:]
	base := 10
	switch {
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		base, rest = 16, rest[2:]
	case strings.HasPrefix(rest, "0b") || strings.HasPrefix(rest, "0B"):
		base, rest = 2, rest[2:]
	case strings.HasPrefix(rest, "0") && len(rest) > 1:
		base, rest = 8, rest[1:]
	}
	end := 0
	for end < len(rest) && digitValue(rest[end]) < base {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(rest[:end], base, 64)
	if err != nil {
		v = math.MaxInt64
	}
	if neg {
		v = -v
	}
	return v
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func stringToFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end++
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			end++
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
			end++
			if end < len(s) && (s[end] == '+' || s[end] == '-') {
				end++
			}
		default:
			goto done
		}
	}
done:
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

func stringToBool(s string) bool {
	if s == "" || s == "0" {
		return false
	}
	if allZeros(s) {
		return false
	}
	switch strings.ToLower(s) {
	case "false":
		return false
	case "true", "on", "yes":
		return true
	}
	return true
}

func allZeros(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// stringNumericKind classifies the buffer as not-numeric, int-like,
// or real-like, caching the result until the buffer is rewritten.
func (c *Cell) stringNumericKind() numKind {
	if c.numericChecked {
		return c.numericKind
	}
	c.numericChecked = true
	s := strings.TrimSpace(c.buf.String())
	c.numericKind = classifyNumeric(s)
	return c.numericKind
}

func classifyNumeric(s string) numKind {
	if s == "" {
		return numNone
	}
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	start := i
	dot, exp, digits := false, false, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' && !dot && !exp:
			dot = true
		case (c == 'e' || c == 'E') && !exp && digits:
			exp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		default:
			return numNone
		}
	}
	if !digits || i == start {
		return numNone
	}
	if dot || exp {
		return numReal
	}
	return numInt
}

func (c *Cell) releaseComposite() {
	c.arr = nil
	c.obj = nil
	c.res = nil
}
