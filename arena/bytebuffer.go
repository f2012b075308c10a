package arena

import "strconv"

// ByteBuffer is the growable string-representation buffer backing a
// value cell (§3.1) and other string-building sites. It supports
// append, printf-style format-append with two extra verbs (%z for a
// borrowed string slice, %qd for a signed 64-bit integer), reset,
// null-termination, and a read-only mode that borrows someone else's
// bytes without copying.
type ByteBuffer struct {
	data     []byte
	borrowed bool
}

// Borrow wraps an external byte slice in read-only mode: Append*
// calls on a borrowed buffer first copy data out, matching
// "load borrows the string buffer read-only" (§4.2) until the first
// mutation forces a copy (copy-on-write).
func (b *ByteBuffer) Borrow(data []byte) {
	b.data = data
	b.borrowed = true
}

func (b *ByteBuffer) detach() {
	if !b.borrowed {
		return
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	b.data = cp
	b.borrowed = false
}

// Reset empties the buffer without releasing its backing storage
// (unless borrowed, which has none of ours to keep).
func (b *ByteBuffer) Reset() {
	if b.borrowed {
		b.data = nil
		b.borrowed = false
		return
	}
	b.data = b.data[:0]
}

// Bytes returns the buffer's current contents. The caller must not
// retain it past the buffer's next mutation.
func (b *ByteBuffer) Bytes() []byte { return b.data }

// String copies the buffer's contents out as a string.
func (b *ByteBuffer) String() string { return string(b.data) }

// Len reports the buffer's logical length, excluding any
// null-termination byte appended by NullTerminate.
func (b *ByteBuffer) Len() int { return len(b.data) }

// Append copies p onto the end of the buffer.
func (b *ByteBuffer) Append(p []byte) {
	b.detach()
	b.data = append(b.data, p...)
}

// AppendString copies s onto the end of the buffer.
func (b *ByteBuffer) AppendString(s string) {
	b.detach()
	b.data = append(b.data, s...)
}

// NullTerminate ensures the buffer ends with a single trailing zero
// byte not counted by Len, for APIs that hand a C-style pointer to a
// host callback.
func (b *ByteBuffer) NullTerminate() {
	b.detach()
	if len(b.data) > 0 && b.data[len(b.data)-1] == 0 {
		return
	}
	b.data = append(b.data, 0)
	b.data = b.data[:len(b.data)-1:len(b.data)]
}

// Appendf appends a restricted printf-style format to the buffer.
// Supported verbs: %s (string), %d (int, base 10), %z (a borrowed
// string slice appended without an intermediate copy), %qd (signed
// 64-bit integer), %% (literal percent).
func (b *ByteBuffer) Appendf(format string, args ...any) {
	b.detach()
	ai := 0
	next := func() any {
		if ai >= len(args) {
			return nil
		}
		v := args[ai]
		ai++
		return v
	}
	i := 0
	for i < len(format) {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b.data = append(b.data, c)
			i++
			continue
		}
		switch {
		case format[i+1] == '%':
			b.data = append(b.data, '%')
			i += 2
		case format[i+1] == 's':
			if v, ok := next().(string); ok {
				b.data = append(b.data, v...)
			}
			i += 2
		case format[i+1] == 'z':
			if v, ok := next().(string); ok {
				b.data = append(b.data, v...)
			}
			i += 2
		case format[i+1] == 'd':
			if v, ok := next().(int); ok {
				b.data = strconv.AppendInt(b.data, int64(v), 10)
			}
			i += 2
		case i+2 < len(format) && format[i+1] == 'q' && format[i+2] == 'd':
			if v, ok := next().(int64); ok {
				b.data = strconv.AppendInt(b.data, v, 10)
			}
			i += 3
		default:
			b.data = append(b.data, c)
			i++
		}
	}
}
