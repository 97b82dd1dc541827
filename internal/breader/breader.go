// Package breader implements the bounds-checked byte cursor spec.md §4.1
// requires every decoder to read through: little-endian primitives by
// default, an explicit big-endian variant, NUL-terminated strings, and a
// scope-limited sub-reader that realigns the parent cursor on exit even if
// the inner scope overran or errored.
//
// Grounded on the teacher's direct use of encoding/binary + bytes.Reader in
// load/iqm.go; this type exists because the IFF chunk framework (internal/iff)
// needs recoverable, re-alignable sub-scopes that bytes.Reader alone doesn't
// provide.
package breader

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ErrUnexpectedEOF is returned whenever a read would run past the end of the
// buffer (spec.md §7's UnexpectedEof).
var ErrUnexpectedEOF = fmt.Errorf("breader: unexpected end of buffer")

// Reader is a cursor over an immutable byte slice. The zero value is not
// usable; use New.
type Reader struct {
	buf    []byte
	cursor int
	end    int // exclusive; allows a bounded sub-scope to share buf.
}

// New wraps buf in a Reader starting at offset 0.
func New(buf []byte) *Reader {
	return &Reader{buf: buf, cursor: 0, end: len(buf)}
}

// Len returns the total bounded length of the reader (not the remaining
// count; see Remaining).
func (r *Reader) Len() int { return r.end }

// Tell returns the current cursor position relative to the start of buf.
func (r *Reader) Tell() int64 { return int64(r.cursor) }

// Remaining returns the number of unread bytes within the current scope.
func (r *Reader) Remaining() int { return r.end - r.cursor }

// Seek moves the cursor to an absolute position within the current scope.
func (r *Reader) Seek(absolute int64) error {
	pos := int(absolute)
	if pos < 0 || pos > r.end {
		return ErrUnexpectedEOF
	}
	r.cursor = pos
	return nil
}

// Skip advances the cursor by n bytes, failing if that would run past end.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.cursor+n > r.end {
		return ErrUnexpectedEOF
	}
	r.cursor += n
	return nil
}

// Peek returns the byte at cursor+offset without advancing, or an error if
// out of bounds.
func (r *Reader) Peek(offset int) (byte, error) {
	pos := r.cursor + offset
	if pos < 0 || pos >= r.end {
		return 0, ErrUnexpectedEOF
	}
	return r.buf[pos], nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.cursor+n > r.end {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.cursor : r.cursor+n]
	r.cursor += n
	return b, nil
}

// ReadBytes returns the next n bytes and advances the cursor.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF32BE reads a big-endian IEEE-754 float32 (LWO point/vertex data,
// spec.md §4.4: "Floats and shorts are big-endian and must be swapped on LE
// hosts").
func (r *Reader) ReadF32BE() (float32, error) {
	v, err := r.ReadU32BE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadCStrBounded reads bytes until a NUL or until limit bytes have been
// consumed, whichever comes first, and reports whether a NUL was found. On
// return the cursor sits just past the NUL (if found) or past limit bytes
// (if not), matching spec.md §4.1.
func (r *Reader) ReadCStrBounded(limit int) (s string, foundNUL bool, err error) {
	start := r.cursor
	maxEnd := start + limit
	if maxEnd > r.end {
		maxEnd = r.end
	}
	i := start
	for i < maxEnd && r.buf[i] != 0 {
		i++
	}
	s = string(r.buf[start:i])
	if i < maxEnd && r.buf[i] == 0 {
		r.cursor = i + 1
		return s, true, nil
	}
	r.cursor = i
	if i-start >= limit {
		return s, false, nil
	}
	return s, false, ErrUnexpectedEOF
}

// WithLimit runs fn against a bounded sub-reader whose end is cursor+n
// (clamped to the parent's remaining bytes), then advances the parent cursor
// by exactly n regardless of how much the sub-reader actually consumed or
// whether fn returned an error. This is how IFF-style decoders recover from
// malformed sub-chunks without cascading corruption (spec.md §4.1).
// clamped reports whether n had to be clamped to the parent's remaining
// bytes (the spec.md §4.2/§7 ChunkOverflow condition); callers should warn
// on true.
func (r *Reader) WithLimit(n int, fn func(inner *Reader) error) (clamped bool, err error) {
	want := n
	avail := r.Remaining()
	if n > avail {
		n = avail
		clamped = true
	}
	sub := &Reader{buf: r.buf, cursor: r.cursor, end: r.cursor + n}
	ferr := fn(sub)
	// Advance by the originally requested amount when it fit; when clamped,
	// advance to the parent's true end so the outer cursor lands exactly at
	// the container boundary instead of running past it.
	if want <= avail {
		r.cursor += want
	} else {
		r.cursor = r.end
	}
	return clamped, ferr
}
