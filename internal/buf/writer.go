package buf

import (
	"math"
	"unicode/utf8"
)

// Writer appends typed values to a growable byte slice using a configured
// endianness. It never fails: the slice grows as needed, and nothing
// here checks the result against netproto's MaxPacketSize.
type Writer struct {
	out   []byte
	order Endianness
}

func NewWriter(order Endianness) *Writer {
	return &Writer{order: order}
}

// Bytes returns the accumulated buffer. The slice is shared with the
// writer; callers that keep writing must not retain it across a call.
func (w *Writer) Bytes() []byte {
	return w.out
}

func (w *Writer) Len() int {
	return len(w.out)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.out = append(w.out, 1)
	} else {
		w.out = append(w.out, 0)
	}
}

func (w *Writer) WriteU8(v uint8) {
	w.out = append(w.out, v)
}

func (w *Writer) WriteI8(v int8) {
	w.WriteU8(uint8(v))
}

func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	w.order.order().PutUint16(b[:], v)
	w.out = append(w.out, b[:]...)
}

func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	w.order.order().PutUint32(b[:], v)
	w.out = append(w.out, b[:]...)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	w.order.order().PutUint64(b[:], v)
	w.out = append(w.out, b[:]...)
}

func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteBytes writes a raw byte array prefixed by its i32 length.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteI32(int32(len(data)))
	w.out = append(w.out, data...)
}

// CopyBytes appends raw bytes with no length prefix, for callers that
// already know the recipient's framing (e.g. a packet header writing a
// pre-serialized message stream).
func (w *Writer) CopyBytes(data []byte) {
	w.out = append(w.out, data...)
}

// StringPrefix selects how many bytes encode a bounded string's length.
type StringPrefix int

const (
	PrefixU8 StringPrefix = iota
	PrefixU16
	PrefixU32
)

// WriteBoundedString writes a UTF-8 string's raw byte length first (in
// the given prefix width), then the bytes themselves. A string whose
// byte length exceeds maxLength is silently truncated to maxLength
// before either is written — the truncation is the caller's to log, the
// codec only enforces the bound.
func (w *Writer) WriteBoundedString(s string, prefix StringPrefix, maxLength int) (truncated bool) {
	b := []byte(s)
	if len(b) > maxLength {
		b = truncateUTF8(b, maxLength)
		truncated = true
	}
	switch prefix {
	case PrefixU8:
		w.WriteU8(uint8(len(b)))
	case PrefixU16:
		w.WriteU16(uint16(len(b)))
	default:
		w.WriteU32(uint32(len(b)))
	}
	w.out = append(w.out, b...)
	return truncated
}

// truncateUTF8 trims b to at most n bytes without splitting a multi-byte
// rune in half.
func truncateUTF8(b []byte, n int) []byte {
	if n >= len(b) {
		return b
	}
	b = b[:n]
	for len(b) > 0 {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size > 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
