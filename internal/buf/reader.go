package buf

import (
	"math"
)

// Reader reads typed values out of a fixed byte range [offset, offset+length)
// of a shared source slice, advancing a read cursor. Every read is bounds
// checked; insufficient bytes return ErrOverflow. A failed fixed-size read
// leaves the cursor where it was; ReadBytes and ReadBoundedString may
// already have consumed their length prefix when they fail, which
// TryRead undoes.
type Reader struct {
	src    []byte
	offset int
	length int
	pos    int
	order  Endianness
}

// NewReader wraps source[offset:offset+length] for reading. Passing a
// length that overruns source is a programmer error (it panics), since it
// can only come from a local call site, not from the network.
func NewReader(source []byte, offset, length int, order Endianness) *Reader {
	if offset < 0 || length < 0 || offset+length > len(source) {
		panic("buf: reader range out of bounds")
	}
	return &Reader{src: source, offset: offset, length: length, order: order}
}

// Pos returns the current read cursor, relative to the configured range.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes left in the range.
func (r *Reader) Remaining() int {
	return r.length - r.pos
}

// CanRead reports whether n more bytes can be read without overflow.
func (r *Reader) CanRead(n int) bool {
	return n >= 0 && r.pos+n <= r.length
}

// Skip advances the cursor by n bytes, or returns ErrOverflow without
// moving it if that would run past the end of the range.
func (r *Reader) Skip(n int) error {
	if !r.CanRead(n) {
		return ErrOverflow
	}
	r.pos += n
	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if !r.CanRead(n) {
		return nil, ErrOverflow
	}
	start := r.offset + r.pos
	r.pos += n
	return r.src[start : start+n], nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return r.order.order().Uint16(b), nil
}

func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return r.order.order().Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return r.order.order().Uint64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadBytes reads a raw byte array prefixed by its i32 length.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadI32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrOverflow
	}
	data, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// ReadBoundedString reads a length-prefixed UTF-8 string. maxLength bounds
// the length actually accepted: a declared length beyond it is treated as
// overflow (a well-behaved peer never declares a longer string than the
// field allows). Inbound data is never accepted-and-truncated here; this
// codec truncates only on write.
func (r *Reader) ReadBoundedString(prefix StringPrefix, maxLength int) (string, error) {
	var n int
	switch prefix {
	case PrefixU8:
		v, err := r.ReadU8()
		if err != nil {
			return "", err
		}
		n = int(v)
	case PrefixU16:
		v, err := r.ReadU16()
		if err != nil {
			return "", err
		}
		n = int(v)
	default:
		v, err := r.ReadU32()
		if err != nil {
			return "", err
		}
		n = int(v)
	}
	if n > maxLength {
		return "", ErrOverflow
	}
	data, err := r.take(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TryRead saves the cursor, invokes f, and on ErrOverflow restores the
// cursor to its pre-call position before returning ErrOverflow. Any other
// error from f is returned as-is with the cursor left where f advanced it
// — only overflow is locally recoverable at this layer.
func (r *Reader) TryRead(f func(*Reader) error) error {
	start := r.pos
	if err := f(r); err != nil {
		if err == ErrOverflow {
			r.pos = start
		}
		return err
	}
	return nil
}
