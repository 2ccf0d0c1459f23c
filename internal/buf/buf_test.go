package buf_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/buf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	w.WriteBool(true)
	w.WriteU8(200)
	w.WriteI8(-5)
	w.WriteU16(60000)
	w.WriteI16(-1234)
	w.WriteU32(4000000000)
	w.WriteI32(-70000)
	w.WriteU64(1 << 40)
	w.WriteI64(-(1 << 40))
	w.WriteF32(3.25)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)

	u8, err := r.ReadU8()
	require.NoError(t, err)
	assert.EqualValues(t, 200, u8)

	i8, err := r.ReadI8()
	require.NoError(t, err)
	assert.EqualValues(t, -5, i8)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.EqualValues(t, 60000, u16)

	i16, err := r.ReadI16()
	require.NoError(t, err)
	assert.EqualValues(t, -1234, i16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.EqualValues(t, 4000000000, u32)

	i32, err := r.ReadI32()
	require.NoError(t, err)
	assert.EqualValues(t, -70000, i32)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	assert.EqualValues(t, 1<<40, u64)

	i64, err := r.ReadI64()
	require.NoError(t, err)
	assert.EqualValues(t, -(1 << 40), i64)

	f32, err := r.ReadF32()
	require.NoError(t, err)
	assert.EqualValues(t, 3.25, f32)

	assert.Equal(t, 0, r.Remaining())
}

func TestBigEndianSwap(t *testing.T) {
	w := buf.NewWriter(buf.BigEndian)
	w.WriteU32(0x01020304)
	bytes := w.Bytes()
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, bytes)

	r := buf.NewReader(bytes, 0, len(bytes), buf.BigEndian)
	v, err := r.ReadU32()
	require.NoError(t, err)
	assert.EqualValues(t, 0x01020304, v)
}

func TestBoundedStringRoundTrip(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	truncated := w.WriteBoundedString("hello", buf.PrefixU8, 64)
	assert.False(t, truncated)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	s, err := r.ReadBoundedString(buf.PrefixU8, 64)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestBoundedStringTruncatesOnWrite(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	truncated := w.WriteBoundedString(long, buf.PrefixU8, 64)
	assert.True(t, truncated)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	s, err := r.ReadBoundedString(buf.PrefixU8, 64)
	require.NoError(t, err)
	assert.Len(t, s, 64)
}

func TestBoundedStringTruncationPreservesUTF8Boundary(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	// "é" is 2 bytes (0xC3 0xA9); a 4-byte bound falls inside it, forcing
	// the truncator to back off across the rune boundary.
	s := "caf" + "é" + "au lait"
	w.WriteBoundedString(s, buf.PrefixU8, 4)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	out, err := r.ReadBoundedString(buf.PrefixU8, 4)
	require.NoError(t, err)
	assert.Equal(t, "caf", out)
}

func TestBytesRoundTrip(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	payload := []byte{1, 2, 3, 4, 5}
	w.WriteBytes(payload)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	out, err := r.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestReadOverflow(t *testing.T) {
	r := buf.NewReader([]byte{1, 2}, 0, 2, buf.LittleEndian)
	_, err := r.ReadU32()
	assert.ErrorIs(t, err, buf.ErrOverflow)
}

// TestTryReadRollback exercises a reader left mid-message when the tail
// of a packet arrives truncated:
// only three bytes remain, so the leading i32 read already overflows, and
// the whole sequence must roll back to its starting cursor.
func TestTryReadRollback(t *testing.T) {
	data := []byte{0x01, 0x02, 0x00}
	r := buf.NewReader(data, 0, len(data), buf.LittleEndian)

	err := r.TryRead(func(rr *buf.Reader) error {
		if _, err := rr.ReadI32(); err != nil {
			return err
		}
		_, err := rr.ReadBoundedString(buf.PrefixU32, 64)
		return err
	})

	assert.ErrorIs(t, err, buf.ErrOverflow)
	assert.Equal(t, 0, r.Pos())
}

func TestTryReadCommitsOnSuccess(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	w.WriteU8(9)
	w.WriteU8(10)
	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)

	err := r.TryRead(func(rr *buf.Reader) error {
		_, err := rr.ReadU8()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Pos())

	// A second, overflowing try_read must not disturb the first read.
	err = r.TryRead(func(rr *buf.Reader) error {
		if _, err := rr.ReadU8(); err != nil {
			return err
		}
		_, err := rr.ReadU64()
		return err
	})
	assert.ErrorIs(t, err, buf.ErrOverflow)
	assert.Equal(t, 1, r.Pos())
}

func TestSkipAndCanRead(t *testing.T) {
	r := buf.NewReader([]byte{1, 2, 3, 4}, 0, 4, buf.LittleEndian)
	assert.True(t, r.CanRead(4))
	assert.False(t, r.CanRead(5))
	require.NoError(t, r.Skip(2))
	assert.Equal(t, 2, r.Remaining())
	assert.ErrorIs(t, r.Skip(10), buf.ErrOverflow)
}
