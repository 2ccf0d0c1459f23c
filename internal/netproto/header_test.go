package netproto_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/buf"
	"github.com/lowlatency/arena/internal/netproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	h := netproto.Header{Sequence: 42, Flags: netproto.FlagReliable}
	h.Encode(w)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	got, err := netproto.DecodeHeader(r)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHeaderRejectsWrongApplication(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	w.WriteU32(0xDEADBEEF)
	w.WriteU8(netproto.Revision)
	w.WriteU8(0)
	w.WriteU16(0)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	_, err := netproto.DecodeHeader(r)
	assert.ErrorIs(t, err, netproto.ErrWrongApplication)
}

func TestDecodeHeaderRejectsWrongRevision(t *testing.T) {
	w := buf.NewWriter(buf.LittleEndian)
	w.WriteU32(netproto.ApplicationID)
	w.WriteU8(netproto.Revision + 1)
	w.WriteU8(0)
	w.WriteU16(0)

	r := buf.NewReader(w.Bytes(), 0, w.Len(), buf.LittleEndian)
	_, err := netproto.DecodeHeader(r)
	assert.ErrorIs(t, err, netproto.ErrWrongRevision)
}
