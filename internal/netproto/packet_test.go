package netproto_test

import (
	"testing"

	"github.com/lowlatency/arena/internal/netproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePacketRoundTrip(t *testing.T) {
	data := netproto.EncodePacket(7, netproto.FlagReliable, []netproto.Message{
		netproto.Connect{PlayerName: "a"},
		netproto.Disconnect{},
	})

	h, msgs, err := netproto.DecodePacket(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), h.Sequence)
	assert.Equal(t, netproto.FlagReliable, h.Flags)
	require.Len(t, msgs, 2)
	assert.Equal(t, netproto.MsgConnect, msgs[0].Type())
}

func TestDecodePacketRejectsBadHeaderBeforeParsingMessages(t *testing.T) {
	_, _, err := netproto.DecodePacket([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, netproto.ErrWrongApplication)
}
