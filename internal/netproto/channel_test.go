package netproto_test

import (
	"testing"
	"time"

	"github.com/lowlatency/arena/internal/netproto"
	"github.com/stretchr/testify/assert"
)

func TestNextSequenceIncrementsMonotonically(t *testing.T) {
	c := netproto.NewChannel()
	assert.Equal(t, uint16(0), c.NextSequence())
	assert.Equal(t, uint16(1), c.NextSequence())
	assert.Equal(t, uint16(2), c.NextSequence())
}

func TestReceiveFirstSequenceIsNew(t *testing.T) {
	c := netproto.NewChannel()
	assert.True(t, c.Receive(5))
}

func TestReceiveDuplicateIsNotNew(t *testing.T) {
	c := netproto.NewChannel()
	c.Receive(5)
	assert.False(t, c.Receive(5))
}

func TestReceiveOutOfOrderWithinWindowIsNew(t *testing.T) {
	c := netproto.NewChannel()
	c.Receive(10)
	assert.True(t, c.Receive(8))
	assert.False(t, c.Receive(8))
}

func TestReceiveOutOfOrderBeyondWindowIsNotNew(t *testing.T) {
	c := netproto.NewChannel()
	c.Receive(100)
	assert.False(t, c.Receive(1))
}

func TestAckBitfieldReflectsReceivedSequences(t *testing.T) {
	c := netproto.NewChannel()
	c.Receive(10)
	c.Receive(9)
	c.Receive(7)
	highest, mask := c.AckBitfield()
	assert.Equal(t, uint16(10), highest)
	assert.NotZero(t, mask&(1<<0)) // 9
	assert.NotZero(t, mask&(1<<2)) // 7
	assert.Zero(t, mask&(1<<1))    // 8 never received
}

func TestDueRetransmitsRespectsBackoff(t *testing.T) {
	c := netproto.NewChannel()
	now := time.Now()
	c.Track(1, []byte("hello"), now)

	assert.Empty(t, c.DueRetransmits(now))
	due := c.DueRetransmits(now.Add(60 * time.Millisecond))
	assert.Len(t, due, 1)
	assert.Equal(t, []byte("hello"), due[0])
}

func TestAckRemovesFromRetransmitQueue(t *testing.T) {
	c := netproto.NewChannel()
	now := time.Now()
	c.Track(1, []byte("hello"), now)
	c.Ack(1)
	assert.Empty(t, c.DueRetransmits(now.Add(time.Second)))
}
