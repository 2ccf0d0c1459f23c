package netproto

import "time"

const (
	retransmitMinBackoff = 50 * time.Millisecond
	retransmitMaxBackoff = 500 * time.Millisecond
	// DroppedTimeout is how long a connection tolerates total silence
	// from its peer before it is declared Dropped.
	DroppedTimeout = 10 * time.Second
)

// pending is one not-yet-acked reliable send awaiting retransmit.
type pending struct {
	sequence uint16
	payload  []byte
	sentAt   time.Time
	backoff  time.Duration
}

// Channel tracks the bookkeeping a connection needs to run one
// direction of the reliable lane (outbound sequence, retransmit queue)
// and the unreliable receive side (highest-seen sequence plus a sliding
// bitfield of the 32 sequences before it, for duplicate/reorder
// detection and ack-bitfield construction).
type Channel struct {
	nextOutbound   uint16
	highestSeen    uint16
	haveSeenAny    bool
	receivedMask   uint32
	outstanding    []pending
}

func NewChannel() *Channel {
	return &Channel{}
}

// NextSequence allocates and returns the next outbound sequence number,
// wrapping at 65536 as uint16 arithmetic does natively.
func (c *Channel) NextSequence() uint16 {
	seq := c.nextOutbound
	c.nextOutbound++
	return seq
}

// Track registers a reliably-sent payload for retransmit until it is
// acked or the connection gives up on it.
func (c *Channel) Track(sequence uint16, payload []byte, now time.Time) {
	c.outstanding = append(c.outstanding, pending{
		sequence: sequence,
		payload:  payload,
		sentAt:   now,
		backoff:  retransmitMinBackoff,
	})
}

// Ack removes a sequence from the retransmit queue.
func (c *Channel) Ack(sequence uint16) {
	for i, p := range c.outstanding {
		if p.sequence == sequence {
			c.outstanding = append(c.outstanding[:i], c.outstanding[i+1:]...)
			return
		}
	}
}

// DueRetransmits returns the payloads whose backoff has elapsed as of
// now, doubling each one's backoff (capped at retransmitMaxBackoff) and
// resetting its clock so the next call doesn't resend it immediately.
func (c *Channel) DueRetransmits(now time.Time) [][]byte {
	var due [][]byte
	for i := range c.outstanding {
		p := &c.outstanding[i]
		if now.Sub(p.sentAt) < p.backoff {
			continue
		}
		due = append(due, p.payload)
		p.sentAt = now
		p.backoff *= 2
		if p.backoff > retransmitMaxBackoff {
			p.backoff = retransmitMaxBackoff
		}
	}
	return due
}

// Receive folds an inbound sequence number into the receive window,
// reporting whether it is new (not a duplicate and not older than the
// 32-sequence tracking horizon).
func (c *Channel) Receive(sequence uint16) (isNew bool) {
	if !c.haveSeenAny {
		c.haveSeenAny = true
		c.highestSeen = sequence
		c.receivedMask = 0
		return true
	}

	// sequence wraps at 65536; subtracting as uint16 wraps the same way,
	// and reinterpreting the result as a signed 16-bit delta recovers
	// "ahead" vs "behind" across the wrap boundary.
	diff := int32(int16(sequence - c.highestSeen))
	switch {
	case diff > 0:
		shift := uint(diff)
		if shift >= 32 {
			c.receivedMask = 0
		} else {
			c.receivedMask <<= shift
			c.receivedMask |= 1 << (shift - 1)
		}
		c.highestSeen = sequence
		return true
	case diff == 0:
		return false
	default:
		shift := uint(-diff)
		if shift > 32 {
			return false
		}
		bit := uint32(1) << (shift - 1)
		if c.receivedMask&bit != 0 {
			return false
		}
		c.receivedMask |= bit
		return true
	}
}

// AckBitfield returns the (highestSeen, mask) pair to place on an
// outbound ack: mask bit i set means highestSeen-i-1 was received.
func (c *Channel) AckBitfield() (uint16, uint32) {
	return c.highestSeen, c.receivedMask
}
