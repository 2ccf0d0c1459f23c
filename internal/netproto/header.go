package netproto

import "github.com/lowlatency/arena/internal/buf"

const (
	// ApplicationID is the constant that marks a datagram as belonging
	// to this protocol.
	ApplicationID uint32 = 0xF61137C5
	// Revision is the protocol revision this build speaks.
	Revision uint8 = 1
	// HeaderSize is the fixed byte length of Header on the wire.
	HeaderSize = 8
	// MaxPacketSize bounds a whole datagram, header included. It does not
	// account for IPv6 headers, which ride below it on the wire.
	MaxPacketSize = 512

	// FlagReliable marks a packet as carrying (at least one) reliable
	// channel message, so the peer owes an ack.
	FlagReliable uint8 = 1 << 0
	// FlagAck marks a packet as itself acking a reliable sequence.
	FlagAck uint8 = 1 << 1
)

// Header is the fixed 8-byte prefix of every datagram.
type Header struct {
	Sequence uint16
	Flags    uint8
}

// Encode appends the full 8-byte header (application id, revision,
// flags, sequence) to w.
func (h Header) Encode(w *buf.Writer) {
	w.WriteU32(ApplicationID)
	w.WriteU8(Revision)
	w.WriteU8(h.Flags)
	w.WriteU16(h.Sequence)
}

// DecodeHeader reads and validates a packet header. A wrong application
// identifier or revision is reported, not panicked on — the caller
// drops the datagram silently.
func DecodeHeader(r *buf.Reader) (Header, error) {
	appID, err := r.ReadU32()
	if err != nil {
		return Header{}, err
	}
	if appID != ApplicationID {
		return Header{}, ErrWrongApplication
	}
	revision, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	if revision != Revision {
		return Header{}, ErrWrongRevision
	}
	flags, err := r.ReadU8()
	if err != nil {
		return Header{}, err
	}
	seq, err := r.ReadU16()
	if err != nil {
		return Header{}, err
	}
	return Header{Sequence: seq, Flags: flags}, nil
}
