package netproto

import "github.com/lowlatency/arena/internal/buf"

// EncodePacket assembles one datagram: the 8-byte header followed by
// every message's encoding in order. The caller is responsible for
// keeping the result within MaxPacketSize.
func EncodePacket(sequence uint16, flags uint8, messages []Message) []byte {
	w := buf.NewWriter(buf.LittleEndian)
	Header{Sequence: sequence, Flags: flags}.Encode(w)
	for _, m := range messages {
		EncodeMessage(w, m)
	}
	return w.Bytes()
}

// DecodePacket validates the header and parses every message that
// follows it. A header rejection is reported before any message is
// attempted; a malformed message discards the whole packet per
// ParseStream, not just the offending message.
func DecodePacket(data []byte) (Header, []Message, error) {
	r := buf.NewReader(data, 0, len(data), buf.LittleEndian)
	h, err := DecodeHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	msgs, err := ParseStream(r)
	if err != nil {
		return Header{}, nil, err
	}
	return h, msgs, nil
}
