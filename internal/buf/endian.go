package buf

import "encoding/binary"

// Endianness selects the byte order a Writer/Reader emits or expects on
// the wire. The protocol always configures LittleEndian; BigEndian exists
// so the codec's swap path is exercisable without a second host arch.
type Endianness int

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
