package packets

import (
	"fmt"
	"io"
)

// FixedHeader is the first part of every MQTT control packet: a single
// byte carrying the packet type and flags nibbles, followed by Remaining
// Length as a 1-4 byte variable byte integer covering everything after the
// fixed header itself.
type FixedHeader struct {
	PacketType      uint8
	Flags           uint8
	RemainingLength int
}

// WriteTo encodes the fixed header as a single Write call, borrowing the
// same variable byte integer encoder used for the rest of the codec so the
// Remaining Length logic lives in exactly one place.
func (h *FixedHeader) WriteTo(w io.Writer) (int64, error) {
	var buf [5]byte
	buf[0] = (h.PacketType << 4) | (h.Flags & 0x0F)
	encoded := appendVarInt(buf[:1], h.RemainingLength)

	n, err := w.Write(encoded)
	return int64(n), err
}

// DecodeFixedHeader reads one fixed header from r: the type/flags byte,
// then Remaining Length.
func DecodeFixedHeader(r io.Reader) (*FixedHeader, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return nil, err
	}

	remainingLength, err := decodeVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("fixed header remaining length: %w", err)
	}

	return &FixedHeader{
		PacketType:      first[0] >> 4,
		Flags:           first[0] & 0x0F,
		RemainingLength: remainingLength,
	}, nil
}
