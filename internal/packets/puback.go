package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PubackPacket represents an MQTT PUBACK control packet (QoS 1
// acknowledgment): a bare 2-byte packet identifier, no payload.
type PubackPacket struct {
	PacketID uint16
}

// Type returns the packet type.
func (p *PubackPacket) Type() uint8 {
	return PUBACK
}

// WriteTo writes the PUBACK packet to the writer.
func (p *PubackPacket) WriteTo(w io.Writer) (int64, error) {
	header := FixedHeader{PacketType: PUBACK, Flags: 0, RemainingLength: 2}
	total, err := header.WriteTo(w)
	if err != nil {
		return total, err
	}

	var idBytes [2]byte
	binary.BigEndian.PutUint16(idBytes[:], p.PacketID)
	n, err := w.Write(idBytes[:])
	total += int64(n)
	return total, err
}

// DecodePuback decodes a PUBACK packet. The buffer must be exactly 2 bytes;
// anything else is a malformed acknowledgment.
func DecodePuback(buf []byte) (*PubackPacket, error) {
	if len(buf) != 2 {
		return nil, fmt.Errorf("PUBACK payload must be 2 bytes, got %d", len(buf))
	}
	return &PubackPacket{PacketID: binary.BigEndian.Uint16(buf)}, nil
}
