package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SubackPacket represents an MQTT SUBACK control packet.
type SubackPacket struct {
	PacketID    uint16
	ReturnCodes []uint8
}

// Type returns the packet type.
func (p *SubackPacket) Type() uint8 {
	return SUBACK
}

// WriteTo writes the SUBACK packet to the writer.
func (p *SubackPacket) WriteTo(w io.Writer) (int64, error) {
	remainingLength := 2 + len(p.ReturnCodes)
	header := FixedHeader{PacketType: SUBACK, Flags: 0, RemainingLength: remainingLength}
	total, err := header.WriteTo(w)
	if err != nil {
		return total, err
	}

	var idBytes [2]byte
	binary.BigEndian.PutUint16(idBytes[:], p.PacketID)
	n, err := w.Write(idBytes[:])
	total += int64(n)
	if err != nil {
		return total, err
	}

	n, err = w.Write(p.ReturnCodes)
	total += int64(n)
	return total, err
}

// DecodeSuback decodes a SUBACK packet. The buffer must be at least 3
// bytes: a 2-byte packet id plus one return code per filter subscribed.
func DecodeSuback(buf []byte) (*SubackPacket, error) {
	if len(buf) < 3 {
		return nil, fmt.Errorf("buffer too short for SUBACK packet: need at least 3 bytes, got %d", len(buf))
	}
	return &SubackPacket{
		PacketID:    binary.BigEndian.Uint16(buf[0:2]),
		ReturnCodes: append([]byte(nil), buf[2:]...),
	}, nil
}
