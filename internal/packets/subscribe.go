package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SubscribePacket represents an MQTT SUBSCRIBE control packet. Callers
// subscribe one topic filter at a time (matching the reference behavior this
// client follows), but the codec encodes/decodes the general multi-filter
// wire form.
type SubscribePacket struct {
	PacketID uint16
	Topics   []string
	QoS      []uint8
}

// Type returns the packet type.
func (p *SubscribePacket) Type() uint8 {
	return SUBSCRIBE
}

// WriteTo writes the SUBSCRIBE packet to the writer. The fixed header flags
// are 0x02: bit 1 is reserved MUST-be-set per the MQTT spec.
func (p *SubscribePacket) WriteTo(w io.Writer) (int64, error) {
	var payloadLen int
	topicBytesList := make([][]byte, len(p.Topics))
	for i, topic := range p.Topics {
		tb := encodeString(topic)
		topicBytesList[i] = tb
		payloadLen += len(tb) + 1
	}

	remainingLength := 2 + payloadLen
	header := FixedHeader{PacketType: SUBSCRIBE, Flags: 0x02, RemainingLength: remainingLength}
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

	for i, tb := range topicBytesList {
		n, err = w.Write(tb)
		total += int64(n)
		if err != nil {
			return total, err
		}

		qos := uint8(QoS0)
		if i < len(p.QoS) {
			qos = p.QoS[i]
		}
		if err := binary.Write(w, binary.BigEndian, qos&0x03); err != nil {
			return total, err
		}
		total++
	}

	return total, nil
}

// DecodeSubscribe decodes a SUBSCRIBE packet from the buffer.
func DecodeSubscribe(buf []byte) (*SubscribePacket, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("buffer too short for SUBSCRIBE packet")
	}

	pkt := &SubscribePacket{PacketID: binary.BigEndian.Uint16(buf[0:2])}
	offset := 2

	for offset < len(buf) {
		topic, n, err := decodeString(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("decode topic filter: %w", err)
		}
		offset += n

		if offset >= len(buf) {
			return nil, fmt.Errorf("buffer too short for qos byte")
		}
		pkt.Topics = append(pkt.Topics, topic)
		pkt.QoS = append(pkt.QoS, buf[offset]&0x03)
		offset++
	}

	return pkt, nil
}
