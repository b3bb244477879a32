package packets

import (
	"bytes"
	"testing"
)

func TestUnsubscribeRoundTrip(t *testing.T) {
	pkt := &UnsubscribePacket{PacketID: 5, Topics: []string{"sensors/+/temperature"}}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf, false); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if header.Flags != 0x02 {
		t.Errorf("flags = 0x%02x, want 0x02", header.Flags)
	}

	decoded, err := DecodeUnsubscribe(buf.Bytes()[:header.RemainingLength])
	if err != nil {
		t.Fatalf("DecodeUnsubscribe: %v", err)
	}
	if decoded.PacketID != 5 {
		t.Errorf("PacketID = %d, want 5", decoded.PacketID)
	}
	if len(decoded.Topics) != 1 || decoded.Topics[0] != "sensors/+/temperature" {
		t.Errorf("Topics = %v, want [sensors/+/temperature]", decoded.Topics)
	}
}

func TestUnsubscribeDupFlag(t *testing.T) {
	pkt := &UnsubscribePacket{PacketID: 1, Topics: []string{"a"}}
	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf, true); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if header.Flags != 0x0A {
		t.Errorf("flags = 0x%02x, want 0x0A (DUP|reserved)", header.Flags)
	}
}
