package packets

import (
	"bytes"
	"testing"
)

func TestSubackRoundTrip(t *testing.T) {
	pkt := &SubackPacket{PacketID: 10, ReturnCodes: []uint8{SubackQoS1, SubackFailure}}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}

	decoded, err := DecodeSuback(buf.Bytes()[:header.RemainingLength])
	if err != nil {
		t.Fatalf("DecodeSuback: %v", err)
	}
	if decoded.PacketID != 10 {
		t.Errorf("PacketID = %d, want 10", decoded.PacketID)
	}
	if len(decoded.ReturnCodes) != 2 || decoded.ReturnCodes[0] != SubackQoS1 || decoded.ReturnCodes[1] != SubackFailure {
		t.Errorf("ReturnCodes = %v, want [%d %d]", decoded.ReturnCodes, SubackQoS1, SubackFailure)
	}
}

func TestDecodeSubackTooShort(t *testing.T) {
	if _, err := DecodeSuback([]byte{0x00, 0x01}); err == nil {
		t.Fatal("expected error: no return codes")
	}
}
