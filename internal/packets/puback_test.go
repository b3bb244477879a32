package packets

import (
	"bytes"
	"testing"
)

func TestPubackRoundTrip(t *testing.T) {
	pkt := &PubackPacket{PacketID: 7}
	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if header.PacketType != PUBACK {
		t.Fatalf("packet type = %d, want PUBACK", header.PacketType)
	}

	decoded, err := DecodePuback(buf.Bytes()[:header.RemainingLength])
	if err != nil {
		t.Fatalf("DecodePuback: %v", err)
	}
	if decoded.PacketID != 7 {
		t.Errorf("PacketID = %d, want 7", decoded.PacketID)
	}
}

func TestDecodePubackWrongLength(t *testing.T) {
	if _, err := DecodePuback([]byte{0x00}); err == nil {
		t.Fatal("expected error for 1-byte buffer")
	}
	if _, err := DecodePuback([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatal("expected error for 3-byte buffer")
	}
}
