package packets

import (
	"bytes"
	"testing"
)

func TestDisconnectWriteTo(t *testing.T) {
	pkt := &DisconnectPacket{}
	var buf bytes.Buffer
	n, err := pkt.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d bytes, want 2", n)
	}

	raw := buf.Bytes()
	if raw[0] != DISCONNECT<<4 {
		t.Errorf("first byte = 0x%02x, want 0x%02x", raw[0], DISCONNECT<<4)
	}
	if raw[1] != 0 {
		t.Errorf("remaining length = %d, want 0", raw[1])
	}
}
