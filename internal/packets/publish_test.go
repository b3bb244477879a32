package packets

import (
	"bytes"
	"testing"
)

func TestPublishQoS0RoundTrip(t *testing.T) {
	pkt := &PublishPacket{Topic: "sensors/temp", Payload: []byte("22.5")}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if header.Flags != 0 {
		t.Errorf("flags = 0x%02x, want 0", header.Flags)
	}

	decoded, err := DecodePublish(buf.Bytes()[:header.RemainingLength], header)
	if err != nil {
		t.Fatalf("DecodePublish: %v", err)
	}
	if decoded.Topic != "sensors/temp" {
		t.Errorf("Topic = %q, want sensors/temp", decoded.Topic)
	}
	if string(decoded.Payload) != "22.5" {
		t.Errorf("Payload = %q, want 22.5", decoded.Payload)
	}
	if decoded.QoS != 0 || decoded.PacketID != 0 {
		t.Errorf("QoS=%d PacketID=%d, want 0/0", decoded.QoS, decoded.PacketID)
	}
}

func TestPublishQoS1CarriesPacketID(t *testing.T) {
	pkt := &PublishPacket{Topic: "a/b", PacketID: 42, QoS: 1, Payload: []byte("x")}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if (header.Flags>>1)&0x03 != 1 {
		t.Errorf("QoS flag bits = %d, want 1", (header.Flags>>1)&0x03)
	}

	decoded, err := DecodePublish(buf.Bytes()[:header.RemainingLength], header)
	if err != nil {
		t.Fatalf("DecodePublish: %v", err)
	}
	if decoded.PacketID != 42 {
		t.Errorf("PacketID = %d, want 42", decoded.PacketID)
	}
	if decoded.QoS != 1 {
		t.Errorf("QoS = %d, want 1", decoded.QoS)
	}
}

func TestPublishDupRetainFlags(t *testing.T) {
	pkt := &PublishPacket{Topic: "a", PacketID: 1, QoS: 1, Dup: true, Retain: true, Payload: nil}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	decoded, err := DecodePublish(buf.Bytes()[:header.RemainingLength], header)
	if err != nil {
		t.Fatalf("DecodePublish: %v", err)
	}
	if !decoded.Dup {
		t.Error("Dup = false, want true")
	}
	if !decoded.Retain {
		t.Error("Retain = false, want true")
	}
}
