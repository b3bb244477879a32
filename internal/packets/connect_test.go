package packets

import (
	"bytes"
	"testing"
)

func TestConnectWriteToDecodeRoundTrip(t *testing.T) {
	pkt := &ConnectPacket{
		CleanSession: true,
		UsernameFlag: true,
		Username:     "alice",
		PasswordFlag: true,
		Password:     "s3cret",
		KeepAlive:    60,
		ClientID:     "client-1",
	}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	if header.PacketType != CONNECT {
		t.Fatalf("packet type = %d, want CONNECT", header.PacketType)
	}

	body := buf.Bytes()[:header.RemainingLength]
	decoded, err := DecodeConnect(body)
	if err != nil {
		t.Fatalf("DecodeConnect: %v", err)
	}

	if decoded.ClientID != pkt.ClientID {
		t.Errorf("ClientID = %q, want %q", decoded.ClientID, pkt.ClientID)
	}
	if !decoded.CleanSession {
		t.Error("CleanSession = false, want true")
	}
	if decoded.KeepAlive != pkt.KeepAlive {
		t.Errorf("KeepAlive = %d, want %d", decoded.KeepAlive, pkt.KeepAlive)
	}
	if decoded.Username != "alice" || !decoded.UsernameFlag {
		t.Errorf("Username = %q flag=%v, want alice/true", decoded.Username, decoded.UsernameFlag)
	}
	if decoded.Password != "s3cret" || !decoded.PasswordFlag {
		t.Errorf("Password = %q flag=%v, want s3cret/true", decoded.Password, decoded.PasswordFlag)
	}
}

func TestConnectWithWill(t *testing.T) {
	pkt := &ConnectPacket{
		ClientID:    "will-client",
		WillFlag:    true,
		WillTopic:   "clients/will-client/status",
		WillMessage: []byte("offline"),
		WillQoS:     1,
		WillRetain:  true,
	}

	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	header, err := DecodeFixedHeader(&buf)
	if err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}
	decoded, err := DecodeConnect(buf.Bytes()[:header.RemainingLength])
	if err != nil {
		t.Fatalf("DecodeConnect: %v", err)
	}

	if !decoded.WillFlag {
		t.Fatal("WillFlag = false, want true")
	}
	if decoded.WillTopic != pkt.WillTopic {
		t.Errorf("WillTopic = %q, want %q", decoded.WillTopic, pkt.WillTopic)
	}
	if string(decoded.WillMessage) != "offline" {
		t.Errorf("WillMessage = %q, want offline", decoded.WillMessage)
	}
	if decoded.WillQoS != 1 {
		t.Errorf("WillQoS = %d, want 1", decoded.WillQoS)
	}
	if !decoded.WillRetain {
		t.Error("WillRetain = false, want true")
	}
}

func TestConnectProtocolNameAndLevel(t *testing.T) {
	pkt := &ConnectPacket{ClientID: "c"}
	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	if _, err := DecodeFixedHeader(&buf); err != nil {
		t.Fatalf("DecodeFixedHeader: %v", err)
	}

	body := buf.Bytes()
	name, n, err := decodeString(body)
	if err != nil {
		t.Fatalf("decodeString: %v", err)
	}
	if name != ProtocolName {
		t.Errorf("protocol name = %q, want %q", name, ProtocolName)
	}
	if body[n] != ProtocolLevel {
		t.Errorf("protocol level = 0x%02x, want 0x%02x", body[n], ProtocolLevel)
	}
}
