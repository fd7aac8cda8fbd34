package wol

import (
	"bytes"
	"testing"
)

func TestParseMACColonForm(t *testing.T) {
	mac, err := ParseMAC("aa:bb:cc:dd:ee:ff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if mac != want {
		t.Errorf("got %v, want %v", mac, want)
	}
}

func TestParseMACHyphenForm(t *testing.T) {
	mac, err := ParseMAC("aa-bb-cc-dd-ee-ff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [6]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if mac != want {
		t.Errorf("got %v, want %v", mac, want)
	}
}

func TestParseMACRejectsGarbage(t *testing.T) {
	if _, err := ParseMAC("not-a-mac"); err == nil {
		t.Error("expected error for invalid MAC address")
	}
}

func TestMagicPacketLayout(t *testing.T) {
	mac := [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	packet := MagicPacket(mac)

	if len(packet) != 102 {
		t.Fatalf("expected 102-byte packet, got %d", len(packet))
	}
	if !bytes.Equal(packet[:6], []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Error("expected first 6 bytes to be 0xFF sync stream")
	}
	for i := 0; i < 16; i++ {
		start := 6 + i*6
		if !bytes.Equal(packet[start:start+6], mac[:]) {
			t.Errorf("expected MAC repetition %d to match target MAC", i)
		}
	}
}
