// Package wol sends IEEE 802.3 Wake-on-LAN magic packets.
package wol

import (
	"net"
	"strings"

	"github.com/smartlab-classroom/peerfabric/internal/coreerr"
)

const wolPort = 9

// ParseMAC parses a MAC address in either colon- or hyphen-separated
// form (aa:bb:cc:dd:ee:ff or aa-bb-cc-dd-ee-ff) into 6 raw bytes.
func ParseMAC(s string) ([6]byte, error) {
	var out [6]byte

	normalized := strings.ReplaceAll(s, "-", ":")
	hw, err := net.ParseMAC(normalized)
	if err != nil || len(hw) != 6 {
		return out, coreerr.New(coreerr.InvalidInput, "invalid MAC address: "+s)
	}
	copy(out[:], hw)
	return out, nil
}

// MagicPacket builds the 102-byte Wake-on-LAN payload: six 0xFF bytes
// followed by the target MAC address repeated sixteen times.
func MagicPacket(mac [6]byte) []byte {
	packet := make([]byte, 0, 102)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, mac[:]...)
	}
	return packet
}

// Wake parses macAddress and broadcasts a magic packet to the LAN
// limited broadcast address (255.255.255.255) on UDP port 9.
func Wake(macAddress string) error {
	return WakeTo(macAddress, "")
}

// WakeTo parses macAddress and broadcasts a magic packet to
// broadcastAddr on UDP port 9. An empty broadcastAddr falls back to
// the limited broadcast address, matching the default wake_on_lan(mac,
// null) behavior.
func WakeTo(macAddress, broadcastAddr string) error {
	mac, err := ParseMAC(macAddress)
	if err != nil {
		return err
	}

	ip := net.IPv4bcast
	if broadcastAddr != "" {
		parsed := net.ParseIP(broadcastAddr)
		if parsed == nil {
			return coreerr.New(coreerr.InvalidInput, "invalid broadcast address: "+broadcastAddr)
		}
		ip = parsed
	}

	packet := MagicPacket(mac)
	addr := &net.UDPAddr{IP: ip, Port: wolPort}

	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return coreerr.Wrap(coreerr.IoFailure, "failed to open broadcast socket", err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet); err != nil {
		return coreerr.Wrap(coreerr.IoFailure, "failed to send magic packet", err)
	}
	return nil
}
