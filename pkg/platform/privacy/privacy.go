// Package privacy reduces personal identifiers before they reach logs.
package privacy

import (
	"fmt"
	"net/netip"
)

// AnonymizeIP truncates an address to its network prefix: /24 for IPv4,
// /48 for IPv6. Returns "unknown" for empty input and "invalid" for
// unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}
	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}

// MaskWallet keeps the first six and last four characters of a wallet
// address, enough to correlate log lines without tying a full address to
// registration data.
func MaskWallet(address string) string {
	if len(address) <= 10 {
		return "***"
	}
	return address[:6] + "..." + address[len(address)-4:]
}
