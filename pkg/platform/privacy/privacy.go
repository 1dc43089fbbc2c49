// Package privacy reduces personal identifiers to forms that are safe to log.
package privacy

import (
	"fmt"
	"net/netip"
)

// AnonymizeIP keeps the /24 of an IPv4 address or the /48 of an IPv6 one.
// Returns "unknown" for empty input and "invalid" when ip does not parse.
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
		p, _ := addr.Prefix(24)
		return p.Addr().String()
	}
	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}

// MaskAccount shortens a wallet account handle to its first and last four
// characters, e.g. "GABC...WXYZ".
func MaskAccount(account string) string {
	if len(account) <= 8 {
		return "****"
	}
	return account[:4] + "..." + account[len(account)-4:]
}
