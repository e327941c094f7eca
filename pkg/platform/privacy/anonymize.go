// Package privacy reduces client identifiers to non-identifying forms before they are logged.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to its network prefix.
// IPv4 keeps the /24 ("192.168.1.47" -> "192.168.1.0"); IPv6 keeps the /48.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}
