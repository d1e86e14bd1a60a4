package logger

import "strings"

// MaskIP hides the host part of a client address: "203.0.113.7"
// becomes "203.0.113.x", IPv6 keeps the first two groups. Unparseable
// input is masked entirely.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}
	if strings.Contains(ip, ":") {
		groups := strings.Split(ip, ":")
		if len(groups) >= 2 {
			return groups[0] + ":" + groups[1] + "::x"
		}
		return "x"
	}
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "x"
	}
	return strings.Join(parts[:3], ".") + ".x"
}
