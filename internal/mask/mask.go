// Package mask redacts sensitive account fields before they are shown outside
// the process.
package mask

import "strings"

// Placeholder replaces values that cannot be partially shown.
const Placeholder = "***hidden***"

// Cookie hides a session cookie entirely. An empty cookie stays empty.
func Cookie(cookie string) string {
	if cookie == "" {
		return ""
	}
	return Placeholder
}

// IP keeps the first and last segment of an address and masks the rest.
// Colon-delimited addresses use "****" per interior segment, dotted ones "***".
// Addresses with fewer than three segments become Placeholder; an empty
// address stays empty.
func IP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}

	sep, token := ".", "***"
	if strings.Contains(ip, ":") {
		sep, token = ":", "****"
	}

	segments := strings.Split(ip, sep)
	if len(segments) < 3 {
		return Placeholder
	}

	masked := make([]string, len(segments))
	masked[0] = segments[0]
	for i := 1; i < len(segments)-1; i++ {
		masked[i] = token
	}
	masked[len(segments)-1] = segments[len(segments)-1]
	return strings.Join(masked, sep)
}
