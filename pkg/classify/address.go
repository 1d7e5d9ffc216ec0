package classify

import (
	"regexp"
	"strings"
)

var (
	angleAddr = regexp.MustCompile(`<([^>]+)>`)
	bareAddr  = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

// ParseAddressList turns a raw header value (comma-separated, possibly
// with display names and angle-bracket addresses) into an ordered list
// of distinct lower-cased bare addresses. Malformed tokens are dropped
// silently; the result is never an error, just shorter.
func ParseAddressList(header string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, segment := range strings.Split(header, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		var addr string
		if m := angleAddr.FindStringSubmatch(segment); m != nil {
			addr = strings.ToLower(strings.TrimSpace(m[1]))
		} else {
			token := strings.Trim(segment, `"'`)
			if !bareAddr.MatchString(token) {
				continue
			}
			addr = strings.ToLower(token)
		}
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}
