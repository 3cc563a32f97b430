package mapper

import (
	"strconv"
	"strings"
)

// FormatPointer renders instance location segments as an RFC 6901 pointer
func FormatPointer(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segments {
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String()
}

// parseIndex parses a segment as a non-negative array index
func parseIndex(segment string) (int, bool) {
	if segment == "" || segment[0] == '-' || segment[0] == '+' {
		return 0, false
	}
	i, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return i, true
}
