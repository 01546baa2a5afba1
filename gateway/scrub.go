package gateway

import "strings"

var logPrefixes = []string{"INFO:", "WARNING:", "ERROR:", "DEBUG:"}

// ScrubLogLines drops lines that start with a log-level prefix, joins the rest
// with newlines in their original order and trims the result.
func ScrubLogLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !hasLogPrefix(line) {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func hasLogPrefix(line string) bool {
	for _, prefix := range logPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
