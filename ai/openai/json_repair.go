package openai

import "strings"

// repairJSON fixes object keys that lost their opening quote, a slip small
// local models make often: `{"a":1, type":"x"}` becomes `{"a":1, "type":"x"}`.
// Everything else is copied through unchanged.
func repairJSON(s string) string {
	src := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 16)

	for i := 0; i < len(src); {
		ch := src[i]
		out.WriteRune(ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(src) && isSpace(src[i]) {
			out.WriteRune(src[i])
			i++
		}
		if i >= len(src) || !isLetter(src[i]) {
			continue
		}

		// Scan a candidate bare key and see whether it ends in `":`.
		start := i
		for i < len(src) && (isLetter(src[i]) || src[i] == '_') {
			i++
		}
		if i+1 < len(src) && src[i] == '"' && src[i+1] == ':' {
			out.WriteRune('"')
		}
		out.WriteString(string(src[start:i]))
	}

	return out.String()
}
