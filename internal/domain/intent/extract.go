package intent

import "strings"

// Extract returns the span from the first '{' through the last '}' of text.
// Braces are not balanced; the span is greedy.
func Extract(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", false
	}
	return strings.TrimSpace(text[start : end+1]), true
}
