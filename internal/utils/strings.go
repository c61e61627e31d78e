package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxStringLength is the default maximum length for truncated strings
	DefaultMaxStringLength = 500
)

// JSONToString serialises object to JSON. When indent is true the output is
// pretty-printed. On marshalling failure it returns a JSON-formatted error
// string rather than panicking, so the result is always safe to log.
func JSONToString(object interface{}, indent ...bool) string {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen bytes, appending a suffix that
// records the original total length. If maxLen is zero or negative,
// [DefaultMaxStringLength] is used instead. The cut never splits a rune.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", cutRunes(s, maxLen), len(s))
}

// TruncateText shortens s to at most maxRunes runes for display, preferring to
// cut at the end of a sentence and otherwise at a word boundary followed by an
// ellipsis.
func TruncateText(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	runes := []rune(s)
	head := string(runes[:maxRunes])

	if idx := lastSentenceEnd(head); idx > len(head)/2 {
		return strings.TrimSpace(head[:idx+1])
	}
	if idx := strings.LastIndexAny(head, " \n\t"); idx > 0 {
		head = head[:idx]
	}
	return strings.TrimRight(head, " ,;:") + "..."
}

func lastSentenceEnd(s string) int {
	best := -1
	for _, marker := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.LastIndex(s, marker); idx > best {
			best = idx
		}
	}
	if strings.HasSuffix(s, ".") {
		return len(s) - 1
	}
	return best
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTMLTags removes inline markup such as <b> or <em> from provider
// snippets and collapses the whitespace left behind.
func StripHTMLTags(s string) string {
	return strings.Join(strings.Fields(htmlTagPattern.ReplaceAllString(s, "")), " ")
}

func cutRunes(s string, maxBytes int) string {
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
