package utils

import (
	"unicode"
	"unicode/utf8"
)

// MaxTriggerRunes bounds the trigger length accepted by the library. The
// detector clamps its scan window to the configured maximum anyway; this is
// the hard ceiling for what ever enters a snippet set.
const MaxTriggerRunes = 100

// IsValidTrigger reports whether a trigger string can ever be matched by
// the detector: non-empty, free of whitespace and control characters, and
// within the length ceiling. Anything else would be unreachable by the
// boundary scanner and is rejected at load time instead.
func IsValidTrigger(s string) bool {
	if s == "" {
		return false
	}
	if utf8.RuneCountInString(s) > MaxTriggerRunes {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsRepetitive checks if a string consists of one repeated character
// ("aaaa", ";;;;"). Such triggers are legal but almost always a typo in the
// snippet file, so loaders may warn about them.
func IsRepetitive(s string) bool {
	if utf8.RuneCountInString(s) <= 2 {
		return false
	}
	var first rune
	for i, r := range s {
		if i == 0 {
			first = r
			continue
		}
		if r != first {
			return false
		}
	}
	return true
}

// TruncateForDisplay shortens content previews for CLI and log output.
func TruncateForDisplay(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
