package detect

// DefaultPrefix marks the start of a prefixed trigger unless configured
// otherwise.
const DefaultPrefix = ';'

// triggerEligible is the closed set of characters that may appear in a
// trigger body: ASCII letters, digits and the punctuation observed in real
// trigger strings. The set is closed on purpose: any rune outside the table,
// including all of Unicode, counts as a delimiter so emoji and foreign
// scripts can never form spurious triggers.
var triggerEligible [128]bool

func init() {
	for c := 'a'; c <= 'z'; c++ {
		triggerEligible[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		triggerEligible[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		triggerEligible[c] = true
	}
	for _, c := range "-_@#$%&*+=/~^'" {
		triggerEligible[c] = true
	}
}

// IsTriggerEligible reports whether r may appear inside a trigger body.
func IsTriggerEligible(r rune) bool {
	return r >= 0 && r < 128 && triggerEligible[r]
}

// IsDelimiter reports whether r terminates a trigger span. Delimiters are
// the complement of the trigger-eligible set: whitespace, sentence
// punctuation, control characters and every non-ASCII rune.
func IsDelimiter(r rune) bool {
	return !IsTriggerEligible(r)
}

// IsTerminalPunct reports whether r is sentence punctuation allowed as the
// final character of a bare trigger, like "brb!" or "ps:". Such triggers get
// a stricter end boundary so "brb!!" does not fire "brb!".
func IsTerminalPunct(r rune) bool {
	return r == '!' || r == '?' || r == ':' || r == '.'
}
