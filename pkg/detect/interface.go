/*
Package detect is the core, providing real-time trigger detection over the
text immediately preceding the cursor of a focused input field.

Given the live text and a cursor position, the detector decides whether the
user is typing nothing of interest (Idle), is partway through a known
trigger (Typing), has finished a trigger that is ready to expand (Complete),
has finished a trigger that is also a strict prefix of a longer one
(Ambiguous), or has typed something that can never match (NoMatch).

Detection is a single synchronous trie walk over a bounded window of text
near the cursor, so a call costs the same for a ten character field and a
megabyte document. The engine holds no per-call state: identical trie state,
text and cursor always produce an identical TriggerMatch.

Hosts own everything around the engine: they supply the live text, act on
Complete and Ambiguous verdicts, and call UpdateSnippets whenever the
backing snippet store changes.
*/
package detect

import "github.com/snipserve/snipserve/pkg/snippet"

// IDetector defines the interface hosts use to drive trigger detection.
type IDetector interface {
	// ProcessInput classifies the text as if the cursor sat at its end.
	ProcessInput(text string) TriggerMatch

	// ProcessInputAt classifies the text up to the given cursor offset
	// (in runes). Out-of-range offsets fall back to the end of the text.
	ProcessInputAt(text string, cursor int) TriggerMatch

	// UpdateSnippets replaces the full snippet set and rebuilds the trie.
	UpdateSnippets(snippets []snippet.Snippet)

	// UpdateOptions merges a partial configuration update.
	UpdateOptions(opts Options)

	// Prefix returns the configured trigger prefix character.
	Prefix() rune

	// SnippetCount returns the number of triggers currently loaded.
	SnippetCount() int

	// Stats returns diagnostic counters about the loaded trie.
	Stats() Stats
}
