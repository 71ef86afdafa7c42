package detect

import (
	"fmt"
	"testing"
	"time"

	"github.com/snipserve/snipserve/pkg/snippet"
)

func testSnippets() []snippet.Snippet {
	return []snippet.Snippet{
		{Trigger: ";t", Content: "test expansion"},
		{Trigger: ";sig", Content: "Best regards,\nAlex"},
		{Trigger: ";gb", Content: "goodbye"},
		{Trigger: ";gballs", Content: "goodbye all"},
		{Trigger: ";e.g", Content: "for example"},
		{Trigger: "brb", Content: "be right back"},
		{Trigger: "brb!", Content: "be right back!"},
		{Trigger: "ps:", Content: "postscript:"},
	}
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	return New(testSnippets(), DefaultConfig())
}

// TestTriggerStates runs representative inputs through every verdict the
// detector can produce.
func TestTriggerStates(t *testing.T) {
	d := newTestDetector(t)

	testCases := []struct {
		input       string
		state       TriggerState
		description string
	}{
		{"", StateIdle, "Empty input"},
		{"hello world", StateIdle, "Plain prose, no trigger"},
		{"hello ;", StateIdle, "Bare prefix, nothing typed yet"},
		{"foo;bar", StateIdle, "Prefix glued inside a word"},
		{";s", StateTyping, "Strict prefix of one trigger"},
		{";g", StateTyping, "Strict prefix of two triggers"},
		{";t", StateComplete, "Complete at end of input, no longer alternative"},
		{";t ", StateComplete, "Complete followed by delimiter"},
		{"hello ;sig ", StateComplete, "Complete mid-sentence"},
		{";gb", StateAmbiguous, "Complete but extendable, no delimiter yet"},
		{";gb ", StateComplete, "Delimiter resolves the ambiguity"},
		{";gballs", StateComplete, "Longest trigger at end of input"},
		{";unknown ", StateNoMatch, "Prefixed word matching nothing"},
		{";zz", StateNoMatch, "Dead prefix walk"},
		{"brb", StateAmbiguous, "Bare trigger that is also a prefix of a longer one"},
		{"brb ", StateComplete, "Bare trigger followed by delimiter"},
		{"myemail@brb.com ", StateIdle, "Bare trigger embedded in a word"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			match := d.ProcessInput(tc.input)
			if match.State != tc.state {
				t.Errorf("input %q: got state %s, want %s",
					tc.input, match.State, tc.state)
			}
			if match.IsMatch != (tc.state == StateComplete) {
				t.Errorf("input %q: IsMatch=%v inconsistent with state %s",
					tc.input, match.IsMatch, match.State)
			}
		})
	}
}

func TestCompleteMatchPayload(t *testing.T) {
	d := newTestDetector(t)

	match := d.ProcessInput("hello ;sig ")
	if !match.IsMatch {
		t.Fatalf("expected a match, got state %s", match.State)
	}
	if match.Trigger != ";sig" {
		t.Errorf("got trigger %q, want %q", match.Trigger, ";sig")
	}
	if match.Content != "Best regards,\nAlex" {
		t.Errorf("got content %q", match.Content)
	}
	// ";sig" starts at rune 6, so the match ends at rune 10.
	if match.MatchEnd != 10 {
		t.Errorf("got MatchEnd %d, want 10", match.MatchEnd)
	}
}

func TestAmbiguousCompletions(t *testing.T) {
	d := newTestDetector(t)

	match := d.ProcessInput(";gb")
	if match.State != StateAmbiguous {
		t.Fatalf("got state %s, want ambiguous", match.State)
	}
	if match.IsMatch {
		t.Error("ambiguous verdict must not set IsMatch")
	}
	if match.PotentialTrigger != ";gb" {
		t.Errorf("got potential %q, want %q", match.PotentialTrigger, ";gb")
	}
	want := []string{";gb", ";gballs"}
	if len(match.PossibleCompletions) != len(want) {
		t.Fatalf("got completions %v, want %v", match.PossibleCompletions, want)
	}
	for i, w := range want {
		if match.PossibleCompletions[i] != w {
			t.Errorf("completion %d: got %q, want %q", i, match.PossibleCompletions[i], w)
		}
	}
}

// TestDelimiterCompleteness checks that every delimiter class terminates a
// pending trigger, not just whitespace.
func TestDelimiterCompleteness(t *testing.T) {
	d := newTestDetector(t)

	delimiters := []rune{' ', '\t', '\n', '.', ',', '!', '?', ':', ';', '(', ')', '"', '<', '>', '|', '\\', '€', '中', '😀'}
	for _, delim := range delimiters {
		input := ";t" + string(delim)
		match := d.ProcessInput(input)
		if match.State != StateComplete {
			t.Errorf("delimiter %q: got state %s, want complete", delim, match.State)
		}
	}
}

// TestLookaheadSwallowsDelimiter verifies that a delimiter inside a known
// longer trigger does not end the span early.
func TestLookaheadSwallowsDelimiter(t *testing.T) {
	d := newTestDetector(t)

	testCases := []struct {
		input string
		state TriggerState
	}{
		{";e", StateTyping},
		{";e.", StateTyping},
		{";e.g", StateComplete},
		{";e.g ", StateComplete},
	}
	for _, tc := range testCases {
		match := d.ProcessInput(tc.input)
		if match.State != tc.state {
			t.Errorf("input %q: got state %s, want %s", tc.input, match.State, tc.state)
		}
	}
}

func TestCursorOffsets(t *testing.T) {
	d := newTestDetector(t)
	text := "hello ;sig world"

	testCases := []struct {
		cursor      int
		state       TriggerState
		description string
	}{
		{10, StateComplete, "Cursor right after the trigger"},
		{11, StateComplete, "Cursor after the terminating space"},
		{8, StateTyping, "Cursor inside the trigger"},
		{5, StateIdle, "Cursor before the trigger"},
		{0, StateIdle, "Cursor at start of text"},
		{-1, StateIdle, "Negative cursor falls back to end of text"},
		{len(text) + 100, StateIdle, "Out-of-range cursor falls back to end of text"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			match := d.ProcessInputAt(text, tc.cursor)
			if match.State != tc.state {
				t.Errorf("cursor %d: got state %s, want %s", tc.cursor, match.State, tc.state)
			}
		})
	}
}

// TestStaleTriggerDoesNotRefire checks that a completed trigger left behind
// in the text stops firing once the cursor moves far enough away.
func TestStaleTriggerDoesNotRefire(t *testing.T) {
	d := newTestDetector(t)

	// Whole words separate ";sig" from the cursor, so it is no longer the
	// word being typed.
	text := ";sig and then a good amount of further prose follows here"
	match := d.ProcessInput(text)
	if match.State == StateComplete {
		t.Errorf("stale trigger re-fired: %+v", match)
	}
}

func TestIdempotentCalls(t *testing.T) {
	d := newTestDetector(t)

	first := d.ProcessInput(";gb")
	for i := 0; i < 5; i++ {
		again := d.ProcessInput(";gb")
		if again.State != first.State || again.PotentialTrigger != first.PotentialTrigger {
			t.Fatalf("repeated call diverged: %+v vs %+v", again, first)
		}
	}
}

func TestCaseSensitivityToggle(t *testing.T) {
	d := newTestDetector(t)

	match := d.ProcessInput(";SIG ")
	if match.State != StateComplete {
		t.Fatalf("case-insensitive default: got state %s, want complete", match.State)
	}
	if match.Trigger != ";sig" {
		t.Errorf("got trigger %q, want normalized %q", match.Trigger, ";sig")
	}

	on := true
	d.UpdateOptions(Options{CaseSensitive: &on})
	match = d.ProcessInput(";SIG ")
	if match.State == StateComplete {
		t.Errorf("case-sensitive mode still matched %q", match.Trigger)
	}
	match = d.ProcessInput(";sig ")
	if match.State != StateComplete {
		t.Errorf("case-sensitive mode broke exact match: %s", match.State)
	}
}

func TestPrefixReconfiguration(t *testing.T) {
	d := New([]snippet.Snippet{
		{Trigger: "/cmd", Content: "command"},
	}, Config{Prefix: '/'})

	match := d.ProcessInput("/cmd ")
	if match.State != StateComplete {
		t.Fatalf("got state %s, want complete", match.State)
	}

	semi := ';'
	d.UpdateOptions(Options{Prefix: &semi})
	if d.Prefix() != ';' {
		t.Fatalf("prefix not updated")
	}
	// "/cmd" no longer starts with the active prefix; it now matches as a
	// bare trigger instead.
	match = d.ProcessInput("/cmd ")
	if match.State != StateComplete {
		t.Errorf("bare fallback after prefix change: got %s", match.State)
	}
}

func TestUpdateSnippets(t *testing.T) {
	d := newTestDetector(t)

	d.UpdateSnippets([]snippet.Snippet{{Trigger: ";new", Content: "fresh"}})
	if d.SnippetCount() != 1 {
		t.Fatalf("got %d triggers after update, want 1", d.SnippetCount())
	}
	if match := d.ProcessInput(";t "); match.State == StateComplete {
		t.Error("old trigger survived the update")
	}
	if match := d.ProcessInput(";new "); match.State != StateComplete {
		t.Errorf("new trigger not live: %s", match.State)
	}
}

func TestUnloadableTriggersSkipped(t *testing.T) {
	d := New([]snippet.Snippet{
		{Trigger: "", Content: "empty"},
		{Trigger: ";ok", Content: "fine"},
		{Trigger: "has space", Content: "nope"},
		{Trigger: "tab\there", Content: "nope"},
	}, DefaultConfig())

	if d.SnippetCount() != 1 {
		t.Fatalf("got %d triggers, want 1", d.SnippetCount())
	}
}

func TestStats(t *testing.T) {
	d := newTestDetector(t)
	stats := d.Stats()
	if stats.SnippetCount != len(testSnippets()) {
		t.Errorf("got SnippetCount %d, want %d", stats.SnippetCount, len(testSnippets()))
	}
	if stats.MaxTriggerLength != 7 { // ";gballs"
		t.Errorf("got MaxTriggerLength %d, want 7", stats.MaxTriggerLength)
	}
	if stats.TrieDepth != 7 || stats.TotalNodes < 8 {
		t.Errorf("implausible trie shape: %+v", stats)
	}
}

// TestDetectionLatency bounds a full keystroke simulation over a large
// trigger set. The bound is generous; regressions show up as order-of-
// magnitude jumps, not noise.
func TestDetectionLatency(t *testing.T) {
	snippets := make([]snippet.Snippet, 0, 1000)
	for i := 0; i < 1000; i++ {
		snippets = append(snippets, snippet.Snippet{
			Trigger: fmt.Sprintf(";trig%04d", i),
			Content: fmt.Sprintf("expansion %d", i),
		})
	}
	d := New(snippets, DefaultConfig())

	text := "some earlier prose then ;trig0500 "
	start := time.Now()
	for i := 1; i <= len(text); i++ {
		d.ProcessInputAt(text, i)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("keystroke simulation took %v, want under 50ms", elapsed)
	}

	match := d.ProcessInput(text)
	if match.State != StateComplete || match.Trigger != ";trig0500" {
		t.Fatalf("unexpected verdict over large set: %+v", match)
	}
}

func BenchmarkProcessInput(b *testing.B) {
	snippets := make([]snippet.Snippet, 0, 1000)
	for i := 0; i < 1000; i++ {
		snippets = append(snippets, snippet.Snippet{
			Trigger: fmt.Sprintf(";trig%04d", i),
			Content: fmt.Sprintf("expansion %d", i),
		})
	}
	d := New(snippets, DefaultConfig())
	text := "some earlier prose then ;trig0500 "

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.ProcessInput(text)
	}
}
