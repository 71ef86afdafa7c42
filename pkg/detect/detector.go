package detect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/snipserve/snipserve/pkg/snippet"
)

// defaultScanWindow bounds the text examined near the cursor when the
// loaded triggers are short, so degenerate inputs cost the same as typical
// ones.
const defaultScanWindow = 200

// Config holds the detector configuration. Zero values fall back to the
// defaults at construction.
type Config struct {
	// Prefix is the distinguished character that marks a prefixed trigger.
	Prefix rune
	// MaxTriggerLength caps the candidate span length in runes.
	MaxTriggerLength int
	// CaseSensitive controls whether triggers match exactly or after
	// lowercase folding. Prefixed and bare triggers share the setting.
	CaseSensitive bool
}

// DefaultConfig returns the detector defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:           DefaultPrefix,
		MaxTriggerLength: 100,
		CaseSensitive:    false,
	}
}

// Options carries a partial configuration update. Nil fields keep their
// current values.
type Options struct {
	Prefix           *rune
	MaxTriggerLength *int
	CaseSensitive    *bool
}

// Stats exposes diagnostic counters about the loaded trie. Numbers are
// informational only and carry no behavioral contract.
type Stats struct {
	SnippetCount     int
	MaxTriggerLength int
	TrieDepth        int
	TotalNodes       int
}

// Detector owns the trigger trie and its configuration. A Detector is
// single-owner: every operation runs synchronously to completion and
// concurrent calls against the same instance must be serialized by the
// caller.
type Detector struct {
	cfg           Config
	snippets      []snippet.Snippet
	root          *trieNode
	maxTriggerLen int // runes in the longest loaded trigger, capped by config
	bareCount     int // loaded triggers that do not start with the prefix
	logger        *log.Logger
}

// New creates a detector over the given snippet set.
func New(snippets []snippet.Snippet, cfg Config) *Detector {
	if cfg.Prefix == 0 {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.MaxTriggerLength <= 0 {
		cfg.MaxTriggerLength = DefaultConfig().MaxTriggerLength
	}
	d := &Detector{cfg: cfg}
	d.UpdateSnippets(snippets)
	return d
}

// SetLogger installs a logger for hot-path tracing. Detection logs nothing
// unless a logger is set; the matching algorithm itself never depends on it.
func (d *Detector) SetLogger(logger *log.Logger) {
	d.logger = logger
}

// ProcessInput classifies text as if the cursor sat at its end.
func (d *Detector) ProcessInput(text string) TriggerMatch {
	return d.ProcessInputAt(text, -1)
}

// ProcessInputAt classifies the text up to cursor, a rune offset. Negative
// or out-of-range offsets fall back to the end of the text; empty effective
// input yields Idle. The call never fails: malformed input degrades to a
// well-formed verdict.
func (d *Detector) ProcessInputAt(text string, cursor int) TriggerMatch {
	if text == "" {
		return TriggerMatch{State: StateIdle}
	}
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		cursor = len(runes)
	}
	runes = runes[:cursor]
	if len(runes) == 0 {
		return TriggerMatch{State: StateIdle}
	}

	// Bound the scan to a window near the cursor so worst-case latency is
	// independent of total document length.
	winStart := len(runes) - d.window()
	if winStart < 0 {
		winStart = 0
	}
	window := runes[winStart:]

	verdict := TriggerMatch{State: StateIdle}
	if c, ok := d.scanPrefixed(window); ok {
		verdict = d.classify(c, winStart)
		if verdict.State != StateIdle && verdict.State != StateNoMatch {
			d.trace(verdict)
			return verdict
		}
	}

	// The bare path only runs when the prefixed path produced nothing
	// actionable. Its scanner proposes only spans that walk the trie, so
	// classification cannot come back NoMatch here.
	if c, ok := d.scanBare(window); ok {
		verdict = d.classify(c, winStart)
	}
	d.trace(verdict)
	return verdict
}

// UpdateSnippets replaces the snippet set wholesale and rebuilds the trie.
// Outstanding TriggerMatch values refer to the set at the time they were
// produced and must not be mixed across an update.
func (d *Detector) UpdateSnippets(snippets []snippet.Snippet) {
	d.snippets = make([]snippet.Snippet, len(snippets))
	copy(d.snippets, snippets)
	d.rebuild()
}

// UpdateOptions merges a partial configuration update. Any change triggers
// a rebuild so stored triggers reflect the new normalization and the scan
// bounds stay consistent.
func (d *Detector) UpdateOptions(opts Options) {
	changed := false
	if opts.Prefix != nil && *opts.Prefix != d.cfg.Prefix {
		d.cfg.Prefix = *opts.Prefix
		changed = true
	}
	if opts.MaxTriggerLength != nil && *opts.MaxTriggerLength > 0 &&
		*opts.MaxTriggerLength != d.cfg.MaxTriggerLength {
		d.cfg.MaxTriggerLength = *opts.MaxTriggerLength
		changed = true
	}
	if opts.CaseSensitive != nil && *opts.CaseSensitive != d.cfg.CaseSensitive {
		d.cfg.CaseSensitive = *opts.CaseSensitive
		changed = true
	}
	if changed {
		d.rebuild()
	}
}

// Prefix returns the configured prefix character.
func (d *Detector) Prefix() rune {
	return d.cfg.Prefix
}

// Config returns a copy of the active configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// SnippetCount returns the number of distinct triggers loaded in the trie.
func (d *Detector) SnippetCount() int {
	return d.root.completionCount
}

// Stats returns diagnostic counters about the loaded trie.
func (d *Detector) Stats() Stats {
	return Stats{
		SnippetCount:     d.root.completionCount,
		MaxTriggerLength: d.maxTriggerLen,
		TrieDepth:        d.root.depth(),
		TotalNodes:       d.root.size(),
	}
}

// rebuild reconstructs the trie and the derived scan bounds from the stored
// snippet list.
func (d *Detector) rebuild() {
	d.root = buildTrie(d.snippets, d.cfg.CaseSensitive)

	maxLen, bare := 0, 0
	prefix := string(d.cfg.Prefix)
	for _, s := range d.snippets {
		if !isLoadableTrigger(s.Trigger) {
			continue
		}
		if n := utf8.RuneCountInString(s.Trigger); n > maxLen {
			maxLen = n
		}
		if !strings.HasPrefix(s.Trigger, prefix) {
			bare++
		}
	}
	if maxLen > d.cfg.MaxTriggerLength {
		maxLen = d.cfg.MaxTriggerLength
	}
	if maxLen == 0 {
		maxLen = 1
	}
	d.maxTriggerLen = maxLen
	d.bareCount = bare

	log.Debugf("trigger trie rebuilt: %d triggers (%d bare), max length %d",
		d.root.completionCount, bare, maxLen)
}

// window returns the scan window size in runes.
func (d *Detector) window() int {
	if w := d.maxTriggerLen * 2; w > defaultScanWindow {
		return w
	}
	return defaultScanWindow
}

// normalizeSpan folds a span to the trie's stored case. The common
// case-insensitive path allocates once per candidate span.
func (d *Detector) normalizeSpan(span []rune) []rune {
	if d.cfg.CaseSensitive {
		return span
	}
	folded := make([]rune, len(span))
	for i, r := range span {
		folded[i] = unicode.ToLower(r)
	}
	return folded
}

func (d *Detector) trace(m TriggerMatch) {
	if d.logger == nil {
		return
	}
	d.logger.Debug("verdict",
		"state", m.State.String(),
		"trigger", m.Trigger,
		"potential", m.PotentialTrigger,
		"matchEnd", m.MatchEnd)
}

// isLoadableTrigger mirrors the build-time skip rule: empty triggers and
// triggers containing whitespace or control characters never enter the trie.
func isLoadableTrigger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
