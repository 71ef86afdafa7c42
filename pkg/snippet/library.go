package snippet

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/snipserve/snipserve/internal/utils"
)

// Library owns the snippet set loaded from a file. Snippets keep their file
// order, which the detector preserves when listing ambiguous completions.
// A patricia trie over the triggers backs prefix listings for the server's
// diagnostics and the CLI.
type Library struct {
	mu       sync.RWMutex
	path     string
	snippets []Snippet
	index    *patricia.Trie
	skipped  int
}

// Load reads the snippet file at path and returns a library bound to it.
func Load(path string) (*Library, error) {
	l := &Library{path: path, index: patricia.NewTrie()}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLibrary returns an empty, unbound library. Useful for tests and for
// running the server without a snippet file.
func NewLibrary() *Library {
	return &Library{index: patricia.NewTrie()}
}

// Reload re-reads the backing file and replaces the snippet set wholesale.
func (l *Library) Reload() error {
	snippets, err := ReadFile(l.path)
	if err != nil {
		return err
	}
	l.Replace(snippets)
	return nil
}

// Replace swaps in a new snippet set. Invalid triggers are skipped with a
// warning; duplicate triggers keep their first position and the last
// content wins, matching the trie's build rule.
func (l *Library) Replace(snippets []Snippet) {
	index := patricia.NewTrie()
	kept := make([]Snippet, 0, len(snippets))
	pos := make(map[string]int, len(snippets))
	skipped := 0

	for _, s := range snippets {
		if !utils.IsValidTrigger(s.Trigger) {
			log.Warnf("Skipping snippet with invalid trigger %q", s.Trigger)
			skipped++
			continue
		}
		if utils.IsRepetitive(s.Trigger) {
			log.Warnf("Trigger %q is a single repeated character, likely a typo", s.Trigger)
		}
		if i, ok := pos[s.Trigger]; ok {
			kept[i].Content = s.Content
			continue
		}
		pos[s.Trigger] = len(kept)
		kept = append(kept, s)
	}
	for _, s := range kept {
		index.Insert(patricia.Prefix(s.Trigger), s.Content)
	}

	l.mu.Lock()
	l.snippets = kept
	l.index = index
	l.skipped = skipped
	l.mu.Unlock()

	log.Debugf("Snippet library loaded: %d snippets, %d skipped", len(kept), skipped)
}

// Snippets returns a copy of the loaded snippet set in file order.
func (l *Library) Snippets() []Snippet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Snippet, len(l.snippets))
	copy(out, l.snippets)
	return out
}

// Count returns the number of loaded snippets.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.snippets)
}

// SkippedCount returns how many entries were rejected on the last load.
func (l *Library) SkippedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skipped
}

// Path returns the backing file path, empty for an unbound library.
func (l *Library) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Get returns the content for an exact trigger.
func (l *Library) Get(trigger string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	item := l.index.Get(patricia.Prefix(trigger))
	if item == nil {
		return "", false
	}
	return item.(string), true
}

// TriggersWithPrefix lists every loaded trigger starting with prefix,
// sorted. An empty prefix lists everything.
func (l *Library) TriggersWithPrefix(prefix string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var triggers []string
	err := l.index.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		triggers = append(triggers, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trigger index: %v", err)
	}
	sort.Strings(triggers)
	return triggers
}

// Save writes the current snippet set back to the backing file.
func (l *Library) Save() error {
	l.mu.RLock()
	path := l.path
	snippets := make([]Snippet, len(l.snippets))
	copy(snippets, l.snippets)
	l.mu.RUnlock()
	return WriteFile(path, snippets)
}
