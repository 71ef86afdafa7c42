package detect

import (
	"sort"
	"strings"

	"github.com/snipserve/snipserve/pkg/snippet"
)

// trieNode is one node of the trigger trie. Every node is owned exclusively
// by its parent. The derived fields hasChildren and completionCount are
// recomputed bottom-up after every bulk insert; they are never maintained
// incrementally.
type trieNode struct {
	children map[rune]*trieNode

	// Set on end nodes only. trigger holds the normalized trigger string
	// and content the opaque expansion payload.
	isEnd   bool
	trigger string
	content string

	// seq records the position of the owning snippet in the snippet list,
	// so completions can be reported in insertion order.
	seq int

	// completionCount is the number of end nodes in this subtree, self
	// included. hasChildren caches len(children) > 0.
	completionCount int
	hasChildren     bool
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// buildTrie constructs the trie wholesale from the snippet list. Triggers
// are stored normalized per the case sensitivity setting; duplicate triggers
// resolve last-write-wins, silently. Snippets with unmatchable triggers are
// skipped.
func buildTrie(snippets []snippet.Snippet, caseSensitive bool) *trieNode {
	root := newTrieNode()
	for i, s := range snippets {
		if !isLoadableTrigger(s.Trigger) {
			continue
		}
		trigger := normalizeTrigger(s.Trigger, caseSensitive)
		node := root
		for _, r := range trigger {
			child, ok := node.children[r]
			if !ok {
				child = newTrieNode()
				node.children[r] = child
			}
			node = child
		}
		node.isEnd = true
		node.trigger = trigger
		node.content = s.Content
		node.seq = i
	}
	finalize(root)
	return root
}

func normalizeTrigger(trigger string, caseSensitive bool) string {
	if caseSensitive {
		return trigger
	}
	return strings.ToLower(trigger)
}

// finalize recomputes the derived node fields bottom-up and returns the
// completion count of the subtree rooted at n.
func finalize(n *trieNode) int {
	count := 0
	if n.isEnd {
		count = 1
	}
	for _, child := range n.children {
		count += finalize(child)
	}
	n.hasChildren = len(n.children) > 0
	n.completionCount = count
	return count
}

// walk follows span rune by rune. It returns the reached node, or nil plus
// the index of the first rune that had no child.
func (n *trieNode) walk(span []rune) (*trieNode, int) {
	node := n
	for i, r := range span {
		child, ok := node.children[r]
		if !ok {
			return nil, i
		}
		node = child
	}
	return node, len(span)
}

// collectCompletions gathers every trigger reachable from node, the node's
// own trigger included, ordered by snippet insertion order. Only called on
// Ambiguous verdicts, so the traversal cost never hits the per-keystroke
// path.
func collectCompletions(node *trieNode) []string {
	type entry struct {
		trigger string
		seq     int
	}
	entries := make([]entry, 0, node.completionCount)
	var visit func(n *trieNode)
	visit = func(n *trieNode) {
		if n.isEnd {
			entries = append(entries, entry{n.trigger, n.seq})
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(node)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.trigger
	}
	return out
}

// depth returns the length of the longest path below n.
func (n *trieNode) depth() int {
	max := 0
	for _, child := range n.children {
		if d := child.depth() + 1; d > max {
			max = d
		}
	}
	return max
}

// size returns the total node count of the subtree, n included.
func (n *trieNode) size() int {
	total := 1
	for _, child := range n.children {
		total += child.size()
	}
	return total
}
