package detect

// scanPrefixed locates a candidate span anchored on the prefix character.
// It scans backward from the cursor for the most recent prefix that sits on
// a word boundary, accumulates the word forward from there, and keeps the
// candidate only while the cursor is still attached to that word.
func (d *Detector) scanPrefixed(text []rune) (candidate, bool) {
	n := len(text)
	lo := n - d.window()
	if lo < 0 {
		lo = 0
	}

	// Only a prefix at position 0 or right after a delimiter counts; the
	// ";" glued into "foo;bar" must not start a trigger.
	p := -1
	for i := n - 1; i >= lo; i-- {
		if text[i] != d.cfg.Prefix {
			continue
		}
		if i == 0 || IsDelimiter(text[i-1]) {
			p = i
			break
		}
	}
	if p < 0 {
		return candidate{}, false
	}

	// Forward accumulation up to the end of the word. A delimiter usually
	// ends the word, but it is swallowed while the span including it still
	// prefixes a longer known trigger, so triggers containing a literal "."
	// or "?" keep matching.
	reach := p + 1
	for reach < n {
		if IsDelimiter(text[reach]) && !d.prefixesTrigger(text[p:reach+1]) {
			break
		}
		reach++
	}

	// The prefix must be forming the word at the cursor. Anything other
	// than delimiters between the word's end and the cursor means typing
	// has moved on, so a stale trigger left behind never re-fires.
	for i := reach; i < n; i++ {
		if !IsDelimiter(text[i]) {
			return candidate{}, false
		}
	}

	// Cap the span one rune past the longest loaded trigger: an over-long
	// word still reaches the classifier, where the walk fails and the
	// verdict comes back NoMatch.
	end := reach
	if limit := p + d.maxTriggerLen + 1; end > limit {
		end = limit
	}
	span := text[p:end]
	if len(span) <= 1 {
		// Just the prefix character: not a candidate.
		return candidate{}, false
	}
	return candidate{start: p, span: span, hasDelimiter: reach < n}, true
}

// scanBare locates a candidate span for non-prefixed triggers, anchored on
// word boundaries. Candidate end positions are tried from the cursor
// backward, so the most recently typed word always wins; for each end the
// longest span with a proper word start wins.
func (d *Detector) scanBare(text []rune) (candidate, bool) {
	if d.bareCount == 0 {
		return candidate{}, false
	}
	n := len(text)
	lo := n - d.window()
	if lo < 0 {
		lo = 0
	}

	for end := n; end > lo; end-- {
		if end < n && IsTriggerEligible(text[end]) {
			continue // mid-word, not a span end
		}
		startLo := end - d.maxTriggerLen
		if startLo < lo {
			startLo = lo
		}
		for start := startLo; start < end; start++ {
			if start > 0 && IsTriggerEligible(text[start-1]) {
				continue // embedded in a larger word
			}
			span := text[start:end]
			if span[0] == d.cfg.Prefix {
				continue
			}
			node, _ := d.root.walk(d.normalizeSpan(span))
			if node == nil {
				continue // not a prefix of any trigger
			}

			if end == n {
				// Span reaches the cursor: still growable.
				return candidate{start: start, span: span}, true
			}

			// A delimiter follows, so only an exact trigger qualifies; a
			// strict prefix whose word already ended is dead.
			if !node.isEnd {
				continue
			}
			last := span[len(span)-1]
			next := text[end]
			if IsTerminalPunct(last) {
				// "brb!!" must not fire "brb!"; require a real delimiter
				// that does not repeat the trigger's own punctuation.
				if next == last || !IsDelimiter(next) {
					continue
				}
			} else if IsTriggerEligible(next) {
				continue
			}
			return candidate{start: start, span: span, hasDelimiter: true}, true
		}
	}
	return candidate{}, false
}

// prefixesTrigger reports whether span equals, or is a strict prefix of, a
// registered trigger.
func (d *Detector) prefixesTrigger(span []rune) bool {
	node, _ := d.root.walk(d.normalizeSpan(span))
	return node != nil
}
