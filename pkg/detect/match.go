package detect

// TriggerState classifies the text in front of the cursor. Each ProcessInput
// call returns a terminal verdict; the detector keeps no session state
// between calls.
type TriggerState int

const (
	// StateIdle means nothing trigger-like precedes the cursor.
	StateIdle TriggerState = iota
	// StateTyping means the text is a strict prefix of at least one trigger.
	StateTyping
	// StateComplete means an unambiguous trigger is ready to expand.
	StateComplete
	// StateAmbiguous means the text is itself a trigger but also a strict
	// prefix of at least one longer trigger, with no delimiter typed yet.
	StateAmbiguous
	// StateNoMatch means the text can never become a trigger.
	StateNoMatch
)

func (s TriggerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTyping:
		return "typing"
	case StateComplete:
		return "complete"
	case StateAmbiguous:
		return "ambiguous"
	case StateNoMatch:
		return "nomatch"
	default:
		return "unknown"
	}
}

// TriggerMatch is the verdict for a single ProcessInput call. Values are
// freshly constructed per call and carry no ownership back into the
// detector. IsMatch is true exactly when State is StateComplete, in which
// case Trigger, Content and MatchEnd are set. PossibleCompletions is only
// populated on StateAmbiguous and always lists the exact match plus every
// longer alternative, in snippet insertion order.
type TriggerMatch struct {
	IsMatch             bool
	Trigger             string
	Content             string
	MatchEnd            int
	State               TriggerState
	PotentialTrigger    string
	PossibleCompletions []string
}

// candidate is a trigger span located by the boundary scanner. start is a
// rune offset within the scanned window; hasDelimiter records whether the
// span was terminated by an actual delimiter in the source text rather than
// by end-of-input.
type candidate struct {
	start        int
	span         []rune
	hasDelimiter bool
}

// classify walks the trie with a candidate span and produces the verdict.
// base is the rune offset of the scanned window within the full text, so
// MatchEnd lands in full-text coordinates.
func (d *Detector) classify(c candidate, base int) TriggerMatch {
	node, failed := d.root.walk(d.normalizeSpan(c.span))
	if node == nil {
		// A prefix character that matches no trigger at all carries no
		// signal: nothing was being typed yet.
		if failed == 0 && c.span[0] == d.cfg.Prefix {
			return TriggerMatch{State: StateIdle}
		}
		return TriggerMatch{State: StateNoMatch}
	}

	switch {
	case node.isEnd && c.hasDelimiter:
		return d.completeMatch(node, base+c.start)
	case node.isEnd && node.hasChildren:
		// Complete trigger at end-of-input with longer alternatives: the
		// user may keep typing or accept now.
		return TriggerMatch{
			State:               StateAmbiguous,
			PotentialTrigger:    string(c.span),
			PossibleCompletions: collectCompletions(node),
		}
	case node.isEnd:
		// Complete at end-of-input with no longer alternative; no trailing
		// delimiter is needed.
		return d.completeMatch(node, base+c.start)
	default:
		return TriggerMatch{State: StateTyping, PotentialTrigger: string(c.span)}
	}
}

func (d *Detector) completeMatch(node *trieNode, start int) TriggerMatch {
	return TriggerMatch{
		IsMatch:  true,
		State:    StateComplete,
		Trigger:  node.trigger,
		Content:  node.content,
		MatchEnd: start + len([]rune(node.trigger)),
	}
}
