package model

// Phase is a named stage in the fixed seven-step sales conversation flow.
// The numeric order is the forward order of the conversation; a session
// only ever moves forward or jumps straight to PhaseClosing.
type Phase int

const (
	PhaseDiscovery Phase = iota + 1
	PhaseSummary
	PhaseSuggestion
	PhasePersuasion
	PhaseAlternative
	PhaseUrgency
	PhaseClosing
)

var phaseNames = map[Phase]string{
	PhaseDiscovery:   "discovery",
	PhaseSummary:     "summary",
	PhaseSuggestion:  "suggestion",
	PhasePersuasion:  "persuasion",
	PhaseAlternative: "alternative",
	PhaseUrgency:     "urgency",
	PhaseClosing:     "closing",
}

// String returns the lowercase phase name.
func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether p is one of the seven known phases.
func (p Phase) Valid() bool {
	return p >= PhaseDiscovery && p <= PhaseClosing
}

// Terminal reports whether p has no outgoing transitions.
func (p Phase) Terminal() bool {
	return p == PhaseClosing
}

// NeedsRetrieval reports whether replies in this phase are composed with
// matching property rows as context.
func (p Phase) NeedsRetrieval() bool {
	return p == PhaseSuggestion || p == PhaseAlternative
}

// ParsePhase resolves a stored phase name back to its Phase value.
func ParsePhase(s string) (Phase, bool) {
	for p, n := range phaseNames {
		if n == s {
			return p, true
		}
	}
	return 0, false
}
