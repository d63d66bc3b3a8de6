package phase

import (
	"github.com/aqarat-core-poc/server/internal/agent/model"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

const defaultUrgencyMaxPrompts = 2

// Machine evaluates the per-turn transition rules of the seven-phase sales
// flow. It is stateless: callers pass the session counters in and apply
// the returned phase themselves.
type Machine struct {
	urgencyMaxPrompts int
}

// NewMachine builds the machine from conversation config.
func NewMachine(cfg model.ConversationConfig) *Machine {
	max := cfg.Urgency.MaxPrompts
	if max <= 0 {
		max = defaultUrgencyMaxPrompts
	}
	return &Machine{urgencyMaxPrompts: max}
}

// Next returns the phase for this turn, evaluated once after extraction.
// The machine never moves backward; a session may stay in the same phase
// for many turns while its condition is unmet. When several transitions
// are satisfiable at once the forward-most target wins, and the closing
// override (both contact fields captured) beats everything.
func (m *Machine) Next(s *model.Session, sig model.Signals) model.Phase {
	cur := s.Phase
	if !cur.Valid() {
		cur = model.PhaseDiscovery
	}

	if s.Entities.HasContact() {
		return model.PhaseClosing
	}

	switch cur {
	case model.PhaseDiscovery:
		if s.Entities.CoreComplete() {
			return model.PhaseSummary
		}

	case model.PhaseSummary:
		// One confirmation turn is enough; an explicit affirmation moves
		// on immediately.
		if sig.Confirmation || s.TurnsInPhase >= 1 {
			return model.PhaseSuggestion
		}

	case model.PhaseSuggestion:
		if sig.Acceptance {
			return model.PhaseClosing
		}
		if sig.Objection {
			return model.PhasePersuasion
		}

	case model.PhasePersuasion:
		if sig.Acceptance {
			return model.PhaseClosing
		}
		// TurnsInPhase resets to 0 on entry and is still 0 on the first
		// reply to the counter-argument, so that reply gets one more
		// persuasion turn even when it objects. Only an objection
		// repeated after that grace turn gives up and pivots.
		if sig.Objection && s.TurnsInPhase >= 1 {
			return model.PhaseAlternative
		}

	case model.PhaseAlternative:
		if sig.Acceptance {
			return model.PhaseClosing
		}
		// Same grace turn: the first reply to the alternative stays here
		// (TurnsInPhase is 0); any later non-accepting turn escalates.
		if s.TurnsInPhase >= 1 {
			return model.PhaseUrgency
		}

	case model.PhaseUrgency:
		if s.UrgencyPrompts >= m.urgencyMaxPrompts {
			return model.PhaseClosing
		}

	case model.PhaseClosing:
		return model.PhaseClosing
	}

	return cur
}

// Apply advances the session to next, maintaining the phase counters. It
// returns true when the phase changed.
func (m *Machine) Apply(s *model.Session, next model.Phase) bool {
	changed := next != s.Phase
	if changed {
		logx.Info().
			Str("session_id", s.ID).
			Str("from", s.Phase.String()).
			Str("to", next.String()).
			Msg("phase transition")
		s.Phase = next
		s.TurnsInPhase = 0
	} else {
		s.TurnsInPhase++
	}
	if s.Phase == model.PhaseUrgency {
		s.UrgencyPrompts++
	}
	return changed
}
