package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Session is the mutable per-conversation state: the active phase, the
// accumulated entity set, and the counters the phase machine consults.
// Exactly one phase is active at any time. Each session is owned by a
// single sequential conversation; no cross-session sharing occurs.
type Session struct {
	ID       string    `json:"id"`
	Phase    Phase     `json:"phase"`
	Entities EntitySet `json:"entities"`

	// TurnsInPhase counts fully processed turns since the session entered
	// the current phase; reset to zero on every transition.
	TurnsInPhase int `json:"turns_in_phase"`

	// UrgencyPrompts counts urgency replies already issued, bounding how
	// long a session may linger in the urgency phase.
	UrgencyPrompts int `json:"urgency_prompts"`
}

// NewSession creates a fresh session in the discovery phase.
func NewSession(id string) *Session {
	return &Session{ID: id, Phase: PhaseDiscovery}
}

// SessionRepository persists session state and the ordered turn history.
type SessionRepository interface {
	// LoadSession retrieves the session state, or (nil, nil) when the
	// session does not exist yet.
	LoadSession(ctx context.Context, sessionID string) (*Session, error)

	// SaveSession stores the session state.
	SaveSession(ctx context.Context, session *Session) error

	// AddMessage appends a message to the conversation history.
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadHistory retrieves the full ordered conversation history.
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearSession removes the session state and its history.
	ClearSession(ctx context.Context, sessionID string) error
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
