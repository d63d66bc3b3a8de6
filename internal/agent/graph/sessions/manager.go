package sessions

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// Manager mediates between the dialogue graph and the session repository:
// it loads (or creates) the session at the start of a turn, records the
// user message, serves a bounded history window, and persists the outcome
// when the turn completes.
type Manager struct {
	repo       model.SessionRepository
	historyMax int
}

func NewManager(repo model.SessionRepository, cfg model.ConversationConfig) *Manager {
	historyMax := cfg.History.MaxTurns
	if historyMax <= 0 {
		historyMax = 10
	}
	return &Manager{repo: repo, historyMax: historyMax}
}

// BeginTurn loads the session (creating a fresh one for unknown IDs),
// appends the user message to the history, and returns the session plus
// the recent history window. A stored session with an invalid phase is
// treated as corrupt and replaced with a fresh one.
func (m *Manager) BeginTurn(ctx context.Context, sessionID, query string) (*model.Session, []*schema.Message, error) {
	sess, err := m.repo.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		sess = model.NewSession(sessionID)
	} else if !sess.Phase.Valid() {
		logx.Warn().Str("sessionID", sessionID).Int("phase", int(sess.Phase)).Msg("stored session has invalid phase, resetting")
		sess = model.NewSession(sessionID)
	}

	if err := m.repo.AddMessage(ctx, sessionID, schema.UserMessage(query)); err != nil {
		return nil, nil, err
	}

	history, err := m.repo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	return sess, trimTail(history.Messages, m.historyMax), nil
}

// CompleteTurn records the assistant reply and persists the session state.
func (m *Manager) CompleteTurn(ctx context.Context, sess *model.Session, reply string) error {
	if err := m.repo.AddMessage(ctx, sess.ID, schema.AssistantMessage(reply, nil)); err != nil {
		return err
	}
	return m.repo.SaveSession(ctx, sess)
}

// Reset discards the session state and history.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	return m.repo.ClearSession(ctx, sessionID)
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
