package repo

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

// MemorySessionRepository is an in-process repository for the CLI and for
// tests. State is copied on the way in and out so callers never share
// mutable structs with the store.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	messages map[string][]*schema.Message
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]model.Session),
		messages: make(map[string][]*schema.Message),
	}
}

func (r *MemorySessionRepository) LoadSession(_ context.Context, sessionID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := sess
	return &out, nil
}

func (r *MemorySessionRepository) SaveSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepository) AddMessage(_ context.Context, sessionID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *message
	r.messages[sessionID] = append(r.messages[sessionID], &m)
	return nil
}

func (r *MemorySessionRepository) LoadHistory(_ context.Context, sessionID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.messages[sessionID]
	msgs := make([]*schema.Message, len(src))
	copy(msgs, src)
	return &model.ConversationHistory{SessionID: sessionID, Messages: msgs}, nil
}

func (r *MemorySessionRepository) ClearSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	delete(r.messages, sessionID)
	return nil
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
