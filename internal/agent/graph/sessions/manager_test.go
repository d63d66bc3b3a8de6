package sessions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/repo"
)

func TestBeginTurn_CreatesFreshSession(t *testing.T) {
	mgr := NewManager(repo.NewMemorySessionRepository(), model.ConversationConfig{})
	ctx := context.Background()

	sess, history, err := mgr.BeginTurn(ctx, "s1", "اهلا")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseDiscovery, sess.Phase)
	require.Len(t, history, 1)
	assert.Equal(t, "اهلا", history[0].Content)
}

func TestBeginTurn_ResetsCorruptSession(t *testing.T) {
	r := repo.NewMemorySessionRepository()
	ctx := context.Background()

	corrupt := model.NewSession("s1")
	corrupt.Phase = model.Phase(42)
	require.NoError(t, r.SaveSession(ctx, corrupt))

	mgr := NewManager(r, model.ConversationConfig{})
	sess, _, err := mgr.BeginTurn(ctx, "s1", "اهلا")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseDiscovery, sess.Phase)
	assert.Zero(t, sess.TurnsInPhase)
}

func TestCompleteTurn_PersistsReplyAndState(t *testing.T) {
	r := repo.NewMemorySessionRepository()
	mgr := NewManager(r, model.ConversationConfig{})
	ctx := context.Background()

	sess, _, err := mgr.BeginTurn(ctx, "s1", "اهلا")
	require.NoError(t, err)

	sess.Phase = model.PhaseSummary
	require.NoError(t, mgr.CompleteTurn(ctx, sess, "اهلا بيك"))

	loaded, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseSummary, loaded.Phase)

	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, "اهلا بيك", h.Messages[1].Content)
}

func TestBeginTurn_TrimsHistoryWindow(t *testing.T) {
	r := repo.NewMemorySessionRepository()
	cfg := model.ConversationConfig{}
	cfg.History.MaxTurns = 4
	mgr := NewManager(r, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		sess, _, err := mgr.BeginTurn(ctx, "s1", "سؤال")
		require.NoError(t, err)
		require.NoError(t, mgr.CompleteTurn(ctx, sess, "رد"))
	}

	_, history, err := mgr.BeginTurn(ctx, "s1", "الاخيرة")
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Equal(t, "الاخيرة", history[3].Content)
}

func TestReset(t *testing.T) {
	r := repo.NewMemorySessionRepository()
	mgr := NewManager(r, model.ConversationConfig{})
	ctx := context.Background()

	sess, _, err := mgr.BeginTurn(ctx, "s1", "اهلا")
	require.NoError(t, err)
	require.NoError(t, mgr.CompleteTurn(ctx, sess, "رد"))

	require.NoError(t, mgr.Reset(ctx, "s1"))

	fresh, history, err := mgr.BeginTurn(ctx, "s1", "تاني")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseDiscovery, fresh.Phase)
	assert.Len(t, history, 1)
}
