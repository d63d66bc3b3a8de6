package repo

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

func TestMemoryRepo_LoadUnknownSessionReturnsNil(t *testing.T) {
	r := NewMemorySessionRepository()

	sess, err := r.LoadSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMemoryRepo_SaveAndLoadSession(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	sess := model.NewSession("s1")
	sess.Phase = model.PhaseSuggestion
	sess.Entities.Location = "المعادي"
	require.NoError(t, r.SaveSession(ctx, sess))

	loaded, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, model.PhaseSuggestion, loaded.Phase)
	assert.Equal(t, "المعادي", loaded.Entities.Location)

	// The store holds a copy: mutating the loaded session does not leak back.
	loaded.Phase = model.PhaseClosing
	again, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseSuggestion, again.Phase)
}

func TestMemoryRepo_HistoryOrdering(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("اهلا")))
	require.NoError(t, r.AddMessage(ctx, "s1", schema.AssistantMessage("اهلا بيك", nil)))

	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, schema.User, h.Messages[0].Role)
	assert.Equal(t, "اهلا بيك", h.Messages[1].Content)
}

func TestMemoryRepo_ClearSession(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, r.SaveSession(ctx, model.NewSession("s1")))
	require.NoError(t, r.AddMessage(ctx, "s1", schema.UserMessage("اهلا")))
	require.NoError(t, r.ClearSession(ctx, "s1"))

	sess, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, sess)

	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, h.Messages)
}
