package repo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/model"
)

func TestDecodeState_RoundTrip(t *testing.T) {
	sess := model.NewSession("s1")
	sess.Phase = model.PhaseSummary
	sess.Entities.Location = "المعادي"
	raw, err := json.Marshal(sess)
	require.NoError(t, err)

	got := decodeState("s1", string(raw))
	require.NotNil(t, got)
	assert.Equal(t, model.PhaseSummary, got.Phase)
	assert.Equal(t, "المعادي", got.Entities.Location)
}

func TestDecodeState_CorruptBlobTreatedAsAbsent(t *testing.T) {
	// A blob that no longer decodes must read as a missing session, so
	// the next turn starts a fresh discovery conversation instead of
	// failing on the same key forever.
	assert.Nil(t, decodeState("s1", "{not json"))
	assert.Nil(t, decodeState("s1", `"a string, not an object"`))
	assert.Nil(t, decodeState("s1", ""))
}

func TestRedisRepo_KeyLayout(t *testing.T) {
	r := NewRedisSessionRepository(nil, 0)
	assert.Equal(t, "conversation:s1:state", r.stateKey("s1"))
	assert.Equal(t, "conversation:s1:messages", r.messagesKey("s1"))
}
