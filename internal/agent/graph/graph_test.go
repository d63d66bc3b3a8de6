package graph

import (
	"context"
	"fmt"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/knowledge"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/prompts"
	"github.com/aqarat-core-poc/server/internal/agent/repo"
	"github.com/aqarat-core-poc/server/internal/agent/rules"
)

// stubGenerator echoes a fixed reply and records the prompts it received.
type stubGenerator struct {
	reply string
	fail  bool
	calls [][]*schema.Message
}

func (s *stubGenerator) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	s.calls = append(s.calls, input)
	if s.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func buildTestRunner(t *testing.T, gen *stubGenerator, sessionRepo model.SessionRepository) Runner {
	t.Helper()

	table := knowledge.NewTable([]model.Property{
		{ID: "P-1", Location: "مدينة نصر", Type: "شقة", Price: 1_000_000, Features: []string{"جراج"}},
		{ID: "P-2", Location: "مدينة نصر", Type: "فيلا", Price: 3_000_000},
		{ID: "P-3", Location: "المعادي", Type: "شقة", Price: 1_700_000},
	})

	cfg := Config{
		Generator:   gen,
		SessionRepo: sessionRepo,
		Knowledge:   table,
		Rules:       &rules.Ruleset{},
		GeneratorCfg: model.GeneratorConfig{
			Model:   "test-model",
			Timeout: "5s",
		},
		Filter: model.FilterConfig{BudgetTolerance: 0.10, RelaxedBudgetTolerance: 0.25, TopK: 3},
		Prompt: model.PromptConfig{AgencyName: "عقارات مصر"},
	}

	runner, err := BuildDialogueGraph(context.Background(), cfg)
	require.NoError(t, err)
	return runner
}

func TestDialogueGraph_SingleTurn(t *testing.T) {
	gen := &stubGenerator{reply: "اهلا بيك"}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	answer, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "اهلا"})
	require.NoError(t, err)
	assert.Equal(t, "اهلا بيك", answer)

	// User turn and assistant reply both persisted.
	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, schema.User, h.Messages[0].Role)
	assert.Equal(t, schema.Assistant, h.Messages[1].Role)

	sess, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.PhaseDiscovery, sess.Phase)
}

func TestDialogueGraph_PhaseProgression(t *testing.T) {
	gen := &stubGenerator{reply: "تمام"}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	turns := []struct {
		query     string
		wantPhase model.Phase
	}{
		{"عايز شقة في مدينة نصر بحدود 1.2 مليون", model.PhaseSummary},
		{"ايوه مظبوط", model.PhaseSuggestion},
		{"ده غالي عليا", model.PhasePersuasion},
		{"ممتاز موافق", model.PhaseClosing},
	}

	for _, turn := range turns {
		_, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: turn.query})
		require.NoError(t, err)

		sess, err := r.LoadSession(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, turn.wantPhase, sess.Phase, "after query %q", turn.query)
	}
}

func TestDialogueGraph_DistrictQuestionDoesNotClose(t *testing.T) {
	gen := &stubGenerator{reply: "تمام"}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	_, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "عايز شقة في مدينة نصر بحدود 1.2 مليون"})
	require.NoError(t, err)
	_, err = runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "ايوه مظبوط"})
	require.NoError(t, err)

	// Asking about another district mid-suggestion is not an acceptance:
	// "حلوان" must retarget the search, not jump the flow to closing.
	_, err = runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "في حاجة مشابهة في حلوان؟"})
	require.NoError(t, err)

	sess, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.PhaseSuggestion, sess.Phase)
	assert.Equal(t, "حلوان", sess.Entities.Location)
}

func TestDialogueGraph_SuggestionPromptCarriesProperties(t *testing.T) {
	gen := &stubGenerator{reply: "تمام"}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	_, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "عايز شقة في مدينة نصر بحدود 1.2 مليون"})
	require.NoError(t, err)
	_, err = runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "ايوه مظبوط"})
	require.NoError(t, err)

	// The suggestion-turn system prompt lists the matching listing.
	require.Len(t, gen.calls, 2)
	sys := gen.calls[1][0]
	assert.Equal(t, schema.System, sys.Role)
	assert.Contains(t, sys.Content, "مدينة نصر")
	assert.Contains(t, sys.Content, "1,000,000")
	assert.NotContains(t, sys.Content, "المعادي")
}

func TestDialogueGraph_ContactDetailsCloseImmediately(t *testing.T) {
	gen := &stubGenerator{reply: "تمام"}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	_, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "اسمي محمود ورقمي 01012345678"})
	require.NoError(t, err)

	sess, err := r.LoadSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseClosing, sess.Phase)
}

func TestDialogueGraph_GeneratorFailureServesFallback(t *testing.T) {
	gen := &stubGenerator{fail: true}
	r := repo.NewMemorySessionRepository()
	runner := buildTestRunner(t, gen, r)
	ctx := context.Background()

	answer, err := runner.Invoke(ctx, model.TurnInput{SessionID: "s1", Query: "اهلا"})
	require.NoError(t, err)
	assert.Equal(t, prompts.FallbackReply(model.PhaseDiscovery), answer)

	// The canned reply is still persisted so the conversation stays coherent.
	h, err := r.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h.Messages, 2)
	assert.Equal(t, answer, h.Messages[1].Content)
}

func TestDialogueGraph_EmptySessionIDRejected(t *testing.T) {
	gen := &stubGenerator{reply: "تمام"}
	runner := buildTestRunner(t, gen, repo.NewMemorySessionRepository())

	_, err := runner.Invoke(context.Background(), model.TurnInput{Query: "اهلا"})
	assert.Error(t, err)
}
