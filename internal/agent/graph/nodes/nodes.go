package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/generate"
	"github.com/aqarat-core-poc/server/internal/agent/graph/sessions"
	"github.com/aqarat-core-poc/server/internal/agent/knowledge"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/nlu"
	"github.com/aqarat-core-poc/server/internal/agent/phase"
	"github.com/aqarat-core-poc/server/internal/agent/prompts"
	errx "github.com/aqarat-core-poc/server/internal/core/error"
	"github.com/aqarat-core-poc/server/internal/observability"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// Node names used in the dialogue graph.
const (
	NodeSessionLoader      = "SessionLoader"
	NodeEntityExtractor    = "EntityExtractor"
	NodePhaseResolver      = "PhaseResolver"
	NodeKnowledgeRetriever = "KnowledgeRetriever"
	NodePromptComposer     = "PromptComposer"
	NodeGenerator          = "Generator"
)

// NewSessionLoaderNode loads (or creates) the session, records the user
// message, and assembles the turn context the downstream nodes work on.
func NewSessionLoaderNode(mgr *sessions.Manager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (*model.TurnContext, error) {
		if strings.TrimSpace(in.SessionID) == "" {
			return nil, fmt.Errorf("session id is empty")
		}
		sess, history, err := mgr.BeginTurn(ctx, in.SessionID, in.Query)
		if err != nil {
			return nil, fmt.Errorf("begin turn: %w", err)
		}
		return &model.TurnContext{Query: in.Query, Session: sess, History: history}, nil
	})
}

// NewSessionLoaderPostHandler stores the loaded session in graph state so
// later handlers can reach it without threading it through every edge.
func NewSessionLoaderPostHandler() func(context.Context, *model.TurnContext, *model.TurnState) (*model.TurnContext, error) {
	return func(ctx context.Context, out *model.TurnContext, state *model.TurnState) (*model.TurnContext, error) {
		state.SessionID = out.Session.ID
		state.Session = out.Session
		return out, nil
	}
}

// NewEntityExtractorNode runs the keyword extractor over the raw user
// message and merges the findings into the session's entity set.
func NewEntityExtractorNode(ex *nlu.Extractor) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.TurnContext) (*model.TurnContext, error) {
		ents, signals := ex.Extract(in.Query, in.Session.Entities)
		in.Session.Entities = ents
		in.Signals = signals

		logx.Debug().
			Str("session_id", in.Session.ID).
			Str("location", ents.Location).
			Int64("budget", ents.Budget).
			Str("property_type", ents.PropertyType).
			Bool("objection", signals.Objection).
			Bool("acceptance", signals.Acceptance).
			Msg("entities extracted")
		return in, nil
	})
}

// NewPhaseResolverNode advances the phase machine for this turn.
func NewPhaseResolverNode(m *phase.Machine) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.TurnContext) (*model.TurnContext, error) {
		next := m.Next(in.Session, in.Signals)
		m.Apply(in.Session, next)
		observability.TurnsTotal.WithLabelValues(in.Session.Phase.String()).Inc()
		return in, nil
	})
}

// NewRetrievalCondition routes phases that present properties through the
// knowledge retriever; everything else goes straight to prompt composition.
func NewRetrievalCondition() func(context.Context, *model.TurnContext) (string, error) {
	return func(ctx context.Context, in *model.TurnContext) (string, error) {
		if in.Session.Phase.NeedsRetrieval() {
			return NodeKnowledgeRetriever, nil
		}
		return NodePromptComposer, nil
	}
}

// NewKnowledgeRetrieverNode attaches the matching property rows.
func NewKnowledgeRetrieverNode(f *knowledge.Filter) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.TurnContext) (*model.TurnContext, error) {
		in.Rows = f.Match(in.Session.Entities)
		logx.Debug().
			Str("session_id", in.Session.ID).
			Str("phase", in.Session.Phase.String()).
			Int("rows", len(in.Rows)).
			Msg("knowledge retrieved")
		return in, nil
	})
}

// NewPromptComposerNode renders the phase prompt plus history window.
func NewPromptComposerNode(c *prompts.Composer) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *model.TurnContext) ([]*schema.Message, error) {
		return c.Compose(ctx, in)
	})
}

// NewGeneratorNode calls the text generator under a per-call timeout. A
// failed or timed-out call never fails the turn: the node logs the wrapped
// error, flags the state, and serves the canned reply for the active phase.
func NewGeneratorNode(gen generate.TextGenerator, timeout time.Duration, modelName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
		callCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		out, err := gen.Generate(callCtx, input)
		if err == nil && (out == nil || strings.TrimSpace(out.Content) == "") {
			err = fmt.Errorf("generator returned empty reply")
		}
		if err != nil {
			appErr := errx.WrapGeneration(err)
			observability.GeneratorFailures.Inc()

			var ph model.Phase
			stateErr := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
				state.FellBack = true
				if state.Session != nil {
					ph = state.Session.Phase
				}
				return nil
			})
			if stateErr != nil {
				logx.Error().Err(stateErr).Msg("failed to access state after generator failure")
			}
			logx.Error().Err(appErr).Str("phase", ph.String()).Msg("generator failed, serving canned reply")
			return schema.AssistantMessage(prompts.FallbackReply(ph), nil), nil
		}

		logUsageCost(out, modelName)
		return out, nil
	})
}

// NewGeneratorPostHandler persists the turn outcome. Persistence errors are
// logged but never surface to the caller: the reply is already composed.
func NewGeneratorPostHandler(mgr *sessions.Manager) func(context.Context, *schema.Message, *model.TurnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.TurnState) (*schema.Message, error) {
		if out == nil || state.Session == nil {
			return out, nil
		}
		if err := mgr.CompleteTurn(ctx, state.Session, out.Content); err != nil {
			logx.Error().
				Err(err).
				Str("session_id", state.SessionID).
				Msg("failed to persist turn outcome")
		}
		return out, nil
	}
}

// logUsageCost computes and logs token usage cost when pricing is enabled,
// mirroring the usage_cost Extra payload downstream consumers expect.
func logUsageCost(out *schema.Message, modelName string) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
		"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
		"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}
	logx.Debug().
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}
