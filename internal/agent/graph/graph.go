package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/aqarat-core-poc/server/internal/agent/generate"
	"github.com/aqarat-core-poc/server/internal/agent/graph/nodes"
	"github.com/aqarat-core-poc/server/internal/agent/graph/observers"
	"github.com/aqarat-core-poc/server/internal/agent/graph/sessions"
	"github.com/aqarat-core-poc/server/internal/agent/knowledge"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/nlu"
	"github.com/aqarat-core-poc/server/internal/agent/phase"
	"github.com/aqarat-core-poc/server/internal/agent/prompts"
	"github.com/aqarat-core-poc/server/internal/agent/rules"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// Runner executes one dialogue turn end-to-end.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (string, error)
}

// Config holds everything needed to compose the full dialogue graph.
type Config struct {
	Generator    generate.TextGenerator
	SessionRepo  model.SessionRepository
	Knowledge    *knowledge.Table
	Rules        *rules.Ruleset
	ExtractRules []nlu.Rule

	Conversation model.ConversationConfig
	GeneratorCfg model.GeneratorConfig
	Filter       model.FilterConfig
	Prompt       model.PromptConfig
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *schema.Message]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (string, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

// BuildDialogueGraph wires extractor, phase machine, knowledge filter,
// prompt composer and generator into a compiled graph and returns a Runner.
//
// The flow is a straight pipeline with one branch: phases that present
// properties pass through the knowledge retriever first.
//
//	START -> SessionLoader -> EntityExtractor -> PhaseResolver
//	      -> [KnowledgeRetriever] -> PromptComposer -> Generator -> END
func BuildDialogueGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if cfg.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}
	if cfg.Knowledge == nil {
		return nil, fmt.Errorf("knowledge table is nil")
	}

	genTimeout, err := time.ParseDuration(cfg.GeneratorCfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("parse generator timeout: %w", err)
	}

	mgr := sessions.NewManager(cfg.SessionRepo, cfg.Conversation)
	extractor := nlu.NewExtractor(cfg.ExtractRules)
	machine := phase.NewMachine(cfg.Conversation)
	filter := knowledge.NewFilter(cfg.Knowledge, cfg.Filter)
	composer := prompts.NewComposer(cfg.Prompt, cfg.Filter, cfg.Conversation, cfg.Rules)

	g := compose.NewGraph[model.TurnInput, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
			return &model.TurnState{}
		}),
	)

	g.AddLambdaNode(nodes.NodeSessionLoader,
		nodes.NewSessionLoaderNode(mgr),
		compose.WithStatePostHandler(nodes.NewSessionLoaderPostHandler()),
	)
	g.AddLambdaNode(nodes.NodeEntityExtractor, nodes.NewEntityExtractorNode(extractor))
	g.AddLambdaNode(nodes.NodePhaseResolver, nodes.NewPhaseResolverNode(machine))
	g.AddLambdaNode(nodes.NodeKnowledgeRetriever, nodes.NewKnowledgeRetrieverNode(filter))
	g.AddLambdaNode(nodes.NodePromptComposer, nodes.NewPromptComposerNode(composer))
	g.AddLambdaNode(nodes.NodeGenerator,
		nodes.NewGeneratorNode(cfg.Generator, genTimeout, cfg.GeneratorCfg.Model),
		compose.WithStatePostHandler(nodes.NewGeneratorPostHandler(mgr)),
	)

	edges := [][2]string{
		{compose.START, nodes.NodeSessionLoader},
		{nodes.NodeSessionLoader, nodes.NodeEntityExtractor},
		{nodes.NodeEntityExtractor, nodes.NodePhaseResolver},
		{nodes.NodeKnowledgeRetriever, nodes.NodePromptComposer},
		{nodes.NodePromptComposer, nodes.NodeGenerator},
		{nodes.NodeGenerator, compose.END},
	}
	for _, edge := range edges {
		g.AddEdge(edge[0], edge[1])
	}

	retrievalBranch := compose.NewGraphBranch(
		nodes.NewRetrievalCondition(),
		map[string]bool{
			nodes.NodeKnowledgeRetriever: true,
			nodes.NodePromptComposer:     true,
		},
	)
	if err := g.AddBranch(nodes.NodePhaseResolver, retrievalBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding retrieval branch")
		return nil, fmt.Errorf("error adding retrieval branch: %w", err)
	}

	runnable, err := g.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Dialogue graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}
