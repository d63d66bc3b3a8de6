package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aqarat-core-poc/server/internal/agent/generate"
	"github.com/aqarat-core-poc/server/internal/agent/graph"
	"github.com/aqarat-core-poc/server/internal/agent/knowledge"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/prompts"
	"github.com/aqarat-core-poc/server/internal/agent/repo"
	"github.com/aqarat-core-poc/server/internal/agent/rules"
	"github.com/aqarat-core-poc/server/internal/core"
	"github.com/aqarat-core-poc/server/internal/observability"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
)

// AppConfig is the CLI variant of the server config: no Redis, no HTTP.
// Sessions live in process memory for the lifetime of the REPL.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`

	Generator    model.GeneratorConfig
	Conversation model.ConversationConfig
	Filter       model.FilterConfig
	Knowledge    model.KnowledgeConfig
	Prompt       model.PromptConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		logx.Info().Msg("No .env file found, using environment variables")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})
	observability.Register()

	table, err := knowledge.Load(ctx, cfg.Knowledge.PropertiesPath)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.Knowledge.PropertiesPath).Msg("Failed to load property table")
	}

	ruleset, err := rules.Load(cfg.Knowledge.RulesPath)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.Knowledge.RulesPath).Msg("Failed to load rules file")
	}

	gen, err := generate.New(ctx, generate.Config{
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiBaseURL: cfg.GeminiBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		Generator:     cfg.Generator,
	})
	if err != nil {
		logx.Fatal().Err(err).Str("provider", cfg.Generator.Provider).Msg("Failed to build generator")
	}

	runner, err := graph.BuildDialogueGraph(ctx, graph.Config{
		Generator:    gen,
		SessionRepo:  repo.NewMemorySessionRepository(),
		Knowledge:    table,
		Rules:        ruleset,
		Conversation: cfg.Conversation,
		GeneratorCfg: cfg.Generator,
		Filter:       cfg.Filter,
		Prompt:       cfg.Prompt,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build dialogue graph")
	}

	sessionID := uuid.NewString()
	fmt.Println(prompts.WelcomeMessage)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "/quit" || query == "/exit" {
			break
		}

		answer, err := runner.Invoke(ctx, model.TurnInput{SessionID: sessionID, Query: query})
		if err != nil {
			logx.Error().Err(err).Msg("turn failed")
			continue
		}
		fmt.Println(answer)
	}
}
