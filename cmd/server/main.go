package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/aqarat-core-poc/server/internal/agent/generate"
	"github.com/aqarat-core-poc/server/internal/agent/graph"
	"github.com/aqarat-core-poc/server/internal/agent/knowledge"
	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/repo"
	"github.com/aqarat-core-poc/server/internal/agent/rules"
	"github.com/aqarat-core-poc/server/internal/core"
	"github.com/aqarat-core-poc/server/internal/observability"
	"github.com/aqarat-core-poc/server/internal/server"
	logx "github.com/aqarat-core-poc/server/pkg/logger"
	pkgredis "github.com/aqarat-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the chat server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM providers
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`

	// Agent configs
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

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Err(err).Str("ttl", cfg.Conversation.TTL).Msg("Invalid CONVERSATION_TTL")
	}

	table, err := knowledge.Load(ctx, cfg.Knowledge.PropertiesPath)
	if err != nil {
		logx.Fatal().Err(err).Str("path", cfg.Knowledge.PropertiesPath).Msg("Failed to load property table")
	}
	logx.Info().Int("rows", table.Len()).Msg("Property table loaded")

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

	sessionRepo := repo.NewRedisSessionRepository(rdb, ttl)

	runner, err := graph.BuildDialogueGraph(ctx, graph.Config{
		Generator:    gen,
		SessionRepo:  sessionRepo,
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

	handler := server.NewHandler(runner, sessionRepo)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logx.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-runCtx.Done()
	stop()

	logx.Info().Msg("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logx.Info().Msg("Server stopped")
}
