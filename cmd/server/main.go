package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cognovo/differential/agent"
	"github.com/cognovo/differential/api"
	"github.com/cognovo/differential/config"
	"github.com/cognovo/differential/core"
	"github.com/cognovo/differential/engine"
	"github.com/cognovo/differential/logging"
	"github.com/cognovo/differential/model"
	"github.com/cognovo/differential/model/anthropic"
	"github.com/cognovo/differential/model/openai"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

func main() {
	if err := config.Load(); err != nil {
		os.Exit(1)
	}

	logCfg := logging.DefaultLoggerConfig()
	logCfg.Level = logging.ParseLevel(config.LogLevel())
	logCfg.Format = config.LogFormat()
	logCfg.Component = "server"
	logger := logging.NewLogger(logCfg)

	roster, err := buildRoster()
	if err != nil {
		logger.Error("failed to build agent roster: %v", err)
		os.Exit(1)
	}

	eng, err := engine.New(
		engine.WithConfig(config.EngineConfig()),
		engine.WithAgents(roster...),
		engine.WithLogger(logger.WithComponent("engine")),
	)
	if err != nil {
		logger.Error("failed to build engine: %v", err)
		os.Exit(1)
	}

	app := api.NewApp(eng,
		api.WithLogger(logger.WithComponent("api")),
		api.WithRateLimit(config.RateLimitRPS(), config.RateLimitBurst()),
	)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting addr=%s backend=%s", addr, config.AgentBackend())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed: %v", err)
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}

// buildRoster assembles the agent roster for the configured backend. The
// heuristic roster needs no credentials; model backends wrap each persona
// around the provider client.
func buildRoster() ([]core.Agent, error) {
	switch config.AgentBackend() {
	case "anthropic":
		client := anthropicsdk.NewClient(anthropicoption.WithAPIKey(config.AnthropicAPIKey()))
		return modelRoster(anthropic.NewModelFromClient(&client)), nil
	case "openai":
		client := openaisdk.NewClient(openaioption.WithAPIKey(config.OpenAIAPIKey()))
		return modelRoster(openai.NewModelFromClient(&client)), nil
	default:
		return agent.DefaultRoster(), nil
	}
}

// modelRoster builds the standard five-persona roster on top of one model.
func modelRoster(m model.Model) []core.Agent {
	personas := []agent.Persona{
		{
			Name:         "structural-analyst",
			Role:         "analyst",
			Description:  "Decomposes the problem into structural components",
			SystemPrompt: "You decompose problems into their structural components and name each part precisely.",
			Temperature:  0.3,
		},
		{
			Name:         "pattern-matcher",
			Role:         "analyst",
			Description:  "Maps the problem onto known solution patterns",
			SystemPrompt: "You recognize recurring engineering patterns and map problems onto them.",
			Temperature:  0.5,
		},
		{
			Name:         "skeptic",
			Role:         "critic",
			Description:  "Questions unsupported claims and surfaces hidden assumptions",
			SystemPrompt: "You are a rigorous skeptic. Question every unsupported claim and surface hidden assumptions.",
			Temperature:  0.7,
		},
		{
			Name:         "synthesizer",
			Role:         core.RoleIntegrator,
			Description:  "Reconciles competing hypotheses into a coherent view",
			SystemPrompt: "You reconcile competing hypotheses into the narrowest claim that survives all objections.",
			Temperature:  0.4,
		},
		{
			Name:         "implementation-strategist",
			Role:         "planner",
			Description:  "Converts hypotheses into actionable first steps",
			SystemPrompt: "You convert hypotheses into concrete first steps. Attach an Action line to each hypothesis.",
			Temperature:  0.4,
		},
	}

	roster := make([]core.Agent, 0, len(personas))
	for _, p := range personas {
		roster = append(roster, agent.NewModelAgent(m, p))
	}
	return roster
}
