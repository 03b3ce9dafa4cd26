// Package config loads server configuration from flat environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cognovo/differential/engine"
	"github.com/joho/godotenv"
)

// Load reads the .env file specified by DIFFERENTIAL_ENV (or .env by
// default), then loads the corresponding .secret sidecar if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("DIFFERENTIAL_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are not an error; env vars may be set directly.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// AgentBackend returns the configured agent backend.
// Defaults to "heuristic" if not set.
// Valid values: heuristic, anthropic, openai
func AgentBackend() string {
	b := os.Getenv("AGENT_BACKEND")
	if b == "" {
		return "heuristic"
	}
	return b
}

// LogLevel returns the configured log level string (debug, info, warn,
// error). Defaults to "info".
func LogLevel() string {
	l := os.Getenv("LOG_LEVEL")
	if l == "" {
		return "info"
	}
	return l
}

// LogFormat returns "json" or "text". Defaults to "json".
func LogFormat() string {
	f := os.Getenv("LOG_FORMAT")
	if f == "" {
		return "json"
	}
	return f
}

// RateLimitRPS returns the per-client requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the per-client burst allowance.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

func intEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func floatEnv(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

// EngineConfig assembles the engine tuning from env vars, falling back to
// the engine defaults for anything unset.
func EngineConfig() engine.Config {
	cfg := engine.DefaultConfig
	cfg.MaxRounds = intEnv("MAX_ROUNDS", cfg.MaxRounds)
	cfg.TopK = intEnv("TOP_K", cfg.TopK)
	cfg.ConvergenceThreshold = floatEnv("CONVERGENCE_THRESHOLD", cfg.ConvergenceThreshold)
	cfg.MinRoundChallenges = intEnv("MIN_ROUND_CHALLENGES", cfg.MinRoundChallenges)
	cfg.StabilizationFloor = floatEnv("STABILIZATION_FLOOR", cfg.StabilizationFloor)
	cfg.ChallengePenalty = floatEnv("CHALLENGE_PENALTY", cfg.ChallengePenalty)
	cfg.RefineBoost = floatEnv("REFINE_BOOST", cfg.RefineBoost)
	if secs := intEnv("AGENT_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.AgentTimeout = time.Duration(secs) * time.Second
	}
	return cfg
}
