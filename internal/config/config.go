package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAnalyzerDebounce = 500 * time.Millisecond

// Config collects the environment-driven settings of the API process.
type Config struct {
	Port             int
	LogLevel         string
	RedisAddr        string
	LLMAPIURL        string
	LLMAPIKey        string
	LLMModel         string
	AnalyzerDebounce time.Duration
	CORSOrigins      []string
}

// Load reads the configuration from the environment. Database settings stay
// in the database package, which validates them itself.
func Load() *Config {
	cfg := &Config{
		Port:             envInt("PORT", 8080),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		LLMAPIURL:        os.Getenv("LLM_API_URL"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		AnalyzerDebounce: envDuration("ANALYZER_DEBOUNCE_MS", defaultAnalyzerDebounce),
	}

	if cfg.LLMModel == "" {
		cfg.LLMModel = "llama-3.1-8b-instant"
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.CORSOrigins = append(cfg.CORSOrigins, strings.TrimSpace(origin))
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	return cfg
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	ms := envInt(key, -1)
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
