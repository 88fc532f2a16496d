// Package config loads bridge configuration from the environment.
package config

import (
	"os"
	"strconv"
)

// Config holds everything the bridge reads from the environment at startup.
type Config struct {
	Port        string
	Environment string

	// Provider credentials and endpoints
	GeminiAPIKey   string
	OpenAIAPIKey   string
	GeminiChatURL  string // OpenAI-compatible endpoint used by the fallback chat client
	OpenAIChatURL  string
	DefaultModel   string

	// Content validation minimums, applied uniformly per modality
	MinTextContent       int
	MinMultimodalContent int

	// Browser-automation agent
	AgentURL     string // websocket control channel, e.g. ws://localhost:8931/ws
	JiraBaseURL  string // used to synthesize browse URLs for mock issues
	ScreenshotDir string

	// Optional infrastructure
	DatabaseURL string
	RedisURL    string

	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads configuration from the environment. Missing optional values get
// sensible defaults; missing provider keys are allowed (the orchestrator
// reports a configuration error when such a provider is requested).
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		GeminiAPIKey:  cleanKey(os.Getenv("GEMINI_API_KEY")),
		OpenAIAPIKey:  cleanKey(os.Getenv("OPENAI_API_KEY")),
		GeminiChatURL: getEnv("GEMINI_CHAT_URL", "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"),
		OpenAIChatURL: getEnv("OPENAI_CHAT_URL", "https://api.openai.com/v1/chat/completions"),
		DefaultModel:  getEnv("DEFAULT_MODEL", "gemini-2.5-pro"),

		MinTextContent:       getEnvInt("MIN_TEXT_CONTENT", 10),
		MinMultimodalContent: getEnvInt("MIN_MULTIMODAL_CONTENT", 50),

		AgentURL:      getEnv("AGENT_URL", "ws://localhost:8931/ws"),
		JiraBaseURL:   getEnv("JIRA_BASE_URL", "https://example.atlassian.net"),
		ScreenshotDir: getEnv("SCREENSHOT_DIR", "./screenshots"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 30),
	}
}

// cleanKey filters out common placeholder values left in .env files.
func cleanKey(key string) string {
	switch key {
	case "", "your-api-key-here", "changeme", "placeholder":
		return ""
	}
	return key
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
