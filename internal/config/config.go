package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the ingestion server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Buffer    BufferConfig    `koanf:"buffer"`
	AI        AIConfig        `koanf:"ai"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port     int    `koanf:"port"`
	Env      string `koanf:"env"`
	LogLevel string `koanf:"log_level"`
	// WebhookTokenHash is a bcrypt hash; when set, POST /webhook/error
	// requires a matching bearer token.
	WebhookTokenHash string `koanf:"webhook_token_hash"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrationsDir   string        `koanf:"migrations_dir"`
}

// RedisConfig is optional; without a URL the recent-errors buffer lives in memory.
type RedisConfig struct {
	URL string `koanf:"url"`
}

type BufferConfig struct {
	Capacity int `koanf:"capacity"`
}

type AIConfig struct {
	Provider         string          `koanf:"provider"`
	InferenceTimeout time.Duration   `koanf:"inference_timeout"`
	OpenAI           OpenAIConfig    `koanf:"openai"`
	VLLM             VLLMConfig      `koanf:"vllm"`
	Anthropic        AnthropicConfig `koanf:"anthropic"`
	Ollama           OllamaConfig    `koanf:"ollama"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type VLLMConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	ServiceName  string `koanf:"service_name"`
	Insecure     bool   `koanf:"insecure"`
}

var validProviders = map[string]bool{
	"openai":    true,
	"vllm":      true,
	"anthropic": true,
	"ollama":    true,
	"mock":      true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// envKeys maps the supported environment variables onto config keys.
// Anything not listed here is ignored.
var envKeys = map[string]string{
	"PORT":                        "server.port",
	"APP_ENV":                     "server.env",
	"LOG_LEVEL":                   "server.log_level",
	"SERVER_WEBHOOK_TOKEN_HASH":   "server.webhook_token_hash",
	"DATABASE_URL":                "database.url",
	"DATABASE_MAX_OPEN_CONNS":     "database.max_open_conns",
	"DATABASE_MAX_IDLE_CONNS":     "database.max_idle_conns",
	"DATABASE_CONN_MAX_LIFETIME":  "database.conn_max_lifetime",
	"DATABASE_MIGRATIONS_DIR":     "database.migrations_dir",
	"REDIS_URL":                   "redis.url",
	"BUFFER_CAPACITY":             "buffer.capacity",
	"AI_PROVIDER":                 "ai.provider",
	"AI_INFERENCE_TIMEOUT":        "ai.inference_timeout",
	"OPENAI_API_KEY":              "ai.openai.api_key",
	"OPENAI_MODEL":                "ai.openai.model",
	"OPENAI_BASE_URL":             "ai.openai.base_url",
	"VLLM_BASE_URL":               "ai.vllm.base_url",
	"VLLM_MODEL":                  "ai.vllm.model",
	"ANTHROPIC_API_KEY":           "ai.anthropic.api_key",
	"ANTHROPIC_MODEL":             "ai.anthropic.model",
	"OLLAMA_BASE_URL":             "ai.ollama.base_url",
	"OLLAMA_MODEL":                "ai.ollama.model",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "telemetry.otlp_endpoint",
	"OTEL_SERVICE_NAME":           "telemetry.service_name",
	"OTEL_EXPORTER_OTLP_INSECURE": "telemetry.insecure",
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8000,
			Env:      "development",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			MigrationsDir:   "migrations",
		},
		Buffer: BufferConfig{Capacity: 100},
		AI: AIConfig{
			Provider:         "openai",
			InferenceTimeout: 60 * time.Second,
			OpenAI:           OpenAIConfig{Model: "gpt-4.1-mini"},
			VLLM:             VLLMConfig{BaseURL: "http://localhost:8001/v1"},
			Anthropic:        AnthropicConfig{Model: "claude-sonnet-4-5-20250929"},
			Ollama:           OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
		},
		Telemetry: TelemetryConfig{ServiceName: "langchain-error"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
// Returns a descriptive error if any required value is missing or invalid.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey translates an environment variable name to a config key. Returning
// "" tells koanf to skip the variable.
func envKey(name string) string {
	return envKeys[name]
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !validLogLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Server.LogLevel)
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}
	if c.Buffer.Capacity <= 0 {
		return fmt.Errorf("BUFFER_CAPACITY must be positive, got %d", c.Buffer.Capacity)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, vllm, anthropic, ollama, mock; got %q", c.AI.Provider)
	}
	if c.AI.InferenceTimeout <= 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT must be positive")
	}

	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "anthropic" && c.AI.Anthropic.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_PROVIDER is anthropic")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}

	return nil
}
