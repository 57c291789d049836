package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/client"
	"github.com/spetersoncode/talk2mcp/tool"
)

// DefaultServerCommand starts the reference tool server.
const DefaultServerCommand = "go run ./cmd/mcpserver"

// Config holds the configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string // debug, info, warn, error

	// Provider selection
	Provider     ai.Provider
	Model        string
	GollmBackend string

	// API Keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string
	GollmKey     string

	// Agent
	MaxIterations  int
	FaultThreshold int

	// Generation
	GenerateTimeout   time.Duration
	RateLimitCooldown time.Duration
	RequestsPerMinute int

	// Tool session
	ServerCommand string
	ServerURL     string
	SettleDelay   time.Duration

	// Report store
	RedisAddr string
	ReportTTL time.Duration

	// PlainOutput prints the report as raw markdown.
	PlainOutput bool
}

// LoadConfig loads configuration from environment variables. Callers apply
// flag overrides and then Validate.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() *Config {
	godotenv.Load() // Load .env file if present

	return &Config{
		Port:              getEnvOrDefault("TALK2MCP_PORT", "8080"),
		LogLevel:          getEnvOrDefault("TALK2MCP_LOG_LEVEL", "info"),
		Provider:          ai.Provider(getEnvOrDefault("TALK2MCP_PROVIDER", string(ai.ProviderGoogle))),
		Model:             os.Getenv("TALK2MCP_MODEL"),
		GollmBackend:      getEnvOrDefault("TALK2MCP_GOLLM_BACKEND", "ollama"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		GoogleKey:         os.Getenv("GOOGLE_API_KEY"),
		GollmKey:          os.Getenv("GOLLM_API_KEY"),
		MaxIterations:     getEnvIntOrDefault("TALK2MCP_MAX_ITERATIONS", agent.DefaultMaxIterations),
		FaultThreshold:    getEnvIntOrDefault("TALK2MCP_FAULT_THRESHOLD", agent.DefaultFaultThreshold),
		GenerateTimeout:   getEnvDurationOrDefault("TALK2MCP_GENERATE_TIMEOUT", client.DefaultTimeout),
		RateLimitCooldown: getEnvDurationOrDefault("TALK2MCP_RATE_LIMIT_COOLDOWN", ai.DefaultRetryConfig().RateLimitCooldown),
		RequestsPerMinute: getEnvIntOrDefault("TALK2MCP_REQUESTS_PER_MINUTE", 0),
		ServerCommand:     getEnvOrDefault("TALK2MCP_SERVER_COMMAND", DefaultServerCommand),
		ServerURL:         os.Getenv("TALK2MCP_SERVER_URL"),
		SettleDelay:       getEnvDurationOrDefault("TALK2MCP_SETTLE_DELAY", tool.DefaultSettleDelay),
		RedisAddr:         os.Getenv("TALK2MCP_REDIS_ADDR"),
		ReportTTL:         getEnvDurationOrDefault("TALK2MCP_REPORT_TTL", 0),
		PlainOutput:       getEnvBoolOrDefault("TALK2MCP_PLAIN_OUTPUT", false),
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if _, err := ai.ParseProvider(string(c.Provider)); err != nil {
		return fmt.Errorf("TALK2MCP_PROVIDER: %w", err)
	}

	switch c.Provider {
	case ai.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case ai.ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case ai.ProviderGoogle:
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	case ai.ProviderGollm:
		if c.GollmBackend == "" {
			return fmt.Errorf("TALK2MCP_GOLLM_BACKEND is required for gollm provider")
		}
	}

	if c.MaxIterations <= 0 {
		return fmt.Errorf("TALK2MCP_MAX_ITERATIONS must be positive, got %d", c.MaxIterations)
	}
	if c.FaultThreshold < 0 {
		return fmt.Errorf("TALK2MCP_FAULT_THRESHOLD must not be negative, got %d", c.FaultThreshold)
	}
	if c.ServerCommand == "" && c.ServerURL == "" {
		return fmt.Errorf("one of TALK2MCP_SERVER_COMMAND or TALK2MCP_SERVER_URL is required")
	}
	return nil
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ai.ProviderAnthropic:
		return c.AnthropicKey
	case ai.ProviderOpenAI:
		return c.OpenAIKey
	case ai.ProviderGoogle:
		return c.GoogleKey
	case ai.ProviderGollm:
		return c.GollmKey
	}
	return ""
}

// ClientConfig maps the configuration onto a generation client config.
func (c *Config) ClientConfig() client.Config {
	retry := ai.DefaultRetryConfig()
	retry.RateLimitCooldown = c.RateLimitCooldown
	return client.Config{
		Provider:          c.Provider,
		Model:             c.Model,
		APIKey:            c.APIKey(),
		GollmBackend:      c.GollmBackend,
		Timeout:           c.GenerateTimeout,
		Retry:             &retry,
		RequestsPerMinute: c.RequestsPerMinute,
	}
}

// serverCommand splits ServerCommand into a program and its arguments.
func (c *Config) serverCommand() (string, []string) {
	fields := strings.Fields(c.ServerCommand)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
