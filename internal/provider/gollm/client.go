// Package gollm provides a [talk2mcp.ChatProvider] over teilomillet/gollm,
// which reaches ollama, groq, mistral and the other backends gollm supports
// through one adapter.
package gollm

import (
	"context"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/teilomillet/gollm"
)

// GenerateFunc produces a completion for one prompt.
type GenerateFunc func(ctx context.Context, prompt *gollm.Prompt) (string, error)

// Client adapts a gollm LLM to ai.ChatProvider.
type Client struct {
	backend  string
	generate GenerateFunc
}

// ClientOption configures the gollm client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model       string
	maxTokens   int
	temperature float64
	extra       []gollm.ConfigOption
}

// WithModel sets the model.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithMaxTokens sets the default max tokens.
func WithMaxTokens(n int) ClientOption {
	return func(c *clientConfig) {
		c.maxTokens = n
	}
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) ClientOption {
	return func(c *clientConfig) {
		c.extra = append(c.extra, opts...)
	}
}

// New creates a client for a gollm backend such as "ollama" or "groq".
// If apiKey is empty, gollm reads it from its own environment variables.
func New(backend, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		maxTokens:   1024,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(backend),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.model != "" {
		gollmOpts = append(gollmOpts, gollm.SetModel(cfg.model))
	}
	if apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extra...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for backend %s: %w", backend, err)
	}
	return NewFromLLM(backend, llm), nil
}

// NewFromLLM wraps an existing gollm LLM.
func NewFromLLM(backend string, llm gollm.LLM) *Client {
	return NewFromFunc(backend, func(ctx context.Context, prompt *gollm.Prompt) (string, error) {
		return llm.Generate(ctx, prompt)
	})
}

// NewFromFunc wraps a generate function.
func NewFromFunc(backend string, fn GenerateFunc) *Client {
	return &Client{backend: backend, generate: fn}
}

// Chat joins the user messages into one prompt; system messages become the
// system prompt. gollm returns no usage or finish reason.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)

	var system, user []string
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case ai.RoleSystem:
			system = append(system, msg.Content)
		case ai.RoleAssistant:
			user = append(user, "[Assistant]: "+msg.Content)
		default:
			user = append(user, msg.Content)
		}
	}
	if len(user) == 0 {
		return nil, ai.ErrEmptyPrompt
	}

	var promptOpts []gollm.PromptOption
	if len(system) > 0 {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.Join(system, "\n"), gollm.CacheTypeEphemeral))
	}
	if options.MaxTokens > 0 {
		promptOpts = append(promptOpts, gollm.WithMaxLength(options.MaxTokens))
	}

	text, err := c.generate(ctx, gollm.NewPrompt(strings.Join(user, "\n"), promptOpts...))
	if err != nil {
		return nil, wrapError(err)
	}
	return &ai.Response{Content: text}, nil
}

// wrapError classifies gollm errors by message, since gollm does not expose
// status codes.
func wrapError(err error) error {
	msg := strings.ToLower(err.Error())
	code := 0
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		code = 429
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		code = 401
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden"):
		code = 403
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		code = 404
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") || strings.Contains(msg, "503") || strings.Contains(msg, "internal server"):
		code = 500
	default:
		return err
	}
	return ai.NewStatusError(err.Error(), code, 0, err)
}

// Backend returns the gollm provider name.
func (c *Client) Backend() string { return c.backend }
