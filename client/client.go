package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/spetersoncode/talk2mcp/internal/provider/anthropic"
	"github.com/spetersoncode/talk2mcp/internal/provider/gollm"
	"github.com/spetersoncode/talk2mcp/internal/provider/google"
	"github.com/spetersoncode/talk2mcp/internal/provider/openai"
	"github.com/spetersoncode/talk2mcp/internal/retry"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single generation attempt.
const DefaultTimeout = 10 * time.Second

// Config holds configuration for creating a Client.
type Config struct {
	// Provider selects the backend. Only New reads it.
	Provider ai.Provider

	// Model overrides the provider's default model.
	Model string

	// APIKey authenticates with the provider. The gollm provider treats it
	// as optional because local backends such as ollama need none.
	APIKey string

	// GollmBackend names the vendor gollm routes to (ollama, groq, ...).
	GollmBackend string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// Retry configures retry behavior. If nil, ai.DefaultRetryConfig is used.
	Retry *ai.RetryConfig

	// RequestsPerMinute paces attempts when positive.
	RequestsPerMinute int

	MaxTokens   int
	Temperature *float64

	// Events is an optional channel for receiving retry events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event

	Logger *slog.Logger
}

// Client generates text from a prompt through a chat provider.
// A Client is safe for concurrent use.
type Client struct {
	provider ai.ChatProvider
	name     string
	timeout  time.Duration
	retry    retry.Config
	limiter  *rate.Limiter
	events   chan<- Event
	logger   *slog.Logger
	chatOpts []ai.Option

	mu    sync.Mutex
	usage ai.Usage
}

// New creates a client for cfg.Provider.
func New(ctx context.Context, cfg Config) (*Client, error) {
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(p, cfg), nil
}

// NewWithProvider wraps an existing provider. cfg.Provider and the key
// fields are ignored apart from naming the provider in logs.
func NewWithProvider(p ai.ChatProvider, cfg Config) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		provider: p,
		name:     cfg.Provider.String(),
		timeout:  timeout,
		retry:    retryConfig,
		events:   cfg.Events,
		logger:   logger,
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	if cfg.Model != "" {
		c.chatOpts = append(c.chatOpts, ai.WithModel(cfg.Model))
	}
	if cfg.MaxTokens > 0 {
		c.chatOpts = append(c.chatOpts, ai.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		c.chatOpts = append(c.chatOpts, ai.WithTemperature(*cfg.Temperature))
	}
	return c
}

func newProvider(ctx context.Context, cfg Config) (ai.ChatProvider, error) {
	switch cfg.Provider {
	case ai.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, &ErrMissingAPIKey{Provider: "anthropic", Model: cfg.Model}
		}
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(anthropic.ChatModel(cfg.Model)))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.APIKey, opts...), nil

	case ai.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &ErrMissingAPIKey{Provider: "openai", Model: cfg.Model}
		}
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(openai.ChatModel(cfg.Model)))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, opts...), nil

	case ai.ProviderGoogle:
		if cfg.APIKey == "" {
			return nil, &ErrMissingAPIKey{Provider: "google", Model: cfg.Model}
		}
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(google.ChatModel(cfg.Model)))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(cfg.BaseURL))
		}
		return google.New(ctx, cfg.APIKey, opts...)

	case ai.ProviderGollm:
		var opts []gollm.ClientOption
		if cfg.Model != "" {
			opts = append(opts, gollm.WithModel(cfg.Model))
		}
		if cfg.MaxTokens > 0 {
			opts = append(opts, gollm.WithMaxTokens(cfg.MaxTokens))
		}
		return gollm.New(cfg.GollmBackend, cfg.APIKey, opts...)

	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
}

// Generate sends prompt as a single user message and returns the reply text.
//
// A cancelled ctx is returned as is. Every other failure is a
// *GenerationError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &GenerationError{Kind: KindFault, Last: KindFault, Err: ai.ErrEmptyPrompt}
	}
	messages := []ai.Message{ai.NewUserMessage(prompt)}

	attempts := 0
	text, err := retry.DoWithEvents(ctx, c.retry, c.events, func() (string, error) {
		attempts++
		return c.attempt(ctx, messages, attempts)
	})
	if err != nil {
		return "", wrapFailure(ctx, err, attempts)
	}
	return text, nil
}

func (c *Client) attempt(ctx context.Context, messages []ai.Message, n int) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.provider.Chat(actx, messages, c.chatOpts...)
	if err != nil {
		if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			err = newTimeoutError(err)
		}
		c.logger.Warn("generation attempt failed",
			"provider", c.name,
			"attempt", n,
			"kind", kindOf(err),
			"elapsed", time.Since(start),
			"error", err,
		)
		return "", err
	}

	c.mu.Lock()
	c.usage = c.usage.Add(resp.Usage)
	c.mu.Unlock()

	c.logger.Debug("generation attempt succeeded",
		"provider", c.name,
		"attempt", n,
		"elapsed", time.Since(start),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp.Content, nil
}

// Usage returns the tokens consumed by successful attempts so far.
func (c *Client) Usage() ai.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}
