package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replays one step per Chat call. The last step repeats.
type scriptedProvider struct {
	mu       sync.Mutex
	steps    []func(ctx context.Context) (*ai.Response, error)
	calls    int
	prompts  []string
	lastOpts *ai.Options
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	p.mu.Lock()
	i := p.calls
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	p.calls++
	p.prompts = append(p.prompts, messages[len(messages)-1].Content)
	p.lastOpts = ai.ApplyOptions(opts...)
	step := p.steps[i]
	p.mu.Unlock()
	return step(ctx)
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func reply(text string) func(context.Context) (*ai.Response, error) {
	return func(context.Context) (*ai.Response, error) {
		return &ai.Response{Content: text}, nil
	}
}

func fail(err error) func(context.Context) (*ai.Response, error) {
	return func(context.Context) (*ai.Response, error) {
		return nil, err
	}
}

func hang() func(context.Context) (*ai.Response, error) {
	return func(ctx context.Context) (*ai.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func fastRetry() *ai.RetryConfig {
	return &ai.RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Millisecond,
		MaxDelay:          2 * time.Millisecond,
		Multiplier:        2,
		RateLimitCooldown: 5 * time.Millisecond,
	}
}

func drain(ch chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func eventTypes(ch chan Event) []EventType {
	var types []EventType
	for _, e := range drain(ch) {
		types = append(types, e.Type)
	}
	return types
}

func TestGenerate(t *testing.T) {
	t.Run("returns reply text", func(t *testing.T) {
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){reply("FINAL_ANSWER: [89]")}}
		c := NewWithProvider(p, Config{Retry: fastRetry()})

		text, err := c.Generate(context.Background(), "What is 45 + 44?")
		require.NoError(t, err)
		assert.Equal(t, "FINAL_ANSWER: [89]", text)
		assert.Equal(t, 1, p.Calls())
		assert.Equal(t, []string{"What is 45 + 44?"}, p.prompts)
	})

	t.Run("passes configured options", func(t *testing.T) {
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){reply("ok")}}
		temp := 0.1
		c := NewWithProvider(p, Config{Model: "m-1", MaxTokens: 256, Temperature: &temp})

		_, err := c.Generate(context.Background(), "hi")
		require.NoError(t, err)
		require.NotNil(t, p.lastOpts)
		assert.Equal(t, "m-1", p.lastOpts.Model)
		assert.Equal(t, 256, p.lastOpts.MaxTokens)
		require.NotNil(t, p.lastOpts.Temperature)
		assert.InDelta(t, 0.1, *p.lastOpts.Temperature, 1e-9)
	})

	t.Run("accumulates token usage", func(t *testing.T) {
		withUsage := func(in, out int) func(context.Context) (*ai.Response, error) {
			return func(context.Context) (*ai.Response, error) {
				return &ai.Response{Content: "ok", Usage: ai.Usage{InputTokens: in, OutputTokens: out}}, nil
			}
		}
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){withUsage(100, 10), withUsage(120, 8)}}
		c := NewWithProvider(p, Config{})

		for range 2 {
			_, err := c.Generate(context.Background(), "next step?")
			require.NoError(t, err)
		}
		assert.Equal(t, ai.Usage{InputTokens: 220, OutputTokens: 18}, c.Usage())
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){reply("ok")}}
		c := NewWithProvider(p, Config{})

		_, err := c.Generate(context.Background(), "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, ai.ErrEmptyPrompt)
		assert.Equal(t, 0, p.Calls())
	})
}

func TestGenerateRetries(t *testing.T) {
	t.Run("timeout then success", func(t *testing.T) {
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){hang(), reply("ok")}}
		events := make(chan Event, 16)
		c := NewWithProvider(p, Config{Timeout: 20 * time.Millisecond, Retry: fastRetry(), Events: events})

		text, err := c.Generate(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 2, p.Calls())
		assert.Equal(t, []EventType{
			EventAttemptStart, EventAttemptFailed, EventRetrying,
			EventAttemptStart, EventSuccess,
		}, eventTypes(events))
	})

	t.Run("timeout is classified transient", func(t *testing.T) {
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){hang()}}
		c := NewWithProvider(p, Config{Timeout: 5 * time.Millisecond, Retry: fastRetry()})

		_, err := c.Generate(context.Background(), "hi")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, KindExhausted, genErr.Kind)
		assert.Equal(t, KindTimeout, genErr.Last)
		assert.Equal(t, 3, genErr.Attempts)
	})

	t.Run("exhausts after three transient failures", func(t *testing.T) {
		cause := ai.NewTransientError("overloaded", 503, nil)
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){fail(cause)}}
		events := make(chan Event, 16)
		c := NewWithProvider(p, Config{Retry: fastRetry(), Events: events})

		_, err := c.Generate(context.Background(), "hi")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, KindExhausted, genErr.Kind)
		assert.Equal(t, 3, genErr.Attempts)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 3, p.Calls())

		types := eventTypes(events)
		require.NotEmpty(t, types)
		assert.Equal(t, EventExhausted, types[len(types)-1])
	})

	t.Run("rate limit waits the cooldown", func(t *testing.T) {
		limited := ai.NewStatusError("slow down", 429, 0, nil)
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){fail(limited), reply("ok")}}
		events := make(chan Event, 16)
		c := NewWithProvider(p, Config{Retry: fastRetry(), Events: events})

		start := time.Now()
		text, err := c.Generate(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

		var cooldown *Event
		for _, e := range drain(events) {
			if e.Type == EventCooldown {
				cooldown = &e
			}
		}
		require.NotNil(t, cooldown)
		assert.Equal(t, ClassRateLimited, cooldown.Class)
		assert.Equal(t, 5*time.Millisecond, cooldown.Delay)
	})

	t.Run("exhausted by rate limits reports the last kind", func(t *testing.T) {
		limited := ai.NewStatusError("slow down", 429, 0, nil)
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){fail(limited)}}
		c := NewWithProvider(p, Config{Retry: fastRetry()})

		_, err := c.Generate(context.Background(), "hi")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, KindExhausted, genErr.Kind)
		assert.Equal(t, KindRateLimited, genErr.Last)
		assert.Contains(t, genErr.Error(), "after 3 attempts")
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		denied := ai.NewPermanentError("invalid api key", 401, nil)
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){fail(denied), reply("never")}}
		c := NewWithProvider(p, Config{Retry: fastRetry()})

		_, err := c.Generate(context.Background(), "hi")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Equal(t, KindFault, genErr.Kind)
		assert.Equal(t, 1, genErr.Attempts)
		assert.ErrorIs(t, err, denied)
		assert.Equal(t, 1, p.Calls())
	})

	t.Run("parent cancellation is returned as is", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){
			func(context.Context) (*ai.Response, error) {
				cancel()
				return nil, errors.New("connection reset")
			},
		}}
		c := NewWithProvider(p, Config{Retry: fastRetry()})

		_, err := c.Generate(ctx, "hi")
		require.ErrorIs(t, err, context.Canceled)
		var genErr *GenerationError
		assert.False(t, errors.As(err, &genErr))
		assert.Equal(t, 1, p.Calls())
	})
}

func TestGeneratePacing(t *testing.T) {
	p := &scriptedProvider{steps: []func(context.Context) (*ai.Response, error){reply("ok")}}
	c := NewWithProvider(p, Config{RequestsPerMinute: 6000})

	start := time.Now()
	for range 3 {
		_, err := c.Generate(context.Background(), "hi")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an api key", func(t *testing.T) {
		for _, p := range []ai.Provider{ai.ProviderAnthropic, ai.ProviderOpenAI, ai.ProviderGoogle} {
			_, err := New(ctx, Config{Provider: p, Model: "x"})
			var missing *ErrMissingAPIKey
			require.ErrorAs(t, err, &missing, p.String())
			assert.Equal(t, p.String(), missing.Provider)
		}
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := New(ctx, Config{Provider: "acme", APIKey: "k"})
		assert.ErrorContains(t, err, "unsupported provider")
	})

	t.Run("builds a keyed provider", func(t *testing.T) {
		c, err := New(ctx, Config{Provider: ai.ProviderOpenAI, APIKey: "test-key"})
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestErrMissingAPIKey(t *testing.T) {
	t.Run("Error with model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "anthropic", Model: "claude-sonnet"}
		assert.Equal(t, `no API key configured for anthropic (required by model "claude-sonnet")`, err.Error())
	})

	t.Run("Error without model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "openai"}
		assert.Equal(t, "no API key configured for openai", err.Error())
	})
}
