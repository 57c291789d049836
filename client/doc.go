// Package client turns a chat provider into a prompt-in, text-out
// generator with bounded retries.
//
// A Client owns the whole retry policy. Provider adapters have their SDK
// retry loops disabled, so every attempt the model sees is one the client
// counted.
//
// # Basic Usage
//
//	c, err := client.New(ctx, client.Config{
//	    Provider: ai.ProviderAnthropic,
//	    APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	text, err := c.Generate(ctx, "What is 45 + 44?")
//
// # Attempts
//
// Each attempt runs under its own deadline (Config.Timeout, default 10s).
// A deadline hit counts as a transient failure. Transient failures back off
// exponentially between Retry.InitialDelay and Retry.MaxDelay. Rate-limit
// signals wait Retry.RateLimitCooldown, or the server's Retry-After when
// that is longer, without advancing the backoff exponent. Permanent errors
// stop immediately.
//
// When every attempt fails, Generate returns a *GenerationError of kind
// KindExhausted wrapping the last cause:
//
//	var genErr *client.GenerationError
//	if errors.As(err, &genErr) && genErr.Kind == client.KindExhausted {
//	    log.Printf("gave up after %d attempts", genErr.Attempts)
//	}
//
// # Pacing
//
// Config.RequestsPerMinute spaces attempts evenly through a token bucket,
// which keeps a busy loop under a provider's quota before it gets a 429.
//
// # Events
//
// Config.Events receives the retry events of every Generate call. Sends
// never block; a full channel drops events.
package client
