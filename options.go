package talk2mcp

// Options are the per-request settings the agent's client passes to a
// ChatProvider. Zero values leave the provider default in place.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Option sets one field of Options.
type Option func(*Options)

// WithModel overrides the provider's configured model for one request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens caps the reply length. Non-positive values are ignored.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature, clamped to [0, 2].
func WithTemperature(t float64) Option {
	return func(o *Options) {
		t = min(max(t, 0), 2)
		o.Temperature = &t
	}
}

// ApplyOptions folds opts into a fresh Options. Later options win and nil
// entries are skipped.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
