package talk2mcp

import "fmt"

// Provider identifies a model backend.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
	// ProviderGollm routes through gollm, which fronts ollama, groq,
	// mistral and other vendors behind one API.
	ProviderGollm Provider = "gollm"
)

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(name); p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderGollm:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider: %q (must be anthropic, openai, google, or gollm)", name)
	}
}
