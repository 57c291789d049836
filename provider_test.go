package talk2mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for _, name := range []string{"anthropic", "openai", "google", "gollm"} {
		t.Run(name, func(t *testing.T) {
			p, err := ParseProvider(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.String())
		})
	}

	t.Run("rejects unknown", func(t *testing.T) {
		_, err := ParseProvider("vertex")
		assert.ErrorContains(t, err, "unknown provider")
	})
}
