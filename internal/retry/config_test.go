package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 4*time.Second, cfg.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.MaxDelay)
	assert.Equal(t, 25*time.Second, cfg.RateLimitCooldown)
}

func TestDisabled(t *testing.T) {
	assert.Equal(t, 1, Disabled().MaxAttempts)
}

func TestBackoffDelay(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	t.Run("uses configured schedule", func(t *testing.T) {
		assert.Equal(t, 100*time.Millisecond, backoffDelay(cfg, 0, nil))
		assert.Equal(t, 400*time.Millisecond, backoffDelay(cfg, 2, nil))
	})

	t.Run("honors larger retry-after", func(t *testing.T) {
		err := mockRetryAfter(500 * time.Millisecond)
		assert.Equal(t, 500*time.Millisecond, backoffDelay(cfg, 0, err))
	})

	t.Run("never exceeds ceiling", func(t *testing.T) {
		err := mockRetryAfter(time.Minute)
		assert.Equal(t, time.Second, backoffDelay(cfg, 0, err))
	})
}
