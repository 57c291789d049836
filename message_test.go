package talk2mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleConstants(t *testing.T) {
	assert.Equal(t, Role("user"), RoleUser)
	assert.Equal(t, Role("assistant"), RoleAssistant)
	assert.Equal(t, Role("system"), RoleSystem)
}

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("What is 45 + 44?")
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "What is 45 + 44?", msg.Content)
}

func TestUsageAdd(t *testing.T) {
	total := Usage{InputTokens: 10, OutputTokens: 5}.Add(Usage{InputTokens: 3, OutputTokens: 7})
	assert.Equal(t, Usage{InputTokens: 13, OutputTokens: 12}, total)
}
