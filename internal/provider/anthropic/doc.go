// Package anthropic provides an Anthropic Claude client implementing
// [talk2mcp.ChatProvider].
//
// The client sends one request per call and leaves retries to the caller:
// the SDK's own retry loop is disabled so rate-limit cooldowns are applied
// in one place.
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel(anthropic.ClaudeHaiku45),
//	)
//	resp, err := client.Chat(ctx, []talk2mcp.Message{talk2mcp.NewUserMessage(prompt)})
package anthropic
