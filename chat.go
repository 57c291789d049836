package talk2mcp

import "context"

// ChatProvider sends a conversation to a model and returns its reply.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}
