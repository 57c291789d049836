package openai

// ChatModel represents an OpenAI chat model.
type ChatModel string

const (
	GPT41     ChatModel = "gpt-4.1"
	GPT41Mini ChatModel = "gpt-4.1-mini"
	GPT4o     ChatModel = "gpt-4o"
	GPT4oMini ChatModel = "gpt-4o-mini"

	// DefaultChatModel is the recommended default model.
	DefaultChatModel ChatModel = GPT41Mini
)

// String returns the model identifier.
func (m ChatModel) String() string { return string(m) }
