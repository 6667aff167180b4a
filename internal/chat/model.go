package chat

import "strings"

// Default roster of OpenRouter models asked for ideas.
//
// | Model ID                              | Provider  |
// |---------------------------------------|-----------|
// | google/gemini-2.5-pro-preview-03-25   | Google    |
// | openai/o4-mini-high                   | OpenAI    |
// | openai/gpt-4.1                        | OpenAI    |
// | anthropic/claude-3.7-sonnet           | Anthropic |
// | deepseek/deepseek-chat-v3-0324        | DeepSeek  |
// | google/gemini-2.5-flash-preview       | Google    |
const (
	ModelGemini25ProPreview = "google/gemini-2.5-pro-preview-03-25"
	ModelO4MiniHigh         = "openai/o4-mini-high"
	ModelGPT41              = "openai/gpt-4.1"
	ModelClaude37Sonnet     = "anthropic/claude-3.7-sonnet"
	ModelDeepSeekChatV3     = "deepseek/deepseek-chat-v3-0324"
	ModelGemini25Flash      = "google/gemini-2.5-flash-preview"
)

// GeminiPrefix routes a roster entry to the Gemini API instead of
// OpenRouter, e.g. "gemini:gemini-2.5-flash".
const GeminiPrefix = "gemini:"

// DefaultRoster returns a fresh copy of the default model roster.
func DefaultRoster() []string {
	return []string{
		ModelGemini25ProPreview,
		ModelO4MiniHigh,
		ModelGPT41,
		ModelClaude37Sonnet,
		ModelDeepSeekChatV3,
		ModelGemini25Flash,
	}
}

// IsGemini reports whether model is served by the Gemini backend.
func IsGemini(model string) bool {
	return strings.HasPrefix(model, GeminiPrefix)
}

// GeminiModelName strips the routing prefix from a Gemini roster entry.
func GeminiModelName(model string) string {
	return strings.TrimPrefix(model, GeminiPrefix)
}
