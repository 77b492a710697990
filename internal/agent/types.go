package agent

// Message is one entry in an Anthropic Messages API conversation
type Message struct {
	Role    string
	Content string
}

// Tool describes a tool exposed to the model
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolUse is a structured tool invocation returned by the model
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// UsageStats tracks token consumption for an API call
type UsageStats struct {
	InputTokens  int
	OutputTokens int
}
