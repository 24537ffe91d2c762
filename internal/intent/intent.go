// Package intent extracts structured business actions from a free-text
// transcription via a function-calling language model. The model is treated
// as an untrusted structured-input source: callers validate every returned
// call before acting on it.
package intent

import "context"

// ToolCall is one function call emitted by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Client proposes zero or more tool calls for a transcription. A nil error
// with zero calls means the model answered but found nothing actionable.
type Client interface {
	Propose(ctx context.Context, transcription, businessContext string) ([]ToolCall, error)
}
