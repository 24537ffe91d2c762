package intent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Client using the Gemini API in function-calling
// mode. ModeAny forces the model to emit at least one call from the offered
// schemas; multiple calls per transcription are expected and valid.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed intent client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Propose sends the transcription to the model and returns its function
// calls verbatim. The caller owns the timeout via ctx.
func (c *GeminiClient) Propose(ctx context.Context, transcription, businessContext string) ([]ToolCall, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(businessContext), genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: actionDeclarations()},
		},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(transcription), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	calls := resp.FunctionCalls()
	out := make([]ToolCall, 0, len(calls))
	for _, fc := range calls {
		out = append(out, ToolCall{Name: fc.Name, Args: fc.Args})
	}
	return out, nil
}

func systemPrompt(businessContext string) string {
	prompt := `You turn a service-business owner's dictated voice note into concrete follow-up actions.
Call one function per action. A single note often contains several actions; emit all of them.
Use the owner's wording for message text, cleaned up for sending. Pick the timing the owner implied; default to immediate.`
	if businessContext != "" {
		prompt += "\n\nBusiness context: " + businessContext
	}
	return prompt
}
