package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator is the production Generator backed by the OpenAI chat
// completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator constructs a generator using the given API key and
// model name (e.g. "gpt-4o-mini").
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate sends the conversation and returns the first choice's content.
// Any transport or API failure is wrapped in ErrGenerate.
func (g *OpenAIGenerator) Generate(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("llm.OpenAIGenerator.Generate: %w: %v", ErrGenerate, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("llm.OpenAIGenerator.Generate: %w: empty completion", ErrGenerate)
	}

	return resp.Choices[0].Message.Content, nil
}

// compile-time check: OpenAIGenerator must satisfy Generator.
var _ Generator = (*OpenAIGenerator)(nil)
