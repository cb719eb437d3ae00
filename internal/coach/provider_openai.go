package coach

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient is the ChatProvider backed by the OpenAI chat completions
// API (spec §4.5, §9). Constructed only when LLM_PROVIDER=openai; falls
// back to DummyProvider with a warning if OPENAI_API_KEY is unset.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient returns an OpenAIClient, or (nil, false) if apiKey is
// empty — the caller should then register DummyProvider instead.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, bool) {
	if apiKey == "" {
		slog.Warn("coach: OPENAI_API_KEY not set, downgrading to dummy provider")
		return nil, false
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, true
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Chat(ctx context.Context, system, user, hint string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}
	if hint != "" {
		messages = append(messages, openai.SystemMessage("Detected error tags: "+hint))
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: openai: empty response", ErrProvider)
	}
	return resp.Choices[0].Message.Content, nil
}
