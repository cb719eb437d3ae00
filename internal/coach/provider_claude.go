package coach

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeClient is the ChatProvider backed by the Anthropic Messages API
// (spec §4.5, §9). Constructed only when LLM_PROVIDER=claude; falls back
// to DummyProvider with a warning if ANTHROPIC_API_KEY is unset.
type ClaudeClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClaudeClient returns a ClaudeClient, or (nil, false) if apiKey is
// empty — the caller should then register DummyProvider instead.
func NewClaudeClient(apiKey string, maxTokens int) (*ClaudeClient, bool) {
	if apiKey == "" {
		slog.Warn("coach: ANTHROPIC_API_KEY not set, downgrading to dummy provider")
		return nil, false
	}
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &ClaudeClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.ModelClaude3_5HaikuLatest,
		maxTokens: int64(maxTokens),
	}, true
}

func (c *ClaudeClient) Name() string { return "claude" }

func (c *ClaudeClient) Chat(ctx context.Context, system, user, hint string) (string, error) {
	userText := user
	if hint != "" {
		userText = user + "\n\n[detected error tags: " + hint + "]"
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: claude: %v", ErrProvider, err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", fmt.Errorf("%w: claude: empty response", ErrProvider)
	}
	return resp.Content[0].Text, nil
}
