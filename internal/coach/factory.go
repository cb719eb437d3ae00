package coach

import "github.com/ilyannn/bgvoicecoach/internal/config"

// NewProvider selects the ChatProvider named by cfg.LLMProvider, downgrading
// to DummyProvider with a warning if the matching credential is absent
// (spec §4.5, §9).
func NewProvider(cfg *config.Config) ChatProvider {
	switch cfg.LLMProvider {
	case "openai":
		if client, ok := NewOpenAIClient(cfg.OpenAIAPIKey, ""); ok {
			return client
		}
	case "claude":
		if client, ok := NewClaudeClient(cfg.AnthropicAPIKey, cfg.LLMMaxTokens); ok {
			return client
		}
	}
	return DummyProvider{}
}
