// Package coach implements the Coach Composer (spec §4.5): turns a final
// transcript into a complete CoachResponse by running the grammar
// detector, calling a pluggable chat provider, and attaching content-store
// lookups (drills, contrastive note), with a response cache and a
// deterministic local fallback when the provider is unavailable.
package coach

import (
	"context"
	"errors"
)

// ErrProvider is returned by a ChatProvider when the call fails or the
// provider is unavailable.
var ErrProvider = errors.New("coach: provider error")

// ChatProvider is the polymorphic chat capability (spec §4.5, §9): a
// small capability set, not an inheritance hierarchy. Variants: Dummy,
// OpenAIClient, ClaudeClient.
type ChatProvider interface {
	// Chat sends a system prompt, the user transcript, and a side-channel
	// hint (detected error tags) to the provider and returns its reply.
	Chat(ctx context.Context, system, user, hint string) (string, error)
	// Name identifies the provider for logging/metrics.
	Name() string
}

const systemPrompt = "You are a Bulgarian coach for a Slavic L1. Reply ONLY in Bulgarian. Be concise."
