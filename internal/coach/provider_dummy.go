package coach

import "context"

// DummyProvider echoes the user text with a short prefix. It is always
// available and is registered as the default provider (spec §9).
type DummyProvider struct{}

func (DummyProvider) Name() string { return "dummy" }

func (DummyProvider) Chat(ctx context.Context, system, user, hint string) (string, error) {
	return "Разбрах: " + user, nil
}
