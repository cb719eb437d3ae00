package coach

import (
	"context"
	"errors"
	"testing"

	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
)

type fakeProvider struct {
	name  string
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Chat(ctx context.Context, system, user, hint string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func loadComposerStore(t *testing.T) *contentstore.Store {
	t.Helper()
	store, err := contentstore.Load("../../content")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func TestComposeHappyPathUsesProviderReply(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", reply: "Добре, да пробваме отново."}
	c := New(store, det, provider)

	resp, ok := c.Compose(context.Background(), "Искам поръчвам кафе.", "PL")
	if !ok {
		t.Fatal("Compose returned ok=false")
	}
	if resp.ReplyBG != provider.reply {
		t.Errorf("ReplyBG = %q, want provider reply", resp.ReplyBG)
	}
	if len(resp.Corrections) == 0 {
		t.Fatal("expected at least one correction")
	}
	if resp.ContrastiveNote == "" {
		t.Error("expected a contrastive note for PL")
	}
	if len(resp.Drills) == 0 || len(resp.Drills) > maxDrillsPerCorrection {
		t.Errorf("Drills = %v, want 1..%d", resp.Drills, maxDrillsPerCorrection)
	}
}

func TestComposeFallsBackOnProviderError(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", err: errors.New("boom")}
	c := New(store, det, provider)

	resp, ok := c.Compose(context.Background(), "Искам поръчвам кафе.", "PL")
	if !ok {
		t.Fatal("Compose returned ok=false")
	}
	if resp.ReplyBG == "" {
		t.Fatal("expected non-empty fallback reply")
	}
	if resp.ReplyBG[:len("Разбрах.")] != "Разбрах." {
		t.Errorf("ReplyBG = %q, want fallback prefix", resp.ReplyBG)
	}
}

func TestComposeFallsBackOnNonBulgarianReply(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", reply: "Got it, keep practicing!"}
	c := New(store, det, provider)

	resp, _ := c.Compose(context.Background(), "Искам поръчвам кафе.", "PL")
	if resp.ReplyBG == provider.reply {
		t.Error("expected non-Bulgarian reply to be replaced by the local fallback")
	}
}

func TestComposeCachesByTranscriptAndL1(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", reply: "Добре."}
	c := New(store, det, provider)

	first, _ := c.Compose(context.Background(), "Искам поръчвам кафе.", "PL")
	callsAfterFirst := provider.calls
	second, _ := c.Compose(context.Background(), "Искам поръчвам кафе.", "PL")

	if provider.calls != callsAfterFirst {
		t.Errorf("provider called again on cache hit: %d vs %d", provider.calls, callsAfterFirst)
	}
	if second.ReplyBG != first.ReplyBG {
		t.Errorf("cache hit mismatch: %q vs %q", second.ReplyBG, first.ReplyBG)
	}

	third, _ := c.Compose(context.Background(), "Искам поръчвам кафе.", "RU")
	if third.ContrastiveNote == first.ContrastiveNote {
		t.Error("expected a different L1 to produce a different contrastive note")
	}
}

func TestComposeEmptyTranscriptReturnsFixedReply(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", reply: "Добре."}
	c := New(store, det, provider)

	resp, ok := c.Compose(context.Background(), "   ", "PL")
	if !ok {
		t.Fatal("Compose returned ok=false")
	}
	if resp.ReplyBG != noHearReply {
		t.Errorf("ReplyBG = %q, want %q", resp.ReplyBG, noHearReply)
	}
	if len(resp.Corrections) != 0 {
		t.Errorf("Corrections = %v, want none", resp.Corrections)
	}
	if len(resp.Drills) != 0 {
		t.Errorf("Drills = %v, want none", resp.Drills)
	}
	if provider.calls != 0 {
		t.Errorf("provider.calls = %d, want 0 (no upstream call for empty transcript)", provider.calls)
	}
}

func TestComposeNoCorrectionsOmitsContrastiveNote(t *testing.T) {
	store := loadComposerStore(t)
	det := grammar.New(store)
	provider := &fakeProvider{name: "fake", reply: "Добре дошъл."}
	c := New(store, det, provider)

	resp, _ := c.Compose(context.Background(), "Здравей, как си?", "PL")
	if resp.ContrastiveNote != "" {
		t.Errorf("ContrastiveNote = %q, want empty with no corrections", resp.ContrastiveNote)
	}
}
