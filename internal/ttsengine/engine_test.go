package ttsengine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ilyannn/bgvoicecoach/internal/apperr"
)

func TestSynthesizeRejectsOverlongText(t *testing.T) {
	e := New("/bin/false", 1)
	_, err := e.Synthesize(context.Background(), strings.Repeat("а", 2001), "natural")
	if !errors.Is(err, apperr.ErrInputValidation) {
		t.Errorf("err = %v, want ErrInputValidation", err)
	}
	if !errors.Is(err, ErrTextTooLong) {
		t.Errorf("err = %v, want ErrTextTooLong", err)
	}
}

func TestSynthesizeFailureYieldsEmptyWAVNoError(t *testing.T) {
	// /bin/false always exits non-zero: the synthesizer call fails.
	e := New("/bin/false", 1)
	res, err := e.Synthesize(context.Background(), "Здравей", "natural")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.SynthesisError {
		t.Error("expected SynthesisError=true")
	}
	if len(res.WAV) != 44 {
		t.Errorf("len(WAV) = %d, want 44 (header only)", len(res.WAV))
	}
}

func TestResolveProfileUnknownFallsBackToNatural(t *testing.T) {
	p := ResolveProfile("bogus")
	if p.Name != "natural" {
		t.Errorf("Name = %q, want natural", p.Name)
	}
}

func TestResolveProfileKnownNames(t *testing.T) {
	cases := map[string][2]int{
		"standard":   {170, 50},
		"natural":    {175, 50},
		"slow":       {120, 50},
		"expressive": {185, 60},
		"clear":      {160, 55},
	}
	for name, want := range cases {
		p := ResolveProfile(name)
		if p.Rate != want[0] || p.Pitch != want[1] {
			t.Errorf("%s: Rate/Pitch = %d/%d, want %d/%d", name, p.Rate, p.Pitch, want[0], want[1])
		}
	}
}

func TestProfilesReturnsAllFive(t *testing.T) {
	if len(Profiles()) != 5 {
		t.Errorf("len(Profiles()) = %d, want 5", len(Profiles()))
	}
}
