package vadgate

import "testing"

func speechFrame() []byte {
	b := make([]byte, FrameBytes)
	for i := 0; i < FrameSamples; i++ {
		v := int16(10000)
		b[2*i] = byte(v)
		b[2*i+1] = byte(v >> 8)
	}
	return b
}

func silenceFrame() []byte {
	return make([]byte, FrameBytes)
}

func TestProcessRejectsBadFrameSize(t *testing.T) {
	g := New(DefaultConfig())
	if _, err := g.Process(make([]byte, FrameBytes-2)); err != ErrBadFrame {
		t.Fatalf("expected ErrBadFrame, got %v", err)
	}
	if _, err := g.Process(make([]byte, FrameBytes+2)); err != ErrBadFrame {
		t.Fatalf("expected ErrBadFrame, got %v", err)
	}
}

func TestEndOfUtteranceAfterTailSilence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TailMs = 40 // 2 frames
	cfg.MinSpeechMs = 20
	g := New(cfg)

	var gotEnd bool
	for i := 0; i < 5; i++ {
		evs, err := g.Process(speechFrame())
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range evs {
			if e.Kind == EndOfUtterance {
				t.Fatal("unexpected EndOfUtterance during speech")
			}
		}
	}
	for i := 0; i < 3; i++ {
		evs, err := g.Process(silenceFrame())
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range evs {
			if e.Kind == EndOfUtterance {
				gotEnd = true
				if len(e.Buffer) == 0 {
					t.Error("expected non-empty buffer")
				}
			}
		}
	}
	if !gotEnd {
		t.Fatal("expected EndOfUtterance after tail silence")
	}
}

func TestMinSpeechMsDiscardsShortUtterance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TailMs = 20
	cfg.MinSpeechMs = 400 // needs 20 speech frames; we give 1
	g := New(cfg)

	g.Process(speechFrame())
	evs, _ := g.Process(silenceFrame())
	for _, e := range evs {
		if e.Kind == EndOfUtterance {
			t.Fatal("expected short utterance to be discarded silently")
		}
	}
}

func TestIdleDropsNonSpeechFrames(t *testing.T) {
	g := New(DefaultConfig())
	evs, err := g.Process(silenceFrame())
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 0 {
		t.Errorf("expected no events for idle silence, got %v", evs)
	}
}

func TestTimeoutAtMaxUtterance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUtteranceMs = 60 // 3 frames
	cfg.TailMs = 1000000    // never trigger tail silence
	g := New(cfg)

	var gotTimeout bool
	for i := 0; i < 4; i++ {
		evs, err := g.Process(speechFrame())
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range evs {
			if e.Kind == Timeout {
				gotTimeout = true
			}
		}
	}
	if !gotTimeout {
		t.Fatal("expected Timeout at max utterance duration")
	}
}

func TestFlushOnNonEmptyBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSpeechMs = 20
	g := New(cfg)
	g.Process(speechFrame())
	ev := g.Flush()
	if ev == nil || ev.Kind != EndOfUtterance {
		t.Fatalf("expected EndOfUtterance from Flush, got %v", ev)
	}
}

func TestFlushOnIdleIsNil(t *testing.T) {
	g := New(DefaultConfig())
	if ev := g.Flush(); ev != nil {
		t.Fatalf("expected nil Flush on idle gate, got %v", ev)
	}
}
