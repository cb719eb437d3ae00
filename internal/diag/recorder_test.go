package diag

import (
	"strings"
	"testing"
	"time"
)

func TestNilRecorderIsNoOp(t *testing.T) {
	var rec *Recorder
	rec.SessionStarted("s1", "PL")
	rec.SessionEnded("s1")
	if id := rec.StartRun("s1"); id != "" {
		t.Errorf("StartRun on nil recorder = %q, want empty", id)
	}
	rec.EndRun("r1", 1.0, "text", "reply", "ok")
	rec.RecordSpan("r1", "asr_finalize", time.Now(), 1.0, "in", "out", "ok", "")
	rec.Close() // must not panic
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxFieldLen+50)
	got := truncate(long, maxFieldLen)
	if len(got) != maxFieldLen {
		t.Errorf("truncate length = %d, want %d", len(got), maxFieldLen)
	}

	short := "hello"
	if got := truncate(short, maxFieldLen); got != short {
		t.Errorf("truncate(%q) = %q, want unchanged", short, got)
	}
}
