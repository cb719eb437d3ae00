package diag

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// maxFieldLen caps transcript/reply/input/output lengths stored in a span
	// so a long utterance can't bloat the diagnostics database.
	maxFieldLen = 500

	// channelBuffer is how many messages can queue before the drain goroutine
	// falls behind and Record* calls start blocking the caller.
	channelBuffer = 64
)

type msg struct {
	kind string // "session_create", "session_end", "run_create", "run_update", "span"
	sessionID string
	l1        string
	runID     string
	durationMs float64
	transcript string
	reply      string
	status     string
	span       Span
}

// Recorder writes diagnostic data asynchronously via a buffered channel.
// All methods are nil-safe: a nil *Recorder is a true no-op, so callers
// never need to branch on whether DIAG_DSN was set.
type Recorder struct {
	store *Store
	ch    chan msg
	done  chan struct{}
}

// NewRecorder starts a recorder backed by store. Callers must call Close
// to flush pending writes and stop the drain goroutine.
func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store: store,
		ch:    make(chan msg, channelBuffer),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *Recorder) drain() {
	defer close(r.done)
	for m := range r.ch {
		if err := r.dispatch(m); err != nil {
			slog.Warn("diag: write failed", "kind", m.kind, "error", err)
		}
	}
}

func (r *Recorder) dispatch(m msg) error {
	switch m.kind {
	case "session_create":
		return r.store.CreateSession(m.sessionID, m.l1)
	case "session_end":
		return r.store.EndSession(m.sessionID)
	case "run_create":
		return r.store.CreateRun(m.runID, m.sessionID)
	case "run_update":
		return r.store.UpdateRun(m.runID, m.durationMs, m.transcript, m.reply, m.status)
	case "span":
		return r.store.CreateSpan(m.span)
	}
	return nil
}

// SessionStarted records a new /ws/asr connection.
func (r *Recorder) SessionStarted(sessionID, l1 string) {
	if r == nil {
		return
	}
	r.ch <- msg{kind: "session_create", sessionID: sessionID, l1: l1}
}

// SessionEnded stamps the session's end time.
func (r *Recorder) SessionEnded(sessionID string) {
	if r == nil {
		return
	}
	r.ch <- msg{kind: "session_end", sessionID: sessionID}
}

// StartRun begins a new run (one utterance turn) and returns its ID.
func (r *Recorder) StartRun(sessionID string) string {
	if r == nil {
		return ""
	}
	id := uuid.NewString()
	r.ch <- msg{kind: "run_create", runID: id, sessionID: sessionID}
	return id
}

// EndRun finalizes a run with its outcome.
func (r *Recorder) EndRun(runID string, durationMs float64, transcript, reply, status string) {
	if r == nil {
		return
	}
	r.ch <- msg{
		kind:       "run_update",
		runID:      runID,
		durationMs: durationMs,
		transcript: truncate(transcript, maxFieldLen),
		reply:      truncate(reply, maxFieldLen),
		status:     status,
	}
}

// RecordSpan records one completed pipeline stage (e.g. "asr_finalize",
// "coach_compose") within a run.
func (r *Recorder) RecordSpan(runID, name string, startedAt time.Time, durationMs float64, input, output, status, errMsg string) {
	if r == nil {
		return
	}
	r.ch <- msg{
		kind: "span",
		span: Span{
			ID:         uuid.NewString(),
			RunID:      runID,
			Name:       name,
			StartedAt:  startedAt,
			DurationMs: durationMs,
			Input:      truncate(input, maxFieldLen),
			Output:     truncate(output, maxFieldLen),
			Status:     status,
			Error:      errMsg,
		},
	}
}

// Close drains pending writes and stops the background goroutine.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	close(r.ch)
	<-r.done
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
