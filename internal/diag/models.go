package diag

import "time"

// Session represents one /ws/asr connection.
type Session struct {
	ID       string     `json:"id"`
	L1       string     `json:"l1"`
	StartedAt time.Time `json:"started_at"`
	EndedAt  *time.Time `json:"ended_at,omitempty"`
	RunCount int        `json:"run_count,omitempty"`
}

// Run represents one utterance turn: ASR finalize through coach compose.
type Run struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	Reply      string    `json:"reply,omitempty"`
	Status     string    `json:"status"`
	SpanCount  int       `json:"span_count,omitempty"`
}

// Span represents one pipeline stage within a run (asr_finalize,
// coach_compose).
type Span struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs float64   `json:"duration_ms"`
	Input      string    `json:"input,omitempty"`
	Output     string    `json:"output,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}
