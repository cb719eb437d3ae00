// Package session implements the Session Orchestrator (spec §4.7): the
// per-connection state machine that drives VAD framing, streaming ASR
// partials, authoritative finalization, and the coach pipeline, while
// keeping background work bounded and cancellable.
//
// Grounded on the teacher's internal/ws + internal/pipeline turn
// structure (one coordinating call per inbound frame, a background
// goroutine for the heavier ASR/LLM work, a single event-sender callback)
// but recomposed around this spec's VAD -> ASR -> (detector + coach)
// shape instead of the teacher's LLM-streamed-into-TTS shape.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ilyannn/bgvoicecoach/internal/asrengine"
	"github.com/ilyannn/bgvoicecoach/internal/coach"
	"github.com/ilyannn/bgvoicecoach/internal/contentstore"
	"github.com/ilyannn/bgvoicecoach/internal/diag"
	"github.com/ilyannn/bgvoicecoach/internal/grammar"
	"github.com/ilyannn/bgvoicecoach/internal/vadgate"
)

// State is the session's position in the spec §4.7 state machine.
type State int

const (
	Connected State = iota
	Listening
	Transcribing
	Coaching
	Closed
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Listening:
		return "listening"
	case Transcribing:
		return "transcribing"
	case Coaching:
		return "coaching"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	partialThrottle     = 250 * time.Millisecond
	perUtteranceTimeout = 30 * time.Second
)

// OutMessage is the JSON shape emitted to the transport layer (spec §6):
// partial | final | coach | error. Confidence is a pointer so a partial
// message's unknown confidence serializes as null while a final message's
// legitimate 0.0 still comes across as a number.
type OutMessage struct {
	Type            string               `json:"type"`
	Text            string               `json:"text,omitempty"`
	Confidence      *float64             `json:"confidence"`
	DurationMs      float64              `json:"duration_ms,omitempty"`
	ReplyBG         string               `json:"reply_bg,omitempty"`
	Corrections     []grammar.Correction `json:"corrections,omitempty"`
	ContrastiveNote string               `json:"contrastive_note,omitempty"`
	Drills          []contentstore.Drill `json:"drills,omitempty"`
	Code            string               `json:"code,omitempty"`
	Message         string               `json:"message,omitempty"`
}

// Sender delivers an outbound message to the transport layer. Called from
// whichever goroutine produced the message; the transport layer is
// responsible for serializing concurrent writes to the connection.
type Sender func(OutMessage)

// Session owns one connection's worth of state: the VAD gate, the ASR
// engine handle, and the coach composer, plus the goroutine bookkeeping
// needed to keep at most one background task in flight at a time.
type Session struct {
	ID string

	gate     *vadgate.Gate
	asr      *asrengine.Engine
	composer *coach.Composer
	send     Sender
	rec      *diag.Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	l1          string
	bgCancel    context.CancelFunc // cancels whatever background task is in flight
	wg          sync.WaitGroup
	lastPartial string
	lastPartialAt time.Time
	closed      bool
}

// New constructs a Session bound to one connection. defaultL1 seeds the
// L1 used for coaching until SetL1 changes it. rec may be nil: a nil
// *diag.Recorder is a no-op, so diagnostics stay fully optional.
func New(id string, gate *vadgate.Gate, asr *asrengine.Engine, composer *coach.Composer, defaultL1 string, send Sender, rec *diag.Recorder) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	rec.SessionStarted(id, defaultL1)
	return &Session{
		ID:       id,
		gate:     gate,
		asr:      asr,
		composer: composer,
		send:     send,
		rec:      rec,
		ctx:      ctx,
		cancel:   cancel,
		state:    Connected,
		l1:       defaultL1,
	}
}

// SetL1 changes the session's contrastive-grammar language, effective on
// the next coach pass.
func (s *Session) SetL1(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l1 = code
}

func (s *Session) currentL1() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l1
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProcessFrame feeds one 20ms/640-byte PCM frame into the VAD gate and
// reacts to whatever events it produces.
func (s *Session) ProcessFrame(frame []byte) error {
	events, err := s.gate.Process(frame)
	if err != nil {
		return err
	}

	for _, ev := range events {
		switch ev.Kind {
		case vadgate.FrameAccepted:
			s.setState(Listening)
			s.maybeRunPartial()
		case vadgate.EndOfUtterance, vadgate.Timeout:
			s.runFinal(ev.Buffer)
		}
	}
	return nil
}

// Flush forces end-of-utterance on whatever the VAD gate has buffered,
// for a clean session close.
func (s *Session) Flush() {
	if ev := s.gate.Flush(); ev != nil {
		s.runFinal(ev.Buffer)
	}
}

// Close cancels all in-flight work and waits for background goroutines
// to finish before returning.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.setState(Closed)
	s.rec.SessionEnded(s.ID)
}

// maybeRunPartial launches a best-effort partial transcription of the
// in-progress buffer, throttled to one attempt per partialThrottle and
// debounced against the previous partial's normalized text (spec §4.7).
func (s *Session) maybeRunPartial() {
	buf := s.gate.CurrentBuffer()
	if len(buf) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if time.Since(s.lastPartialAt) < partialThrottle {
		s.mu.Unlock()
		return
	}
	s.lastPartialAt = time.Now()
	bgCtx, cancel := context.WithCancel(s.ctx)
	s.bgCancel = cancel
	s.mu.Unlock()

	s.setState(Transcribing)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		text, err := s.asr.Partial(bgCtx, buf)
		if err != nil || bgCtx.Err() != nil {
			return
		}
		normalized := strings.Join(strings.Fields(text), " ")
		if normalized == "" {
			return
		}

		s.mu.Lock()
		if normalized == s.lastPartial {
			s.mu.Unlock()
			return
		}
		s.lastPartial = normalized
		s.mu.Unlock()

		s.send(OutMessage{Type: "partial", Text: text})
	}()
}

// runFinal cancels any pending partial pass, then runs the authoritative
// ASR finalization and coach pipeline in one background task — the two
// never run concurrently for the same session, and a pending partial is
// discarded the moment finalization begins (spec §4.7).
func (s *Session) runFinal(buf []int16) {
	if len(buf) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.bgCancel != nil {
		s.bgCancel()
	}
	bgCtx, cancel := context.WithTimeout(s.ctx, perUtteranceTimeout)
	s.bgCancel = cancel
	s.lastPartial = ""
	s.mu.Unlock()

	s.setState(Transcribing)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runFinalizeAndCoach(bgCtx, buf)
	}()
}

func (s *Session) runFinalizeAndCoach(ctx context.Context, buf []int16) {
	runID := s.rec.StartRun(s.ID)
	runStart := time.Now()

	asrStart := time.Now()
	ft := s.asr.Finalize(ctx, buf)
	if ctx.Err() != nil {
		s.rec.RecordSpan(runID, "asr_finalize", asrStart, msSince(asrStart), "", "", "cancelled", "")
		s.rec.EndRun(runID, msSince(runStart), "", "", "cancelled")
		return
	}
	if ft.EngineError {
		slog.Warn("session: asr engine error", "session_id", s.ID)
		s.rec.RecordSpan(runID, "asr_finalize", asrStart, msSince(asrStart), "", "", "error", "engine_error")
		s.rec.EndRun(runID, msSince(runStart), "", "", "error")
		// spec §4.4/§7: an ASR upstream failure surfaces as an empty final,
		// not an error frame — the session keeps listening.
		s.send(OutMessage{Type: "final", Text: "", Confidence: ptr(0.0), DurationMs: ft.DurationMs})
		s.setState(Listening)
		return
	}
	s.rec.RecordSpan(runID, "asr_finalize", asrStart, msSince(asrStart), "", ft.Text, "ok", "")

	s.send(OutMessage{Type: "final", Text: ft.Text, Confidence: ptr(ft.Confidence), DurationMs: ft.DurationMs})

	s.setState(Coaching)
	coachStart := time.Now()
	resp, ok := s.composer.Compose(ctx, ft.Text, s.currentL1())
	if !ok {
		// Session closed mid-call: no coach message is emitted.
		s.rec.RecordSpan(runID, "coach_compose", coachStart, msSince(coachStart), ft.Text, "", "cancelled", "")
		s.rec.EndRun(runID, msSince(runStart), ft.Text, "", "cancelled")
		s.setState(Listening)
		return
	}
	s.rec.RecordSpan(runID, "coach_compose", coachStart, msSince(coachStart), ft.Text, resp.ReplyBG, "ok", "")
	s.rec.EndRun(runID, msSince(runStart), ft.Text, resp.ReplyBG, "ok")

	s.send(OutMessage{
		Type:            "coach",
		ReplyBG:         resp.ReplyBG,
		Corrections:     resp.Corrections,
		ContrastiveNote: resp.ContrastiveNote,
		Drills:          resp.Drills,
	})
	s.setState(Listening)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

func ptr(f float64) *float64 { return &f }
