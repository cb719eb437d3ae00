// Package asrengine implements the ASR Engine (spec §4.4): incremental
// transcription of a buffered PCM utterance, with streaming partials and
// an authoritative finalization, a transcription cache, a silence-
// hallucination retry policy, and a construction-time warm-up pass.
//
// The spec treats "the underlying speech model" as a library interface
// specified only at its boundary; Backend is that interface, with
// HTTPBackend as the default implementation, and Engine wraps a Backend
// with the cache, retry and warm-up policy (grounded on the teacher's
// internal/pipeline/asr.go multipart-upload-to-whisper.cpp pattern).
package asrengine

import (
	"context"
	"crypto/md5"
	"math"
	"sync/atomic"
	"time"

	"github.com/ilyannn/bgvoicecoach/internal/metrics"
)

// Options are the recognized ASR parameters (spec §4.4).
type Options struct {
	BeamPartial       int
	BeamFinal         int
	Temperature       float64
	NoSpeechThreshold float64
	Language          string
	InitialPrompt     string
}

// DefaultOptions returns the spec-mandated defaults.
func DefaultOptions() Options {
	return Options{
		BeamPartial:       1,
		BeamFinal:         3,
		Temperature:       0.0,
		NoSpeechThreshold: 0.6,
		Language:          "bg",
	}
}

// FinalTranscript is the authoritative output of finalization.
type FinalTranscript struct {
	Text        string
	Confidence  float64
	DurationMs  float64
	Cached      bool
	EngineError bool
}

// Backend is the underlying speech model's interface — whatever runs the
// actual transcription, out of scope per spec §1.
type Backend interface {
	// Transcribe returns a transcript, the model's mean segment
	// log-probability, and its no-speech probability for the given
	// samples (16kHz mono PCM16).
	Transcribe(ctx context.Context, samples []int16, opts Options) (text string, avgLogprob, noSpeechProb float64, err error)
}

// Engine is the ASR Engine's public surface.
type Engine struct {
	backend   Backend
	opts      Options
	cache     *transcriptionCache
	available atomic.Bool
}

// New constructs an Engine and performs the construction-time warm-up pass
// on 500ms of silence, discarding the transcript, to eliminate first-use
// latency spikes. Whether the warm-up call itself succeeded is recorded
// and exposed via Available, for /health's ASR liveness check.
func New(backend Backend, opts Options) *Engine {
	e := &Engine{backend: backend, opts: opts, cache: newTranscriptionCache(100)}
	silence := make([]int16, 8000) // 500ms @ 16kHz
	warmupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _, _, err := e.backend.Transcribe(warmupCtx, silence, e.opts)
	e.available.Store(err == nil)
	return e
}

// Available reports whether the ASR backend answered the construction-time
// warm-up call successfully (spec §8 scenario 6: model-load failure).
func (e *Engine) Available() bool {
	return e.available.Load()
}

// Partial produces a best-effort, disposable transcript from the growing
// buffer while speech is ongoing.
func (e *Engine) Partial(ctx context.Context, samples []int16) (string, error) {
	opts := e.opts
	opts.BeamFinal = opts.BeamPartial
	text, _, _, err := e.backend.Transcribe(ctx, samples, opts)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Finalize produces the single authoritative FinalTranscript once
// EndOfUtterance fires. Confidence is exp(avgLogprob) clamped to [0,1].
// On underlying failure, reports empty text, confidence 0, and
// EngineError=true without propagating — the session is not killed.
func (e *Engine) Finalize(ctx context.Context, samples []int16) FinalTranscript {
	start := time.Now()
	key := fingerprint(samples)
	if cached, ok := e.cache.get(key); ok {
		cached.Cached = true
		metrics.CacheHits.WithLabelValues("asr").Inc()
		return cached
	}

	ft := e.finalizeWithRetry(ctx, samples)
	ft.DurationMs = float64(time.Since(start).Milliseconds())

	if !ft.EngineError {
		e.cache.put(key, ft)
	}
	return ft
}

func (e *Engine) finalizeWithRetry(ctx context.Context, samples []int16) FinalTranscript {
	text, avgLogprob, noSpeechProb, err := e.backend.Transcribe(ctx, samples, e.opts)
	if err != nil {
		return FinalTranscript{EngineError: true}
	}

	if text == "" && noSpeechProb > 0.8 {
		retryOpts := e.opts
		retryOpts.NoSpeechThreshold = 0.3
		retryOpts.Temperature = 0.2
		retryText, retryLogprob, _, retryErr := e.backend.Transcribe(ctx, samples, retryOpts)
		if retryErr != nil {
			return FinalTranscript{EngineError: true}
		}
		text = retryText
		avgLogprob = retryLogprob
	}

	return FinalTranscript{Text: text, Confidence: confidenceFromLogprob(avgLogprob)}
}

func confidenceFromLogprob(avgLogprob float64) float64 {
	c := expClamp(avgLogprob)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func expClamp(avgLogprob float64) float64 {
	return math.Exp(avgLogprob)
}

func fingerprint(samples []int16) [16]byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}
	return md5.Sum(buf)
}
