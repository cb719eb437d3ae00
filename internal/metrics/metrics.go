// Package metrics exposes Prometheus gauges/counters/histograms for the
// server's ambient observability stack. Adapted from the teacher's
// internal/metrics/metrics.go, trimmed to the components this spec
// actually has (no RAG/embedding/WER here).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bgcoach_sessions_active",
		Help: "Currently connected WebSocket sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgcoach_sessions_total",
		Help: "Total WebSocket sessions accepted",
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bgcoach_stage_duration_seconds",
		Help:    "Per-stage latency (vad, asr, detector, coach, tts)",
		Buckets: []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.0, 2.0},
	}, []string{"stage"})

	E2EDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bgcoach_e2e_duration_seconds",
		Help:    "End-to-end latency from end-of-utterance to coach message",
		Buckets: []float64{0.2, 0.5, 0.8, 1.0, 1.2, 1.5, 2.0, 3.0, 5.0},
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgcoach_errors_total",
		Help: "Error counts by stage and error kind",
	}, []string{"stage", "error_kind"})

	AudioFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgcoach_audio_frames_total",
		Help: "Total 20ms PCM frames received",
	})

	SpeechSegments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgcoach_vad_speech_segments_total",
		Help: "Utterances completed by the VAD gate",
	})

	ASRNoSpeechProb = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bgcoach_asr_no_speech_prob",
		Help:    "no_speech_prob on the finalization pass",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgcoach_cache_hits_total",
		Help: "FingerprintCache hits by cache name (asr, coach)",
	}, []string{"cache"})
)
