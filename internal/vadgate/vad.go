// Package vadgate implements the VAD Gate (spec §4.3): converts a live PCM
// stream into complete utterance PCM buffers, bounded in duration. The
// per-frame speech/non-speech classifier is the energy/dB threshold
// approach adapted from the teacher's internal/audio/vad.go; the framing
// state machine itself is the 20ms-frame-counted machine the spec requires,
// replacing the teacher's continuous adaptive-calibration algorithm.
package vadgate

import (
	"errors"
	"math"
)

const (
	// FrameSamples is the required frame size: 20ms at 16kHz mono.
	FrameSamples = 320
	FrameBytes   = FrameSamples * 2
	sampleRate   = 16000
)

// ErrBadFrame is returned when a frame is not exactly FrameBytes long.
var ErrBadFrame = errors.New("vadgate: bad frame size")

// Config holds the recognized VAD options (spec §4.3 table).
type Config struct {
	Aggressiveness  int // 0-3
	TailMs          int
	MaxUtteranceMs  int
	MinSpeechMs     int
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{Aggressiveness: 2, TailMs: 250, MaxUtteranceMs: 15000, MinSpeechMs: 200}
}

type state int

const (
	stateIdle state = iota
	stateInSpeech
)

// EventKind distinguishes the three event kinds the gate emits.
type EventKind int

const (
	FrameAccepted EventKind = iota
	EndOfUtterance
	Timeout
)

// Event is emitted by Process/Flush.
type Event struct {
	Kind   EventKind
	Buffer []int16 // populated for EndOfUtterance and Timeout
}

// Gate is the per-session VAD state machine.
type Gate struct {
	cfg         Config
	tailFrames  int
	maxFrames   int
	minSpeechFr int

	st             state
	buffer         []int16
	silenceCount   int
	speechCount    int
	noiseFloorDB   float64
	calibrated     bool
}

// New creates a Gate from cfg.
func New(cfg Config) *Gate {
	tailFrames := ceilDiv(cfg.TailMs, 20)
	maxFrames := ceilDiv(cfg.MaxUtteranceMs, 20)
	minSpeechFrames := ceilDiv(cfg.MinSpeechMs, 20)
	return &Gate{
		cfg:          cfg,
		tailFrames:   tailFrames,
		maxFrames:    maxFrames,
		minSpeechFr:  minSpeechFrames,
		st:           stateIdle,
		noiseFloorDB: -50,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Process feeds one 20ms frame (exactly FrameBytes long) into the gate and
// returns the resulting events (zero or more; Timeout can coincide with the
// frame that triggered it).
func (g *Gate) Process(frame []byte) ([]Event, error) {
	if len(frame) != FrameBytes {
		return nil, ErrBadFrame
	}
	samples := bytesToInt16(frame)
	isSpeech := g.classify(samples)

	var events []Event

	switch g.st {
	case stateIdle:
		if isSpeech {
			g.st = stateInSpeech
			g.silenceCount = 0
			g.speechCount = 1
			g.buffer = append(g.buffer[:0], samples...)
			events = append(events, Event{Kind: FrameAccepted})
		}
		// Idle + non-speech: frame dropped.

	case stateInSpeech:
		g.buffer = append(g.buffer, samples...)
		if isSpeech {
			g.silenceCount = 0
			g.speechCount++
		} else {
			g.silenceCount++
		}
		events = append(events, Event{Kind: FrameAccepted})

		if g.silenceCount >= g.tailFrames {
			events = append(events, g.endOfUtterance())
		} else if g.frameCount() >= g.maxFrames {
			events = append(events, g.timeout())
		}
	}

	return events, nil
}

func (g *Gate) frameCount() int {
	return len(g.buffer) / FrameSamples
}

func (g *Gate) endOfUtterance() Event {
	buf := g.buffer
	speechFrames := g.speechCount
	g.reset()
	if speechFrames < 1 {
		// VAD must never emit EndOfUtterance with fewer than one speech
		// frame (spec §8 invariant); defensively drop.
		return Event{Kind: FrameAccepted}
	}
	if speechFrames*20 < g.cfg.MinSpeechMs {
		// Utterance below min_speech_ms is discarded silently.
		return Event{Kind: FrameAccepted}
	}
	return Event{Kind: EndOfUtterance, Buffer: buf}
}

func (g *Gate) timeout() Event {
	buf := g.buffer
	g.reset()
	return Event{Kind: Timeout, Buffer: buf}
}

func (g *Gate) reset() {
	g.st = stateIdle
	g.buffer = nil
	g.silenceCount = 0
	g.speechCount = 0
}

// CurrentBuffer returns a snapshot copy of the in-progress utterance
// buffer while speech is ongoing, or nil when idle. Used for streaming
// partial transcription, which runs against whatever has accumulated so
// far rather than waiting for EndOfUtterance.
func (g *Gate) CurrentBuffer() []int16 {
	if g.st != stateInSpeech {
		return nil
	}
	out := make([]int16, len(g.buffer))
	copy(out, g.buffer)
	return out
}

// Flush forces end-of-utterance on whatever is buffered (e.g. on session
// close), returning an EndOfUtterance event if the buffer qualifies, or
// nil otherwise.
func (g *Gate) Flush() *Event {
	if g.st != stateInSpeech {
		return nil
	}
	ev := g.endOfUtterance()
	if ev.Kind == EndOfUtterance {
		return &ev
	}
	return nil
}

// classify applies an energy/dB threshold to decide speech vs non-speech.
// aggressiveness (0-3) raises the threshold above the calibrated noise
// floor: higher aggressiveness requires louder frames to count as speech.
func (g *Gate) classify(samples []int16) bool {
	db := energyDB(samples)
	if !g.calibrated {
		// The first frame can only lower the initial floor set in New, so
		// a stream that opens with speech is not taken as its own noise.
		g.noiseFloorDB = math.Min(g.noiseFloorDB, db)
		g.calibrated = true
	} else if db < g.noiseFloorDB {
		// Slowly track a falling noise floor during silence.
		g.noiseFloorDB = g.noiseFloorDB*0.95 + db*0.05
	}
	margin := 6.0 + float64(g.cfg.Aggressiveness)*4.0
	return db > g.noiseFloorDB+margin
}

func energyDB(samples []int16) float64 {
	if len(samples) == 0 {
		return -100
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(len(samples)))
	if rms < 1 {
		return -100
	}
	return 20 * math.Log10(rms/32768.0)
}

func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out
}
