// Package ttsengine implements the TTS Engine (spec §4.6): validates
// input length, invokes an external synthesizer binary as a child
// process, and returns RIFF/WAVE PCM16 audio. Synthesizer failure is
// reported as an empty WAV body plus a caller-visible flag, never as an
// HTTP error — the spec requires a 200 response with an empty audio body
// and an X-Synthesis-Error header.
package ttsengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/ilyannn/bgvoicecoach/internal/apperr"
	"github.com/ilyannn/bgvoicecoach/internal/wavfmt"
)

const (
	maxTextLen = 2000
	sampleRate = 22050

	// synthesisTimeout bounds one synthesizer invocation (spec §5).
	synthesisTimeout = 10 * time.Second
)

// ErrTextTooLong distinguishes the oversized-text rejection from other
// input-validation failures, so the HTTP layer can map it to 413 instead
// of the generic 400 (spec §8 boundary: text > 2000 chars to /tts).
var ErrTextTooLong = errors.New("text exceeds maximum length")

// Engine synthesizes Bulgarian speech by shelling out to binaryPath.
type Engine struct {
	binaryPath string
	maxConcurrent chan struct{}
}

// New constructs an Engine. maxConcurrent bounds the number of synthesizer
// child processes running at once (spec §5: TTS child processes capped at 8).
func New(binaryPath string, maxConcurrent int) *Engine {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Engine{
		binaryPath:    binaryPath,
		maxConcurrent: make(chan struct{}, maxConcurrent),
	}
}

// Result is the outcome of Synthesize.
type Result struct {
	WAV            []byte
	SynthesisError bool
}

// Synthesize renders text in the named voice profile. text longer than
// 2000 characters is rejected with apperr.ErrInputValidation; any
// synthesizer failure yields a header-only empty WAV with
// Result.SynthesisError=true and a nil error — the caller always responds
// with HTTP 200 per spec §4.6.
func (e *Engine) Synthesize(ctx context.Context, text, profileName string) (Result, error) {
	if len([]rune(text)) > maxTextLen {
		return Result{}, apperr.Wrap(apperr.ErrInputValidation, fmt.Errorf("%w: %d characters", ErrTextTooLong, maxTextLen))
	}

	profile := ResolveProfile(profileName)

	e.maxConcurrent <- struct{}{}
	defer func() { <-e.maxConcurrent }()

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	data, err := e.runSynthesizer(ctx, text, profile)
	if err != nil {
		return Result{WAV: wavfmt.EmptyWAV(sampleRate), SynthesisError: true}, nil
	}
	return Result{WAV: data}, nil
}

// runSynthesizer invokes the external synthesizer binary on a temp output
// file, grounded on the teacher's services/piper runPiper pattern.
func (e *Engine) runSynthesizer(ctx context.Context, text string, profile Profile) ([]byte, error) {
	tmpFile, err := os.CreateTemp("", "bgcoach-tts-*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	outPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, e.binaryPath,
		"--language", "bg",
		"--rate", fmt.Sprintf("%d", profile.Rate),
		"--pitch", fmt.Sprintf("%d", profile.Pitch),
		"--output_file", outPath,
	)
	cmd.Stdin = strings.NewReader(text)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("synthesizer: %v\n%s", err, output)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read synthesizer output: %w", err)
	}
	if err := validateWAV(data); err != nil {
		return nil, fmt.Errorf("synthesizer produced invalid WAV: %w", err)
	}
	return data, nil
}

// validateWAV confirms the synthesizer actually produced a decodable
// PCM WAV file before it's handed back to a caller as audio/wav.
func validateWAV(data []byte) error {
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return err
	}
	if dec.SampleRate == 0 {
		return fmt.Errorf("not a valid PCM WAV stream")
	}
	return nil
}
