package asrengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ilyannn/bgvoicecoach/internal/httpx"
	"github.com/ilyannn/bgvoicecoach/internal/metrics"
	"github.com/ilyannn/bgvoicecoach/internal/wavfmt"
)

// HTTPBackend posts multipart WAV to a whisper.cpp-compatible HTTP
// endpoint, the default Backend implementation. Grounded on the
// teacher's internal/pipeline/asr.go buildMultipartAudio/Transcribe.
type HTTPBackend struct {
	url    string
	client *http.Client
}

// NewHTTPBackend creates a backend pointed at a whisper.cpp-compatible
// server URL.
func NewHTTPBackend(url string, poolSize int) *HTTPBackend {
	return &HTTPBackend{
		url:    url,
		client: httpx.NewPooledClient(poolSize, 30*time.Second),
	}
}

type whisperResponse struct {
	Text              string  `json:"text"`
	AvgLogprob        float64 `json:"avg_logprob"`
	NoSpeechProb      float64 `json:"no_speech_prob"`
}

// Transcribe implements Backend.
func (b *HTTPBackend) Transcribe(ctx context.Context, samples []int16, opts Options) (string, float64, float64, error) {
	body, contentType, err := buildMultipartAudio(samples, opts)
	if err != nil {
		return "", 0, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.url+"/inference", body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("asr", "http").Inc()
		return "", 0, 0, fmt.Errorf("asr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		metrics.Errors.WithLabelValues("asr", "status").Inc()
		return "", 0, 0, fmt.Errorf("asr status %d: %s", resp.StatusCode, string(respBody))
	}

	var wr whisperResponse
	if err = json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", 0, 0, fmt.Errorf("decode asr response: %w", err)
	}
	return wr.Text, wr.AvgLogprob, wr.NoSpeechProb, nil
}

func buildMultipartAudio(samples []int16, opts Options) (*bytes.Buffer, string, error) {
	wavData := wavfmt.EncodePCM16(samples, 16000)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err = part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write wav data: %w", err)
	}

	_ = writer.WriteField("language", opts.Language)
	_ = writer.WriteField("beam_size", fmt.Sprintf("%d", opts.BeamFinal))
	_ = writer.WriteField("temperature", fmt.Sprintf("%.2f", opts.Temperature))
	_ = writer.WriteField("no_speech_threshold", fmt.Sprintf("%.2f", opts.NoSpeechThreshold))
	if opts.InitialPrompt != "" {
		_ = writer.WriteField("initial_prompt", opts.InitialPrompt)
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}
