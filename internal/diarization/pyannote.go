package diarization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"convoscribe/internal/audioio"
)

const defaultPyannoteTimeout = 300 * time.Second

// Compile-time assertion that PyannoteProvider satisfies Provider.
var _ Provider = (*PyannoteProvider)(nil)

// PyannoteProvider implements Provider using a pyannote HTTP sidecar.
// The sidecar exposes GET /health and POST /diarize (multipart WAV upload).
// An empty base URL means the provider was never configured.
type PyannoteProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// diarizeResponse mirrors the sidecar's JSON response body
type diarizeResponse struct {
	Segments []struct {
		Speaker string  `json:"speaker"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"segments"`
	NumSpeakers int `json:"num_speakers"`
}

// NewPyannoteProvider creates a pyannote sidecar provider. A zero timeout
// falls back to the default of five minutes.
func NewPyannoteProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *PyannoteProvider {
	if timeout == 0 {
		timeout = defaultPyannoteTimeout
	}
	return &PyannoteProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Name returns the provider name
func (p *PyannoteProvider) Name() string { return "pyannote" }

// Available reports whether the sidecar is configured and reachable
func (p *PyannoteProvider) Available(ctx context.Context) bool {
	if p.baseURL == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("pyannote health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Diarize uploads the audio to the sidecar and returns the detected turns
func (p *PyannoteProvider) Diarize(ctx context.Context, samples []float32, sampleRate int) ([]Turn, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("pyannote sidecar is not configured")
	}

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("convoscribe-diarize-%d.wav", time.Now().UnixNano()))
	if err := audioio.WriteWAVFile(wavPath, samples, sampleRate); err != nil {
		return nil, fmt.Errorf("failed to stage audio for diarization: %w", err)
	}
	defer os.Remove(wavPath)

	audioData, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged audio: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("failed to write multipart audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/diarize", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create diarize request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	p.logger.Debug("sending audio to pyannote sidecar",
		zap.Int("samples", len(samples)),
		zap.Int("sample_rate", sampleRate))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("diarize request returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed diarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode diarize response: %w", err)
	}

	turns := make([]Turn, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		turns = append(turns, Turn{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: seg.Speaker,
		})
	}

	p.logger.Info("diarization completed",
		zap.Int("turns", len(turns)),
		zap.Int("speakers", parsed.NumSpeakers))
	return turns, nil
}
