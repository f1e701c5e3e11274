package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"go.uber.org/zap"
)

// Compile-time assertion that WhisperProvider satisfies Provider.
var _ Provider = (*WhisperProvider)(nil)

// WhisperProvider implements Provider using the whisper.cpp Go bindings.
// The model is loaded lazily on first use and then shared read-only across
// all concurrent calls. Each call gets its own whisper context because
// contexts are not thread-safe while the model is.
type WhisperProvider struct {
	modelPath string
	language  string
	logger    *zap.Logger

	initOnce sync.Once
	initErr  error
	model    whisper.Model
}

// NewWhisperProvider creates a WhisperProvider that will load the ggml model
// from modelPath on first use. The caller must call Close when done.
func NewWhisperProvider(modelPath, language string, logger *zap.Logger) *WhisperProvider {
	return &WhisperProvider{
		modelPath: modelPath,
		language:  language,
		logger:    logger,
	}
}

// ensureModel loads the whisper model exactly once
func (p *WhisperProvider) ensureModel() error {
	p.initOnce.Do(func() {
		if p.modelPath == "" {
			p.initErr = errors.New("whisper model path cannot be empty")
			return
		}

		p.logger.Info("loading whisper model", zap.String("path", p.modelPath))

		model, err := whisper.New(p.modelPath)
		if err != nil {
			p.initErr = fmt.Errorf("failed to load whisper model from %s: %w", p.modelPath, err)
			return
		}
		p.model = model

		p.logger.Info("whisper model loaded successfully", zap.String("path", p.modelPath))
	})
	return p.initErr
}

// Transcribe runs whisper.cpp inference over the sample buffer and returns
// the ordered transcript segments with per-segment confidence derived from
// the mean token probability.
func (p *WhisperProvider) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error) {
	if err := p.ensureModel(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("transcription cancelled before start: %w", err)
	}

	p.logger.Debug("starting transcription",
		zap.Int("samples", len(samples)),
		zap.Int("sample_rate", sampleRate))

	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper context: %w", err)
	}

	if err := wctx.SetLanguage(p.language); err != nil {
		p.logger.Warn("failed to set whisper language, using model default",
			zap.String("language", p.language),
			zap.Error(err))
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper inference failed: %w", err)
	}

	var segments []Segment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read whisper segment: %w", err)
		}

		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		segments = append(segments, Segment{
			Start:      seg.Start.Seconds(),
			End:        seg.End.Seconds(),
			Text:       text,
			Confidence: tokenConfidence(seg.Tokens),
		})
	}

	p.logger.Info("transcription completed", zap.Int("segments", len(segments)))
	return segments, nil
}

// tokenConfidence averages whisper token probabilities into a single
// per-segment confidence. Segments without token detail get a neutral 1.0
// so they never read as low-confidence downstream.
func tokenConfidence(tokens []whisper.Token) float64 {
	if len(tokens) == 0 {
		return 1.0
	}
	var sum float64
	for _, tok := range tokens {
		sum += float64(tok.P)
	}
	conf := sum / float64(len(tokens))
	if conf > 1.0 {
		conf = 1.0
	} else if conf < 0.0 {
		conf = 0.0
	}
	return conf
}

// Close releases the whisper model resources
func (p *WhisperProvider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}
