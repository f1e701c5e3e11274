// Package processor orchestrates transcription, diarization and fusion into
// a single processing entry point with a defined degraded-mode policy.
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"convoscribe/internal/diarization"
	"convoscribe/internal/fusion"
	"convoscribe/internal/performance"
	"convoscribe/internal/transcript"
	"convoscribe/internal/transcription"
)

// Input contract violations. Callers can test for them with errors.Is.
var (
	ErrEmptyAudio        = errors.New("audio buffer is empty")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidSegment    = errors.New("transcription produced an invalid segment")
)

// Processor coordinates the providers and the matcher for one recording at a
// time. It holds no per-call state: every Process call is independent, and
// the only shared resources are the read-only provider model handles.
type Processor struct {
	transcriber transcription.Provider
	diarizer    diarization.Provider
	matcher     *fusion.Matcher
	monitor     *performance.Monitor
	logger      *zap.Logger

	// Diarization capability is probed once and cached; a backend that was
	// never usable stays in the unavailable tier for the process lifetime.
	availOnce sync.Once
	available bool
}

// NewProcessor creates a Processor around the given providers
func NewProcessor(transcriber transcription.Provider, diarizer diarization.Provider, logger *zap.Logger) *Processor {
	return &Processor{
		transcriber: transcriber,
		diarizer:    diarizer,
		matcher:     fusion.NewMatcher(logger),
		monitor:     performance.NewMonitor(logger),
		logger:      logger,
	}
}

// diarizationAvailable probes the diarization backend exactly once
func (p *Processor) diarizationAvailable(ctx context.Context) bool {
	p.availOnce.Do(func() {
		if p.diarizer == nil {
			p.available = false
			return
		}
		p.available = p.diarizer.Available(ctx)
		if !p.available {
			p.logger.Warn("diarization backend unavailable, speaker attribution will be degraded",
				zap.String("backend", p.diarizer.Name()))
		}
	})
	return p.available
}

// Process turns a normalized audio buffer into a complete DiarizedTranscript.
//
// Transcription and diarization run concurrently; matching runs once both are
// done. A transcription failure is fatal. A diarization failure degrades to
// single-speaker attribution with the appropriate confidence tier and the
// call still succeeds. The result is always internally consistent: callers
// never see a partially-built transcript.
func (p *Processor) Process(ctx context.Context, samples []float32, sampleRate int) (*transcript.DiarizedTranscript, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}

	totalDuration := float64(len(samples)) / float64(sampleRate)
	available := p.diarizationAvailable(ctx)

	p.logger.Info("processing recording",
		zap.Float64("duration_sec", totalDuration),
		zap.Int("sample_rate", sampleRate),
		zap.Bool("diarization_available", available))

	var (
		segments         []transcription.Segment
		turns            []diarization.Turn
		diarizationError error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		timer := p.monitor.StartStage("transcription")
		defer p.monitor.EndStage(timer)

		result, err := p.transcriber.Transcribe(gctx, samples, sampleRate)
		if err != nil {
			return fmt.Errorf("transcription failed: %w", err)
		}
		segments = result
		return nil
	})

	if available {
		g.Go(func() error {
			timer := p.monitor.StartStage("diarization")
			defer p.monitor.EndStage(timer)

			result, err := p.diarizer.Diarize(gctx, samples, sampleRate)
			if err != nil {
				// Recoverable: remember the failure, keep the call alive
				p.logger.Warn("diarization failed on this input, degrading to single speaker",
					zap.String("backend", p.diarizer.Name()),
					zap.Error(err))
				diarizationError = err
				return nil
			}
			turns = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Reject degenerate provider output here, before the matcher can turn a
	// zero-length interval into a confident attribution downstream.
	for i := range segments {
		if err := segments[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", ErrInvalidSegment, i, err)
		}
	}

	timer := p.monitor.StartStage("fusion")
	var matched []transcript.SpeakerSegment
	switch {
	case !available:
		matched = p.matcher.MatchSingleSpeaker(segments, fusion.ConfidenceUnavailable)
	case diarizationError != nil:
		matched = p.matcher.MatchSingleSpeaker(segments, fusion.ConfidenceDiarizationFailed)
	default:
		matched = p.matcher.Match(segments, turns)
	}
	p.monitor.EndStage(timer)

	result := transcript.Assemble(matched, totalDuration)

	p.logger.Info("processing completed",
		zap.Int("segments", len(result.Segments)),
		zap.Int("speakers", result.SpeakerCount),
		zap.Float64("duration_sec", result.TotalDuration))

	return result, nil
}

// Metrics returns a snapshot of the accumulated per-stage timing metrics
func (p *Processor) Metrics() map[string]performance.StageMetrics {
	return p.monitor.Snapshot()
}

// LogMetricsSummary logs the accumulated stage timings
func (p *Processor) LogMetricsSummary() {
	p.monitor.LogSummary()
}
