package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"convoscribe/internal/diarization"
	"convoscribe/internal/fusion"
	"convoscribe/internal/transcription"
)

// mockTranscriber implements transcription.Provider for tests
type mockTranscriber struct {
	segments []transcription.Segment
	err      error
	calls    int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]transcription.Segment, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.segments, nil
}

func (m *mockTranscriber) Close() error { return nil }

// mockDiarizer implements diarization.Provider for tests
type mockDiarizer struct {
	turns          []diarization.Turn
	err            error
	available      bool
	availableCalls int
	diarizeCalls   int
}

func (m *mockDiarizer) Name() string { return "mock" }

func (m *mockDiarizer) Available(ctx context.Context) bool {
	m.availableCalls++
	return m.available
}

func (m *mockDiarizer) Diarize(ctx context.Context, samples []float32, sampleRate int) ([]diarization.Turn, error) {
	m.diarizeCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.turns, nil
}

func testAudio() []float32 {
	// 10 seconds at 16kHz
	return make([]float32, 160000)
}

func TestProcessorProcess(t *testing.T) {
	segments := []transcription.Segment{
		{Start: 0.0, End: 4.0, Text: "hi", Confidence: 0.95},
		{Start: 6.0, End: 9.0, Text: "there", Confidence: 0.9},
	}
	turns := []diarization.Turn{
		{Start: 0.0, End: 5.0, Speaker: "SPEAKER_00"},
		{Start: 5.0, End: 10.0, Speaker: "SPEAKER_01"},
	}

	t.Run("should fuse transcription and diarization", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: segments},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err)
		require.Len(t, result.Segments, 2)
		assert.Equal(t, 1, result.Segments[0].SpeakerID)
		assert.Equal(t, 2, result.Segments[1].SpeakerID)
		assert.InDelta(t, 1.0, result.Segments[0].Confidence, 1e-9)
		assert.Equal(t, 2, result.SpeakerCount)
	})

	t.Run("should compute duration from buffer length", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: segments},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err)
		assert.InDelta(t, 10.0, result.TotalDuration, 1e-9)
	})

	t.Run("should propagate transcription failure", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{err: errors.New("model exploded")},
			&mockDiarizer{available: true},
			zap.NewNop(),
		)

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "transcription failed")
	})

	t.Run("should degrade when diarization is unavailable", func(t *testing.T) {
		diarizer := &mockDiarizer{available: false}
		p := NewProcessor(&mockTranscriber{segments: segments}, diarizer, zap.NewNop())

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SpeakerCount)
		for _, seg := range result.Segments {
			assert.Equal(t, 1, seg.SpeakerID)
			assert.InDelta(t, fusion.ConfidenceUnavailable, seg.Confidence, 1e-9)
		}
		assert.Zero(t, diarizer.diarizeCalls, "unavailable backend must not be invoked")
	})

	t.Run("should degrade when diarization fails at runtime", func(t *testing.T) {
		diarizer := &mockDiarizer{available: true, err: errors.New("unsupported audio")}
		p := NewProcessor(&mockTranscriber{segments: segments}, diarizer, zap.NewNop())

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err, "diarization runtime failure must not fail the call")
		assert.Equal(t, 1, result.SpeakerCount)
		for _, seg := range result.Segments {
			assert.Equal(t, 1, seg.SpeakerID)
			assert.InDelta(t, fusion.ConfidenceDiarizationFailed, seg.Confidence, 1e-9)
		}
	})

	t.Run("should treat nil diarizer as unavailable", func(t *testing.T) {
		p := NewProcessor(&mockTranscriber{segments: segments}, nil, zap.NewNop())

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SpeakerCount)
		assert.InDelta(t, fusion.ConfidenceUnavailable, result.Segments[0].Confidence, 1e-9)
	})

	t.Run("should reject empty audio buffer", func(t *testing.T) {
		p := NewProcessor(&mockTranscriber{}, &mockDiarizer{}, zap.NewNop())

		_, err := p.Process(context.Background(), nil, 16000)

		assert.ErrorIs(t, err, ErrEmptyAudio)
	})

	t.Run("should reject zero-length transcription segments", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: []transcription.Segment{
				{Start: 5.0, End: 5.0, Text: "x", Confidence: 1.0},
			}},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		result, err := p.Process(context.Background(), testAudio(), 16000)

		assert.ErrorIs(t, err, ErrInvalidSegment)
		assert.Nil(t, result, "degenerate segments must not reach the matcher")
	})

	t.Run("should reject segments with out-of-range confidence", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: []transcription.Segment{
				{Start: 0.0, End: 2.0, Text: "hi", Confidence: 1.4},
			}},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		_, err := p.Process(context.Background(), testAudio(), 16000)

		assert.ErrorIs(t, err, ErrInvalidSegment)
	})

	t.Run("should reject non-positive sample rate", func(t *testing.T) {
		p := NewProcessor(&mockTranscriber{}, &mockDiarizer{}, zap.NewNop())

		_, err := p.Process(context.Background(), testAudio(), 0)

		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	})

	t.Run("should cache the availability probe across calls", func(t *testing.T) {
		diarizer := &mockDiarizer{turns: turns, available: true}
		p := NewProcessor(&mockTranscriber{segments: segments}, diarizer, zap.NewNop())

		_, err := p.Process(context.Background(), testAudio(), 16000)
		require.NoError(t, err)
		_, err = p.Process(context.Background(), testAudio(), 16000)
		require.NoError(t, err)

		assert.Equal(t, 1, diarizer.availableCalls)
		assert.Equal(t, 2, diarizer.diarizeCalls)
	})

	t.Run("should preserve input segment order", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: segments},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		result, err := p.Process(context.Background(), testAudio(), 16000)

		require.NoError(t, err)
		for i, seg := range result.Segments {
			assert.Equal(t, segments[i].Start, seg.StartTime)
			assert.Equal(t, segments[i].Text, seg.Text)
		}
	})

	t.Run("should fail on cancelled context", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: segments},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Process(ctx, testAudio(), 16000)

		assert.Error(t, err)
	})

	t.Run("should record stage metrics", func(t *testing.T) {
		p := NewProcessor(
			&mockTranscriber{segments: segments},
			&mockDiarizer{turns: turns, available: true},
			zap.NewNop(),
		)

		_, err := p.Process(context.Background(), testAudio(), 16000)
		require.NoError(t, err)

		metrics := p.Metrics()
		assert.Contains(t, metrics, "transcription")
		assert.Contains(t, metrics, "diarization")
		assert.Contains(t, metrics, "fusion")
	})
}
