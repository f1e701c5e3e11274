// Package fusion reconciles transcription segments against diarization turns
// to produce speaker-attributed transcript segments.
package fusion

import (
	"go.uber.org/zap"

	"convoscribe/internal/diarization"
	"convoscribe/internal/transcription"
	"convoscribe/internal/transcript"
)

// Confidence levels for the three degraded attribution tiers. They are kept
// distinct so consumers can tell "single speaker by design" (unavailable)
// from "single speaker due to failure" (errored) from "no evidence for this
// utterance" (no overlap). All three fall below the usual display threshold.
const (
	// ConfidenceUnavailable marks segments attributed without any
	// diarization capability.
	ConfidenceUnavailable = 0.5

	// ConfidenceDiarizationFailed marks segments attributed after the
	// diarization backend errored on this input.
	ConfidenceDiarizationFailed = 0.3

	// ConfidenceNoOverlap marks segments that matched no speaker turn at
	// all, e.g. speech in a silence gap the diarizer attributed to nobody.
	ConfidenceNoOverlap = 0.2
)

// fallbackSpeakerID is the reserved identity for segments that cannot be
// attributed to any turn. It shares the ID space with regular allocation on
// purpose: without diarization evidence there is exactly one usable identity.
const fallbackSpeakerID = 1

// Matcher assigns each transcription segment to the diarization turn it most
// plausibly belongs to. Speaker identity is scoped to a single Match call:
// backend labels are remapped to sequential IDs starting at 1 in order of
// first appearance, and the mapping is discarded afterwards.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a new Matcher instance
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// Match produces exactly one SpeakerSegment per input segment, in input
// order. Each segment is assigned to the turn with the maximum temporal
// overlap; on an exact overlap tie the turn with the earlier start wins, and
// if the starts are also equal the turn appearing earlier in the input list
// wins. Segments overlapping no turn get the fallback identity with
// ConfidenceNoOverlap.
func (m *Matcher) Match(segments []transcription.Segment, turns []diarization.Turn) []transcript.SpeakerSegment {
	identity := make(map[string]int)
	result := make([]transcript.SpeakerSegment, 0, len(segments))

	for _, seg := range segments {
		bestIdx := -1
		var bestOverlap float64

		for i, turn := range turns {
			overlap := turn.Overlap(seg.Start, seg.End)
			if overlap <= 0 {
				continue
			}
			switch {
			case overlap > bestOverlap:
				bestOverlap = overlap
				bestIdx = i
			case overlap == bestOverlap && bestIdx >= 0 && turn.Start < turns[bestIdx].Start:
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			result = append(result, transcript.SpeakerSegment{
				SpeakerID:  fallbackSpeakerID,
				StartTime:  seg.Start,
				EndTime:    seg.End,
				Text:       seg.Text,
				Confidence: ConfidenceNoOverlap,
			})
			continue
		}

		label := turns[bestIdx].Speaker
		speakerID, ok := identity[label]
		if !ok {
			speakerID = len(identity) + 1
			identity[label] = speakerID
		}

		confidence := 1.0
		if length := seg.Duration(); length > 0 {
			confidence = bestOverlap / length
			if confidence > 1.0 {
				confidence = 1.0
			}
		}

		result = append(result, transcript.SpeakerSegment{
			SpeakerID:  speakerID,
			StartTime:  seg.Start,
			EndTime:    seg.End,
			Text:       seg.Text,
			Confidence: confidence,
		})
	}

	m.logger.Debug("matched segments to speaker turns",
		zap.Int("segments", len(segments)),
		zap.Int("turns", len(turns)),
		zap.Int("speakers", len(identity)))

	return result
}

// MatchSingleSpeaker attributes every segment to the fallback identity with
// the given fixed confidence. This is the degraded path used when diarization
// is unavailable or failed at runtime.
func (m *Matcher) MatchSingleSpeaker(segments []transcription.Segment, confidence float64) []transcript.SpeakerSegment {
	result := make([]transcript.SpeakerSegment, 0, len(segments))
	for _, seg := range segments {
		result = append(result, transcript.SpeakerSegment{
			SpeakerID:  fallbackSpeakerID,
			StartTime:  seg.Start,
			EndTime:    seg.End,
			Text:       seg.Text,
			Confidence: confidence,
		})
	}
	return result
}
