// Package transcript holds the speaker-attributed transcript artifact and its
// read-only presentation and statistics views.
package transcript

import (
	"fmt"
	"time"
)

// SpeakerSegment is one speaker-attributed, time-aligned piece of the
// conversation. Segments are created by the fusion matcher and never mutated
// afterwards.
type SpeakerSegment struct {
	SpeakerID  int     `json:"speaker_id"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DiarizedTranscript is the assembled result of one processing call: the
// ordered speaker segments plus per-conversation speaker bookkeeping.
//
// ConversationID may be set by the caller right after assembly; everything
// else is treated as read-only once assembled.
type DiarizedTranscript struct {
	ConversationID string           `json:"conversation_id"`
	Segments       []SpeakerSegment `json:"segments"`
	SpeakerCount   int              `json:"speaker_count"`
	SpeakerNames   map[int]string   `json:"speaker_names"`
	TotalDuration  float64          `json:"total_duration"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Assemble builds a DiarizedTranscript from matched segments and the total
// audio duration. The duration comes from the audio buffer length, not from
// segment timestamps, so trailing silence is still accounted for.
//
// Speaker count is the number of distinct speaker IDs actually present, and
// every one of them gets a default "Speaker {id}" display name.
func Assemble(segments []SpeakerSegment, totalDuration float64) *DiarizedTranscript {
	names := make(map[int]string)
	for _, seg := range segments {
		if _, ok := names[seg.SpeakerID]; !ok {
			names[seg.SpeakerID] = fmt.Sprintf("Speaker %d", seg.SpeakerID)
		}
	}

	return &DiarizedTranscript{
		Segments:      segments,
		SpeakerCount:  len(names),
		SpeakerNames:  names,
		TotalDuration: totalDuration,
		CreatedAt:     time.Now(),
	}
}

// SpeakerName returns the display name for a speaker ID, falling back to the
// default form for unknown IDs.
func (t *DiarizedTranscript) SpeakerName(speakerID int) string {
	if name, ok := t.SpeakerNames[speakerID]; ok {
		return name
	}
	return fmt.Sprintf("Speaker %d", speakerID)
}

// RenameSpeaker overrides the display name of one speaker, e.g. after manual
// identification. Segment data is untouched. Unknown IDs are rejected so the
// name map stays aligned with the segments.
func (t *DiarizedTranscript) RenameSpeaker(speakerID int, name string) error {
	if _, ok := t.SpeakerNames[speakerID]; !ok {
		return fmt.Errorf("unknown speaker id %d", speakerID)
	}
	if name == "" {
		return fmt.Errorf("speaker name cannot be empty")
	}
	t.SpeakerNames[speakerID] = name
	return nil
}
