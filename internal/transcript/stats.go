package transcript

import "strings"

// SpeakerStats aggregates one speaker's contribution to the conversation.
type SpeakerStats struct {
	Name          string  `json:"name"`
	SegmentCount  int     `json:"segment_count"`
	TotalTime     float64 `json:"total_time"`
	AvgConfidence float64 `json:"avg_confidence"`
	Words         int     `json:"words"`
}

// Statistics computes per-speaker aggregates from the transcript on demand.
// Every speaker listed in SpeakerNames appears in the result; a speaker with
// no segments gets zero counts rather than an error. Results are never cached
// on the transcript.
//
// The map is keyed by speaker ID; encoding/json serializes integer map keys
// as strings, which is what downstream JSON consumers expect.
func Statistics(t *DiarizedTranscript) map[int]SpeakerStats {
	stats := make(map[int]SpeakerStats, len(t.SpeakerNames))
	confidenceSums := make(map[int]float64, len(t.SpeakerNames))

	for id := range t.SpeakerNames {
		stats[id] = SpeakerStats{Name: t.SpeakerName(id)}
	}

	for _, seg := range t.Segments {
		s := stats[seg.SpeakerID]
		if s.Name == "" {
			s.Name = t.SpeakerName(seg.SpeakerID)
		}
		s.SegmentCount++
		s.TotalTime += seg.EndTime - seg.StartTime
		s.Words += len(strings.Fields(seg.Text))
		confidenceSums[seg.SpeakerID] += seg.Confidence
		stats[seg.SpeakerID] = s
	}

	for id, s := range stats {
		if s.SegmentCount > 0 {
			s.AvgConfidence = confidenceSums[id] / float64(s.SegmentCount)
			stats[id] = s
		}
	}

	return stats
}
