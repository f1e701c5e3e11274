package transcript

import (
	"fmt"
	"strings"
)

// confidenceDisplayThreshold is the confidence below which a segment line
// carries an explicit percentage annotation. High-confidence segments stay
// unannotated to keep the transcript readable.
const confidenceDisplayThreshold = 0.9

// Format renders the transcript as human-readable text, one line per segment
// in segment order:
//
//	Speaker 1: [00:02-00:08] [50.0%]hello there
func Format(t *DiarizedTranscript) string {
	var b strings.Builder
	for _, seg := range t.Segments {
		b.WriteString(t.SpeakerName(seg.SpeakerID))
		b.WriteString(": ")
		b.WriteString(formatTimestamp(seg.StartTime, seg.EndTime))
		b.WriteString(" ")
		if seg.Confidence < confidenceDisplayThreshold {
			b.WriteString(fmt.Sprintf("[%.1f%%]", seg.Confidence*100))
		}
		b.WriteString(seg.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// formatTimestamp renders a [MM:SS-MM:SS] interval, truncating to whole
// seconds
func formatTimestamp(start, end float64) string {
	return fmt.Sprintf("[%s-%s]", formatClock(start), formatClock(end))
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
