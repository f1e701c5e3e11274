package transcription

import "fmt"

// Segment represents a single time-stamped segment of transcribed speech as
// produced by a speech-to-text backend. Times are in seconds from the start
// of the recording.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Validate checks if the Segment has valid values
func (s *Segment) Validate() error {
	if s.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if s.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if s.End <= s.Start {
		return fmt.Errorf("end must be greater than start")
	}

	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0")
	}

	return nil
}

// Duration returns the segment length in seconds
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}
