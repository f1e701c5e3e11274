// Package transcription defines the speech-to-text provider contract and the
// whisper.cpp backed implementation.
package transcription

import "context"

// Provider is the abstraction over a speech-to-text backend. Given a mono
// float32 audio buffer it returns time-ordered transcript segments.
//
// Implementations must be safe for concurrent use: the underlying model is
// shared, per-call inference state is not.
type Provider interface {
	// Transcribe converts audio samples to an ordered list of segments.
	// A backend failure here is fatal for the processing call; there is no
	// degraded mode without text.
	Transcribe(ctx context.Context, samples []float32, sampleRate int) ([]Segment, error)

	// Close releases backend resources.
	Close() error
}
