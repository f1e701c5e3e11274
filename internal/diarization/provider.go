// Package diarization defines the speaker-diarization provider contract and
// the pyannote sidecar backed implementation.
//
// Diarization is an optional capability: a provider may be unconfigured or
// fail on a particular input, and callers are expected to degrade to
// single-speaker attribution rather than fail the processing call.
package diarization

import "context"

// Provider is the abstraction over a speaker-diarization backend.
type Provider interface {
	// Name returns the backend name for logging.
	Name() string

	// Available reports whether the backend can serve requests. It is probed
	// once at startup and cached as a capability flag by the orchestrator.
	Available(ctx context.Context) bool

	// Diarize returns the speaker turns detected in the sample buffer.
	// Turn ordering is not guaranteed. A runtime error here is recoverable:
	// the caller substitutes degraded single-speaker attribution.
	Diarize(ctx context.Context, samples []float32, sampleRate int) ([]Turn, error)
}
