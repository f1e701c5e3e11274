// Package audioio converts between WAV files and the normalized mono float32
// sample buffers consumed by the processing pipeline.
package audioio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWAVFile decodes a WAV file into mono float32 samples normalized to
// [-1, 1] and returns them with the file's sample rate. Multi-channel audio
// is down-mixed by averaging the channels.
func ReadWAVFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open WAV file %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode WAV file %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("WAV file %s has no channel information", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return samples, buf.Format.SampleRate, nil
}

// WriteWAVFile encodes mono float32 samples as a 16-bit PCM WAV file.
func WriteWAVFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		// Clamp before scaling so out-of-range input cannot wrap
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * 32767.0)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return nil
}
