// Package output persists assembled transcripts as plain-text and JSON
// artifacts for downstream storage collaborators.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"convoscribe/internal/transcript"
)

// TranscriptWriter writes the artifacts of one processing call into a
// directory: the formatted text transcript, the structured transcript JSON,
// and the per-speaker statistics JSON.
type TranscriptWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewTranscriptWriter creates a new TranscriptWriter instance
func NewTranscriptWriter(outputDir string, logger *zap.Logger) *TranscriptWriter {
	return &TranscriptWriter{
		outputDir: outputDir,
		logger:    logger,
	}
}

// WriteArtifacts writes all three artifacts and returns the paths written.
// Files are named after the conversation ID, falling back to the assembly
// timestamp when no ID was set.
func (w *TranscriptWriter) WriteArtifacts(t *transcript.DiarizedTranscript) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.outputDir, err)
	}

	base := t.ConversationID
	if base == "" {
		base = t.CreatedAt.UTC().Format(time.RFC3339)
	}

	textPath := filepath.Join(w.outputDir, base+".txt")
	if err := os.WriteFile(textPath, []byte(transcript.Format(t)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write text transcript: %w", err)
	}

	jsonPath := filepath.Join(w.outputDir, base+".json")
	if err := w.writeJSON(jsonPath, t); err != nil {
		return nil, err
	}

	statsPath := filepath.Join(w.outputDir, base+".stats.json")
	if err := w.writeJSON(statsPath, transcript.Statistics(t)); err != nil {
		return nil, err
	}

	w.logger.Info("transcript artifacts written",
		zap.String("conversation_id", t.ConversationID),
		zap.String("directory", w.outputDir),
		zap.Int("segments", len(t.Segments)))

	return []string{textPath, jsonPath, statsPath}, nil
}

func (w *TranscriptWriter) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
