package transcription

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const huggingFaceBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelDownloader fetches ggml whisper models from HuggingFace when they are
// not present locally.
type ModelDownloader struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// NewModelDownloader creates a new model downloader instance
func NewModelDownloader(logger *zap.Logger) *ModelDownloader {
	return &ModelDownloader{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Minute, // Long timeout for large model downloads
		},
		baseURL: huggingFaceBaseURL,
	}
}

// EnsureModelExists checks if the model file exists and downloads it if it doesn't
func (d *ModelDownloader) EnsureModelExists(modelName, modelPath string) error {
	if _, err := os.Stat(modelPath); err == nil {
		d.logger.Debug("model already exists",
			zap.String("model", modelName),
			zap.String("path", modelPath))
		return nil
	}

	d.logger.Info("model not found locally, attempting download",
		zap.String("model", modelName),
		zap.String("path", modelPath))

	if err := os.MkdirAll(filepath.Dir(modelPath), 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	return d.downloadModel(modelName, modelPath)
}

// downloadModel fetches a ggml model into modelPath, writing through a
// temporary file so a failed download never leaves a truncated model behind
func (d *ModelDownloader) downloadModel(modelName, modelPath string) error {
	url := fmt.Sprintf("%s/ggml-%s.bin", d.baseURL, modelName)

	d.logger.Info("downloading whisper model",
		zap.String("model", modelName),
		zap.String("url", url))

	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download model %s: %w", modelName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model download returned status %d for %s", resp.StatusCode, url)
	}

	tmpPath := modelPath + ".download"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close model file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, modelPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move model into place: %w", err)
	}

	d.logger.Info("model downloaded successfully",
		zap.String("model", modelName),
		zap.String("path", modelPath),
		zap.Int64("bytes", written))
	return nil
}
