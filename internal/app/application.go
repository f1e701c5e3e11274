// Package app wires configuration, providers, the processor and the output
// writers into the runnable application.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"convoscribe/internal/audioio"
	"convoscribe/internal/config"
	"convoscribe/internal/diarization"
	"convoscribe/internal/logger"
	"convoscribe/internal/output"
	"convoscribe/internal/processor"
	"convoscribe/internal/transcript"
	"convoscribe/internal/transcription"
)

// Application orchestrates one or more file-processing runs
type Application struct {
	config      *config.Configuration
	logger      *zap.Logger
	processor   *processor.Processor
	writer      *output.TranscriptWriter
	transcriber transcription.Provider
	downloader  *transcription.ModelDownloader
}

// NewApplication creates an application instance with all components
// initialized. Configuration comes from the file named by CONFIG_PATH when
// set, otherwise from environment variables.
func NewApplication() (*Application, error) {
	var cfg *config.Configuration
	var err error

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		cfg, err = config.NewConfigurationFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.NewConfigurationFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to load config from environment: %w", err)
		}
	}

	return NewApplicationFromConfig(cfg), nil
}

// NewApplicationFromConfig creates an application from an explicit
// Configuration, e.g. one built from the -config CLI flag.
func NewApplicationFromConfig(cfg *config.Configuration) *Application {
	zapLogger := logger.New(cfg.GetDebugMode())

	transcriber := transcription.NewWhisperProvider(
		cfg.GetWhisperModelPath(),
		cfg.GetWhisperLanguage(),
		zapLogger,
	)
	diarizer := diarization.NewPyannoteProvider(
		cfg.GetDiarizationBaseURL(),
		cfg.GetDiarizationTimeout(),
		zapLogger,
	)

	return &Application{
		config:      cfg,
		logger:      zapLogger,
		processor:   processor.NewProcessor(transcriber, diarizer, zapLogger),
		writer:      output.NewTranscriptWriter(cfg.GetOutputDirectory(), zapLogger),
		transcriber: transcriber,
		downloader:  transcription.NewModelDownloader(zapLogger),
	}
}

// NewApplicationWithComponents creates an application around pre-built
// components. Used by tests and by callers embedding the pipeline.
func NewApplicationWithComponents(cfg *config.Configuration, zapLogger *zap.Logger, proc *processor.Processor, writer *output.TranscriptWriter) *Application {
	return &Application{
		config:    cfg,
		logger:    zapLogger,
		processor: proc,
		writer:    writer,
	}
}

// ProcessFile runs the full pipeline over one WAV recording: decode, process,
// tag with the conversation ID, and write the output artifacts. An empty
// conversationID gets a generated UUID.
func (app *Application) ProcessFile(ctx context.Context, wavPath, conversationID string) (*transcript.DiarizedTranscript, error) {
	if app.downloader != nil {
		if err := app.downloader.EnsureModelExists(app.config.GetWhisperModelName(), app.config.GetWhisperModelPath()); err != nil {
			return nil, fmt.Errorf("failed to ensure whisper model: %w", err)
		}
	}

	samples, sampleRate, err := audioio.ReadWAVFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input audio: %w", err)
	}

	if expected := app.config.GetSampleRate(); sampleRate != expected {
		app.logger.Warn("input sample rate differs from configured rate",
			zap.Int("input_rate", sampleRate),
			zap.Int("configured_rate", expected))
	}

	app.logger.Info("processing recording file",
		zap.String("path", wavPath),
		zap.Int("sample_rate", sampleRate),
		zap.Int("samples", len(samples)))

	result, err := app.processor.Process(ctx, samples, sampleRate)
	if err != nil {
		return nil, err
	}

	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	result.ConversationID = conversationID

	if app.writer != nil {
		if _, err := app.writer.WriteArtifacts(result); err != nil {
			return nil, fmt.Errorf("failed to write transcript artifacts: %w", err)
		}
	}

	app.processor.LogMetricsSummary()
	return result, nil
}

// Shutdown releases provider resources
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down application")

	if app.transcriber != nil {
		if err := app.transcriber.Close(); err != nil {
			return fmt.Errorf("failed to close transcription provider: %w", err)
		}
	}
	return nil
}
