package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	t.Run("should provide default settings", func(t *testing.T) {
		cfg := NewConfiguration()

		assert.Equal(t, "./models/ggml-base.en.bin", cfg.GetWhisperModelPath())
		assert.Equal(t, "base.en", cfg.GetWhisperModelName())
		assert.Equal(t, "en", cfg.GetWhisperLanguage())
		assert.Equal(t, "", cfg.GetDiarizationBaseURL())
		assert.Equal(t, 300*time.Second, cfg.GetDiarizationTimeout())
		assert.Equal(t, 16000, cfg.GetSampleRate())
		assert.Equal(t, "./transcripts", cfg.GetOutputDirectory())
		assert.False(t, cfg.GetDebugMode())
	})
}

func TestNewConfigurationFromFile(t *testing.T) {
	t.Run("should load settings from yaml file", func(t *testing.T) {
		configContent := `
whisper:
  model_path: /opt/models/ggml-small.bin
  language: de
diarization:
  base_url: http://localhost:8388
  timeout_sec: 60
audio:
  sample_rate: 16000
debug:
  mode: true
`
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

		cfg, err := NewConfigurationFromFile(configFile)

		require.NoError(t, err)
		assert.Equal(t, "/opt/models/ggml-small.bin", cfg.GetWhisperModelPath())
		assert.Equal(t, "de", cfg.GetWhisperLanguage())
		assert.Equal(t, "http://localhost:8388", cfg.GetDiarizationBaseURL())
		assert.Equal(t, 60*time.Second, cfg.GetDiarizationTimeout())
		assert.True(t, cfg.GetDebugMode())
	})

	t.Run("should keep defaults for settings missing from file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("whisper:\n  language: fr\n"), 0644))

		cfg, err := NewConfigurationFromFile(configFile)

		require.NoError(t, err)
		assert.Equal(t, "fr", cfg.GetWhisperLanguage())
		assert.Equal(t, "./models/ggml-base.en.bin", cfg.GetWhisperModelPath())
		assert.Equal(t, 16000, cfg.GetSampleRate())
	})

	t.Run("should return error for missing file", func(t *testing.T) {
		cfg, err := NewConfigurationFromFile("/nonexistent/config.yaml")

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestNewConfigurationFromEnv(t *testing.T) {
	t.Run("should read mapped environment variables", func(t *testing.T) {
		t.Setenv("WHISPER_MODEL_PATH", "/env/models/ggml-tiny.bin")
		t.Setenv("DIARIZATION_BASE_URL", "http://diarizer:8388")
		t.Setenv("OUTPUT_DIRECTORY", "/data/out")

		cfg, err := NewConfigurationFromEnv()

		require.NoError(t, err)
		assert.Equal(t, "/env/models/ggml-tiny.bin", cfg.GetWhisperModelPath())
		assert.Equal(t, "http://diarizer:8388", cfg.GetDiarizationBaseURL())
		assert.Equal(t, "/data/out", cfg.GetOutputDirectory())
	})

	t.Run("should fall back to defaults without environment variables", func(t *testing.T) {
		cfg, err := NewConfigurationFromEnv()

		require.NoError(t, err)
		assert.Equal(t, 16000, cfg.GetSampleRate())
		assert.Equal(t, "en", cfg.GetWhisperLanguage())
	})
}

func TestSetOutputDirectory(t *testing.T) {
	t.Run("should override the configured output directory", func(t *testing.T) {
		t.Setenv("OUTPUT_DIRECTORY", "/from/env")
		cfg, err := NewConfigurationFromEnv()
		require.NoError(t, err)

		cfg.SetOutputDirectory("/from/flag")

		assert.Equal(t, "/from/flag", cfg.GetOutputDirectory())
	})
}
