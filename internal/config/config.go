package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("whisper.model_path", "./models/ggml-base.en.bin")
	v.SetDefault("whisper.model_name", "base.en")
	v.SetDefault("whisper.language", "en")
	v.SetDefault("diarization.base_url", "")
	v.SetDefault("diarization.timeout_sec", 300)
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("output.directory", "./transcripts")
	v.SetDefault("debug.mode", false)
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	// Set up environment variable mapping
	v.SetEnvPrefix("CONVOSCRIBE")
	v.AutomaticEnv()

	// Map specific environment variables
	v.BindEnv("whisper.model_path", "WHISPER_MODEL_PATH")
	v.BindEnv("whisper.model_name", "WHISPER_MODEL_NAME")
	v.BindEnv("whisper.language", "WHISPER_LANGUAGE")
	v.BindEnv("diarization.base_url", "DIARIZATION_BASE_URL")
	v.BindEnv("diarization.timeout_sec", "DIARIZATION_TIMEOUT_SEC")
	v.BindEnv("audio.sample_rate", "AUDIO_SAMPLE_RATE")
	v.BindEnv("output.directory", "OUTPUT_DIRECTORY")
	v.BindEnv("debug.mode", "DEBUG_MODE")

	return &Configuration{viper: v}, nil
}

// GetWhisperModelPath returns the configured Whisper model path
func (c *Configuration) GetWhisperModelPath() string {
	return c.viper.GetString("whisper.model_path")
}

// GetWhisperModelName returns the configured Whisper model name used for downloads
func (c *Configuration) GetWhisperModelName() string {
	return c.viper.GetString("whisper.model_name")
}

// GetWhisperLanguage returns the configured transcription language
func (c *Configuration) GetWhisperLanguage() string {
	return c.viper.GetString("whisper.language")
}

// GetDiarizationBaseURL returns the diarization sidecar base URL.
// An empty string means diarization is unconfigured.
func (c *Configuration) GetDiarizationBaseURL() string {
	return c.viper.GetString("diarization.base_url")
}

// GetDiarizationTimeout returns the diarization request timeout
func (c *Configuration) GetDiarizationTimeout() time.Duration {
	return time.Duration(c.viper.GetInt("diarization.timeout_sec")) * time.Second
}

// GetSampleRate returns the expected input audio sample rate in Hz
func (c *Configuration) GetSampleRate() int {
	return c.viper.GetInt("audio.sample_rate")
}

// GetOutputDirectory returns the directory where transcripts are written
func (c *Configuration) GetOutputDirectory() string {
	return c.viper.GetString("output.directory")
}

// SetOutputDirectory overrides the output directory, taking precedence over
// file and environment values. Used for the -output CLI flag.
func (c *Configuration) SetOutputDirectory(dir string) {
	c.viper.Set("output.directory", dir)
}

// GetDebugMode returns whether debug logging is enabled
func (c *Configuration) GetDebugMode() bool {
	return c.viper.GetBool("debug.mode")
}
