package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"convoscribe/internal/app"
	"convoscribe/internal/config"
	"convoscribe/internal/transcript"
)

func main() {
	var (
		inputFlag        = flag.String("input", "", "Path to the WAV recording to process")
		conversationFlag = flag.String("conversation", "", "Conversation ID to tag the transcript with (generated if empty)")
		configFlag       = flag.String("config", "", "Path to a config file (overrides CONFIG_PATH)")
		outputFlag       = flag.String("output", "", "Directory for transcript artifacts (overrides configuration)")
		quietFlag        = flag.Bool("quiet", false, "Do not print the formatted transcript to stdout")
		helpFlag         = flag.Bool("help", false, "Show help message")
		versionFlag      = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	if *inputFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		printHelp()
		os.Exit(2)
	}

	if err := runApplication(*inputFlag, *conversationFlag, *configFlag, *outputFlag, *quietFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfiguration resolves configuration in precedence order: the -config
// flag, then the file named by CONFIG_PATH, then environment variables.
func loadConfiguration(configPath string) (*config.Configuration, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath != "" {
		cfg, err := config.NewConfigurationFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
		return cfg, nil
	}
	cfg, err := config.NewConfigurationFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// runApplication contains the core application logic that can be tested
func runApplication(inputPath, conversationID, configPath, outputDir string, quiet bool) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("convoscribe starting up",
		zap.String("component", "main"),
		zap.String("input", inputPath))

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.SetOutputDirectory(outputDir)
	}

	application := app.NewApplicationFromConfig(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal",
			zap.String("signal", sig.String()),
			zap.String("component", "main"))
		cancel()
	}()

	result, err := application.ProcessFile(ctx, inputPath, conversationID)
	if err != nil {
		if shutdownErr := application.Shutdown(); shutdownErr != nil {
			logger.Error("error during shutdown", zap.Error(shutdownErr))
		}
		return fmt.Errorf("processing failed: %w", err)
	}

	if !quiet {
		fmt.Print(transcript.Format(result))
	}

	logger.Info("processing finished",
		zap.String("conversation_id", result.ConversationID),
		zap.Int("segments", len(result.Segments)),
		zap.Int("speakers", result.SpeakerCount),
		zap.Float64("duration_sec", result.TotalDuration))

	if err := application.Shutdown(); err != nil {
		return fmt.Errorf("application shutdown error: %w", err)
	}
	return nil
}

// printHelp displays command line usage information
func printHelp() {
	fmt.Println("Convoscribe - Speaker-Attributed Conversation Transcription")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("    convoscribe -input <recording.wav> [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("    -input         Path to the WAV recording to process (required)")
	fmt.Println("    -conversation  Conversation ID for the transcript (generated if empty)")
	fmt.Println("    -config        Path to a config file (overrides CONFIG_PATH)")
	fmt.Println("    -output        Directory for transcript artifacts (overrides configuration)")
	fmt.Println("    -quiet         Suppress transcript output on stdout")
	fmt.Println("    -help          Show this help message")
	fmt.Println("    -version       Show version information")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("    Configuration is loaded from the file named by CONFIG_PATH,")
	fmt.Println("    or from environment variables (WHISPER_MODEL_PATH,")
	fmt.Println("    DIARIZATION_BASE_URL, OUTPUT_DIRECTORY, ...).")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("    convoscribe -input meeting.wav")
	fmt.Println("    convoscribe -input call.wav -conversation support-8841")
	fmt.Println("    convoscribe -input call.wav -config ./config.yaml -output ./out")
}

// printVersion displays version and build information
func printVersion() {
	fmt.Println("Convoscribe")
	fmt.Println("Version: 1.0")
	fmt.Println("Architecture: Go + Whisper.cpp + pyannote sidecar")
}
