// main package for speak
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/speak/internal/archive"
	"github.com/book-expert/speak/internal/audio"
	"github.com/book-expert/speak/internal/config"
	"github.com/book-expert/speak/internal/core"
	"github.com/book-expert/speak/internal/objectstore"
	"github.com/book-expert/speak/internal/pipeline"
	"github.com/book-expert/speak/internal/playback"
	"github.com/book-expert/speak/internal/storage"
	"github.com/book-expert/speak/internal/synth"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// Text spoken when no --text flag is given.
const (
	defaultText = "अष्ट्रेलियाले ‘विश्वको सबैभन्दा ठूलो सौर्य तथा बेट्री फर्म’ परियोजनालाई स्वीकृति दिएको छ। " +
		"यस परियोजनाले सिंगापुरलाई ऊर्जा निर्यात गर्नेछ।"
	defaultLang = "ne"
)

// Flag names and descriptions.
const (
	flagText       = "text"
	flagLang       = "lang"
	flagConfig     = "config"
	flagNoPlay     = "no-play"
	flagTextDesc   = "Text to convert to speech"
	flagLangDesc   = "Language code understood by the synthesis backend"
	flagConfigDesc = "Path to a TOML config file (defaults to the central configurator)"
	flagNoPlayDesc = "Save the audio without playing it"
)

// Log file names.
const (
	bootstrapLogFile = "speak-bootstrap.log"
	finalLogFile     = "speak.log"
)

// Console and log messages.
const (
	consoleFmtSaved        = "Audio saved to %s\n"
	consoleFmtExitError    = "speak exited with error: %v\n"
	consoleFmtBootstrapErr = "FATAL: Failed to create bootstrap logger: %v\n"
	consoleFmtCloseLogErr  = "error closing final logger: %v\n"

	logBootstrapCreated   = "Bootstrap logger created."
	logFmtConfigFile      = "Loading configuration from %s"
	logFmtConfigFallback  = "Central configuration unavailable, using defaults: %v"
	logConfigLoaded       = "Configuration loaded successfully."
	logFmtInitialized     = "speak initialized (backend: %s, output: %s, playback: %t)"
	logFmtArchiveEnabled  = "Archiving to NATS bucket %s at %s"
	logFmtPermissionEnded = "Run ended with a contained permission failure: %v"
	logFmtCloseNATS       = "Failed to drain NATS connection: %v"
)

// options holds the parsed command-line flag values.
type options struct {
	text       string
	lang       string
	configPath string
	noPlay     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cmd := newRootCommand(os.Stdout)

	err := cmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, consoleFmtExitError, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:           "speak",
		Short:         "Convert text to speech, save it and play it",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout)
		},
	}

	cmd.SetOut(stdout)
	cmd.Flags().StringVar(&opts.text, flagText, defaultText, flagTextDesc)
	cmd.Flags().StringVar(&opts.lang, flagLang, defaultLang, flagLangDesc)
	cmd.Flags().StringVar(&opts.configPath, flagConfig, "", flagConfigDesc)
	cmd.Flags().BoolVar(&opts.noPlay, flagNoPlay, false, flagNoPlayDesc)

	return cmd
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := logger.New(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, consoleFmtBootstrapErr, err)

		return fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	defer func() { _ = bootstrapLog.Close() }()

	bootstrapLog.Info(logBootstrapCreated)

	// 2. Load configuration
	cfg, err := loadConfig(opts.configPath, bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return err
	}

	bootstrapLog.Info(logConfigLoaded)

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := logger.New(cfg.Paths.BaseLogsDir, finalLogFile)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, consoleFmtCloseLogErr, closeErr)
		}
	}()

	// 4. Wire the pipeline and run it once
	speaker, cleanup, err := buildPipeline(cfg, opts.noPlay, stdout, finalLog)
	if err != nil {
		finalLog.Error("Failed to build pipeline: %v", err)

		return err
	}
	defer cleanup()

	result, err := speaker.Run(ctx, opts.text, opts.lang)
	if err != nil {
		return err
	}

	if !result.Saved() {
		finalLog.Warn(logFmtPermissionEnded, result.Cause)

		return nil
	}

	fmt.Fprintf(stdout, consoleFmtSaved, result.Path)

	return nil
}

// loadConfig reads the file given with --config, or asks the central
// configurator and falls back to defaults when it is unavailable.
func loadConfig(path string, log *logger.Logger) (*config.Config, error) {
	if path != "" {
		log.Info(logFmtConfigFile, path)

		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}

		return cfg, nil
	}

	cfg, err := config.Load(log)
	if err == nil {
		return cfg, nil
	}

	log.Warn(logFmtConfigFallback, err)

	cfg, err = config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// buildPipeline wires the configured collaborators. The returned cleanup
// releases the NATS connection when archiving is enabled.
func buildPipeline(
	cfg *config.Config,
	noPlay bool,
	console io.Writer,
	log *logger.Logger,
) (*pipeline.Pipeline, func(), error) {
	synthesizer, err := synth.New(cfg.Synthesis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	playEnabled := cfg.Playback.Enabled && !noPlay

	var player core.Player = playback.Nop{}
	if playEnabled {
		player = playback.NewSpeaker(time.Duration(cfg.Playback.BufferMillis) * time.Millisecond)
	}

	store := storage.NewFileStore(cfg.Output)
	speaker := pipeline.New(synthesizer, audio.MP3Decoder{}, store, player, console, log)

	log.System(logFmtInitialized, cfg.Synthesis.Backend, store.Path(), playEnabled)

	if cfg.NATS.URL == "" {
		return speaker, func() {}, nil
	}

	natsConnection, archiver, err := connectArchive(cfg.NATS, log)
	if err != nil {
		return nil, nil, err
	}

	speaker.SetArchiver(archiver)

	cleanup := func() {
		drainErr := natsConnection.Drain()
		if drainErr != nil {
			log.Warn(logFmtCloseNATS, drainErr)
		}
	}

	return speaker, cleanup, nil
}

func connectArchive(cfg config.NATSConfig, log *logger.Logger) (*nats.Conn, *archive.Archiver, error) {
	natsConnection, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	jetStreamContext, err := natsConnection.JetStream()
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetStreamContext, cfg.AudioObjectStoreBucket)
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to open audio object store: %w", err)
	}

	log.Info(logFmtArchiveEnabled, store.Bucket(), cfg.URL)

	return natsConnection, archive.New(store, natsConnection, cfg.AudioCreatedSubject, log), nil
}
