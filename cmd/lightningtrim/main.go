package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keagan/lightningtrim/internal/config"
	"github.com/keagan/lightningtrim/internal/logging"
	"github.com/keagan/lightningtrim/internal/pipeline"
	"github.com/spf13/cobra"
)

// exitCancelled follows the shell convention for SIGINT
const exitCancelled = 130

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	os.Exit(exitCode(err))
}

var rootCmd = &cobra.Command{
	Use:           "lightningtrim",
	Short:         "lightningtrim - cut a storm video down to its lightning strikes",
	Long:          "Detects lightning strikes by frame brightness and renders a video that keeps only the padded windows around them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return &pipeline.Error{Kind: pipeline.KindConfiguration, Stage: pipeline.StageConfig, Err: err}
		}

		if err := applyFlags(cmd, cfg); err != nil {
			return &pipeline.Error{Kind: pipeline.KindConfiguration, Stage: pipeline.StageConfig, Err: err}
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lightningtrim.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addDetectionFlags(trimCmd)
	addDetectionFlags(detectCmd)
	trimCmd.Flags().StringP("output", "o", "", "output file (default: \"<input> - Lightning Trimmed.mp4\")")
	trimCmd.Flags().String("profile", "", "encoder profile: auto, hardware or software")
	trimCmd.Flags().Int("threads", 0, "ffmpeg threads (0 = ffmpeg default)")

	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func addDetectionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("threshold", "t", 0, "brightness threshold, average luma 0-255 (default from config: 50)")
	cmd.Flags().Float64("pre-roll", 0, "seconds kept before each strike (default from config: 0.5)")
	cmd.Flags().Float64("post-roll", 0, "seconds kept after each strike (default from config: 1.0)")
}

// applyFlags overrides config values with flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if flags.Changed("threshold") {
		cfg.Detection.BrightnessThreshold, err = flags.GetFloat64("threshold")
	}
	if err == nil && flags.Changed("pre-roll") {
		cfg.Detection.PreRoll, err = flags.GetFloat64("pre-roll")
	}
	if err == nil && flags.Changed("post-roll") {
		cfg.Detection.PostRoll, err = flags.GetFloat64("post-roll")
	}
	if err == nil && flags.Changed("profile") {
		cfg.FFmpeg.Profile, err = flags.GetString("profile")
	}
	if err == nil && flags.Changed("threads") {
		cfg.FFmpeg.Threads, err = flags.GetInt("threads")
	}
	if err != nil {
		return err
	}

	return cfg.Validate()
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	logger := logging.WithComponent("cli")

	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		logger.Error().Err(err).Msg("command failed")
		return 1
	}

	if perr.Kind == pipeline.KindCancelled {
		logger.Warn().Str("stage", string(perr.Stage)).Msg("cancelled by user")
		return exitCancelled
	}

	event := logger.Error().
		Str("stage", string(perr.Stage)).
		Str("kind", perr.Kind.String()).
		Err(perr.Err)
	if command, diagnostics, ok := perr.Command(); ok {
		event = event.Str("command", command)
		if diagnostics != "" {
			fmt.Fprintf(os.Stderr, "--- %s diagnostics ---\n%s\n", perr.Stage, diagnostics)
		}
	}
	event.Msg("run failed")
	return 1
}
