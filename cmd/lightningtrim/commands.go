package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/keagan/lightningtrim/internal/config"
	"github.com/keagan/lightningtrim/internal/logging"
	"github.com/keagan/lightningtrim/internal/pipeline"
	"github.com/keagan/lightningtrim/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var trimCmd = &cobra.Command{
	Use:   "trim [input video]",
	Short: "Detect strikes and render the trimmed video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := checkInput(args[0])
		if err != nil {
			return err
		}

		cfg := config.FromContext(cmd.Context())
		pipe, err := pipeline.NewFromConfig(log.Logger, cfg)
		if err != nil {
			return err
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			pipe = pipe.WithOutput(output)
		}

		res, err := pipe.Run(cmd.Context(), input)
		if err != nil {
			return err
		}

		switch res.Outcome {
		case pipeline.OutcomeNoEvents:
			fmt.Fprintln(cmd.OutOrStdout(), "No lightning activity found; nothing rendered.")
		case pipeline.OutcomeRendered:
			fmt.Fprintf(cmd.OutOrStdout(), "Kept %d segment(s), %s of video.\nSaved to: %s\n",
				len(res.Segments), util.FormatSeconds(res.KeptSeconds()), res.Output)
		}
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [input video]",
	Short: "Print the segments that would be kept, without rendering",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := checkInput(args[0])
		if err != nil {
			return err
		}

		cfg := config.FromContext(cmd.Context())
		pipe, err := pipeline.NewFromConfig(log.Logger, cfg)
		if err != nil {
			return err
		}

		res, err := pipe.Detect(cmd.Context(), input)
		if err != nil {
			return err
		}

		return printSegments(cmd.OutOrStdout(), res)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "lightningtrim.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		logging.WithComponent("cli").Info().Str("path", path).Msg("wrote default config")
		return nil
	},
}

// checkInput verifies the input video exists
func checkInput(path string) (string, error) {
	if !util.FileExists(path) {
		return "", &pipeline.Error{
			Kind:  pipeline.KindConfiguration,
			Stage: pipeline.StageConfig,
			Err:   fmt.Errorf("%s is not a valid file", path),
		}
	}
	return path, nil
}

// printSegments writes the detection result as a table
func printSegments(w io.Writer, res *pipeline.Result) error {
	if res.Outcome == pipeline.OutcomeNoEvents {
		_, err := fmt.Fprintln(w, "No lightning activity found.")
		return err
	}

	fmt.Fprintf(w, "%.3f fps, %d samples, %d bright frames, %d event(s)\n\n",
		res.FrameRate, res.Samples, res.BrightFrames, len(res.Events))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTART\tEND\tDURATION")
	for i, s := range res.Segments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2fs\n", i+1,
			util.FormatSeconds(s.Start), util.FormatSeconds(s.End), s.Duration())
	}
	fmt.Fprintf(tw, "\t\ttotal\t%.2fs\n", res.KeptSeconds())
	return tw.Flush()
}

