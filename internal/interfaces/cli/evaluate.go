package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/HSCode-Intelligence/internal/application/evaluation"
	"github.com/turtacn/HSCode-Intelligence/internal/bootstrap"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// evaluateOptions holds flags for the evaluate command.
type evaluateOptions struct {
	samplesPath string
	upload      bool
}

// NewEvaluateCmd creates the evaluate command, which runs a batch evaluation
// over a labelled sample file and prints the summary the adaptive tuner
// consumes.
func NewEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a batch evaluation over labelled samples",
		Example: `  hscode evaluate --samples testdata/samples.csv
  hscode evaluate --samples samples.csv --upload -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.samplesPath, "samples", "", "labelled samples CSV file (required)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "upload the summary to the report store")
	_ = cmd.MarkFlagRequired("samples")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	samples, err := evaluation.LoadSamples(opts.samplesPath)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return errors.InvalidParam("sample file contains no rows")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cliCtx.Config, cliCtx.Logger, bootstrap.Options{
		Reports: opts.upload,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	summary, err := app.Runner.Run(ctx, samples)
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, summary)
	}
	return printSummary(cmd, summary, len(samples))
}

func printSummary(cmd *cobra.Command, s *ctypes.EvaluationSummary, sampleCount int) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Samples:          %d\n", sampleCount)
	fmt.Fprintf(out, "Classified:       %d\n", s.Total)
	fmt.Fprintf(out, "Exact matches:    %d (%.1f%%)\n", s.ExactMatches, s.Accuracy()*100)
	fmt.Fprintf(out, "Avg confidence:   %.3f\n", s.AvgConfidence)
	fmt.Fprintf(out, "Suspicious ratio: %.3f\n", s.SuspiciousRatio)
	fmt.Fprintf(out, "Review ratio:     %.3f\n", s.ReviewRatio)

	if len(s.TopCodes) > 0 {
		fmt.Fprintln(out, "Top codes:")
		for _, cf := range s.TopCodes {
			fmt.Fprintf(out, "  %-12s %d\n", cf.Code, cf.Count)
		}
	}
	if len(s.PredictedSuspects) > 0 {
		fmt.Fprintln(out, "Predicted suspects:")
		for _, cf := range s.PredictedSuspects {
			fmt.Fprintf(out, "  %-12s %d\n", cf.Code, cf.Count)
		}
	}
	return nil
}

//Personal.AI order the ending
