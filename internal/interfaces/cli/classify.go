package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/HSCode-Intelligence/pkg/client"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// classifyOptions holds flags for the classify command.
type classifyOptions struct {
	description string
	attributes  []string
	caseID      string
}

// NewClassifyCmd creates the classify command.  The goods title is taken
// from the positional arguments; additional detail goes through flags.
func NewClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify <goods title>",
		Short: "Classify a goods description into an HS tariff code",
		Example: `  hscode classify "café tostado en grano"
  hscode classify "teléfono inteligente" --attr brand=ACME --attr pantalla=6.1
  hscode classify "aceite de oliva virgen" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "extended goods description")
	cmd.Flags().StringArrayVar(&opts.attributes, "attr", nil, "goods attribute as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.caseID, "case-id", "", "external case identifier")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string, opts *classifyOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if cliCtx.Client == nil {
		return errors.InvalidState("no API server configured, use --server")
	}

	attrs, err := parseAttributes(opts.attributes)
	if err != nil {
		return err
	}

	req := &client.ClassifyRequest{
		CaseID:      opts.caseID,
		Title:       strings.Join(args, " "),
		Description: opts.description,
		Attributes:  attrs,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	result, err := cliCtx.Client.Classify(ctx, req)
	if err != nil {
		return err
	}

	if strings.EqualFold(cliCtx.OutputFormat, "json") {
		return printJSON(cmd, result)
	}
	return printClassification(cmd, result)
}

// parseAttributes turns repeated key=value flags into a map.
func parseAttributes(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, errors.InvalidParam(fmt.Sprintf("invalid attribute %q, expected key=value", pair))
		}
		attrs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return attrs, nil
}

func printClassification(cmd *cobra.Command, r *client.ClassificationResult) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Code:        %s\n", r.NationalCode)
	fmt.Fprintf(out, "HS6:         %s\n", r.HS6)
	if r.Title != "" {
		fmt.Fprintf(out, "Title:       %s\n", r.Title)
	}
	fmt.Fprintf(out, "Confidence:  %.2f\n", r.Confidence)
	fmt.Fprintf(out, "Method:      %s\n", r.Method)
	if r.RequiresReview {
		fmt.Fprintln(out, "Review:      REQUIRED")
	}
	if r.Rationale != "" {
		fmt.Fprintf(out, "Rationale:   %s\n", r.Rationale)
	}
	if len(r.TopCandidates) > 1 {
		fmt.Fprintln(out, "Candidates:")
		for _, c := range r.TopCandidates {
			fmt.Fprintf(out, "  %-12s %.3f  %s\n", c.Code, c.TotalScore, c.Title)
		}
	}
	return nil
}

//Personal.AI order the ending
