package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/pkg/client"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func newBufferedCommand() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestParseAttributes_KeyValuePairs(t *testing.T) {
	attrs, err := parseAttributes([]string{"material=ceramic", "origin= Brazil "})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"material": "ceramic",
		"origin":   "Brazil",
	}, attrs)
}

func TestParseAttributes_Empty(t *testing.T) {
	attrs, err := parseAttributes(nil)
	require.NoError(t, err)
	assert.Nil(t, attrs)
}

func TestParseAttributes_MissingSeparator(t *testing.T) {
	_, err := parseAttributes([]string{"material"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestParseAttributes_EmptyKeyRejected(t *testing.T) {
	_, err := parseAttributes([]string{"=ceramic"})
	require.Error(t, err)
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())

	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}

func TestGetCLIContext_RoundTrip(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	want := &CLIContext{OutputFormat: "json"}
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, want))

	got, err := GetCLIContext(cmd)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestPrintResult_JSONFormat(t *testing.T) {
	cmd, buf := newBufferedCommand()
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, &CLIContext{OutputFormat: "json"}))

	err := PrintResult(cmd, map[string]string{"code": "0901210000"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"code": "0901210000"`)
}

func TestPrintClassification_RendersCandidates(t *testing.T) {
	cmd, buf := newBufferedCommand()

	err := printClassification(cmd, &client.ClassificationResult{
		NationalCode:   "0901210000",
		HS6:            "090121",
		Title:          "Coffee, roasted, not decaffeinated",
		Confidence:     0.91,
		Method:         "rule_pipeline",
		RequiresReview: true,
		Rationale:      "keyword match on roasted coffee",
		TopCandidates: []client.CandidateCode{
			{Code: "090121", Title: "Coffee, roasted", TotalScore: 0.91},
			{Code: "090122", Title: "Coffee, decaffeinated", TotalScore: 0.44},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Code:        0901210000")
	assert.Contains(t, out, "HS6:         090121")
	assert.Contains(t, out, "Confidence:  0.91")
	assert.Contains(t, out, "Review:      REQUIRED")
	assert.Contains(t, out, "Candidates:")
	assert.Contains(t, out, "090122")
}

func TestPrintSummary_RendersRatios(t *testing.T) {
	cmd, buf := newBufferedCommand()

	err := printSummary(cmd, &ctypes.EvaluationSummary{
		Total:           10,
		ExactMatches:    8,
		AvgConfidence:   0.82,
		SuspiciousRatio: 0.1,
		ReviewRatio:     0.2,
		TopCodes: []ctypes.CodeFrequency{
			{Code: "090121", Count: 4},
		},
	}, 10)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Samples:          10")
	assert.Contains(t, out, "Exact matches:    8 (80.0%)")
	assert.Contains(t, out, "Top codes:")
	assert.Contains(t, out, "090121")
}

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"classify", "serve", "evaluate", "migrate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("output"))
	assert.NotNil(t, root.PersistentFlags().Lookup("server"))
}

func TestVersionCmd_PrintsBuildInfo(t *testing.T) {
	cmd := NewVersionCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	cmd.Run(cmd, nil)

	out := buf.String()
	assert.Contains(t, out, "hscode "+Version)
	assert.Contains(t, out, "commit:")
}

func TestMigrateForce_InvalidVersion(t *testing.T) {
	cmd := newMigrateForceCmd(&migrateOptions{})
	cmd.SetContext(context.Background())

	err := cmd.RunE(cmd, []string{"not-a-number"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations", sourceURL("migrations"))
	assert.Equal(t, "file:///opt/hscode/migrations", sourceURL("/opt/hscode/migrations"))
	assert.Equal(t, "file://already", sourceURL("file://already"))
}

//Personal.AI order the ending
