package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cuke-bridge/runner"
)

const checkoutFeature = `Feature: Checkout
  Scenario: pay by card
    Given a cart with 2 items
    When I pay by card

  Scenario Outline: pay by <method>
    When I pay by <method>

    Examples:
      | method |
      | cash   |
      | bank   |
`

func writeFeature(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkout.feature"), []byte(checkoutFeature), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestOptionsCmd_PrintsTranslatedOptions(t *testing.T) {
	out, err := execute(t, "options",
		"-e", "tags=@a", "-e", "tags=@b", "-e", "dryRun=true",
		"-e", "features=f1", "-e", "features=f2", "-e", "debug=true")
	require.NoError(t, err)
	assert.Equal(t, "--dry-run --tags @a --tags @b f1 f2\n", out)
}

func TestOptionsCmd_ConfigFileUsesSeparator(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("arguments:\n  tags: \"@a--@b\"\n  glue: auth\n"), 0o644))

	out, err := execute(t, "options", "--config", cfgPath, "-e", "glue=billing", "-e", "glue=cart")
	require.NoError(t, err)
	assert.Equal(t, "--glue billing --glue cart --tags @a --tags @b\n", out)
}

func TestParseArguments_KeepsRepeatedKeys(t *testing.T) {
	args, err := parseArguments([]string{"tags=@a", "name=valid password", "tags=~@wip", "dryRun=true"})
	require.NoError(t, err)
	assert.Equal(t, []string{"@a", "~@wip"}, args["tags"])
	assert.Equal(t, []string{"valid password"}, args["name"])
	assert.Equal(t, []string{"true"}, args["dryRun"])
}

func TestOptionsCmd_RejectsMalformedArgument(t *testing.T) {
	_, err := execute(t, "options", "-e", "tags")
	assert.ErrorIs(t, err, runner.ErrConfiguration)
}

func TestCountCmd_ReportsTotalOnly(t *testing.T) {
	dir := writeFeature(t)

	out, err := execute(t, "count", dir)
	require.NoError(t, err)

	assert.NotContains(t, out, "INSTRUMENTATION_STATUS:")
	assert.Contains(t, out, "INSTRUMENTATION_RESULT: id=InstrumentationTestRunner\n")
	assert.Contains(t, out, "INSTRUMENTATION_RESULT: numtests=2\n")
	assert.True(t, strings.HasSuffix(out, "INSTRUMENTATION_CODE: -1\n"))
}

func TestRunCmd_DryRunStreamsStatus(t *testing.T) {
	dir := writeFeature(t)

	out, err := execute(t, "run", "-e", "dryRun=true", dir)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "INSTRUMENTATION_STATUS_CODE: 1\n"))
	assert.Equal(t, 3, strings.Count(out, "INSTRUMENTATION_STATUS_CODE: 0\n"))
	assert.Contains(t, out, "INSTRUMENTATION_STATUS: test=Scenario pay by card\n")
	assert.Contains(t, out, "INSTRUMENTATION_STATUS: test=Scenario Outline pay by cash\n")
	assert.True(t, strings.HasSuffix(out, "INSTRUMENTATION_CODE: -1\n"))
}

func TestRunCmd_RepeatedTagsAreAnded(t *testing.T) {
	dir := writeFeature(t)
	cfgPath := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("arguments:\n  tags: \"@nightly\"\n"), 0o644))

	out, err := execute(t, "count", "--config", cfgPath, "-e", "tags=~@wip", "-e", "tags=~@slow", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "INSTRUMENTATION_RESULT: numtests=2\n")
}

func TestRunCmd_NameWithSpaces(t *testing.T) {
	dir := writeFeature(t)

	out, err := execute(t, "run", "-e", "dryRun=true", "-e", "name=pay by card", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "INSTRUMENTATION_STATUS_CODE: 1\n"))
	assert.Contains(t, out, "INSTRUMENTATION_STATUS: test=Scenario pay by card\n")
}

func TestCountCmd_IgnoresUnknownGlue(t *testing.T) {
	out, err := execute(t, "count", "-e", "glue=unknown", writeFeature(t))
	require.NoError(t, err)
	assert.Contains(t, out, "INSTRUMENTATION_RESULT: numtests=2\n")
}

func TestRunCmd_CountArgumentSkipsExecution(t *testing.T) {
	dir := writeFeature(t)

	out, err := execute(t, "run", "-e", "count=true", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "INSTRUMENTATION_STATUS:")
}

func TestRunCmd_JSONReportAndMetrics(t *testing.T) {
	dir := writeFeature(t)
	metrics := filepath.Join(t.TempDir(), "cuke.prom")
	output := filepath.Join(t.TempDir(), "status.jsonl")

	_, err := execute(t, "run", "-e", "log=true",
		"--report-format", "json", "--output", output, "--metrics-file", metrics, dir)
	require.NoError(t, err)

	body, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 7)
	assert.Contains(t, lines[6], `"type":"result"`)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "cuke_bridge_units_started_total 3")
	assert.Contains(t, string(prom), "cuke_bridge_runs_finished_total 1")
}

func TestRunCmd_ConfigFile(t *testing.T) {
	dir := writeFeature(t)
	cfgPath := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("features: ["+dir+"]\narguments:\n  dryRun: \"true\"\n  name: card\n"), 0o644))

	out, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "INSTRUMENTATION_STATUS_CODE: 1\n"))
}

func TestRunCmd_NoFeatures(t *testing.T) {
	_, err := execute(t, "run")
	assert.ErrorIs(t, err, runner.ErrConfiguration)
}

func TestRunCmd_UnknownReportFormat(t *testing.T) {
	_, err := execute(t, "run", "--report-format", "xml", writeFeature(t))
	assert.ErrorIs(t, err, runner.ErrConfiguration)
}
