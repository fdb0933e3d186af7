package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"cuke-bridge/bridge"
	"cuke-bridge/options"
	"cuke-bridge/report"
	"cuke-bridge/shared"
	"cuke-bridge/suite"
)

const eatingFeature = `Feature: Eating
  Background:
    Given there are 5 cukes

  Scenario: eat some
    When I eat 3
    Then 2 remain

  Scenario: eat too many
    When I eat 7
    Then 2 remain

  Scenario: fly
    When I fly away
`

const outlineFeature = `Feature: Outline
  Scenario Outline: eat <n>
    Given there are <start> cukes
    When I eat <n>

    Examples:
      | start | n |
      | 5     | 1 |
      | 5     | 2 |
`

func parse(t *testing.T, uri, content string) *shared.Feature {
	t.Helper()
	f, err := suite.Parse(uri, []byte(content))
	require.NoError(t, err)
	return f
}

func newBridge(t *testing.T, f *shared.Feature, c *Collector) (*bridge.Bridge, *report.Recorder) {
	t.Helper()
	rec := report.NewRecorder()
	total := suite.CountUnits(&shared.Suite{Features: []*shared.Feature{f}})
	return bridge.New(total, rec, bridge.WithSnippets(c), bridge.WithLogger(zaptest.NewLogger(t))), rec
}

type cukes struct {
	left int
}

func (c *cukes) thereAre(n int) error {
	c.left = n
	return nil
}

func (c *cukes) eat(n int) error {
	if n > c.left {
		return fmt.Errorf("only %d cukes left", c.left)
	}
	c.left -= n
	return nil
}

func (c *cukes) remain(n int) error {
	if c.left != n {
		return fmt.Errorf("expected %d cukes, got %d", n, c.left)
	}
	return nil
}

func eatingSteps(sc *godog.ScenarioContext) {
	c := &cukes{}
	sc.Step(`^there are (\d+) cukes$`, func(s string) error {
		n, _ := strconv.Atoi(s)
		return c.thereAre(n)
	})
	sc.Step(`^I eat (\d+)$`, func(s string) error {
		n, _ := strconv.Atoi(s)
		return c.eat(n)
	})
	sc.Step(`^(\d+) remain$`, func(s string) error {
		n, _ := strconv.Atoi(s)
		return c.remain(n)
	})
}

func TestSnippet_Arguments(t *testing.T) {
	got := Snippet(`I have "apples" and 3 pears weighing 1.5`, options.SnippetsCamelCase)
	assert.Contains(t, got, "func iHaveAndPearsWeighing(arg1 string, arg2 int, arg3 float64) error {")
	assert.Contains(t, got, "return godog.ErrPending")
	assert.Contains(t, got, "ctx.Step(`^I have \"([^\"]*)\" and (-?\\d+) pears weighing (-?\\d+\\.\\d+)$`, iHaveAndPearsWeighing)")
}

func TestSnippet_UnderscoreStyle(t *testing.T) {
	got := Snippet("I fly away", options.SnippetsUnderscore)
	assert.Contains(t, got, "func i_fly_away() error {")
}

func TestCollector_DeduplicatesSnippets(t *testing.T) {
	c := NewCollector("")
	first := c.Undefined("I fly")
	c.Undefined("I swim")
	c.Undefined("I fly")

	assert.Len(t, c.Snippets(), 2)
	assert.Equal(t, first, c.Snippets()[0])
	assert.Equal(t, c.Snippets()[0], c.LastSnippet())

	c.AddError(nil)
	c.AddError(errors.New("boom"))
	assert.Len(t, c.Errors(), 1)
}

func TestCollector_WriteStepDefs(t *testing.T) {
	c := NewCollector("")
	c.Defined(`^I eat (\d+)$`)
	c.Defined(`^I eat (\d+)$`)
	dir := filepath.Join(t.TempDir(), ".cucumber")

	require.NoError(t, c.WriteStepDefs(dir))

	body, err := os.ReadFile(filepath.Join(dir, StepDefsFile))
	require.NoError(t, err)
	var defs []map[string]string
	require.NoError(t, json.Unmarshal(body, &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, `^I eat (\d+)$`, defs[0]["source"])
}

func TestDryRun_ReportsEveryScenarioAsPassing(t *testing.T) {
	f := parse(t, "eating.feature", eatingFeature)
	c := NewCollector("")
	b, rec := newBridge(t, f, c)

	require.NoError(t, NewDryRun().Run(context.Background(), f, b))
	b.Close()

	started := rec.Started()
	require.Len(t, started, 3)
	assert.Equal(t, "Scenario eat some", started[0].Status.String(report.KeyTest))
	assert.Equal(t, "Feature Eating", started[0].Status.String(report.KeyClass))
	for _, u := range rec.Finished() {
		assert.Equal(t, report.CodeOK, u.Code)
		assert.Equal(t, bridge.SuccessStream, u.Status.String(report.KeyStream))
	}
}

func TestDryRun_ExpandsOutlineRows(t *testing.T) {
	f := parse(t, "outline.feature", outlineFeature)
	b, rec := newBridge(t, f, NewCollector(""))

	require.NoError(t, NewDryRun().Run(context.Background(), f, b))

	started := rec.Started()
	require.Len(t, started, 2)
	assert.Equal(t, "Scenario Outline eat 1", started[0].Status.String(report.KeyTest))
	assert.Equal(t, "Scenario Outline eat 2", started[1].Status.String(report.KeyTest))
	assert.Equal(t, bridge.StateIdle, b.State())
}

func TestDryRun_StopsOnCancelledContext(t *testing.T) {
	f := parse(t, "eating.feature", eatingFeature)
	b, rec := newBridge(t, f, NewCollector(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDryRun().Run(ctx, f, b)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Updates())
}

func TestGodog_ReportsOutcomesPerScenario(t *testing.T) {
	f := parse(t, "eating.feature", eatingFeature)
	c := NewCollector("")
	b, rec := newBridge(t, f, c)
	g := NewGodog(GodogConfig{
		Initializers: []ScenarioInitializer{eatingSteps},
		NoColors:     true,
	}, c, zaptest.NewLogger(t))

	require.NoError(t, g.Run(context.Background(), f, b))
	b.Close()

	started := rec.Started()
	require.Len(t, started, 3)
	assert.Equal(t, "Scenario eat some", started[0].Status.String(report.KeyTest))
	assert.Equal(t, "Scenario eat too many", started[1].Status.String(report.KeyTest))
	assert.Equal(t, "Scenario fly", started[2].Status.String(report.KeyTest))

	finished := rec.Finished()
	require.Len(t, finished, 3)
	assert.Equal(t, report.CodeOK, finished[0].Code)
	assert.Equal(t, report.CodeFailure, finished[1].Code)
	assert.Contains(t, finished[1].Status.String(report.KeyStack), "only 5 cukes left")
	assert.Equal(t, report.CodeError, finished[2].Code)
	assert.Equal(t, "Missing step-definition: I fly away", finished[2].Status.String(report.KeyStream))
	assert.Contains(t, finished[2].Status.String(report.KeyStack), "func iFlyAway() error {")

	assert.Len(t, c.Errors(), 1)
	assert.Len(t, c.Snippets(), 1)
	assert.Contains(t, c.Definitions(), `^I eat (\d+)$`)
}

func TestGodog_OutlineRowsAreUnits(t *testing.T) {
	f := parse(t, "outline.feature", outlineFeature)
	c := NewCollector("")
	b, rec := newBridge(t, f, c)
	g := NewGodog(GodogConfig{Initializers: []ScenarioInitializer{eatingSteps}}, c, nil)

	require.NoError(t, g.Run(context.Background(), f, b))

	started := rec.Started()
	require.Len(t, started, 2)
	assert.Equal(t, "Scenario Outline eat 1", started[0].Status.String(report.KeyTest))
	assert.Equal(t, "Scenario Outline eat 2", started[1].Status.String(report.KeyTest))
	for _, u := range rec.Finished() {
		assert.Equal(t, report.CodeOK, u.Code)
	}
}

func TestPerFeatureFormat(t *testing.T) {
	assert.Equal(t, "pretty", perFeatureFormat("pretty", "features/login.feature"))
	assert.Equal(t, "junit:out/report-login.xml", perFeatureFormat("junit:out/report.xml", "features/login.feature"))
}
