package steps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"cuke-bridge/bridge"
	"cuke-bridge/engine"
	"cuke-bridge/options"
	"cuke-bridge/report"
	"cuke-bridge/shared"
	"cuke-bridge/suite"
)

// BridgeTestContext holds state across steps in a scenario.
type BridgeTestContext struct {
	sink      *report.Recorder
	collector *engine.Collector
	bridge    *bridge.Bridge

	arguments map[string]string
	suite     *shared.Suite
}

// NewBridgeTestContext creates a new context for a scenario.
func NewBridgeTestContext() *BridgeTestContext {
	return &BridgeTestContext{}
}

// RegisterSteps connects Gherkin steps to Go functions.
func (btc *BridgeTestContext) RegisterSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^a run reporting (\d+) units?$`, btc.aRunReportingUnits)
	ctx.Step(`^the feature "([^"]*)"$`, btc.theFeature)
	ctx.Step(`^the engine reports a background$`, btc.theEngineReportsABackground)
	ctx.Step(`^the engine reports scenario "([^"]*)"$`, btc.theEngineReportsScenario)
	ctx.Step(`^the engine reports scenario outline "([^"]*)"$`, btc.theEngineReportsScenarioOutline)
	ctx.Step(`^the step "([^"]*)" passes$`, btc.theStepResults(shared.StatusPassed))
	ctx.Step(`^the step "([^"]*)" is skipped$`, btc.theStepResults(shared.StatusSkipped))
	ctx.Step(`^the step "([^"]*)" is pending$`, btc.theStepResults(shared.StatusPending))
	ctx.Step(`^the step "([^"]*)" is undefined$`, btc.theStepIsUndefined)
	ctx.Step(`^the step "([^"]*)" fails with "([^"]*)"$`, btc.theStepFailsWith)
	ctx.Step(`^the feature ends$`, btc.theFeatureEnds)
	ctx.Step(`^the run is closed$`, btc.theRunIsClosed)

	ctx.Step(`^(\d+) units? (?:was|were) started$`, btc.unitsWereStarted)
	ctx.Step(`^unit (\d+) is labelled "([^"]*)" in class "([^"]*)"$`, btc.unitIsLabelledInClass)
	ctx.Step(`^unit (\d+) finished with code "([^"]*)" and stream "([^"]*)"$`, btc.unitFinishedWithCodeAndStream)
	ctx.Step(`^the stack of unit (\d+) contains "([^"]*)"$`, btc.theStackOfUnitContains)
	ctx.Step(`^every started unit was finished$`, btc.everyStartedUnitWasFinished)

	ctx.Step(`^the run arguments:$`, btc.theRunArguments)
	ctx.Step(`^the engine options are "([^"]*)"$`, btc.theEngineOptionsAre)
	ctx.Step(`^an outline with example tables of ([\d,]+) data rows$`, btc.anOutlineWithExampleTablesOfDataRows)
	ctx.Step(`^the unit count is (\d+)$`, btc.theUnitCountIs)
}

func (btc *BridgeTestContext) aRunReportingUnits(total int) error {
	btc.sink = report.NewRecorder()
	btc.collector = engine.NewCollector(options.SnippetsCamelCase)
	btc.bridge = bridge.New(total, btc.sink, bridge.WithSnippets(btc.collector))
	return nil
}

func (btc *BridgeTestContext) theFeature(name string) error {
	btc.bridge.Feature(&shared.Feature{Keyword: "Feature", Name: name})
	return nil
}

func (btc *BridgeTestContext) theEngineReportsABackground() error {
	btc.bridge.Background(&shared.Statement{Kind: shared.KindBackground, Keyword: "Background"})
	return nil
}

func (btc *BridgeTestContext) theEngineReportsScenario(name string) error {
	btc.bridge.Scenario(&shared.Statement{Kind: shared.KindScenario, Keyword: "Scenario", Name: name})
	return nil
}

func (btc *BridgeTestContext) theEngineReportsScenarioOutline(name string) error {
	btc.bridge.ScenarioOutline(&shared.Statement{Kind: shared.KindScenarioOutline, Keyword: "Scenario Outline", Name: name})
	return nil
}

func (btc *BridgeTestContext) theStepResults(status shared.ResultStatus) func(string) error {
	return func(text string) error {
		btc.bridge.Step(&shared.Step{Keyword: "Given ", Text: text})
		btc.bridge.Result(shared.StepResult{Status: status})
		return nil
	}
}

func (btc *BridgeTestContext) theStepIsUndefined(text string) error {
	btc.bridge.Step(&shared.Step{Keyword: "Given ", Text: text})
	btc.collector.Undefined(text)
	btc.bridge.Result(shared.StepResult{Status: shared.StatusUndefined})
	return nil
}

func (btc *BridgeTestContext) theStepFailsWith(text, msg string) error {
	btc.bridge.Step(&shared.Step{Keyword: "Given ", Text: text})
	btc.bridge.Result(shared.StepResult{Status: shared.StatusFailed, Err: errors.New(msg)})
	return nil
}

func (btc *BridgeTestContext) theFeatureEnds() error {
	btc.bridge.EOF()
	return nil
}

func (btc *BridgeTestContext) theRunIsClosed() error {
	btc.bridge.Close()
	return nil
}

func (btc *BridgeTestContext) unitsWereStarted(n int) error {
	if got := len(btc.sink.Started()); got != n {
		return fmt.Errorf("expected %d started units, got %d", n, got)
	}
	return nil
}

func (btc *BridgeTestContext) started(n int) (report.Status, error) {
	started := btc.sink.Started()
	if n < 1 || n > len(started) {
		return nil, fmt.Errorf("unit %d was not started (%d started)", n, len(started))
	}
	return started[n-1].Status, nil
}

func (btc *BridgeTestContext) finished(n int) (report.Update, error) {
	finished := btc.sink.Finished()
	if n < 1 || n > len(finished) {
		return report.Update{}, fmt.Errorf("unit %d was not finished (%d finished)", n, len(finished))
	}
	return finished[n-1], nil
}

func (btc *BridgeTestContext) unitIsLabelledInClass(n int, test, class string) error {
	status, err := btc.started(n)
	if err != nil {
		return err
	}
	if got := status.String(report.KeyTest); got != test {
		return fmt.Errorf("expected test label %q, got %q", test, got)
	}
	if got := status.String(report.KeyClass); got != class {
		return fmt.Errorf("expected class label %q, got %q", class, got)
	}
	if got := status.String(report.KeyStream); got != "\n"+class+":" {
		return fmt.Errorf("unexpected start stream %q", got)
	}
	return nil
}

func (btc *BridgeTestContext) unitFinishedWithCodeAndStream(n int, code, stream string) error {
	u, err := btc.finished(n)
	if err != nil {
		return err
	}
	if u.Code.String() != code {
		return fmt.Errorf("expected unit %d to finish with %s, got %s", n, code, u.Code)
	}
	if got := u.Status.String(report.KeyStream); got != stream {
		return fmt.Errorf("expected stream %q, got %q", stream, got)
	}
	return nil
}

func (btc *BridgeTestContext) theStackOfUnitContains(n int, text string) error {
	u, err := btc.finished(n)
	if err != nil {
		return err
	}
	if !strings.Contains(u.Status.String(report.KeyStack), text) {
		return fmt.Errorf("stack %q does not contain %q", u.Status.String(report.KeyStack), text)
	}
	return nil
}

func (btc *BridgeTestContext) everyStartedUnitWasFinished() error {
	started, finished := btc.sink.Started(), btc.sink.Finished()
	if len(started) != len(finished) {
		return fmt.Errorf("%d units started but %d finished", len(started), len(finished))
	}
	for i := range started {
		s, _ := started[i].Status.Int(report.KeyCurrent)
		f, _ := finished[i].Status.Int(report.KeyCurrent)
		if s != f {
			return fmt.Errorf("unit %d finished out of order as %d", s, f)
		}
	}
	return nil
}

func (btc *BridgeTestContext) theRunArguments(table *godog.Table) error {
	btc.arguments = make(map[string]string)
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected key and value, got %d cells", len(row.Cells))
		}
		btc.arguments[row.Cells[0].Value] = row.Cells[1].Value
	}
	return nil
}

func (btc *BridgeTestContext) theEngineOptionsAre(expected string) error {
	if got := options.Translate(btc.arguments); got != expected {
		return fmt.Errorf("expected options %q, got %q", expected, got)
	}
	return nil
}

func (btc *BridgeTestContext) anOutlineWithExampleTablesOfDataRows(rows string) error {
	outline := shared.Statement{Kind: shared.KindScenarioOutline, Keyword: "Scenario Outline"}
	for _, r := range strings.Split(rows, ",") {
		n, err := strconv.Atoi(r)
		if err != nil {
			return fmt.Errorf("bad row count %q: %w", r, err)
		}
		ex := &shared.Examples{Rows: []shared.TableRow{{Cells: []string{"header"}}}}
		for i := 0; i < n; i++ {
			ex.Rows = append(ex.Rows, shared.TableRow{Cells: []string{strconv.Itoa(i)}})
		}
		outline.Examples = append(outline.Examples, ex)
	}
	btc.suite = &shared.Suite{Features: []*shared.Feature{{Statements: []shared.Statement{outline}}}}
	return nil
}

func (btc *BridgeTestContext) theUnitCountIs(n int) error {
	if got := suite.CountUnits(btc.suite); got != n {
		return fmt.Errorf("expected %d units, got %d", n, got)
	}
	return nil
}
