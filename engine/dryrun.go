package engine

import (
	"context"
	"strings"

	"cuke-bridge/bridge"
	"cuke-bridge/shared"
)

// DryRun walks a feature without executing anything. Every step is reported
// as skipped, in the callback order of a real run: a feature's background is
// replayed before each scenario and outline rows expand into scenarios.
type DryRun struct{}

// NewDryRun creates a dry-run engine.
func NewDryRun() *DryRun {
	return &DryRun{}
}

// Run walks feature. It stops between statements when ctx is done.
func (d *DryRun) Run(ctx context.Context, feature *shared.Feature, l bridge.Listener) error {
	l.URI(feature.URI)
	l.Feature(feature)

	var background *shared.Statement
	for i := range feature.Statements {
		if err := ctx.Err(); err != nil {
			l.EOF()
			return err
		}
		st := &feature.Statements[i]
		switch st.Kind {
		case shared.KindBackground:
			background = st
		case shared.KindScenario:
			d.scenario(l, background, st)
		case shared.KindScenarioOutline:
			l.ScenarioOutline(st)
			for _, ex := range st.Examples {
				l.Examples(ex)
				for _, row := range expand(st, ex) {
					d.scenario(l, background, row)
				}
			}
		}
	}
	l.EOF()
	return nil
}

func (d *DryRun) scenario(l bridge.Listener, background, st *shared.Statement) {
	if background != nil {
		l.Background(background)
		skip(l, background.Steps)
	}
	l.Scenario(st)
	skip(l, st.Steps)
}

func skip(l bridge.Listener, steps []*shared.Step) {
	for _, step := range steps {
		l.Step(step)
		l.Result(shared.StepResult{Status: shared.StatusSkipped})
	}
}

// expand turns each data row of ex into a scenario with placeholders replaced.
func expand(outline *shared.Statement, ex *shared.Examples) []*shared.Statement {
	if ex.DataRows() == 0 {
		return nil
	}
	header := ex.Rows[0].Cells
	out := make([]*shared.Statement, 0, ex.DataRows())
	for _, row := range ex.Rows[1:] {
		pairs := make([]string, 0, 2*len(header))
		for i, h := range header {
			if i < len(row.Cells) {
				pairs = append(pairs, "<"+h+">", row.Cells[i])
			}
		}
		r := strings.NewReplacer(pairs...)
		st := &shared.Statement{
			Kind:    shared.KindScenario,
			Keyword: outline.Keyword,
			Name:    r.Replace(outline.Name),
			Line:    row.Line,
			Tags:    outline.Tags,
		}
		for _, step := range outline.Steps {
			st.Steps = append(st.Steps, &shared.Step{
				Keyword: step.Keyword,
				Text:    r.Replace(step.Text),
				Line:    step.Line,
			})
		}
		out = append(out, st)
	}
	return out
}
