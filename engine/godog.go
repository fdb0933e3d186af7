package engine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cuke-bridge/bridge"
	"cuke-bridge/shared"
	"cuke-bridge/suite"
)

// Godog exit codes returned by TestSuite.Run.
const (
	godogExitSuccess     = 0
	godogExitFailure     = 1
	godogExitOptionError = 2
)

// ScenarioInitializer registers step definitions and hooks for a scenario.
type ScenarioInitializer func(*godog.ScenarioContext)

// GodogConfig configures the godog engine.
type GodogConfig struct {
	Initializers []ScenarioInitializer
	Tags         string   // godog tag expression
	Strict       bool     // fail on undefined or pending steps
	NoColors     bool     // disable colors in additional formatters
	Formats      []string // additional godog formatters, "name" or "name:path"
	ByLine       bool     // run each statement separately by file:line
	Output       io.Writer
}

// Godog executes features with github.com/cucumber/godog. Each feature runs
// as its own godog suite whose formatter forwards to the listener.
type Godog struct {
	cfg       GodogConfig
	collector *Collector
	logger    *zap.Logger
}

// NewGodog creates a godog engine.
func NewGodog(cfg GodogConfig, collector *Collector, logger *zap.Logger) *Godog {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if collector == nil {
		collector = NewCollector("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Godog{cfg: cfg, collector: collector, logger: logger}
}

// Run executes feature. With ByLine set the feature file must exist on disk.
func (g *Godog) Run(ctx context.Context, feature *shared.Feature, l bridge.Listener) error {
	a := newAdapter(l, g.collector)
	defer l.EOF()

	if !g.cfg.ByLine {
		return g.run(ctx, a, feature, godog.Options{
			FeatureContents: []godog.Feature{{Name: feature.URI, Contents: feature.Content}},
		})
	}
	for _, st := range feature.Statements {
		if st.Kind == shared.KindBackground {
			continue
		}
		path := fmt.Sprintf("%s:%d", feature.URI, st.Line)
		if err := g.run(ctx, a, feature, godog.Options{Paths: []string{path}}); err != nil {
			return err
		}
	}
	return nil
}

func (g *Godog) run(ctx context.Context, a *adapter, feature *shared.Feature, opts godog.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := "bridge-" + uuid.NewString()
	godog.Format(name, "forwards to the instrumentation bridge", func(suiteName string, out io.Writer) godog.Formatter {
		a.BaseFmt = godog.NewBaseFmt(suiteName, out)
		return a
	})

	formats := []string{name}
	for _, f := range g.cfg.Formats {
		formats = append(formats, perFeatureFormat(f, feature.URI))
	}
	opts.Format = strings.Join(formats, ",")
	opts.Output = g.cfg.Output
	opts.Strict = g.cfg.Strict
	opts.NoColors = g.cfg.NoColors
	opts.Tags = g.cfg.Tags
	opts.Concurrency = 1

	g.logger.Debug("Running feature with godog",
		zap.String("uri", feature.URI),
		zap.String("format", opts.Format),
		zap.Strings("paths", opts.Paths))

	status := godog.TestSuite{
		Name:                name,
		ScenarioInitializer: g.initializer(a),
		Options:             &opts,
	}.Run()
	a.flush()

	switch status {
	case godogExitSuccess, godogExitFailure:
		return nil
	case godogExitOptionError:
		return fmt.Errorf("godog could not run %s: invalid options or feature", feature.URI)
	default:
		return fmt.Errorf("godog exited with status %d for %s", status, feature.URI)
	}
}

func (g *Godog) initializer(a *adapter) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
			a.listener.Before(shared.Match{Location: "before " + s.Name}, shared.StepResult{Status: shared.StatusPassed})
			return ctx, nil
		})
		for _, init := range g.cfg.Initializers {
			init(sc)
		}
		sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
			r := shared.StepResult{Status: shared.StatusPassed}
			if err != nil {
				r = shared.StepResult{Status: shared.StatusFailed, Err: err}
			}
			a.listener.After(shared.Match{Location: "after " + s.Name}, r)
			return ctx, nil
		})
	}
}

// perFeatureFormat keeps file based formatters from overwriting each other
// across features: "junit:out.xml" becomes "junit:out-login.xml".
func perFeatureFormat(format, uri string) string {
	name, path, ok := strings.Cut(format, ":")
	if !ok || path == "" {
		return format
	}
	base := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s:%s-%s%s", name, strings.TrimSuffix(path, ext), base, ext)
}

// adapter is a godog formatter that replays godog's pickle level events as
// the background / scenario / outline callbacks of a bridge.Listener.
type adapter struct {
	*godog.BaseFmt

	listener  bridge.Listener
	collector *Collector

	scenarios    map[string]*messages.Scenario
	backgrounds  map[string]*messages.Background // scenario id -> background in scope
	ruleTags     map[string][]string             // scenario id -> inherited rule tags
	bgSteps      map[string]bool
	steps        map[string]*messages.Step
	rows         map[string]*messages.Examples // example row id -> owning table
	rowLines     map[string]int64
	seenOutlines map[string]bool
	seenExamples map[*messages.Examples]bool

	// scenario is held back until the background steps have run.
	scenario *shared.Statement
}

func newAdapter(l bridge.Listener, c *Collector) *adapter {
	return &adapter{listener: l, collector: c}
}

func (a *adapter) index(doc *messages.GherkinDocument) {
	a.scenarios = make(map[string]*messages.Scenario)
	a.backgrounds = make(map[string]*messages.Background)
	a.ruleTags = make(map[string][]string)
	a.bgSteps = make(map[string]bool)
	a.steps = make(map[string]*messages.Step)
	a.rows = make(map[string]*messages.Examples)
	a.rowLines = make(map[string]int64)
	a.seenOutlines = make(map[string]bool)
	a.seenExamples = make(map[*messages.Examples]bool)
	if doc == nil || doc.Feature == nil {
		return
	}

	addBackground := func(bg *messages.Background) {
		for _, s := range bg.Steps {
			a.bgSteps[s.Id] = true
			a.steps[s.Id] = s
		}
	}
	addScenario := func(sc *messages.Scenario, bg *messages.Background, tags []string) {
		a.scenarios[sc.Id] = sc
		if bg != nil {
			a.backgrounds[sc.Id] = bg
		}
		a.ruleTags[sc.Id] = tags
		for _, s := range sc.Steps {
			a.steps[s.Id] = s
		}
		for _, ex := range sc.Examples {
			for _, r := range ex.TableBody {
				a.rows[r.Id] = ex
				if r.Location != nil {
					a.rowLines[r.Id] = r.Location.Line
				}
			}
		}
	}

	var featureBg *messages.Background
	for _, child := range doc.Feature.Children {
		switch {
		case child.Background != nil:
			featureBg = child.Background
			addBackground(featureBg)
		case child.Scenario != nil:
			addScenario(child.Scenario, featureBg, nil)
		case child.Rule != nil:
			ruleBg := featureBg
			var tags []string
			for _, t := range child.Rule.Tags {
				tags = append(tags, t.Name)
			}
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					ruleBg = rc.Background
					addBackground(ruleBg)
				case rc.Scenario != nil:
					addScenario(rc.Scenario, ruleBg, tags)
				}
			}
		}
	}
}

func (a *adapter) Feature(doc *messages.GherkinDocument, uri string, content []byte) {
	a.index(doc)
	a.listener.URI(uri)
	if f := suite.FromDocument(uri, content, doc); f != nil {
		a.listener.Feature(f)
	}
}

func (a *adapter) Pickle(p *messages.Pickle) {
	a.flush()
	if len(p.AstNodeIds) == 0 {
		return
	}
	sc, ok := a.scenarios[p.AstNodeIds[0]]
	if !ok {
		return
	}

	st := suite.Scenario(sc, a.ruleTags[sc.Id])
	if st.Kind == shared.KindScenarioOutline && len(p.AstNodeIds) > 1 {
		if !a.seenOutlines[sc.Id] {
			a.seenOutlines[sc.Id] = true
			a.listener.ScenarioOutline(&st)
		}
		rowID := p.AstNodeIds[1]
		if ex, ok := a.rows[rowID]; ok && !a.seenExamples[ex] {
			a.seenExamples[ex] = true
			a.listener.Examples(suite.Examples(ex))
		}
		st = shared.Statement{
			Kind:    shared.KindScenario,
			Keyword: sc.Keyword,
			Line:    a.rowLines[rowID],
			Tags:    st.Tags,
		}
	}
	st.Name = p.Name
	st.Steps = nil
	for _, ps := range p.Steps {
		if len(ps.AstNodeIds) > 0 && a.bgSteps[ps.AstNodeIds[0]] {
			continue
		}
		st.Steps = append(st.Steps, a.step(ps))
	}

	if bg, ok := a.backgrounds[sc.Id]; ok && len(bg.Steps) > 0 {
		b := suite.Background(bg)
		a.listener.Background(&b)
		a.scenario = &st
		return
	}
	a.listener.Scenario(&st)
}

// flush emits a scenario still waiting behind its background.
func (a *adapter) flush() {
	if a.scenario == nil {
		return
	}
	st := a.scenario
	a.scenario = nil
	a.listener.Scenario(st)
}

func (a *adapter) step(ps *messages.PickleStep) *shared.Step {
	s := &shared.Step{Text: ps.Text}
	if len(ps.AstNodeIds) > 0 {
		if ast, ok := a.steps[ps.AstNodeIds[0]]; ok {
			s.Keyword = ast.Keyword
			if ast.Location != nil {
				s.Line = ast.Location.Line
			}
		}
	}
	return s
}

func (a *adapter) Defined(_ *messages.Pickle, ps *messages.PickleStep, def *godog.StepDefinition) {
	if a.scenario != nil && (len(ps.AstNodeIds) == 0 || !a.bgSteps[ps.AstNodeIds[0]]) {
		a.flush()
	}
	a.listener.Step(a.step(ps))
	if def != nil && def.Expr != nil {
		expr := def.Expr.String()
		a.collector.Defined(expr)
		a.listener.Match(shared.Match{Location: expr})
	}
}

func (a *adapter) Passed(*messages.Pickle, *messages.PickleStep, *godog.StepDefinition) {
	a.listener.Result(shared.StepResult{Status: shared.StatusPassed})
}

func (a *adapter) Skipped(*messages.Pickle, *messages.PickleStep, *godog.StepDefinition) {
	a.listener.Result(shared.StepResult{Status: shared.StatusSkipped})
}

func (a *adapter) Undefined(_ *messages.Pickle, ps *messages.PickleStep, _ *godog.StepDefinition) {
	a.collector.Undefined(ps.Text)
	a.listener.Result(shared.StepResult{Status: shared.StatusUndefined})
}

func (a *adapter) Failed(_ *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition, err error) {
	a.collector.AddError(err)
	a.listener.Result(shared.StepResult{Status: shared.StatusFailed, Err: err})
}

func (a *adapter) Pending(*messages.Pickle, *messages.PickleStep, *godog.StepDefinition) {
	a.listener.Result(shared.StepResult{Status: shared.StatusPending})
}

func (a *adapter) Ambiguous(_ *messages.Pickle, _ *messages.PickleStep, _ *godog.StepDefinition, err error) {
	a.collector.AddError(err)
	a.listener.Result(shared.StepResult{Status: shared.StatusAmbiguous, Err: err})
}

// Summary is reported by the runner, not by godog.
func (a *adapter) Summary() {}
