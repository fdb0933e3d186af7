// Package runner orchestrates a suite run: load, count, optional debugger
// wait, feature execution through the report bridge, summary diagnostics,
// optional coverage dump and the final status.
package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cuke-bridge/bridge"
	"cuke-bridge/coverage"
	"cuke-bridge/debugger"
	"cuke-bridge/engine"
	"cuke-bridge/report"
	"cuke-bridge/shared"
	"cuke-bridge/suite"
)

// ErrConfiguration is returned when the suite configuration is missing or
// unusable.
var ErrConfiguration = errors.New("configuration error")

// Runner runs one suite and reports it to a sink.
type Runner struct {
	cfg      Config
	settings Settings
	sink     report.Sink
	suite    *shared.Suite
	filter   suite.Filter
	total    int

	engine    engine.Engine
	glue      Glue
	formatter bridge.Formatter
	collector *engine.Collector
	waiter    *debugger.Waiter
	coverage  coverage.Writer
	dumper    coverage.Dumper
	dumpErr   error
	logger    *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngine replaces the engine selected from the options.
func WithEngine(e engine.Engine) Option {
	return func(r *Runner) { r.engine = e }
}

// WithGlue sets the step definition groups available to the godog engine.
func WithGlue(g Glue) Option {
	return func(r *Runner) { r.glue = g }
}

// WithFormatter sets the diagnostic formatter.
func WithFormatter(f bridge.Formatter) Option {
	return func(r *Runner) { r.formatter = f }
}

// WithWaiter sets the debugger waiter.
func WithWaiter(w *debugger.Waiter) Option {
	return func(r *Runner) { r.waiter = w }
}

// WithCoverage sets the coverage writer checked at startup.
func WithCoverage(w coverage.Writer) Option {
	return func(r *Runner) { r.coverage = w }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New loads the configured suite and prepares a run. It fails with
// ErrConfiguration when no features are configured.
func New(cfg Config, sink report.Sink, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings, err := ParseArgs(cfg.Args())
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:      cfg,
		settings: settings,
		sink:     sink,
		logger:   zap.NewNop(),
		coverage: coverage.Runtime(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		return nil, fmt.Errorf("%w: no report sink", ErrConfiguration)
	}
	if r.waiter == nil {
		r.waiter = debugger.New(r.logger)
	}
	r.collector = engine.NewCollector(settings.Options.Snippets)

	paths := append(append([]string{}, cfg.Features...), settings.Options.Features...)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no features configured", ErrConfiguration)
	}
	loaded, err := suite.Load(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load suite: %w", err)
	}
	filter, err := suite.NewFilter(settings.Options.Tags, settings.Options.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	r.filter = filter
	r.suite = filter.Apply(loaded)
	r.total = suite.CountUnits(r.suite)

	if settings.Coverage {
		r.dumper, r.dumpErr = coverage.Resolve(r.coverage)
	}

	r.logger.Debug("Runner configured",
		zap.Int("features", len(r.suite.Features)),
		zap.Int("numtests", r.total),
		zap.Bool("dryRun", settings.Options.DryRun),
		zap.Duration("debugTimeout", settings.DebugTimeout))
	return r, nil
}

func (r *Runner) selectEngine() (engine.Engine, error) {
	o := r.settings.Options
	filter := r.filter
	if o.DryRun {
		return engine.NewDryRun(), nil
	}
	inits, err := r.glue.Select(o.Glue)
	if err != nil {
		return nil, err
	}
	return engine.NewGodog(engine.GodogConfig{
		Initializers: inits,
		Tags:         filter.GodogTags(),
		Strict:       o.Strict,
		NoColors:     o.Monochrome,
		Formats:      o.Format,
		ByLine:       filter.HasNames(),
	}, r.collector, r.logger), nil
}

// Settings returns the interpreted arguments.
func (r *Runner) Settings() Settings {
	return r.settings
}

// Total returns the number of units the run reports.
func (r *Runner) Total() int {
	return r.total
}

// Start runs count-only mode or a full run, as the arguments ask.
func (r *Runner) Start(ctx context.Context) error {
	if r.settings.Count {
		return r.Count(ctx)
	}
	return r.Run(ctx)
}

// Count reports the unit total as the only update and finishes. Nothing is
// executed.
func (r *Runner) Count(_ context.Context) error {
	results := report.NewStatus()
	results[report.KeyNumTotal] = r.total
	r.logger.Info("Counted test units", zap.Int("numtests", r.total))
	if err := r.sink.Finish(report.ResultOK, results); err != nil {
		return fmt.Errorf("failed to report count: %w", err)
	}
	return nil
}

// Run executes every feature through one bridge and finishes with
// report.ResultOK. Unit outcomes are reported per unit, not through the
// returned error. The engine is selected here unless WithEngine set one, so
// count-only runs never resolve glue.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		e, err := r.selectEngine()
		if err != nil {
			return err
		}
		r.engine = e
	}
	if r.settings.DebugTimeout > 0 {
		r.waiter.Wait(ctx, r.settings.DebugTimeout)
	}

	b := bridge.New(r.total, r.sink,
		bridge.WithFormatter(r.formatter),
		bridge.WithSnippets(r.collector),
		bridge.WithLogger(r.logger))

	for _, f := range r.suite.Features {
		if err := r.engine.Run(ctx, f, b); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				b.Done()
				b.Close()
				return fmt.Errorf("run interrupted in %s: %w", f.URI, ctxErr)
			}
			r.collector.AddError(fmt.Errorf("failed to run %s: %w", f.URI, err))
		}
	}

	b.Done()
	r.summary()
	b.Close()

	results := report.Status{}
	if r.settings.Coverage {
		r.dumpCoverage(results)
	}
	if dir := r.settings.Options.DotCucumber; dir != "" {
		if err := r.collector.WriteStepDefs(dir); err != nil {
			r.logger.Error("Failed to write step definitions", zap.String("dir", dir), zap.Error(err))
		}
	}

	r.logger.Info("Run finished",
		zap.Int("numtests", r.total),
		zap.Int("started", b.Started()))
	if err := r.sink.Finish(report.ResultOK, results); err != nil {
		return fmt.Errorf("failed to report run result: %w", err)
	}
	return nil
}

func (r *Runner) summary() {
	log := r.logger.Named("summary")
	for _, err := range r.collector.Errors() {
		log.Error(err.Error())
	}
	for _, s := range r.collector.Snippets() {
		log.Warn(s)
	}
}

// dumpCoverage writes coverage data and records the outcome in results.
func (r *Runner) dumpCoverage(results report.Status) {
	path := r.settings.CoverageFile
	err := r.dumpErr
	if err == nil && path == "" {
		path, err = coverage.DefaultPath(r.cfg.DataDir)
	}
	if err == nil {
		err = r.dumper.Dump(path)
	}
	if err != nil {
		msg := "Failed to generate coverage. " + coverage.Hint(err)
		r.logger.Error(msg, zap.Error(err))
		results[report.KeyStream] = "\nError: " + msg
		return
	}
	results[report.KeyCoveragePath] = path
	results[report.KeyStream] = fmt.Sprintf("%s\nGenerated code coverage data to %s",
		results.String(report.KeyStream), path)
	r.logger.Info("Generated code coverage data", zap.String("path", path))
}
