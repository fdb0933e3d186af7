package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cuke-bridge/logformat"
	"cuke-bridge/report"
	"cuke-bridge/runner"
)

// NewRunCmd creates the run subcommand. With the count argument set it
// behaves like the count subcommand.
func NewRunCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:          "run [feature paths...]",
		Short:        "Run the suite and stream instrumentation status",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.execute(cmd, args, false)
		},
	}
}

// NewCountCmd creates the count subcommand.
func NewCountCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:          "count [feature paths...]",
		Short:        "Report the number of test units without running them",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.execute(cmd, args, true)
		},
	}
}

func (e *env) execute(cmd *cobra.Command, features []string, countOnly bool) error {
	cfg, err := e.config(features)
	if err != nil {
		return err
	}
	if countOnly {
		cfg.Set(runner.ArgCount, "true")
	}

	logger, err := newLogger(e.logLevel, e.logJSON)
	if err != nil {
		return err
	}
	defer logger.Sync() // flushes buffer, if any
	logger = logger.With(zap.String("runID", uuid.NewString()))

	out, closeOut, err := openOutput(cmd, cfg.Report.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	sink := newSink(cfg.Report.Format, out)
	var metrics *report.Metrics
	if cfg.MetricsFile != "" {
		metrics = report.NewMetrics(nil)
		sink = report.Multi(sink, metrics)
	}

	formatter := logformat.New(logger)
	r, err := runner.New(cfg, sink,
		runner.WithGlue(e.glue),
		runner.WithFormatter(formatter),
		runner.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.Start(ctx); err != nil {
		return err
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		logger.Debug("Wrote metrics textfile", zap.String("path", cfg.MetricsFile))
	}
	return nil
}

func newSink(format string, out io.Writer) report.Sink {
	if format == runner.ReportFormatJSON {
		return report.NewJSONWriter(out)
	}
	return report.NewInstrumentationWriter(out)
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create status output %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
