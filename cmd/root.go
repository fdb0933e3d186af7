// Package cmd implements the cuke-bridge CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cuke-bridge/options"
	"cuke-bridge/runner"
)

// Option configures the root command.
type Option func(*env)

// WithGlue registers the step definitions a binary is built with.
func WithGlue(g runner.Glue) Option {
	return func(e *env) { e.glue = g }
}

// env holds state shared by the subcommands.
type env struct {
	glue runner.Glue

	configPath  string
	arguments   []string
	reportFmt   string
	output      string
	metricsFile string
	dataDir     string
	logLevel    string
	logJSON     bool
}

// NewRootCmd creates the root cuke-bridge command with all subcommands registered.
func NewRootCmd(opts ...Option) *cobra.Command {
	e := &env{}
	for _, opt := range opts {
		opt(e)
	}
	root := &cobra.Command{
		Use:           "cuke-bridge",
		Short:         "cuke-bridge - run Gherkin suites and report as instrumentation status",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&e.configPath, "config", "c", "", "YAML suite configuration file")
	pf.StringArrayVarP(&e.arguments, "arg", "e", nil, "run argument as key=value (repeat a key for multiple values; replaces the config file value)")
	pf.StringVar(&e.reportFmt, "report-format", "", "status output format: instrumentation or json")
	pf.StringVarP(&e.output, "output", "o", "", "write status updates to this file instead of stdout")
	pf.StringVar(&e.metricsFile, "metrics-file", "", "write prometheus metrics to this textfile after the run")
	pf.StringVar(&e.dataDir, "data-dir", "", "directory for run artifacts such as coverage data")
	pf.StringVar(&e.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.BoolVar(&e.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(NewRunCmd(e))
	root.AddCommand(NewCountCmd(e))
	root.AddCommand(NewOptionsCmd(e))
	return root
}

// config loads the configuration file, if any, and applies flags and
// positional feature paths on top of it.
func (e *env) config(features []string) (runner.Config, error) {
	var cfg runner.Config
	if e.configPath != "" {
		loaded, err := runner.LoadConfigFile(e.configPath)
		if err != nil {
			return runner.Config{}, err
		}
		cfg = loaded
	}
	args, err := parseArguments(e.arguments)
	if err != nil {
		return runner.Config{}, err
	}
	cfg.Override(args)
	cfg.Features = append(cfg.Features, features...)
	if e.reportFmt != "" {
		cfg.Report.Format = e.reportFmt
	}
	if e.output != "" {
		cfg.Report.Output = e.output
	}
	if e.metricsFile != "" {
		cfg.MetricsFile = e.metricsFile
	}
	if e.dataDir != "" {
		cfg.DataDir = e.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return runner.Config{}, err
	}
	return cfg, nil
}

// parseArguments turns repeated key=value flags into multi-valued
// arguments. A key given more than once keeps every value in order.
func parseArguments(pairs []string) (options.Args, error) {
	args := make(options.Args, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: argument %q is not key=value", runner.ErrConfiguration, p)
		}
		args.Add(k, v)
	}
	return args, nil
}
