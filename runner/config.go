package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cuke-bridge/options"
)

// Report formats accepted in ReportConfig.Format.
const (
	ReportFormatInstrumentation = "instrumentation"
	ReportFormatJSON            = "json"
)

// ReportConfig selects how status updates are written.
type ReportConfig struct {
	Format string `yaml:"format"`
	Output string `yaml:"output"` // file path; empty means stdout
}

// Config is the suite configuration: which features to run and the
// arguments that drive the run. Arguments is the flat file form, where
// repeated values are joined with options.ValueSeparator. Overrides holds
// multi-valued arguments given on the command line.
type Config struct {
	Features    []string          `yaml:"features"`
	Arguments   map[string]string `yaml:"arguments"`
	Overrides   options.Args      `yaml:"-"`
	DataDir     string            `yaml:"dataDir"`
	Report      ReportConfig      `yaml:"report"`
	MetricsFile string            `yaml:"metricsFile"`
}

// LoadConfigFromYAML parses and validates a YAML configuration.
func LoadConfigFromYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads path and parses it with LoadConfigFromYAML.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return LoadConfigFromYAML(data)
}

// Validate fills defaults and rejects unknown report formats.
func (c *Config) Validate() error {
	if c.Arguments == nil {
		c.Arguments = make(map[string]string)
	}
	switch c.Report.Format {
	case "":
		c.Report.Format = ReportFormatInstrumentation
	case ReportFormatInstrumentation, ReportFormatJSON:
	default:
		return fmt.Errorf("%w: unknown report format %q", ErrConfiguration, c.Report.Format)
	}
	return nil
}

// Merge overlays arguments on the configured ones. Later values win.
func (c *Config) Merge(arguments map[string]string) {
	if c.Arguments == nil {
		c.Arguments = make(map[string]string, len(arguments))
	}
	for k, v := range arguments {
		c.Arguments[k] = v
	}
}

// Override appends multi-valued arguments to Overrides.
func (c *Config) Override(args options.Args) {
	if c.Overrides == nil {
		c.Overrides = make(options.Args, len(args))
	}
	for k, v := range args {
		c.Overrides[k] = append(c.Overrides[k], v...)
	}
}

// Set replaces every value of key with value.
func (c *Config) Set(key, value string) {
	if c.Overrides == nil {
		c.Overrides = make(options.Args, 1)
	}
	c.Overrides[key] = []string{value}
}

// Args returns the effective arguments. A key present in Overrides replaces
// the configured value of that key.
func (c Config) Args() options.Args {
	return options.Split(c.Arguments).Merge(c.Overrides)
}
