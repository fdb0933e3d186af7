package runner

import (
	"fmt"
	"strconv"
	"time"

	"cuke-bridge/debugger"
	"cuke-bridge/options"
)

// Argument keys consumed by the runner rather than the engine.
const (
	ArgDebug        = "debug"
	ArgLog          = "log"
	ArgCount        = "count"
	ArgCoverage     = "coverage"
	ArgCoverageFile = "coverageFile"
	ArgDryRun       = "dryRun"
)

// Settings is what the runner reads from the argument map.
type Settings struct {
	DebugTimeout time.Duration
	Count        bool
	Coverage     bool
	CoverageFile string
	Options      options.EngineOptions
}

// ParseArguments interprets a flat, separator-encoded argument map.
// arguments is not modified.
func ParseArguments(arguments map[string]string) (Settings, error) {
	return ParseArgs(options.Split(arguments))
}

// ParseArgs interprets the runner keys and translates the rest into engine
// options. Runner keys read their last value. args is not modified.
//
// debug is a millisecond count or a boolean; true waits DefaultTimeout.
// log=true implies a dry run unless dryRun is given explicitly.
func ParseArgs(args options.Args) (Settings, error) {
	var s Settings
	args = args.Merge(nil)

	if debug, ok := args.Last(ArgDebug); ok {
		if ms, err := strconv.Atoi(debug); err == nil {
			s.DebugTimeout = time.Duration(ms) * time.Millisecond
		} else if boolArgument(debug) {
			s.DebugTimeout = debugger.DefaultTimeout
		}
	}
	if _, ok := args[ArgDryRun]; !ok && boolArgument(last(args, ArgLog)) {
		args[ArgDryRun] = []string{"true"}
	}
	s.Count = boolArgument(last(args, ArgCount))
	s.Coverage = boolArgument(last(args, ArgCoverage))
	s.CoverageFile = last(args, ArgCoverageFile)

	opts, err := options.FromArgs(args)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	s.Options = opts
	return s, nil
}

func last(args options.Args, key string) string {
	v, _ := args.Last(key)
	return v
}

func boolArgument(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
