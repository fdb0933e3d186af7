package options

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Snippet styles accepted by --snippets.
const (
	SnippetsCamelCase  = "camelcase"
	SnippetsUnderscore = "underscore"
)

// EngineOptions is the parsed form of an engine option string.
type EngineOptions struct {
	Glue        []string
	Format      []string
	Tags        []string
	Name        []string
	DryRun      bool
	Monochrome  bool
	Strict      bool
	Snippets    string
	DotCucumber string
	Features    []string
}

// negatedBool is a value-less flag that clears the target when set.
type negatedBool struct {
	target *bool
}

func (n *negatedBool) String() string {
	if n.target == nil {
		return "false"
	}
	return strconv.FormatBool(!*n.target)
}

func (n *negatedBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*n.target = !v
	return nil
}

func (n *negatedBool) Type() string {
	return "bool"
}

// NewFlagSet returns the flag set understood by the engine, bound to opts.
func NewFlagSet(opts *EngineOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cucumber", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringArrayVar(&opts.Glue, "glue", nil, "step definition groups to load")
	fs.StringArrayVar(&opts.Format, "format", nil, "additional formatters (name or name:path)")
	fs.StringArrayVar(&opts.Tags, "tags", nil, "tag filter; comma separated values are OR-ed, repeated flags are AND-ed")
	fs.StringArrayVar(&opts.Name, "name", nil, "only run scenarios whose name matches the regular expression")
	fs.StringVar(&opts.Snippets, "snippets", SnippetsCamelCase, "snippet naming style: camelcase or underscore")
	fs.StringVar(&opts.DotCucumber, "dotcucumber", "", "directory to write step definition metadata to")

	fs.BoolVar(&opts.DryRun, "dry-run", false, "walk the suite without executing steps")
	fs.BoolVar(&opts.Monochrome, "monochrome", false, "disable colored formatter output")
	fs.BoolVar(&opts.Strict, "strict", false, "treat undefined and pending steps as failures")

	negate := func(target *bool, name, usage string) {
		f := fs.VarPF(&negatedBool{target: target}, name, "", usage)
		f.NoOptDefVal = "true"
	}
	negate(&opts.DryRun, "no-dry-run", "execute steps")
	negate(&opts.Monochrome, "no-monochrome", "enable colored formatter output")
	negate(&opts.Strict, "no-strict", "do not fail on undefined or pending steps")
	return fs
}

// Parse parses an option string produced by Translate. The string is split on
// whitespace; values containing spaces need FromArguments or FromArgs.
func Parse(s string) (EngineOptions, error) {
	return parseArgv(strings.Fields(s))
}

func parseArgv(argv []string) (EngineOptions, error) {
	var opts EngineOptions
	fs := NewFlagSet(&opts)
	if err := fs.Parse(argv); err != nil {
		return EngineOptions{}, fmt.Errorf("failed to parse engine options %q: %w", strings.Join(argv, " "), err)
	}
	switch opts.Snippets {
	case SnippetsCamelCase, SnippetsUnderscore:
	default:
		return EngineOptions{}, fmt.Errorf("unknown snippet style %q", opts.Snippets)
	}
	opts.Features = fs.Args()
	return opts, nil
}

// FromArguments translates and parses a flat argument map in one step.
// Values reach the flag set whole, so a --name pattern may contain spaces.
func FromArguments(arguments map[string]string) (EngineOptions, error) {
	return ParseTokens(translate(arguments).Tokens())
}

// FromArgs translates and parses multi-valued arguments.
func FromArgs(args Args) (EngineOptions, error) {
	return ParseTokens(translateArgs(args).Tokens())
}

// ParseTokens parses translated tokens without rendering them to a string
// first. Flags are passed as --flag=value and positional values follow a
// "--" terminator.
func ParseTokens(tokens []Token) (EngineOptions, error) {
	argv := make([]string, 0, len(tokens)+1)
	var positional []string
	for _, t := range tokens {
		switch {
		case t.Flag == "":
			positional = append(positional, t.Value)
		case t.Value == "":
			argv = append(argv, t.Flag)
		default:
			argv = append(argv, t.Flag+"="+t.Value)
		}
	}
	if len(positional) > 0 {
		argv = append(append(argv, "--"), positional...)
	}
	return parseArgv(argv)
}
