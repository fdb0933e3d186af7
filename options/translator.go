// Package options turns flat runner arguments into an option string for the
// execution engine and parses that string back into EngineOptions.
package options

import (
	"sort"
	"strconv"
	"strings"
)

// ValueSeparator splits one argument value into repeated options. The argument
// map cannot hold the same key twice, so "a--b" under "tags" yields two --tags.
const ValueSeparator = "--"

// FeaturesKey holds the positional feature references.
const FeaturesKey = "features"

// Flags for string-valued argument keys.
var valueFlags = map[string]string{
	"glue":        "--glue",
	"format":      "--format",
	"tags":        "--tags",
	"name":        "--name",
	"snippets":    "--snippets",
	"dotcucumber": "--dotcucumber",
}

// Flags for boolean argument keys. They are only emitted when the value is true.
var boolFlags = map[string]string{
	"dryRun":       "--dry-run",
	"noDryRun":     "--no-dry-run",
	"monochrome":   "--monochrome",
	"noMonochrome": "--no-monochrome",
	"strict":       "--strict",
	"noStrict":     "--no-strict",
}

// Token is one option emitted by the translator. Positional tokens have no Flag.
type Token struct {
	Flag  string
	Value string
}

// Accumulator collects option tokens in emission order. Positional tokens are
// kept apart and always rendered after every flag.
type Accumulator struct {
	flags      []Token
	positional []string
}

// Append adds one flag per non-empty sub-value of value. A value with no
// non-empty sub-values yields the bare flag.
func (a *Accumulator) Append(flag, value string) {
	subs := SplitValue(value)
	if len(subs) == 0 {
		a.flags = append(a.flags, Token{Flag: flag})
		return
	}
	for _, sub := range subs {
		a.flags = append(a.flags, Token{Flag: flag, Value: sub})
	}
}

// AppendPositional adds each non-empty sub-value of value as a trailing argument.
func (a *Accumulator) AppendPositional(value string) {
	a.positional = append(a.positional, SplitValue(value)...)
}

// Tokens returns flags followed by positional arguments.
func (a *Accumulator) Tokens() []Token {
	out := make([]Token, 0, len(a.flags)+len(a.positional))
	out = append(out, a.flags...)
	for _, p := range a.positional {
		out = append(out, Token{Value: p})
	}
	return out
}

// String renders the tokens space-joined, without a leading space.
func (a *Accumulator) String() string {
	parts := make([]string, 0, 2*len(a.flags)+len(a.positional))
	for _, t := range a.Tokens() {
		if t.Flag != "" {
			parts = append(parts, t.Flag)
		}
		if t.Value != "" {
			parts = append(parts, t.Value)
		}
	}
	return strings.Join(parts, " ")
}

// SplitValue splits value on ValueSeparator and drops empty sub-values.
func SplitValue(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ValueSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Translate builds the engine option string from a flat argument map.
// Unrecognized keys are ignored.
func Translate(arguments map[string]string) string {
	return translate(arguments).String()
}

func translate(arguments map[string]string) *Accumulator {
	acc := &Accumulator{}
	features := ""
	for _, key := range sortedKeys(arguments) {
		value := arguments[key]
		if flag, ok := valueFlags[key]; ok {
			acc.Append(flag, value)
			continue
		}
		if flag, ok := boolFlags[key]; ok {
			if parseBool(value) {
				acc.Append(flag, "")
			}
			continue
		}
		if key == FeaturesKey {
			features = value
		}
	}
	acc.AppendPositional(features)
	return acc
}

// Args is the multi-valued form of runner arguments.
type Args map[string][]string

// Split converts separator-encoded arguments into Args. Only option values
// and features are split; every other key keeps its value whole.
func Split(arguments map[string]string) Args {
	out := make(Args, len(arguments))
	for key, value := range arguments {
		if _, ok := valueFlags[key]; ok || key == FeaturesKey {
			out[key] = SplitValue(value)
			continue
		}
		out[key] = []string{value}
	}
	return out
}

// Add appends value to key.
func (a Args) Add(key, value string) {
	a[key] = append(a[key], value)
}

// Last returns the last value of key.
func (a Args) Last(key string) (string, bool) {
	values, ok := a[key]
	if !ok || len(values) == 0 {
		return "", ok
	}
	return values[len(values)-1], true
}

// Merge overlays other on a copy of a. A key present in other replaces
// all of a's values for that key.
func (a Args) Merge(other Args) Args {
	out := make(Args, len(a)+len(other))
	for k, v := range a {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range other {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// TranslateArgs builds the engine option string from multi-valued arguments.
// Values are used as given; no separator splitting takes place.
func TranslateArgs(args Args) string {
	return translateArgs(args).String()
}

func translateArgs(args Args) *Accumulator {
	acc := &Accumulator{}
	var features []string
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := args[key]
		if flag, ok := valueFlags[key]; ok {
			if len(values) == 0 {
				acc.flags = append(acc.flags, Token{Flag: flag})
			}
			for _, v := range values {
				acc.flags = append(acc.flags, Token{Flag: flag, Value: v})
			}
			continue
		}
		if flag, ok := boolFlags[key]; ok {
			if len(values) > 0 && parseBool(values[len(values)-1]) {
				acc.flags = append(acc.flags, Token{Flag: flag})
			}
			continue
		}
		if key == FeaturesKey {
			features = append(features, values...)
		}
	}
	acc.positional = features
	return acc
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}
