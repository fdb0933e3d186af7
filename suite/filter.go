package suite

import (
	"fmt"
	"regexp"
	"strings"

	"cuke-bridge/shared"
)

// Filter selects statements by tag expression and name pattern.
//
// Each tag group is a comma separated list of tags, any of which may match;
// a tag prefixed with "~" matches when the tag is absent. Every group must
// match. Names are regular expressions, any of which may match.
type Filter struct {
	tagGroups [][]string
	names     []*regexp.Regexp
}

// NewFilter compiles tag groups and name patterns.
func NewFilter(tags, names []string) (Filter, error) {
	var f Filter
	for _, group := range tags {
		var alts []string
		for _, t := range strings.Split(group, ",") {
			if t = strings.TrimSpace(t); t != "" {
				alts = append(alts, t)
			}
		}
		if len(alts) > 0 {
			f.tagGroups = append(f.tagGroups, alts)
		}
	}
	for _, n := range names {
		re, err := regexp.Compile(n)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid name filter %q: %w", n, err)
		}
		f.names = append(f.names, re)
	}
	return f, nil
}

// Empty reports whether the filter keeps everything.
func (f Filter) Empty() bool {
	return len(f.tagGroups) == 0 && len(f.names) == 0
}

// HasNames reports whether name patterns are set.
func (f Filter) HasNames() bool {
	return len(f.names) > 0
}

// GodogTags renders the tag groups in godog tag expression syntax.
func (f Filter) GodogTags() string {
	groups := make([]string, 0, len(f.tagGroups))
	for _, g := range f.tagGroups {
		groups = append(groups, strings.Join(g, ","))
	}
	return strings.Join(groups, " && ")
}

// Match reports whether a statement with the given effective tags and name is kept.
func (f Filter) Match(tags []string, name string) bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	for _, group := range f.tagGroups {
		ok := false
		for _, t := range group {
			if neg, found := strings.CutPrefix(t, "~"); found {
				ok = !set[neg]
			} else {
				ok = set[t]
			}
			if ok {
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.names) == 0 {
		return true
	}
	for _, re := range f.names {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Apply returns a new suite holding only matching statements. Outlines are
// matched per examples table, with the table's tags added to the outline's,
// and keep only their matching tables. Backgrounds are kept when at least one
// scenario or outline of their feature is kept; features left with nothing to
// run are dropped. The input is not modified.
func (f Filter) Apply(s *shared.Suite) *shared.Suite {
	if s == nil {
		return &shared.Suite{}
	}
	if f.Empty() {
		return s
	}
	out := &shared.Suite{}
	for _, feature := range s.Features {
		var kept []shared.Statement
		units := 0
		for _, st := range feature.Statements {
			if st.Kind == shared.KindBackground {
				kept = append(kept, st)
				continue
			}
			tags := append(append([]string{}, feature.Tags...), st.Tags...)
			if st.Kind == shared.KindScenarioOutline {
				if outline, ok := f.applyExamples(st, tags); ok {
					kept = append(kept, outline)
					units++
				}
				continue
			}
			if f.Match(tags, st.Name) {
				kept = append(kept, st)
				units++
			}
		}
		if units == 0 {
			continue
		}
		clone := *feature
		clone.Statements = kept
		out.Features = append(out.Features, &clone)
	}
	return out
}

// applyExamples returns a copy of outline holding only the examples tables
// that match. ok is false when no table matches.
func (f Filter) applyExamples(outline shared.Statement, tags []string) (shared.Statement, bool) {
	var tables []*shared.Examples
	for _, ex := range outline.Examples {
		if f.Match(append(append([]string{}, tags...), ex.Tags...), outline.Name) {
			tables = append(tables, ex)
		}
	}
	if len(tables) == 0 {
		return shared.Statement{}, false
	}
	outline.Examples = tables
	return outline, true
}
