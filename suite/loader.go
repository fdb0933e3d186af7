// Package suite loads feature files into the shared model, filters them and
// counts the test units they will report.
package suite

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"

	"cuke-bridge/shared"
)

// FeatureExt is the file extension searched for when a directory is given.
const FeatureExt = ".feature"

// Load reads every path (file or directory) and parses the features found, in
// path order and then lexical order within a directory.
func Load(paths []string) (*shared.Suite, error) {
	s := &shared.Suite{}
	seen := make(map[string]bool)
	for _, p := range paths {
		files, err := expand(p)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if seen[file] {
				continue
			}
			seen[file] = true
			content, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("failed to read feature %s: %w", file, err)
			}
			feature, err := Parse(file, content)
			if err != nil {
				return nil, err
			}
			if feature != nil {
				s.Features = append(s.Features, feature)
			}
		}
	}
	return s, nil
}

func expand(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat feature path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, FeatureExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan feature directory %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

// Parse parses one feature source. A document without a Feature returns nil.
func Parse(uri string, content []byte) (*shared.Feature, error) {
	doc, err := gherkin.ParseGherkinDocument(bytes.NewReader(content), (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature %s: %w", uri, err)
	}
	return FromDocument(uri, content, doc), nil
}

// FromDocument converts a parsed gherkin document. Rules are flattened into
// the feature and their tags are inherited by their scenarios.
func FromDocument(uri string, content []byte, doc *messages.GherkinDocument) *shared.Feature {
	if doc == nil || doc.Feature == nil {
		return nil
	}
	f := doc.Feature
	feature := &shared.Feature{
		URI:         uri,
		Keyword:     f.Keyword,
		Name:        f.Name,
		Description: strings.TrimSpace(f.Description),
		Line:        line(f.Location),
		Tags:        tagNames(f.Tags),
		Content:     content,
	}
	for _, child := range f.Children {
		switch {
		case child.Background != nil:
			feature.Statements = append(feature.Statements, Background(child.Background))
		case child.Scenario != nil:
			feature.Statements = append(feature.Statements, Scenario(child.Scenario, nil))
		case child.Rule != nil:
			ruleTags := tagNames(child.Rule.Tags)
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					feature.Statements = append(feature.Statements, Background(rc.Background))
				case rc.Scenario != nil:
					feature.Statements = append(feature.Statements, Scenario(rc.Scenario, ruleTags))
				}
			}
		}
	}
	return feature
}

// Background converts a gherkin background.
func Background(b *messages.Background) shared.Statement {
	return shared.Statement{
		Kind:    shared.KindBackground,
		Keyword: b.Keyword,
		Name:    b.Name,
		Line:    line(b.Location),
		Steps:   steps(b.Steps),
	}
}

// Scenario converts a gherkin scenario; one with examples becomes an outline.
func Scenario(sc *messages.Scenario, inherited []string) shared.Statement {
	st := shared.Statement{
		Kind:    shared.KindScenario,
		Keyword: sc.Keyword,
		Name:    sc.Name,
		Line:    line(sc.Location),
		Tags:    append(append([]string{}, inherited...), tagNames(sc.Tags)...),
		Steps:   steps(sc.Steps),
	}
	if len(sc.Examples) == 0 {
		return st
	}
	st.Kind = shared.KindScenarioOutline
	for _, ex := range sc.Examples {
		st.Examples = append(st.Examples, Examples(ex))
	}
	return st
}

// Examples converts a gherkin examples table, header row first.
func Examples(ex *messages.Examples) *shared.Examples {
	examples := &shared.Examples{
		Keyword: ex.Keyword,
		Name:    ex.Name,
		Line:    line(ex.Location),
		Tags:    tagNames(ex.Tags),
	}
	if ex.TableHeader != nil {
		examples.Rows = append(examples.Rows, row(ex.TableHeader))
	}
	for _, r := range ex.TableBody {
		examples.Rows = append(examples.Rows, row(r))
	}
	return examples
}

func steps(in []*messages.Step) []*shared.Step {
	out := make([]*shared.Step, 0, len(in))
	for _, s := range in {
		out = append(out, Step(s))
	}
	return out
}

// Step converts a gherkin step.
func Step(s *messages.Step) *shared.Step {
	return &shared.Step{
		Keyword: s.Keyword,
		Text:    s.Text,
		Line:    line(s.Location),
	}
}

func row(r *messages.TableRow) shared.TableRow {
	cells := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		cells = append(cells, c.Value)
	}
	return shared.TableRow{Line: line(r.Location), Cells: cells}
}

func tagNames(tags []*messages.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func line(loc *messages.Location) int64 {
	if loc == nil {
		return 0
	}
	return loc.Line
}
