package shared

import (
	"fmt"
	"time"
)

// StatementKind defines the type of a feature element
type StatementKind string

const (
	KindBackground      StatementKind = "background"
	KindScenario        StatementKind = "scenario"
	KindScenarioOutline StatementKind = "scenario_outline"
)

// Suite is the full loaded set of features, in load order
type Suite struct {
	Features []*Feature
}

// Feature is a named group of backgrounds, scenarios and outlines
type Feature struct {
	URI         string      `json:"uri" yaml:"uri"`
	Keyword     string      `json:"keyword" yaml:"keyword"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Line        int64       `json:"line" yaml:"line"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Statements  []Statement `json:"statements" yaml:"statements"`
	Content     []byte      `json:"-" yaml:"-"` // Raw feature source, handed to the execution engine
}

// Statement is one element of a feature. Outlines own their examples tables.
type Statement struct {
	Kind     StatementKind `json:"kind" yaml:"kind"`
	Keyword  string        `json:"keyword" yaml:"keyword"`
	Name     string        `json:"name" yaml:"name"`
	Line     int64         `json:"line" yaml:"line"`
	Tags     []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Steps    []*Step       `json:"steps" yaml:"steps"`
	Examples []*Examples   `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Examples is a table attached to an outline. Rows[0] is the header row.
type Examples struct {
	Keyword string     `json:"keyword" yaml:"keyword"`
	Name    string     `json:"name" yaml:"name"`
	Line    int64      `json:"line" yaml:"line"`
	Tags    []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Rows    []TableRow `json:"rows" yaml:"rows"`
}

// DataRows returns the number of rows excluding the header
func (e *Examples) DataRows() int {
	if e == nil || len(e.Rows) == 0 {
		return 0
	}
	return len(e.Rows) - 1
}

// TableRow is a single row of an examples table
type TableRow struct {
	Line  int64    `json:"line" yaml:"line"`
	Cells []string `json:"cells" yaml:"cells"`
}

// Step is a single executable line of a scenario or background
type Step struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Text    string `json:"text" yaml:"text"`
	Line    int64  `json:"line" yaml:"line"`
}

// Name returns the step text, the label used in missing-step diagnostics
func (s *Step) Name() string {
	if s == nil {
		return ""
	}
	return s.Text
}

// ResultStatus is the outcome label of a step or hook
type ResultStatus string

const (
	StatusPassed    ResultStatus = "passed"
	StatusFailed    ResultStatus = "failed"
	StatusSkipped   ResultStatus = "skipped"
	StatusPending   ResultStatus = "pending"
	StatusUndefined ResultStatus = "undefined"
	StatusAmbiguous ResultStatus = "ambiguous"
)

// StepResult holds the outcome of a step or hook execution
type StepResult struct {
	Status   ResultStatus
	Err      error
	Duration time.Duration
}

// ErrorMessage returns the error text verbatim, or "" when there is no error
func (r StepResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Match describes the step definition (or hook) selected for a step
type Match struct {
	Location  string   // Expression or source location of the definition
	Arguments []string // Captured arguments, if any
}

// Label joins a keyword and a name the way report labels are built
func Label(keyword, name string) string {
	return fmt.Sprintf("%s %s", keyword, name)
}
