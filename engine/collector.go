package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"cuke-bridge/options"
)

// StepDefsFile is the file written into the --dotcucumber directory.
const StepDefsFile = "stepdefs.json"

// Collector gathers run-wide diagnostics: step errors, snippets for
// undefined steps and the step definitions that matched.
type Collector struct {
	mu          sync.Mutex
	style       string
	errs        []error
	snippets    []string
	seen        map[string]bool
	last        string
	definitions []string
	defined     map[string]bool
}

// NewCollector creates a collector generating snippets in the given style.
func NewCollector(style string) *Collector {
	if style == "" {
		style = options.SnippetsCamelCase
	}
	return &Collector{
		style:   style,
		seen:    make(map[string]bool),
		defined: make(map[string]bool),
	}
}

// AddError records a step or feature error.
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

// Undefined generates the snippet for an undefined step, records it and
// returns it. Identical snippets are kept once.
func (c *Collector) Undefined(stepText string) string {
	snippet := Snippet(stepText, c.style)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = snippet
	if !c.seen[snippet] {
		c.seen[snippet] = true
		c.snippets = append(c.snippets, snippet)
	}
	return snippet
}

// LastSnippet returns the snippet of the most recent undefined step.
func (c *Collector) LastSnippet() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Defined records a matched step definition expression.
func (c *Collector) Defined(expr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.defined[expr] {
		c.defined[expr] = true
		c.definitions = append(c.definitions, expr)
	}
}

// Errors returns the recorded errors.
func (c *Collector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

// Snippets returns the distinct snippets in first-seen order.
func (c *Collector) Snippets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.snippets...)
}

// Definitions returns the matched step definitions in first-seen order.
func (c *Collector) Definitions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.definitions...)
}

type stepDef struct {
	Source string `json:"source"`
	Flags  string `json:"flags"`
}

// WriteStepDefs writes the matched step definitions to dir/stepdefs.json.
func (c *Collector) WriteStepDefs(dir string) error {
	defs := c.Definitions()
	out := make([]stepDef, 0, len(defs))
	for _, d := range defs {
		out = append(out, stepDef{Source: d})
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode step definitions: %w", err)
	}
	path := filepath.Join(dir, StepDefsFile)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var argRe = regexp.MustCompile(`"[^"]*"|-?\d+(\.\d+)?`)

// Snippet returns a godog step definition suggestion for an undefined step.
// Quoted strings and numbers become arguments.
func Snippet(text, style string) string {
	var (
		expr  strings.Builder
		words []string
		args  []string
	)
	literal := func(s string) {
		expr.WriteString(strings.ReplaceAll(regexp.QuoteMeta(s), "`", `\x60`))
		words = append(words, strings.FieldsFunc(s, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})...)
	}

	expr.WriteString("^")
	pos := 0
	for _, m := range argRe.FindAllStringIndex(text, -1) {
		literal(text[pos:m[0]])
		token := text[m[0]:m[1]]
		switch {
		case strings.HasPrefix(token, `"`):
			expr.WriteString(`"([^"]*)"`)
			args = append(args, fmt.Sprintf("arg%d string", len(args)+1))
		case strings.Contains(token, "."):
			expr.WriteString(`(-?\d+\.\d+)`)
			args = append(args, fmt.Sprintf("arg%d float64", len(args)+1))
		default:
			expr.WriteString(`(-?\d+)`)
			args = append(args, fmt.Sprintf("arg%d int", len(args)+1))
		}
		pos = m[1]
	}
	literal(text[pos:])
	expr.WriteString("$")

	name := funcName(words, style)
	return fmt.Sprintf("func %s(%s) error {\n\treturn godog.ErrPending\n}\n\nctx.Step(`%s`, %s)",
		name, strings.Join(args, ", "), expr.String(), name)
}

func funcName(words []string, style string) string {
	if len(words) == 0 {
		return "undefinedStep"
	}
	lower := make([]string, 0, len(words))
	for _, w := range words {
		lower = append(lower, strings.ToLower(w))
	}
	if style == options.SnippetsUnderscore {
		name := strings.Join(lower, "_")
		if unicode.IsDigit(rune(name[0])) {
			name = "step_" + name
		}
		return name
	}
	var b strings.Builder
	for i, w := range lower {
		if i == 0 {
			b.WriteString(w)
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	name := b.String()
	if unicode.IsDigit([]rune(name)[0]) {
		name = "step" + name
	}
	return name
}
