package bridge

import (
	"fmt"

	"go.uber.org/zap"

	"cuke-bridge/report"
	"cuke-bridge/shared"
)

// State is the lifecycle state of a Bridge.
type State int

const (
	StateIdle State = iota
	StateUnitOpen
	StateClosed
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUnitOpen:
		return "unit_open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SuccessStream is the streamed text of a unit that finished without a diagnostic.
const SuccessStream = "."

// Bridge reports units to a sink while an engine drives it as its Listener.
//
// The engine never signals the end of a scenario. A unit is finished when the
// next background, scenario or outline boundary arrives, or at the end of a
// feature. Backgrounds and outlines open a unit that the following scenario
// takes over, so a background never reports as a unit of its own: its step
// results count towards the scenario it precedes.
//
// A Bridge serves one run and is not safe for concurrent use.
type Bridge struct {
	sink      report.Sink
	formatter Formatter
	snippets  SnippetSource
	logger    *zap.Logger

	total    int
	sequence int
	pending  slot
	closed   bool

	feature *shared.Feature
	step    *shared.Step
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithFormatter sets the diagnostic formatter.
func WithFormatter(f Formatter) Option {
	return func(b *Bridge) { b.formatter = f }
}

// WithSnippets sets where missing step snippets are read from.
func WithSnippets(s SnippetSource) Option {
	return func(b *Bridge) { b.snippets = s }
}

// WithLogger sets the logger used for sink failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates a bridge reporting total as the unit count of the run.
func New(total int, sink report.Sink, opts ...Option) *Bridge {
	b := &Bridge{
		sink:   sink,
		total:  total,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.formatter == nil {
		b.formatter = nopFormatter{}
	}
	return b
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	switch {
	case b.closed:
		return StateClosed
	case b.pending.ok:
		return StateUnitOpen
	default:
		return StateIdle
	}
}

// Total returns the unit count the bridge was seeded with.
func (b *Bridge) Total() int {
	return b.total
}

// Started returns how many units have been started.
func (b *Bridge) Started() int {
	return b.sequence
}

func (b *Bridge) URI(uri string) {
	if b.closed {
		return
	}
	b.formatter.URI(uri)
}

func (b *Bridge) Feature(feature *shared.Feature) {
	if b.closed {
		return
	}
	b.feature = feature
	b.formatter.Feature(feature)
}

func (b *Bridge) Background(st *shared.Statement) {
	b.boundary(st, false, b.formatter.Background)
}

func (b *Bridge) Scenario(st *shared.Statement) {
	b.boundary(st, true, b.formatter.Scenario)
}

func (b *Bridge) ScenarioOutline(st *shared.Statement) {
	b.boundary(st, false, b.formatter.ScenarioOutline)
}

func (b *Bridge) boundary(st *shared.Statement, claims bool, forward func(*shared.Statement)) {
	if b.closed {
		return
	}
	if u, ok := b.pending.peek(); ok && u.started {
		b.finish()
	}
	forward(st)
	u, ok := b.pending.peek()
	if !ok {
		b.pending.put(b.open(st))
		u, _ = b.pending.peek()
	}
	if claims {
		b.claim(u, st)
	}
}

func (b *Bridge) Examples(ex *shared.Examples) {
	if b.closed {
		return
	}
	b.formatter.Examples(ex)
}

func (b *Bridge) Step(step *shared.Step) {
	if b.closed {
		return
	}
	b.step = step
	b.formatter.Step(step)
}

// Result records a step outcome on the open unit. A failure carries the error
// message verbatim; an undefined step carries the latest snippet.
func (b *Bridge) Result(result shared.StepResult) {
	if b.closed {
		return
	}
	b.formatter.Result(result)
	u, ok := b.pending.peek()
	if !ok {
		return
	}
	switch {
	case result.Err != nil:
		msg := result.ErrorMessage()
		u.Code = report.CodeFailure
		u.Stack = msg
		u.Stream = msg
	case result.Status == shared.StatusUndefined:
		name := b.step.Name()
		snippet := ""
		if b.snippets != nil {
			snippet = b.snippets.LastSnippet()
		}
		u.Code = report.CodeError
		u.Stack = fmt.Sprintf("Missing step-definition\n\n%s\nfor step '%s'", snippet, name)
		u.Stream = fmt.Sprintf("Missing step-definition: %s", name)
	}
}

func (b *Bridge) Match(match shared.Match) {
	if b.closed {
		return
	}
	b.formatter.Match(match)
}

func (b *Bridge) Before(match shared.Match, result shared.StepResult) {
	if b.closed {
		return
	}
	b.formatter.Before(match, result)
}

func (b *Bridge) After(match shared.Match, result shared.StepResult) {
	if b.closed {
		return
	}
	b.formatter.After(match, result)
}

func (b *Bridge) Embedding(mimeType string, data []byte) {
	if b.closed {
		return
	}
	b.formatter.Embedding(mimeType, data)
}

func (b *Bridge) Write(text string) {
	if b.closed {
		return
	}
	b.formatter.Write(text)
}

func (b *Bridge) SyntaxError(state, event string, legalEvents []string, uri string, line int) {
	if b.closed {
		return
	}
	b.formatter.SyntaxError(state, event, legalEvents, uri, line)
}

// EOF finishes the open unit, if any, at the end of a feature.
func (b *Bridge) EOF() {
	if b.closed {
		return
	}
	b.finish()
	b.formatter.EOF()
}

// Done finishes a unit left open by an engine that stopped early.
func (b *Bridge) Done() {
	if b.closed {
		return
	}
	b.finish()
	b.formatter.Done()
}

// Close ends the run. Later callbacks are ignored.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.finish()
	b.formatter.Close()
	b.closed = true
}

func (b *Bridge) open(st *shared.Statement) PendingUnit {
	return PendingUnit{
		Test: shared.Label(st.Keyword, st.Name),
		Code: report.CodeOK,
	}
}

// claim labels the unit with st and sends its Started update.
func (b *Bridge) claim(u *PendingUnit, st *shared.Statement) {
	u.Test = shared.Label(st.Keyword, st.Name)
	b.start(u)
}

func (b *Bridge) start(u *PendingUnit) {
	u.Class = ""
	if b.feature != nil {
		u.Class = shared.Label(b.feature.Keyword, b.feature.Name)
	}
	b.sequence++
	u.Sequence = b.sequence
	u.started = true

	status := b.template(*u)
	status[report.KeyStream] = fmt.Sprintf("\n%s:", u.Class)
	b.send(report.CodeStart, status)
}

// finish reports the open unit. Without an open unit it does nothing. A unit
// nobody claimed is started first so that no Finished goes out unmatched.
func (b *Bridge) finish() {
	u, ok := b.pending.peek()
	if !ok {
		return
	}
	if !u.started {
		b.start(u)
	}
	unit, _ := b.pending.take()
	status := b.template(unit)
	if unit.Code == report.CodeOK {
		status[report.KeyStream] = SuccessStream
	} else {
		status[report.KeyStream] = unit.Stream
		status[report.KeyStack] = unit.Stack
	}
	b.send(unit.Code, status)
}

func (b *Bridge) template(u PendingUnit) report.Status {
	status := report.NewStatus()
	status[report.KeyNumTotal] = b.total
	status[report.KeyClass] = u.Class
	status[report.KeyTest] = u.Test
	status[report.KeyCurrent] = u.Sequence
	return status
}

func (b *Bridge) send(code report.Code, status report.Status) {
	b.formatter.Status(code, status.Clone())
	if b.sink == nil {
		return
	}
	if err := b.sink.SendStatus(code, status); err != nil {
		b.logger.Warn("Failed to send status",
			zap.Stringer("code", code),
			zap.Int("current", status[report.KeyCurrent].(int)),
			zap.Error(err))
	}
}
