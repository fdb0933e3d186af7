// Package logformat is the human-readable side of a run: it writes every
// execution callback and every unit status to a zap logger.
package logformat

import (
	"go.uber.org/zap"

	"cuke-bridge/report"
	"cuke-bridge/shared"
)

// LoggerName is the name given to the formatter's logger.
const LoggerName = "cucumber"

// Formatter logs execution callbacks and unit statuses.
type Formatter struct {
	logger *zap.Logger
	uri    string
}

// New creates a formatter writing under the "cucumber" logger name.
func New(logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{logger: logger.Named(LoggerName)}
}

func (f *Formatter) URI(uri string) {
	f.uri = uri
	f.logger.Debug("uri", zap.String("uri", uri))
}

func (f *Formatter) Feature(feature *shared.Feature) {
	f.logger.Info(shared.Label(feature.Keyword, feature.Name), zap.String("uri", f.uri))
}

func (f *Formatter) Background(st *shared.Statement) {
	f.logger.Info(shared.Label(st.Keyword, st.Name), zap.Int64("line", st.Line))
}

func (f *Formatter) Scenario(st *shared.Statement) {
	f.logger.Info(shared.Label(st.Keyword, st.Name), zap.Int64("line", st.Line))
}

func (f *Formatter) ScenarioOutline(st *shared.Statement) {
	f.logger.Info(shared.Label(st.Keyword, st.Name), zap.Int64("line", st.Line), zap.Int("tables", len(st.Examples)))
}

func (f *Formatter) Examples(ex *shared.Examples) {
	f.logger.Debug(shared.Label(ex.Keyword, ex.Name), zap.Int("rows", ex.DataRows()))
}

func (f *Formatter) Step(step *shared.Step) {
	f.logger.Debug(step.Keyword+step.Text, zap.Int64("line", step.Line))
}

func (f *Formatter) Result(r shared.StepResult) {
	fields := []zap.Field{zap.String("status", string(r.Status)), zap.Duration("duration", r.Duration)}
	switch {
	case r.Err != nil:
		f.logger.Error("step failed", append(fields, zap.Error(r.Err))...)
	case r.Status == shared.StatusUndefined:
		f.logger.Warn("step undefined", fields...)
	default:
		f.logger.Debug("step result", fields...)
	}
}

func (f *Formatter) Match(m shared.Match) {
	f.logger.Debug("match", zap.String("location", m.Location), zap.Strings("arguments", m.Arguments))
}

func (f *Formatter) Before(m shared.Match, r shared.StepResult) {
	f.hook("before hook", m, r)
}

func (f *Formatter) After(m shared.Match, r shared.StepResult) {
	f.hook("after hook", m, r)
}

func (f *Formatter) hook(msg string, m shared.Match, r shared.StepResult) {
	if r.Err != nil {
		f.logger.Error(msg, zap.String("location", m.Location), zap.Error(r.Err))
		return
	}
	f.logger.Debug(msg, zap.String("location", m.Location), zap.String("status", string(r.Status)))
}

func (f *Formatter) Embedding(mimeType string, data []byte) {
	f.logger.Debug("embedding", zap.String("mimeType", mimeType), zap.Int("bytes", len(data)))
}

func (f *Formatter) Write(text string) {
	f.logger.Info(text)
}

func (f *Formatter) SyntaxError(state, event string, legalEvents []string, uri string, line int) {
	f.logger.Error("syntax error",
		zap.String("state", state),
		zap.String("event", event),
		zap.Strings("legalEvents", legalEvents),
		zap.String("uri", uri),
		zap.Int("line", line))
}

func (f *Formatter) EOF() {
	f.logger.Debug("eof", zap.String("uri", f.uri))
}

func (f *Formatter) Done() {
	f.logger.Debug("done")
}

// Close flushes the logger. Sync errors on terminals are not actionable.
func (f *Formatter) Close() {
	_ = f.logger.Sync()
}

// Status logs a unit status update.
func (f *Formatter) Status(code report.Code, status report.Status) {
	current, _ := status.Int(report.KeyCurrent)
	total, _ := status.Int(report.KeyNumTotal)
	fields := []zap.Field{
		zap.String("class", status.String(report.KeyClass)),
		zap.String("test", status.String(report.KeyTest)),
		zap.Int("current", current),
		zap.Int("total", total),
	}
	switch code {
	case report.CodeStart:
		f.logger.Info("unit started", fields...)
	case report.CodeOK:
		f.logger.Info("unit passed", fields...)
	case report.CodeError:
		f.logger.Warn("unit errored", append(fields, zap.String("stack", status.String(report.KeyStack)))...)
	default:
		f.logger.Error("unit failed", append(fields, zap.String("stack", status.String(report.KeyStack)))...)
	}
}
