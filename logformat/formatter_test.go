package logformat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cuke-bridge/report"
	"cuke-bridge/shared"
)

func newObserved() (*Formatter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestFormatter_LogsUnderCucumberName(t *testing.T) {
	f, logs := newObserved()
	f.URI("login.feature")
	f.Feature(&shared.Feature{Keyword: "Feature", Name: "Login"})

	entries := logs.FilterMessage("Feature Login").All()
	require.Len(t, entries, 1)
	assert.Equal(t, LoggerName, entries[0].LoggerName)
	assert.Equal(t, "login.feature", entries[0].ContextMap()["uri"])
}

func TestFormatter_ResultLevels(t *testing.T) {
	f, logs := newObserved()
	f.Result(shared.StepResult{Status: shared.StatusPassed})
	f.Result(shared.StepResult{Status: shared.StatusUndefined})
	f.Result(shared.StepResult{Status: shared.StatusFailed, Err: errors.New("boom")})

	all := logs.All()
	require.Len(t, all, 3)
	assert.Equal(t, zapcore.DebugLevel, all[0].Level)
	assert.Equal(t, zapcore.WarnLevel, all[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[2].Level)
	assert.Equal(t, "boom", all[2].ContextMap()["error"])
}

func TestFormatter_StatusLevels(t *testing.T) {
	f, logs := newObserved()
	status := report.NewStatus()
	status[report.KeyClass] = "Feature Login"
	status[report.KeyTest] = "Scenario A"
	status[report.KeyCurrent] = 1
	status[report.KeyNumTotal] = 3

	f.Status(report.CodeStart, status)
	f.Status(report.CodeOK, status)
	status[report.KeyStack] = "missing"
	f.Status(report.CodeError, status)
	status[report.KeyStack] = "boom"
	f.Status(report.CodeFailure, status)

	all := logs.All()
	require.Len(t, all, 4)
	assert.Equal(t, "unit started", all[0].Message)
	assert.Equal(t, int64(1), all[0].ContextMap()["current"])
	assert.Equal(t, int64(3), all[0].ContextMap()["total"])
	assert.Equal(t, "unit passed", all[1].Message)
	assert.Equal(t, zapcore.WarnLevel, all[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, all[3].Level)
	assert.Equal(t, "boom", all[3].ContextMap()["stack"])
}

func TestFormatter_NilLogger(t *testing.T) {
	f := New(nil)
	assert.NotPanics(t, func() {
		f.Write("hello")
		f.Done()
		f.Close()
	})
}
