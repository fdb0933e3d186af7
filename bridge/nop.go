package bridge

import (
	"cuke-bridge/report"
	"cuke-bridge/shared"
)

// nopFormatter discards everything.
type nopFormatter struct{}

func (nopFormatter) URI(string)                                        {}
func (nopFormatter) Feature(*shared.Feature)                           {}
func (nopFormatter) Background(*shared.Statement)                      {}
func (nopFormatter) Scenario(*shared.Statement)                        {}
func (nopFormatter) ScenarioOutline(*shared.Statement)                 {}
func (nopFormatter) Examples(*shared.Examples)                         {}
func (nopFormatter) Step(*shared.Step)                                 {}
func (nopFormatter) Result(shared.StepResult)                          {}
func (nopFormatter) Match(shared.Match)                                {}
func (nopFormatter) Before(shared.Match, shared.StepResult)            {}
func (nopFormatter) After(shared.Match, shared.StepResult)             {}
func (nopFormatter) Embedding(string, []byte)                          {}
func (nopFormatter) Write(string)                                      {}
func (nopFormatter) SyntaxError(string, string, []string, string, int) {}
func (nopFormatter) EOF()                                              {}
func (nopFormatter) Done()                                             {}
func (nopFormatter) Close()                                            {}
func (nopFormatter) Status(report.Code, report.Status)                 {}
