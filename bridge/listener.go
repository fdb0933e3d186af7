// Package bridge turns the callback stream of an execution engine into an
// ordered sequence of unit started / unit finished status updates.
package bridge

import (
	"cuke-bridge/report"
	"cuke-bridge/shared"
)

// Listener is the callback set an execution engine drives while it walks a
// suite. Calls arrive strictly in execution order on a single goroutine.
type Listener interface {
	URI(uri string)
	Feature(feature *shared.Feature)
	Background(st *shared.Statement)
	Scenario(st *shared.Statement)
	ScenarioOutline(st *shared.Statement)
	Examples(ex *shared.Examples)
	Step(step *shared.Step)
	Result(result shared.StepResult)
	Match(match shared.Match)
	Before(match shared.Match, result shared.StepResult)
	After(match shared.Match, result shared.StepResult)
	Embedding(mimeType string, data []byte)
	Write(text string)
	SyntaxError(state, event string, legalEvents []string, uri string, line int)
	// EOF marks the end of one feature.
	EOF()
	// Done and Close end the whole run.
	Done()
	Close()
}

// Formatter is the diagnostic side of the bridge. It sees every callback and
// every status update the bridge sends.
type Formatter interface {
	Listener
	Status(code report.Code, status report.Status)
}

// SnippetSource returns the step definition snippet suggested for the most
// recent undefined step.
type SnippetSource interface {
	LastSnippet() string
}
