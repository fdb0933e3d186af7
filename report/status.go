// Package report defines the instrumentation status protocol and the sinks
// that carry status updates to a test-result collector.
package report

import (
	"fmt"
	"sort"
)

// Code is the status code attached to a single status update.
type Code int

const (
	CodeStart   Code = 1
	CodeOK      Code = 0
	CodeError   Code = -1
	CodeFailure Code = -2
)

// ResultOK is the overall finish code of a run.
const ResultOK = -1

// RunnerID identifies this runner in every status update.
const RunnerID = "InstrumentationTestRunner"

// Status bundle keys.
const (
	KeyID           = "id"
	KeyNumTotal     = "numtests"
	KeyCurrent      = "current"
	KeyClass        = "class"
	KeyTest         = "test"
	KeyStream       = "stream"
	KeyStack        = "stack"
	KeyCoveragePath = "coverageFilePath"
)

// String returns the string representation of Code
func (c Code) String() string {
	switch c {
	case CodeStart:
		return "start"
	case CodeOK:
		return "ok"
	case CodeError:
		return "error"
	case CodeFailure:
		return "failure"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Status is a bundle of named fields. Values are strings or ints.
type Status map[string]any

// NewStatus returns a bundle carrying the runner id.
func NewStatus() Status {
	return Status{KeyID: RunnerID}
}

// Clone returns a shallow copy.
func (s Status) Clone() Status {
	out := make(Status, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the string value of key, or "" when absent.
func (s Status) String(key string) string {
	v, ok := s[key]
	if !ok {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Int returns the int value of key.
func (s Status) Int(key string) (int, bool) {
	v, ok := s[key].(int)
	return v, ok
}

// Keys returns the bundle keys in sorted order.
func (s Status) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
