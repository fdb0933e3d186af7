package report

import (
	"errors"
	"sync"
)

// Sink receives status updates for a run.
type Sink interface {
	// SendStatus reports a per-unit status update.
	SendStatus(code Code, status Status) error
	// Finish reports the end of the run with the overall result code.
	Finish(resultCode int, results Status) error
}

// Multi fans every update out to all sinks. Errors are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) SendStatus(code Code, status Status) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.SendStatus(code, status.Clone()))
	}
	return errors.Join(errs...)
}

func (m multi) Finish(resultCode int, results Status) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Finish(resultCode, results.Clone()))
	}
	return errors.Join(errs...)
}

// Update is one recorded status update.
type Update struct {
	Code   Code
	Status Status
}

// Recorder keeps every update in memory.
type Recorder struct {
	mu         sync.Mutex
	updates    []Update
	finished   bool
	resultCode int
	results    Status
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SendStatus records the update.
func (r *Recorder) SendStatus(code Code, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Update{Code: code, Status: status.Clone()})
	return nil
}

// Finish records the final result.
func (r *Recorder) Finish(resultCode int, results Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
	r.resultCode = resultCode
	r.results = results.Clone()
	return nil
}

// Updates returns a copy of the recorded updates.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// Started returns the updates sent with CodeStart.
func (r *Recorder) Started() []Update {
	var out []Update
	for _, u := range r.Updates() {
		if u.Code == CodeStart {
			out = append(out, u)
		}
	}
	return out
}

// Finished returns the per-unit updates sent with a result code.
func (r *Recorder) Finished() []Update {
	var out []Update
	for _, u := range r.Updates() {
		if u.Code != CodeStart {
			out = append(out, u)
		}
	}
	return out
}

// Result returns the final result, if Finish was called.
func (r *Recorder) Result() (int, Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resultCode, r.results, r.finished
}
