package bridge

import (
	"cuke-bridge/report"
)

// PendingUnit is an open unit that has not been finished yet.
type PendingUnit struct {
	Sequence int
	Class    string
	Test     string
	Code     report.Code
	Stream   string
	Stack    string

	// started is false while the unit was opened by a background or an
	// outline and no scenario has taken it over yet. Its Started update is
	// held back until then so it carries the scenario's label.
	started bool
}

// slot holds at most one PendingUnit.
type slot struct {
	unit PendingUnit
	ok   bool
}

func (s *slot) put(u PendingUnit) {
	s.unit = u
	s.ok = true
}

// peek returns the open unit for in-place updates.
func (s *slot) peek() (*PendingUnit, bool) {
	if !s.ok {
		return nil, false
	}
	return &s.unit, true
}

// take empties the slot and returns what it held.
func (s *slot) take() (PendingUnit, bool) {
	if !s.ok {
		return PendingUnit{}, false
	}
	u := s.unit
	s.unit = PendingUnit{}
	s.ok = false
	return u, true
}
