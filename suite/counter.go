package suite

import "cuke-bridge/shared"

// CountUnits returns how many test units the suite reports as its total.
// It is used for progress reporting only and never affects execution.
//
// A scenario counts once. An outline counts the data rows of all its
// examples tables minus one; the adjustment is applied once per outline, not
// once per table, so outlines with several tables over-count relative to a
// per-table header correction. Dashboards read this total, so it is kept.
func CountUnits(s *shared.Suite) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, feature := range s.Features {
		for _, st := range feature.Statements {
			switch st.Kind {
			case shared.KindScenario:
				n++
			case shared.KindScenarioOutline:
				for _, ex := range st.Examples {
					n += ex.DataRows()
				}
				n--
			}
		}
	}
	return n
}
