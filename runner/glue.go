package runner

import (
	"fmt"
	"sort"

	"cuke-bridge/engine"
)

// Glue names the step definition groups a binary was built with. The --glue
// option selects groups by name; without it every group is loaded.
type Glue map[string]engine.ScenarioInitializer

// Select returns the initializers for names, or all of them in name order.
func (g Glue) Select(names []string) ([]engine.ScenarioInitializer, error) {
	if len(names) == 0 {
		names = make([]string, 0, len(g))
		for name := range g {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	out := make([]engine.ScenarioInitializer, 0, len(names))
	for _, name := range names {
		init, ok := g[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown glue %q", ErrConfiguration, name)
		}
		out = append(out, init)
	}
	return out, nil
}
