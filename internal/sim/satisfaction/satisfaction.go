// Package satisfaction classifies an agent against its neighbors.
package satisfaction

import "schelling.sim/internal/sim/grid"

const DefaultThreshold = 0.7

// Counts tallies non-empty neighbors relative to one agent.
type Counts struct {
	Same  int
	Other int
}

func Count(neighbors []*grid.Agent, self *grid.Agent) Counts {
	var c Counts
	for _, n := range neighbors {
		switch {
		case n == nil:
		case n.Type == self.Type:
			c.Same++
		default:
			c.Other++
		}
	}
	return c
}

// Ratio is Same/(Same+Other). ok is false when there are no non-empty
// neighbors and the ratio is undefined.
func (c Counts) Ratio() (ratio float64, ok bool) {
	total := c.Same + c.Other
	if total == 0 {
		return 0, false
	}
	return float64(c.Same) / float64(total), true
}

// Satisfied reports ratio >= threshold. An agent with no non-empty neighbors
// is never satisfied, whatever the threshold.
func (c Counts) Satisfied(threshold float64) bool {
	r, ok := c.Ratio()
	if !ok {
		return false
	}
	return r >= threshold
}

func Satisfied(neighbors []*grid.Agent, self *grid.Agent, threshold float64) bool {
	return Count(neighbors, self).Satisfied(threshold)
}
