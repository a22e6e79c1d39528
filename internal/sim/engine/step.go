// Package engine runs one simulation tick: classify every agent against the
// grid as it stood at tick start, then relocate the unsatisfied ones.
package engine

import (
	"schelling.sim/internal/sim/grid"
	"schelling.sim/internal/sim/neighborhood"
	"schelling.sim/internal/sim/relocation"
	"schelling.sim/internal/sim/rng"
	"schelling.sim/internal/sim/satisfaction"
)

// TickStats summarizes one tick. Classification counts describe the grid at
// tick start.
type TickStats struct {
	Tick        uint64  `json:"tick"`
	Agents      int     `json:"agents"`
	Satisfied   int     `json:"satisfied"`
	Unsatisfied int     `json:"unsatisfied"`
	Isolated    int     `json:"isolated"` // agents without any non-empty neighbor
	Moved       int     `json:"moved"`
	Draws       int     `json:"draws"`
	Similarity  float64 `json:"similarity"` // mean same-type ratio over agents with a defined ratio
}

// Settled reports whether no agent wanted to move this tick.
func (s TickStats) Settled() bool { return s.Agents > 0 && s.Unsatisfied == 0 }

// Step advances g by one tick in place and returns it, using rejection
// sampling for relocation.
func Step(g *grid.Grid, threshold float64, src rng.Source) *grid.Grid {
	stepWith(g, threshold, src, relocation.Rejection)
	return g
}

// Classify sets Satisfied on every agent from the current grid. Flags never
// influence neighbor reads, so the whole pass sees tick-start state.
func Classify(g *grid.Grid, threshold float64) TickStats {
	var (
		st     TickStats
		sumSim float64
		nSim   int
		buf    = make([]*grid.Agent, 0, 8)
	)
	g.Each(func(row, col int, a *grid.Agent) {
		if a == nil {
			return
		}
		st.Agents++
		buf = neighborhood.MooreInto(buf, g, row, col)
		c := satisfaction.Count(buf, a)
		if r, ok := c.Ratio(); ok {
			sumSim += r
			nSim++
		} else {
			st.Isolated++
		}
		a.Satisfied = c.Satisfied(threshold)
		if a.Satisfied {
			st.Satisfied++
		} else {
			st.Unsatisfied++
		}
	})
	if nSim > 0 {
		st.Similarity = sumSim / float64(nSim)
	}
	return st
}

func stepWith(g *grid.Grid, threshold float64, src rng.Source, strategy relocation.Strategy) TickStats {
	st := Classify(g, threshold)
	if st.Unsatisfied == 0 {
		return st
	}
	res := relocation.Relocate(g, src, strategy)
	st.Moved = res.Moved
	st.Draws = res.Draws
	return st
}

// Controller carries the per-run parameters and tick counter.
type Controller struct {
	Threshold  float64
	Relocation relocation.Strategy

	src  rng.Source
	tick uint64
}

func NewController(threshold float64, strategy relocation.Strategy, src rng.Source) *Controller {
	if strategy == "" {
		strategy = relocation.Rejection
	}
	return &Controller{Threshold: threshold, Relocation: strategy, src: src}
}

// SetTick positions the counter, e.g. after resuming from a checkpoint.
func (c *Controller) SetTick(t uint64) { c.tick = t }

func (c *Controller) Tick() uint64 { return c.tick }

// Step runs tick c.Tick() on g and advances the counter.
func (c *Controller) Step(g *grid.Grid) TickStats {
	st := stepWith(g, c.Threshold, c.src, c.Relocation)
	st.Tick = c.tick
	c.tick++
	return st
}
