// Package relocation moves unsatisfied agents to random empty cells.
//
// Both strategies place each vacated agent uniformly over the cells that are
// empty at the moment of placement, so they draw from the same distribution
// (the random streams differ, so a given seed yields different layouts).
// Rejection sampling needs N²/empty draws per placement in expectation; that
// is an expected bound, not a hard cap. Direct sampling always takes one draw.
package relocation

import (
	"fmt"

	"schelling.sim/internal/sim/grid"
	"schelling.sim/internal/sim/rng"
)

type Strategy string

const (
	Rejection Strategy = "rejection"
	Direct    Strategy = "direct"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", Rejection:
		return Rejection, nil
	case Direct:
		return Direct, nil
	}
	return "", fmt.Errorf("relocation: unknown strategy %q", s)
}

type Result struct {
	// Moved is the number of agents vacated and re-placed (an agent may land
	// back on the cell it left).
	Moved int
	// Draws is the number of random cell draws used for placement.
	Draws int
}

// Relocate vacates every unsatisfied agent, collecting them in row-major order
// of their old cells, then places each one on an empty cell. Satisfied agents
// never move. Satisfied flags must already be set for the current tick.
func Relocate(g *grid.Grid, src rng.Source, strategy Strategy) Result {
	vacated := Clear(g)
	if len(vacated) == 0 {
		return Result{}
	}
	checkCapacity(len(vacated), g.Empty())

	res := Result{Moved: len(vacated)}
	if strategy == Direct {
		res.Draws = placeDirect(g, vacated, src)
	} else {
		res.Draws = placeRejection(g, vacated, src)
	}
	return res
}

// Clear removes unsatisfied agents from g and returns them in row-major order.
func Clear(g *grid.Grid) []*grid.Agent {
	var out []*grid.Agent
	g.Each(func(row, col int, a *grid.Agent) {
		if a != nil && !a.Satisfied {
			out = append(out, a)
			g.Set(row, col, nil)
		}
	})
	return out
}

// Each vacated agent freed its own cell, so the cleared grid always has at
// least as many empty cells as agents waiting. Anything else is a bug.
func checkCapacity(agents, empty int) {
	if agents > empty {
		panic(fmt.Sprintf("relocation: %d vacated agents but only %d empty cells", agents, empty))
	}
}

func placeRejection(g *grid.Grid, agents []*grid.Agent, src rng.Source) int {
	n := g.Size()
	draws := 0
	for _, a := range agents {
		for {
			row := src.Intn(n)
			col := src.Intn(n)
			draws++
			if g.At(row, col) == nil {
				g.Set(row, col, a)
				break
			}
		}
	}
	return draws
}

func placeDirect(g *grid.Grid, agents []*grid.Agent, src rng.Source) int {
	empty := make([]grid.Pos, 0, g.Empty())
	g.Each(func(row, col int, a *grid.Agent) {
		if a == nil {
			empty = append(empty, grid.Pos{Row: row, Col: col})
		}
	})
	for _, a := range agents {
		k := src.Intn(len(empty))
		p := empty[k]
		g.Set(p.Row, p.Col, a)
		last := len(empty) - 1
		empty[k] = empty[last]
		empty = empty[:last]
	}
	return len(agents)
}
