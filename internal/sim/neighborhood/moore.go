// Package neighborhood finds the Moore neighborhood of a grid cell without
// wraparound: corners have 3 neighbors, edges 5, interior cells 8.
package neighborhood

import "schelling.sim/internal/sim/grid"

// Moore returns the occupants (nil for empty) of the in-bounds cells around
// (row, col), scanning row-major. (row, col) must be in bounds.
func Moore(g *grid.Grid, row, col int) []*grid.Agent {
	return MooreInto(make([]*grid.Agent, 0, 8), g, row, col)
}

// MooreInto appends to dst[:0] so a tick can reuse one buffer.
func MooreInto(dst []*grid.Agent, g *grid.Grid, row, col int) []*grid.Agent {
	dst = dst[:0]
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if r == row && c == col {
				continue
			}
			if !g.InBounds(r, c) {
				continue
			}
			dst = append(dst, g.At(r, c))
		}
	}
	return dst
}

// Positions lists the neighbor coordinates of (row, col) in an n×n grid.
func Positions(n, row, col int) []grid.Pos {
	out := make([]grid.Pos, 0, 8)
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if r == row && c == col {
				continue
			}
			if r < 0 || r >= n || c < 0 || c >= n {
				continue
			}
			out = append(out, grid.Pos{Row: r, Col: c})
		}
	}
	return out
}
