// Package grid holds the square world of agents.
package grid

import "fmt"

// Type is an agent category. Cell codes reserve 0 for empty, so a type t is
// encoded as t+1 and at most MaxTypes categories exist.
type Type uint8

const MaxTypes = 255

// Agent is never created or destroyed after initialization, only moved.
// Satisfied is recomputed wholesale at the start of every tick.
type Agent struct {
	Type      Type
	Satisfied bool
}

type Pos struct {
	Row int
	Col int
}

// Grid is an N×N matrix of optional agents stored row-major.
type Grid struct {
	n     int
	cells []*Agent
}

func New(n int) *Grid {
	if n < 0 {
		n = 0
	}
	return &Grid{n: n, cells: make([]*Agent, n*n)}
}

// FromCodes rebuilds a grid from cell codes (0 = empty, t+1 = type t).
func FromCodes(n int, codes []uint8) (*Grid, error) {
	if n < 0 || len(codes) != n*n {
		return nil, fmt.Errorf("grid: %d codes for size %d", len(codes), n)
	}
	g := New(n)
	for i, c := range codes {
		if c == 0 {
			continue
		}
		g.cells[i] = &Agent{Type: Type(c - 1)}
	}
	return g, nil
}

func (g *Grid) Size() int { return g.n }

func (g *Grid) InBounds(row, col int) bool {
	return 0 <= row && row < g.n && 0 <= col && col < g.n
}

// At returns the occupant of (row, col), nil when empty.
func (g *Grid) At(row, col int) *Agent { return g.cells[row*g.n+col] }

func (g *Grid) Set(row, col int, a *Agent) { g.cells[row*g.n+col] = a }

// Each visits every cell in row-major order.
func (g *Grid) Each(fn func(row, col int, a *Agent)) {
	for i, a := range g.cells {
		fn(i/g.n, i%g.n, a)
	}
}

func (g *Grid) Occupied() int {
	n := 0
	for _, a := range g.cells {
		if a != nil {
			n++
		}
	}
	return n
}

func (g *Grid) Empty() int { return len(g.cells) - g.Occupied() }

// Census counts agents per type.
func (g *Grid) Census() map[Type]int {
	out := map[Type]int{}
	for _, a := range g.cells {
		if a != nil {
			out[a.Type]++
		}
	}
	return out
}

// Codes returns a row-major copy of the cell codes for renderers.
func (g *Grid) Codes() []uint8 {
	out := make([]uint8, len(g.cells))
	for i, a := range g.cells {
		if a != nil {
			out[i] = uint8(a.Type) + 1
		}
	}
	return out
}

// Clone deep-copies the grid, agents included.
func (g *Grid) Clone() *Grid {
	c := New(g.n)
	for i, a := range g.cells {
		if a != nil {
			cp := *a
			c.cells[i] = &cp
		}
	}
	return c
}

// Equal reports whether both grids hold the same type at every position.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.n != o.n {
		return false
	}
	for i := range g.cells {
		a, b := g.cells[i], o.cells[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if a != nil && a.Type != b.Type {
			return false
		}
	}
	return true
}
