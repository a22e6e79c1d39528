// Package population builds the initial shuffled agent layout.
package population

import (
	"errors"
	"fmt"
	"math"

	"schelling.sim/internal/sim/grid"
	"schelling.sim/internal/sim/rng"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrTruncatedPopulation is only returned by Validate when a perfect square
	// is required; Initialize reports truncation through Layout.Dropped.
	ErrTruncatedPopulation = errors.New("truncated population")
)

// eps absorbs binary rounding of decimal proportions (100*0.29 = 28.999...).
const eps = 1e-9

// Layout describes what Initialize laid into the grid.
type Layout struct {
	N int
	// Total is the requested number of locations.
	Total int
	// Dropped is the number of flat entries beyond N² (agents or empties).
	Dropped int
	// DroppedAgents counts agents among the dropped entries.
	DroppedAgents int
	// Counts is the per-type agent count actually placed on the grid.
	Counts []int
	Empty  int
}

func (l Layout) Truncated() bool { return l.Dropped > 0 }

// Side returns floor(sqrt(total)).
func Side(total int) int {
	if total <= 0 {
		return 0
	}
	n := int(math.Sqrt(float64(total)))
	for n*n > total {
		n--
	}
	for (n+1)*(n+1) <= total {
		n++
	}
	return n
}

// Validate checks the parameters Initialize would reject. With requireSquare
// a non-square total is rejected with ErrTruncatedPopulation.
func Validate(total int, dist []float64, requireSquare bool) error {
	if total <= 0 {
		return fmt.Errorf("%w: total locations must be positive, got %d", ErrInvalidConfiguration, total)
	}
	if len(dist) > grid.MaxTypes {
		return fmt.Errorf("%w: at most %d types, got %d", ErrInvalidConfiguration, grid.MaxTypes, len(dist))
	}
	sum := 0.0
	for i, p := range dist {
		if math.IsNaN(p) || p < 0 {
			return fmt.Errorf("%w: proportion %d is %v", ErrInvalidConfiguration, i, p)
		}
		sum += p
	}
	if sum > 1+eps {
		return fmt.Errorf("%w: proportions sum to %v", ErrInvalidConfiguration, sum)
	}
	if requireSquare {
		if n := Side(total); n*n != total {
			return fmt.Errorf("%w: %d locations is not a perfect square (would keep %d)", ErrTruncatedPopulation, total, n*n)
		}
	}
	return nil
}

// Initialize lays total entries out flat (type 0 first, then type 1, ...,
// empties last), shuffles them with src and reshapes row-major into an N×N
// grid, N = floor(sqrt(total)). Entries beyond N² are dropped.
func Initialize(total int, dist []float64, src rng.Source) (*grid.Grid, Layout, error) {
	if err := Validate(total, dist, false); err != nil {
		return nil, Layout{}, err
	}

	flat := make([]*grid.Agent, total)
	cum := 0.0
	start := 0
	for t, p := range dist {
		cum += p
		end := int(math.Floor(float64(total)*cum + eps))
		if end > total {
			end = total
		}
		for i := start; i < end; i++ {
			flat[i] = &grid.Agent{Type: grid.Type(t)}
		}
		if end > start {
			start = end
		}
	}

	src.Shuffle(len(flat), func(i, j int) { flat[i], flat[j] = flat[j], flat[i] })

	n := Side(total)
	g := grid.New(n)
	for i := 0; i < n*n; i++ {
		g.Set(i/n, i%n, flat[i])
	}

	lay := Layout{N: n, Total: total, Dropped: total - n*n, Counts: make([]int, len(dist))}
	for _, a := range flat[n*n:] {
		if a != nil {
			lay.DroppedAgents++
		}
	}
	for t, c := range g.Census() {
		lay.Counts[t] = c
	}
	lay.Empty = g.Empty()
	return g, lay, nil
}
