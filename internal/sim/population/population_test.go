package population

import (
	"errors"
	"testing"

	"schelling.sim/internal/sim/rng"
)

func TestInitialize_QuarterQuarterHalf(t *testing.T) {
	g, lay, err := Initialize(100, []float64{0.25, 0.25}, rng.New(1))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if g.Size() != 10 || lay.N != 10 {
		t.Fatalf("size: grid=%d layout=%d", g.Size(), lay.N)
	}
	c := g.Census()
	if c[0] != 25 || c[1] != 25 || g.Empty() != 50 {
		t.Fatalf("census=%v empty=%d", c, g.Empty())
	}
	if lay.Counts[0] != 25 || lay.Counts[1] != 25 || lay.Empty != 50 {
		t.Fatalf("layout: %+v", lay)
	}
	if lay.Truncated() {
		t.Fatalf("unexpected truncation: %+v", lay)
	}
}

func TestInitialize_IsShuffled(t *testing.T) {
	g, _, err := Initialize(100, []float64{0.5}, rng.New(3))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	// Unshuffled, the first five rows would be all agents.
	firstHalf := 0
	for row := 0; row < 5; row++ {
		for col := 0; col < 10; col++ {
			if g.At(row, col) != nil {
				firstHalf++
			}
		}
	}
	if firstHalf == 50 {
		t.Fatalf("population does not look shuffled")
	}
}

func TestInitialize_Deterministic(t *testing.T) {
	a, _, _ := Initialize(400, []float64{0.3, 0.3}, rng.New(9))
	b, _, _ := Initialize(400, []float64{0.3, 0.3}, rng.New(9))
	if !a.Equal(b) {
		t.Fatalf("same seed produced different layouts")
	}
}

func TestInitialize_TruncatesNonSquare(t *testing.T) {
	g, lay, err := Initialize(10, []float64{1}, rng.New(1))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if g.Size() != 3 || lay.Dropped != 1 || lay.DroppedAgents != 1 {
		t.Fatalf("size=%d layout=%+v", g.Size(), lay)
	}
	if g.Occupied() != 9 {
		t.Fatalf("occupied=%d", g.Occupied())
	}
}

func TestInitialize_FloorBoundaries(t *testing.T) {
	// 0.29*100 is 28.999... in binary; it must still yield 29 agents.
	_, lay, err := Initialize(100, []float64{0.29, 0.333}, rng.New(1))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	// Boundaries: floor(29) = 29, floor(62.3) = 62.
	if lay.Counts[0] != 29 || lay.Counts[1] != 33 {
		t.Fatalf("counts: %v", lay.Counts)
	}
}

func TestInitialize_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		total int
		dist  []float64
	}{
		{0, []float64{0.5}},
		{-4, []float64{0.5}},
		{100, []float64{-0.1, 0.5}},
		{100, []float64{0.6, 0.5}},
	}
	for _, c := range cases {
		g, _, err := Initialize(c.total, c.dist, rng.New(1))
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("total=%d dist=%v: err=%v", c.total, c.dist, err)
		}
		if g != nil {
			t.Fatalf("expected no grid on failure")
		}
	}
}

func TestValidate_RequireSquare(t *testing.T) {
	if err := Validate(99, []float64{0.5}, true); !errors.Is(err, ErrTruncatedPopulation) {
		t.Fatalf("expected ErrTruncatedPopulation, got %v", err)
	}
	if err := Validate(99, []float64{0.5}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(90_000, []float64{0.25, 0.25}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSide(t *testing.T) {
	for total, want := range map[int]int{1: 1, 3: 1, 4: 2, 99: 9, 100: 10, 90_000: 300} {
		if got := Side(total); got != want {
			t.Fatalf("Side(%d)=%d want %d", total, got, want)
		}
	}
}
