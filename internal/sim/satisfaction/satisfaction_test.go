package satisfaction

import (
	"testing"

	"schelling.sim/internal/sim/grid"
)

func TestZeroNeighborsNeverSatisfied(t *testing.T) {
	self := &grid.Agent{Type: 0}
	for _, th := range []float64{0, 0.5, 1} {
		if Satisfied(nil, self, th) {
			t.Fatalf("threshold %v: agent with no neighbors classified satisfied", th)
		}
		if Satisfied([]*grid.Agent{nil, nil, nil}, self, th) {
			t.Fatalf("threshold %v: agent with only empty neighbors classified satisfied", th)
		}
	}
	if _, ok := (Counts{}).Ratio(); ok {
		t.Fatalf("expected undefined ratio")
	}
}

func TestRatioAndThreshold(t *testing.T) {
	a := &grid.Agent{Type: 0}
	b := &grid.Agent{Type: 1}
	self := &grid.Agent{Type: 0}

	nb := []*grid.Agent{a, nil, b}
	c := Count(nb, self)
	if c.Same != 1 || c.Other != 1 {
		t.Fatalf("counts: %+v", c)
	}
	r, ok := c.Ratio()
	if !ok || r != 0.5 {
		t.Fatalf("ratio=%v ok=%v", r, ok)
	}
	if !Satisfied(nb, self, 0.5) {
		t.Fatalf("ratio 0.5 should satisfy threshold 0.5")
	}
	if Satisfied(nb, self, DefaultThreshold) {
		t.Fatalf("ratio 0.5 should not satisfy threshold %v", DefaultThreshold)
	}
	if !Satisfied([]*grid.Agent{b}, self, 0) {
		t.Fatalf("ratio 0 should satisfy threshold 0")
	}
}
