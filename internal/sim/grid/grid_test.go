package grid

import "testing"

func TestInBounds(t *testing.T) {
	g := New(3)
	if !g.InBounds(0, 0) {
		t.Fatalf("expected (0,0) in bounds")
	}
	if g.InBounds(-1, 0) {
		t.Fatalf("expected (-1,0) out of bounds")
	}
	if g.InBounds(0, 3) {
		t.Fatalf("expected (0,3) out of bounds")
	}
}

func TestCodesRoundTripAndCensus(t *testing.T) {
	codes := []uint8{1, 1, 0, 0, 2, 0, 1, 0, 2}
	g, err := FromCodes(3, codes)
	if err != nil {
		t.Fatalf("FromCodes: %v", err)
	}
	if g.Occupied() != 5 || g.Empty() != 4 {
		t.Fatalf("occupied=%d empty=%d", g.Occupied(), g.Empty())
	}
	c := g.Census()
	if c[0] != 3 || c[1] != 2 {
		t.Fatalf("census: %v", c)
	}
	got := g.Codes()
	for i := range codes {
		if got[i] != codes[i] {
			t.Fatalf("code %d: got %d want %d", i, got[i], codes[i])
		}
	}
	if a := g.At(1, 1); a == nil || a.Type != 1 {
		t.Fatalf("At(1,1) = %+v", a)
	}

	if _, err := FromCodes(2, codes); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := New(2)
	g.Set(0, 0, &Agent{Type: 0})
	c := g.Clone()
	if !g.Equal(c) {
		t.Fatalf("clone differs")
	}
	c.At(0, 0).Satisfied = true
	c.Set(1, 1, &Agent{Type: 1})
	if g.At(0, 0).Satisfied {
		t.Fatalf("clone shares agents with original")
	}
	if g.Equal(c) {
		t.Fatalf("expected grids to differ after mutating clone")
	}
}
