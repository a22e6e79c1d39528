package rng

import "testing"

func TestNew_SameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d: %d vs %d", i, x, y)
		}
	}
}

func TestDerive(t *testing.T) {
	if Derive(7, 10) != Derive(7, 10) {
		t.Fatalf("Derive not stable")
	}
	if Derive(7, 10) == Derive(7, 11) {
		t.Fatalf("expected different ticks to derive different seeds")
	}
	if Derive(7, 10) == Derive(8, 10) {
		t.Fatalf("expected different seeds to derive different seeds")
	}
}
