package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RepoConfig(t *testing.T) {
	tu, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.TotalLocations != 90_000 || tu.Threshold != 0.7 || len(tu.Distribution) != 2 {
		t.Fatalf("unexpected tuning: %+v", tu)
	}
}

func TestParse_KeepsDefaultsForMissingKeys(t *testing.T) {
	tu, err := Parse([]byte("threshold: 0.5\nseed: 7\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := Defaults()
	if tu.Threshold != 0.5 || tu.Seed != 7 {
		t.Fatalf("overrides not applied: %+v", tu)
	}
	if tu.TotalLocations != d.TotalLocations || tu.TickRateHz != d.TickRateHz {
		t.Fatalf("defaults lost: %+v", tu)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	tu, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tu.TotalLocations != Defaults().TotalLocations {
		t.Fatalf("expected defaults: %+v", tu)
	}
}

func TestParse_SchemaRejects(t *testing.T) {
	cases := []string{
		"threshold: 1.5\n",
		"total_locations: 0\n",
		"distribution: [0.5, -0.1]\n",
		"relocation: teleport\n",
		"tick_rate: 10\n",
		"seed: abc\n",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Fatalf("expected schema error for %q", c)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	tu := Tuning{Labels: []string{"red", ""}}
	if tu.Label(0) != "red" || tu.Label(1) != "B" || tu.Label(2) != "C" || tu.Label(30) != "T30" {
		t.Fatalf("labels: %q %q %q %q", tu.Label(0), tu.Label(1), tu.Label(2), tu.Label(30))
	}
}
