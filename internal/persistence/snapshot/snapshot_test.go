package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func sample(tick uint64) SnapshotV1 {
	return SnapshotV1{
		Header:     Header{Version: Version, RunID: "run-1", Tick: tick},
		Seed:       42,
		Threshold:  0.7,
		Relocation: "direct",
		TickRateHz: 100,
		Size:       3,
		Labels:     []string{"red", "blue"},
		Cells:      []uint8{1, 1, 0, 0, 2, 0, 1, 0, 2},
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := PathFor(dir, 12)
	if err := WriteSnapshot(path, sample(12)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	want := sample(12)
	if got.Header != want.Header || got.Seed != want.Seed || got.Threshold != want.Threshold ||
		got.Relocation != want.Relocation || got.Size != want.Size || len(got.Labels) != 2 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
	for i := range want.Cells {
		if got.Cells[i] != want.Cells[i] {
			t.Fatalf("cell %d: got %d want %d", i, got.Cells[i], want.Cells[i])
		}
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestReadSnapshot_RejectsBadCells(t *testing.T) {
	dir := t.TempDir()
	s := sample(1)
	s.Size = 4
	path := PathFor(dir, 1)
	if err := WriteSnapshot(path, s); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestLatestAndPrune(t *testing.T) {
	dir := t.TempDir()
	if Latest(dir) != "" {
		t.Fatalf("expected no checkpoint")
	}
	for _, tick := range []uint64{5, 100, 20} {
		if err := WriteSnapshot(PathFor(dir, tick), sample(tick)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	if got := Latest(dir); got != PathFor(dir, 100) {
		t.Fatalf("Latest=%s", got)
	}
	if err := Prune(dir, 1); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	ents, _ := os.ReadDir(dir)
	if len(ents) != 2 {
		t.Fatalf("expected checkpoint + notes after prune, got %d entries", len(ents))
	}
	if Latest(dir) != PathFor(dir, 100) {
		t.Fatalf("newest checkpoint pruned")
	}
	if Latest(filepath.Join(dir, "missing")) != "" {
		t.Fatalf("expected empty result for missing dir")
	}
}
