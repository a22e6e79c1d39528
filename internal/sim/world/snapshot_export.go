package world

import "schelling.sim/internal/persistence/snapshot"

// ExportSnapshot checkpoints the grid before tick CurrentTick() runs. Only call
// it from the world goroutine or after Run has returned.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			RunID:   w.cfg.ID,
			Tick:    w.CurrentTick(),
		},
		Seed:       w.cfg.Seed,
		Threshold:  w.cfg.Threshold,
		Relocation: string(w.cfg.Relocation),
		TickRateHz: w.cfg.TickRateHz,
		Size:       w.size,
		Labels:     append([]string(nil), w.cfg.Labels...),
		Cells:      w.grid.Codes(),
	}
}
