package world

import (
	"fmt"
	"log"

	"schelling.sim/internal/persistence/snapshot"
	"schelling.sim/internal/sim/grid"
	"schelling.sim/internal/sim/relocation"
	"schelling.sim/internal/sim/rng"
)

// FromSnapshot resumes a run. Parameters stored in the snapshot win over cfg;
// cfg still supplies stop conditions and operational settings. The random
// source is reseeded from (seed, tick) so a resumed run is reproducible.
func FromSnapshot(snap snapshot.SnapshotV1, cfg WorldConfig, logger *log.Logger) (*World, error) {
	g, err := grid.FromCodes(snap.Size, snap.Cells)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	strategy, err := relocation.ParseStrategy(snap.Relocation)
	if err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}

	if snap.Header.RunID != "" {
		cfg.ID = snap.Header.RunID
	}
	cfg.Seed = snap.Seed
	cfg.Threshold = snap.Threshold
	cfg.Relocation = strategy
	if snap.TickRateHz > 0 {
		cfg.TickRateHz = snap.TickRateHz
	}
	if len(snap.Labels) > 0 {
		cfg.Labels = snap.Labels
	}

	w, err := New(cfg, g, rng.New(rng.Derive(snap.Seed, snap.Header.Tick)), logger)
	if err != nil {
		return nil, err
	}
	w.ctl.SetTick(snap.Header.Tick)
	w.tick.Store(snap.Header.Tick)
	return w, nil
}
