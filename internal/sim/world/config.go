package world

import "schelling.sim/internal/sim/relocation"

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	Threshold  float64
	Relocation relocation.Strategy
	Labels     []string

	// Stop conditions. MaxTicks 0 runs until stopped.
	MaxTicks        uint64
	StopWhenSettled bool

	// Operational parameters.
	SnapshotEveryTicks int
	LogEveryTicks      int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "run"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 100
	}
	if c.Relocation == "" {
		c.Relocation = relocation.Rejection
	}
}
