// Package world hosts a run: it owns the grid, drives the step controller at
// a fixed cadence and hands read-only frames to observers.
package world

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"schelling.sim/internal/persistence/snapshot"
	"schelling.sim/internal/sim/engine"
	"schelling.sim/internal/sim/grid"
	"schelling.sim/internal/sim/relocation"
	"schelling.sim/internal/sim/rng"
)

type ObserverJoinRequest struct {
	SessionID  string
	FrameOut   chan []byte
	EveryTicks int
}

type ObserverSubscribeRequest struct {
	SessionID  string
	EveryTicks int
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig
	log *log.Logger

	size int
	grid *grid.Grid
	ctl  *engine.Controller
	last engine.TickStats

	tick    atomic.Uint64
	settled atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once

	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	observers     map[string]*observerClient

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1
}

// New takes ownership of g. src must be the source that shuffled g so a run is
// reproducible from its seed alone.
func New(cfg WorldConfig, g *grid.Grid, src rng.Source, logger *log.Logger) (*World, error) {
	cfg.applyDefaults()
	if g == nil {
		return nil, fmt.Errorf("world: nil grid")
	}
	if src == nil {
		return nil, fmt.Errorf("world: nil random source")
	}
	if _, err := relocation.ParseStrategy(string(cfg.Relocation)); err != nil {
		return nil, err
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("world: threshold %v outside [0,1]", cfg.Threshold)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &World{
		cfg:           cfg,
		log:           logger,
		size:          g.Size(),
		grid:          g,
		ctl:           engine.NewController(cfg.Threshold, cfg.Relocation, src),
		stop:          make(chan struct{}),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 16),
		observers:     map[string]*observerClient{},
	}, nil
}

// Config returns a copy of the run configuration. Safe from any goroutine.
func (w *World) Config() WorldConfig {
	if w == nil {
		return WorldConfig{}
	}
	cfg := w.cfg
	cfg.Labels = append([]string(nil), w.cfg.Labels...)
	return cfg
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

// Size is the grid side; it never changes during a run.
func (w *World) Size() int { return w.size }

// CurrentTick is the number of completed ticks.
func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Settled reports whether the last tick found no unsatisfied agent.
func (w *World) Settled() bool { return w.settled.Load() }

// LastStats returns the stats of the most recent tick. Only call it from the
// world goroutine or after Run has returned.
func (w *World) LastStats() engine.TickStats { return w.last }

// Grid exposes the live grid. Only call it from the world goroutine or after
// Run has returned; observers get frames instead.
func (w *World) Grid() *grid.Grid { return w.grid }

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                        { return w.observerLeave }

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }
