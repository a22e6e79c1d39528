package world

import (
	"context"
	"time"

	"schelling.sim/internal/sim/engine"
)

// Run steps the world at TickRateHz until ctx is done, Stop is called, MaxTicks
// is reached or, with StopWhenSettled, a tick finds nobody unsatisfied. It
// returns nil on Stop and the stop conditions, ctx.Err() on cancellation.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer w.closeObservers()

	w.log.Printf("run %s started tick=%d size=%d threshold=%.3f relocation=%s rate=%dHz",
		w.cfg.ID, w.CurrentTick(), w.size, w.cfg.Threshold, w.cfg.Relocation, w.cfg.TickRateHz)

	for {
		if w.done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case <-ticker.C:
			w.step()
		}
	}
}

// Stop halts Run at the next tick boundary. Safe to call more than once.
func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

func (w *World) done() bool {
	if w.cfg.MaxTicks > 0 && w.CurrentTick() >= w.cfg.MaxTicks {
		w.log.Printf("run %s reached max ticks (%d)", w.cfg.ID, w.cfg.MaxTicks)
		return true
	}
	if w.cfg.StopWhenSettled && w.Settled() {
		w.log.Printf("run %s settled at tick %d", w.cfg.ID, w.last.Tick)
		return true
	}
	return false
}

// StepOnce advances the world by a single tick using the same ordering semantics as Run.
// It is primarily intended for deterministic replays/tests and must not be
// called while Run is active.
func (w *World) StepOnce() (tick uint64, digest string) {
	st := w.step()
	return st.Tick, engine.Digest(w.grid)
}

func (w *World) step() engine.TickStats {
	st := w.ctl.Step(w.grid)
	w.last = st
	w.tick.Store(w.ctl.Tick())
	w.settled.Store(st.Settled())

	w.publishFrame(st)

	now := w.CurrentTick()
	if every := w.cfg.LogEveryTicks; every > 0 && now%uint64(every) == 0 {
		w.log.Printf("tick=%d agents=%d satisfied=%d unsatisfied=%d isolated=%d moved=%d similarity=%.3f",
			st.Tick, st.Agents, st.Satisfied, st.Unsatisfied, st.Isolated, st.Moved, st.Similarity)
	}
	if every := w.cfg.SnapshotEveryTicks; every > 0 && w.snapshotSink != nil && now%uint64(every) == 0 {
		snap := w.ExportSnapshot()
		select {
		case w.snapshotSink <- snap:
		default:
			w.log.Printf("snapshot sink busy; skipped checkpoint at tick %d", now)
		}
	}
	return st
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
