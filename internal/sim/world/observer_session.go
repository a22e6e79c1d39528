package world

import (
	"encoding/json"

	"schelling.sim/internal/observerproto"
	simenc "schelling.sim/internal/sim/encoding"
	"schelling.sim/internal/sim/engine"
)

type observerClient struct {
	id         string
	frameOut   chan []byte
	everyTicks int
}

func clampEvery(n int) int {
	if n <= 0 {
		return 1
	}
	if n > 10_000 {
		return 10_000
	}
	return n
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if w == nil || req.SessionID == "" || req.FrameOut == nil {
		return
	}
	if old := w.observers[req.SessionID]; old != nil {
		close(old.frameOut)
	}
	c := &observerClient{
		id:         req.SessionID,
		frameOut:   req.FrameOut,
		everyTicks: clampEvery(req.EveryTicks),
	}
	w.observers[req.SessionID] = c

	// New viewers get the current state right away instead of waiting a tick.
	if b, err := w.frameBytes(w.last); err == nil {
		sendLatest(c.frameOut, b)
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.everyTicks = clampEvery(req.EveryTicks)
}

func (w *World) handleObserverLeave(sessionID string) {
	if sessionID == "" {
		return
	}
	c := w.observers[sessionID]
	if c == nil {
		return
	}
	delete(w.observers, sessionID)
	close(c.frameOut)
}

func (w *World) closeObservers() {
	for id, c := range w.observers {
		delete(w.observers, id)
		close(c.frameOut)
	}
}

func (w *World) publishFrame(st engine.TickStats) {
	if len(w.observers) == 0 {
		return
	}
	now := w.CurrentTick()
	var b []byte
	for _, c := range w.observers {
		if now%uint64(c.everyTicks) != 0 {
			continue
		}
		if b == nil {
			var err error
			if b, err = w.frameBytes(st); err != nil {
				w.log.Printf("observer frame: %v", err)
				return
			}
		}
		sendLatest(c.frameOut, b)
	}
}

// frameBytes renders the grid after st. Tick is the number of completed ticks.
func (w *World) frameBytes(st engine.TickStats) ([]byte, error) {
	msg := observerproto.FrameMsg{
		Type:            observerproto.TypeFrame,
		ProtocolVersion: observerproto.Version,
		Tick:            w.CurrentTick(),
		Size:            w.size,
		Encoding:        observerproto.EncodingRLE,
		Data:            simenc.EncodeRLE(w.grid.Codes()),
		Stats: observerproto.Stats{
			Agents:      st.Agents,
			Satisfied:   st.Satisfied,
			Unsatisfied: st.Unsatisfied,
			Isolated:    st.Isolated,
			Moved:       st.Moved,
			Similarity:  st.Similarity,
			Settled:     st.Settled(),
		},
	}
	return json.Marshal(msg)
}
