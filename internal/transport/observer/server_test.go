package observer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"schelling.sim/internal/observerproto"
	simenc "schelling.sim/internal/sim/encoding"
	"schelling.sim/internal/sim/population"
	"schelling.sim/internal/sim/rng"
	"schelling.sim/internal/sim/world"
)

func startWorld(t *testing.T) *world.World {
	t.Helper()
	src := rng.New(11)
	g, _, err := population.Initialize(100, []float64{0.4, 0.4}, src)
	if err != nil {
		t.Fatalf("population: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "obs", Seed: 11, Threshold: 0.7, TickRateHz: 200, Labels: []string{"red", "blue"}}, g, src, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestBootstrap(t *testing.T) {
	w := startWorld(t)
	mux := http.NewServeMux()
	NewServer(w, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/observer/bootstrap")
	if err != nil {
		t.Fatalf("GET bootstrap: %v", err)
	}
	defer resp.Body.Close()
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.RunID != "obs" || b.Params.Size != 10 || b.Params.Threshold != 0.7 || len(b.Labels) != 2 {
		t.Fatalf("bootstrap: %+v", b)
	}

	post, err := http.Post(srv.URL+"/v1/observer/bootstrap", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST bootstrap: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status=%d", post.StatusCode)
	}
}

func TestWS_StreamsFrames(t *testing.T) {
	w := startWorld(t)
	mux := http.NewServeMux()
	NewServer(w, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{Type: observerproto.TypeSubscribe, ProtocolVersion: observerproto.Version, EveryTicks: 1}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 3; i++ {
		var frame observerproto.FrameMsg
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if frame.Type != observerproto.TypeFrame || frame.Size != 10 || frame.Encoding != observerproto.EncodingRLE {
			t.Fatalf("frame %d: %+v", i, frame)
		}
		codes, err := simenc.DecodeRLE(frame.Data, 100)
		if err != nil || len(codes) != 100 {
			t.Fatalf("frame %d data: len=%d err=%v", i, len(codes), err)
		}
		occupied := 0
		for _, c := range codes {
			if c != 0 {
				occupied++
			}
		}
		if occupied != 80 {
			t.Fatalf("frame %d: %d agents, want 80", i, occupied)
		}
	}
}

func TestWS_RejectsBadHandshake(t *testing.T) {
	w := startWorld(t)
	mux := http.NewServeMux()
	NewServer(w, nil).Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:1234": true,
		"[::1]:80":       true,
		"10.0.0.1:80":    false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}
