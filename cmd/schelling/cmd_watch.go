package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"schelling.sim/internal/observerproto"
	simenc "schelling.sim/internal/sim/encoding"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render a running simulation in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			every, _ := cmd.Flags().GetInt("every")
			frames, _ := cmd.Flags().GetInt("frames")
			crop, _ := cmd.Flags().GetInt("crop")
			clearScreen, _ := cmd.Flags().GetBool("clear")
			return watch(cmd.Context(), url, watchOptions{
				EveryTicks: every,
				MaxFrames:  frames,
				Crop:       crop,
				Clear:      clearScreen,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("url", "ws://127.0.0.1:8080/v1/observer/ws", "observer websocket url")
	cmd.Flags().Int("every", 10, "render one frame per N ticks")
	cmd.Flags().Int("frames", 0, "exit after this many frames, 0 = until the run ends")
	cmd.Flags().Int("crop", 64, "rows/columns rendered")
	cmd.Flags().Bool("clear", true, "clear the terminal between frames")
	return cmd
}

type watchOptions struct {
	EveryTicks int
	MaxFrames  int
	Crop       int
	Clear      bool
}

func watch(ctx context.Context, url string, opts watchOptions, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	// Unblock ReadJSON on interrupt.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		EveryTicks:      opts.EveryTicks,
	}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for n := 0; opts.MaxFrames <= 0 || n < opts.MaxFrames; n++ {
		var frame observerproto.FrameMsg
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if frame.Type != observerproto.TypeFrame {
			continue
		}
		if err := renderFrame(out, frame, opts); err != nil {
			return err
		}
	}
	return nil
}

func renderFrame(out io.Writer, frame observerproto.FrameMsg, opts watchOptions) error {
	if !strings.EqualFold(frame.Encoding, observerproto.EncodingRLE) {
		return fmt.Errorf("unsupported frame encoding %q", frame.Encoding)
	}
	codes, err := simenc.DecodeRLE(frame.Data, frame.Size*frame.Size)
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	if opts.Clear {
		fmt.Fprint(out, "\x1b[H\x1b[2J")
	}
	s := frame.Stats
	fmt.Fprintf(out, "tick %d  agents %d  unsatisfied %d  moved %d  similarity %.3f",
		frame.Tick, s.Agents, s.Unsatisfied, s.Moved, s.Similarity)
	if s.Settled {
		fmt.Fprint(out, "  settled")
	}
	fmt.Fprintln(out)
	return renderASCII(out, codes, frame.Size, opts.Crop)
}
