package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"schelling.sim/internal/persistence/snapshot"
	"schelling.sim/internal/sim/engine"
	"schelling.sim/internal/sim/grid"
)

type inspectReport struct {
	RunID      string       `json:"run_id"`
	Tick       uint64       `json:"tick"`
	Size       int          `json:"size"`
	Seed       int64        `json:"seed"`
	Threshold  float64      `json:"threshold"`
	Relocation string       `json:"relocation"`
	Types      []censusLine `json:"types"`
	Empty      int          `json:"empty"`
	Digest     string       `json:"digest"`
	// Satisfied/Unsatisfied classify the stored grid at the stored threshold.
	Satisfied   int     `json:"satisfied"`
	Unsatisfied int     `json:"unsatisfied"`
	Similarity  float64 `json:"similarity"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Summarize a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			printGrid, _ := cmd.Flags().GetBool("print")
			crop, _ := cmd.Flags().GetInt("crop")

			snap, err := snapshot.ReadSnapshot(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			rep, err := inspect(snap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			fmt.Fprintf(out, "run:        %s\n", rep.RunID)
			fmt.Fprintf(out, "tick:       %d\n", rep.Tick)
			fmt.Fprintf(out, "grid:       %dx%d\n", rep.Size, rep.Size)
			fmt.Fprintf(out, "seed:       %d\n", rep.Seed)
			fmt.Fprintf(out, "threshold:  %.3f\n", rep.Threshold)
			fmt.Fprintf(out, "relocation: %s\n", rep.Relocation)
			for _, t := range rep.Types {
				fmt.Fprintf(out, "  %s %-10s %d\n", t.Glyph, t.Label, t.Count)
			}
			fmt.Fprintf(out, "  %s %-10s %d\n", string(glyph(0)), "empty", rep.Empty)
			fmt.Fprintf(out, "satisfied:  %d/%d (similarity %.3f)\n", rep.Satisfied, rep.Satisfied+rep.Unsatisfied, rep.Similarity)
			fmt.Fprintf(out, "digest:     %s\n", rep.Digest)
			if printGrid {
				return renderASCII(out, snap.Cells, snap.Size, crop)
			}
			return nil
		},
	}
	cmd.Flags().Bool("print", false, "print the grid")
	cmd.Flags().Int("crop", 64, "rows/columns shown by --print")
	return cmd
}

func inspect(snap snapshot.SnapshotV1) (inspectReport, error) {
	g, err := grid.FromCodes(snap.Size, snap.Cells)
	if err != nil {
		return inspectReport{}, err
	}
	types, empty := census(snap.Cells, snap.Labels)
	st := engine.Classify(g, snap.Threshold)
	return inspectReport{
		RunID:       snap.Header.RunID,
		Tick:        snap.Header.Tick,
		Size:        snap.Size,
		Seed:        snap.Seed,
		Threshold:   snap.Threshold,
		Relocation:  snap.Relocation,
		Types:       types,
		Empty:       empty,
		Digest:      engine.Digest(g),
		Satisfied:   st.Satisfied,
		Unsatisfied: st.Unsatisfied,
		Similarity:  st.Similarity,
	}, nil
}
