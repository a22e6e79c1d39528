package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"schelling.sim/internal/persistence/snapshot"
	"schelling.sim/internal/sim/population"
	"schelling.sim/internal/sim/relocation"
	"schelling.sim/internal/sim/rng"
	"schelling.sim/internal/sim/tuning"
	"schelling.sim/internal/sim/world"
	"schelling.sim/internal/transport/observer"
)

type runOptions struct {
	Addr       string
	DataDir    string
	Snapshot   string
	LoadLatest bool
	Print      bool
	GridCrop   int
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run steps the model at tick_rate_hz until max_ticks is reached, the grid
settles (with stop_when_settled) or the process is interrupted. The
latest checkpoint is kept under <data>/snapshots and, with --load_latest,
picked up again on the next start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuningPath, _ := cmd.Flags().GetString("tuning")
			seed, _ := cmd.Flags().GetInt64("seed")
			ticks, _ := cmd.Flags().GetUint64("ticks")

			var opts runOptions
			opts.Addr, _ = cmd.Flags().GetString("addr")
			opts.DataDir, _ = cmd.Flags().GetString("data")
			opts.Snapshot, _ = cmd.Flags().GetString("snapshot")
			opts.LoadLatest, _ = cmd.Flags().GetBool("load_latest")
			opts.Print, _ = cmd.Flags().GetBool("print")
			opts.GridCrop, _ = cmd.Flags().GetInt("crop")

			logger := log.New(os.Stdout, "[schelling] ", log.LstdFlags|log.Lmicroseconds)

			tune, err := tuning.Load(tuningPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("load tuning: %w", err)
				}
				logger.Printf("tuning not found (%s); using defaults", tuningPath)
				tune = tuning.Defaults()
			}
			if cmd.Flags().Changed("seed") {
				tune.Seed = seed
			}
			if cmd.Flags().Changed("ticks") {
				tune.MaxTicks = ticks
			}

			return runSimulation(cmd.Context(), tune, opts, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
	cmd.Flags().String("addr", "127.0.0.1:8080", "observer http listen address (empty to disable)")
	cmd.Flags().String("data", "./data", "runtime data directory")
	cmd.Flags().String("snapshot", "", "path to a checkpoint to resume (optional)")
	cmd.Flags().Bool("load_latest", false, "resume from the latest checkpoint in the data dir if present (when --snapshot is empty)")
	cmd.Flags().Int64("seed", 0, "random seed (fresh runs only; overrides tuning)")
	cmd.Flags().Uint64("ticks", 0, "stop after this many ticks, 0 = unbounded (overrides tuning)")
	cmd.Flags().Bool("print", false, "print the final grid")
	cmd.Flags().Int("crop", 64, "rows/columns shown by --print")

	return cmd
}

func snapshotDir(dataDir string) string { return filepath.Join(dataDir, "snapshots") }

func runSimulation(ctx context.Context, tune tuning.Tuning, opts runOptions, out io.Writer, logger *log.Logger) error {
	snapDir := snapshotDir(opts.DataDir)

	snapshotToLoad := strings.TrimSpace(opts.Snapshot)
	if snapshotToLoad == "" && opts.LoadLatest {
		snapshotToLoad = snapshot.Latest(snapDir)
	}

	w, err := buildWorld(tune, snapshotToLoad, logger)
	if err != nil {
		return err
	}

	// Snapshot writer. Run is the only sender, so the channel is closed once
	// it returns.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for snap := range snapCh {
			if err := writeCheckpoint(snapDir, snap); err != nil {
				logger.Printf("snapshot write: %v", err)
			}
		}
	}()

	var srv *http.Server
	if addr := strings.TrimSpace(opts.Addr); addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		observer.NewServer(w, logger).Register(mux)

		srv = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Printf("listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("http: %v", err)
			}
		}()
	}

	runErr := w.Run(ctx)
	close(snapCh)
	wg.Wait()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}

	if err := writeCheckpoint(snapDir, w.ExportSnapshot()); err != nil {
		logger.Printf("final snapshot: %v", err)
	}

	st := w.LastStats()
	logger.Printf("run %s stopped tick=%d settled=%v agents=%d unsatisfied=%d similarity=%.3f",
		w.ID(), w.CurrentTick(), w.Settled(), st.Agents, st.Unsatisfied, st.Similarity)

	if opts.Print {
		if err := renderASCII(out, w.Grid().Codes(), w.Size(), opts.GridCrop); err != nil {
			return err
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// buildWorld resumes from snapPath when set, otherwise lays out a fresh
// population from tune.
func buildWorld(tune tuning.Tuning, snapPath string, logger *log.Logger) (*world.World, error) {
	strategy, err := relocation.ParseStrategy(tune.Relocation)
	if err != nil {
		return nil, err
	}
	cfg := world.WorldConfig{
		ID:                 strings.TrimSpace(tune.RunID),
		TickRateHz:         tune.TickRateHz,
		Seed:               tune.Seed,
		Threshold:          tune.Threshold,
		Relocation:         strategy,
		Labels:             tune.Labels,
		MaxTicks:           tune.MaxTicks,
		StopWhenSettled:    tune.StopWhenSettled,
		SnapshotEveryTicks: tune.SnapshotEveryTicks,
		LogEveryTicks:      tune.LogEveryTicks,
	}

	if snapPath != "" {
		snap, err := snapshot.ReadSnapshot(snapPath)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		w, err := world.FromSnapshot(snap, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Printf("resumed run %s from snapshot=%s tick=%d", w.ID(), filepath.Base(snapPath), w.CurrentTick())
		return w, nil
	}

	if err := population.Validate(tune.TotalLocations, tune.Distribution, tune.RequireSquare); err != nil {
		return nil, err
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	src := rng.New(tune.Seed)
	g, layout, err := population.Initialize(tune.TotalLocations, tune.Distribution, src)
	if err != nil {
		return nil, err
	}
	if layout.Truncated() {
		logger.Printf("warning: %d locations is not a perfect square; grid is %dx%d, dropped %d trailing entries (%d agents)",
			layout.Total, layout.N, layout.N, layout.Dropped, layout.DroppedAgents)
	}
	logger.Printf("fresh run %s size=%d agents=%v empty=%d seed=%d", cfg.ID, layout.N, layout.Counts, layout.Empty, tune.Seed)

	return world.New(cfg, g, src, logger)
}

// writeCheckpoint stores snap and drops older checkpoints; only the latest
// one is kept.
func writeCheckpoint(dir string, snap snapshot.SnapshotV1) error {
	if err := snapshot.WriteSnapshot(snapshot.PathFor(dir, snap.Header.Tick), snap); err != nil {
		return err
	}
	return snapshot.Prune(dir, 1)
}
