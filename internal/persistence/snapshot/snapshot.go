package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

// Ext is the file suffix of a checkpoint; files are named <tick>.snap.zst.
const Ext = ".snap.zst"

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is a checkpoint of one run: its parameters and the grid as it
// stands before tick Header.Tick runs. Satisfaction flags are not stored; they
// are recomputed every tick.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed       int64   `json:"seed"`
	Threshold  float64 `json:"threshold"`
	Relocation string  `json:"relocation"`
	TickRateHz int     `json:"tick_rate_hz"`

	Size   int      `json:"size"`
	Labels []string `json:"labels,omitempty"`
	// Cells holds row-major cell codes: 0 = empty, t+1 = agent of type t.
	Cells []uint8 `json:"cells"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := writeFile(tmp, snap); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeFile(path string, snap SnapshotV1) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is for humans and tools; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if len(snap.Cells) != snap.Size*snap.Size {
		return snap, fmt.Errorf("snapshot has %d cells for size %d", len(snap.Cells), snap.Size)
	}
	return snap, nil
}

// PathFor returns dir/<tick>.snap.zst.
func PathFor(dir string, tick uint64) string {
	return filepath.Join(dir, strconv.FormatUint(tick, 10)+Ext)
}

// Latest returns the checkpoint with the highest tick in dir, or "".
func Latest(dir string) string {
	files, _ := list(dir)
	if len(files) == 0 {
		return ""
	}
	return files[0].path
}

// Prune removes every checkpoint in dir except the newest keep.
func Prune(dir string, keep int) error {
	files, err := list(dir)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for i := keep; i < len(files); i++ {
		if err := os.Remove(files[i].path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

type entry struct {
	path string
	tick uint64
}

// list returns checkpoints in dir, newest first.
func list(dir string) ([]entry, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []entry
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, Ext) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, Ext), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, entry{path: filepath.Join(dir, name), tick: tick})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tick > out[j].tick })
	return out, nil
}
