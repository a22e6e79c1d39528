package engine

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"schelling.sim/internal/sim/grid"
)

// Digest hashes the grid size and cell codes. Two grids with the same types
// at the same positions share a digest.
func Digest(g *grid.Grid) string {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(g.Size()))
	h.Write(tmp[:])
	h.Write(g.Codes())
	return hex.EncodeToString(h.Sum(nil))
}
