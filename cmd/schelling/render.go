package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"schelling.sim/internal/sim/grid"
)

// glyphs[code] draws a cell; code 0 is empty, code t+1 is type t.
const glyphs = ".XO+*#@%&=~"

func glyph(code uint8) byte {
	if int(code) < len(glyphs) {
		return glyphs[code]
	}
	return '?'
}

// renderASCII prints the top-left crop×crop corner of a size×size grid.
// crop <= 0 prints everything.
func renderASCII(out io.Writer, codes []uint8, size, crop int) error {
	if len(codes) != size*size {
		return fmt.Errorf("render: %d cells for size %d", len(codes), size)
	}
	rows := size
	if crop > 0 && crop < size {
		rows = crop
	}
	bw := bufio.NewWriter(out)
	line := make([]byte, rows+1)
	for r := 0; r < rows; r++ {
		for c := 0; c < rows; c++ {
			line[c] = glyph(codes[r*size+c])
		}
		line[rows] = '\n'
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type censusLine struct {
	Code  uint8  `json:"code"`
	Label string `json:"label"`
	Glyph string `json:"glyph"`
	Count int    `json:"count"`
}

// census counts agents per type from cell codes, ordered by type.
func census(codes []uint8, labels []string) (types []censusLine, empty int) {
	counts := map[uint8]int{}
	for _, c := range codes {
		if c == 0 {
			empty++
			continue
		}
		counts[c]++
	}
	for code, n := range counts {
		typ := grid.Type(code - 1)
		types = append(types, censusLine{
			Code:  code,
			Label: labelFor(labels, int(typ)),
			Glyph: string(glyph(code)),
			Count: n,
		})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return types, empty
}

func labelFor(labels []string, typ int) string {
	if typ < len(labels) && labels[typ] != "" {
		return labels[typ]
	}
	return fmt.Sprintf("type%d", typ)
}
