package entropy

import (
	"fmt"
	"math/bits"
)

type dEntry struct {
	newState uint16
	symbol   uint16
	nbBits   uint8
}

// DTable is a prebuilt decode-side transform table.
type DTable struct {
	TableLog int

	// FastMode reports that no symbol occupies half the table or more,
	// which lets unrolled decoders skip a state-range guard. The harness
	// only passes it through.
	FastMode bool

	entries []dEntry
}

// BuildDTable constructs the decode table for a normalized histogram.
func BuildDTable(norm []uint16, tableLog int) (*DTable, error) {
	spread, err := spreadSymbols(norm, tableLog)
	if err != nil {
		return nil, err
	}
	tableSize := 1 << tableLog

	dt := &DTable{
		TableLog: tableLog,
		FastMode: true,
		entries:  make([]dEntry, tableSize),
	}

	largeLimit := uint16(1 << (tableLog - 1))
	symbolNext := make([]uint16, len(norm))
	for s, n := range norm {
		if n >= largeLimit {
			dt.FastMode = false
		}
		symbolNext[s] = n
	}

	for u := 0; u < tableSize; u++ {
		s := spread[u]
		x := symbolNext[s]
		symbolNext[s]++
		nbBits := uint8(tableLog - (bits.Len16(x) - 1))
		dt.entries[u] = dEntry{
			symbol:   s,
			nbBits:   nbBits,
			newState: uint16((uint32(x) << nbBits) - uint32(tableSize)),
		}
	}

	return dt, nil
}

// DecompressUsingDTable decodes exactly len(dst) symbols from src with a
// prebuilt table, without any frame header. src must be a stream produced
// by CompressUsingCTable against the matching normalized histogram.
func DecompressUsingDTable[S Symbol](dst []S, src []byte, dt *DTable) (int, error) {
	if len(dst) == 0 {
		return 0, fmt.Errorf("entropy: empty output")
	}

	var r bitReader
	if err := r.init(src); err != nil {
		return 0, err
	}

	state := r.getBits(uint8(dt.TableLog))
	for i := range dst {
		e := dt.entries[state]
		dst[i] = S(e.symbol)
		r.fill()
		state = uint32(e.newState) + r.getBits(e.nbBits)
	}

	if !r.finished() {
		return 0, errCorrupt
	}
	return len(dst), nil
}
