package entropy

import (
	"fmt"
	"math/bits"
)

// symbolTransform drives one encode step. deltaNbBits folds the bit-count
// decision into a single add-and-shift against the current state, and
// deltaFindState rebases the shifted state into the symbol's slice of the
// state table.
type symbolTransform struct {
	deltaNbBits    uint32
	deltaFindState int32
}

// CTable is a prebuilt encode-side transform table.
type CTable struct {
	TableLog   int
	stateTable []uint16
	symbolTT   []symbolTransform
}

// BuildCTable constructs the encode table for a normalized histogram.
func BuildCTable(norm []uint16, tableLog int) (*CTable, error) {
	spread, err := spreadSymbols(norm, tableLog)
	if err != nil {
		return nil, err
	}
	tableSize := 1 << tableLog

	cumul := make([]int32, len(norm)+1)
	for s, n := range norm {
		cumul[s+1] = cumul[s] + int32(n)
	}
	if cumul[len(norm)] != int32(tableSize) {
		return nil, fmt.Errorf("entropy: normalized counts sum to %d, want %d", cumul[len(norm)], tableSize)
	}

	ct := &CTable{
		TableLog:   tableLog,
		stateTable: make([]uint16, tableSize),
		symbolTT:   make([]symbolTransform, len(norm)),
	}

	// Assign next-state values: the u-th slot of symbol s (in spread
	// order) becomes state tableSize+u, reachable from the s slice of
	// the table at index cumul[s]+u.
	next := make([]int32, len(norm))
	copy(next, cumul[:len(norm)])
	for u := 0; u < tableSize; u++ {
		s := spread[u]
		ct.stateTable[next[s]] = uint16(tableSize + u)
		next[s]++
	}

	total := int32(0)
	for s, n := range norm {
		switch n {
		case 0:
			// Absent symbol; encoding it is a caller bug.
		case 1:
			ct.symbolTT[s] = symbolTransform{
				deltaNbBits:    uint32(tableLog)<<16 - 1<<tableLog,
				deltaFindState: total - 1,
			}
			total++
		default:
			maxBitsOut := uint32(tableLog) - uint32(bits.Len32(uint32(n-1))-1)
			minStatePlus := uint32(n) << maxBitsOut
			ct.symbolTT[s] = symbolTransform{
				deltaNbBits:    maxBitsOut<<16 - minStatePlus,
				deltaFindState: total - int32(n),
			}
			total += int32(n)
		}
	}

	return ct, nil
}

// CompressUsingCTable encodes src into dst with a prebuilt table, without
// any frame header, and returns the number of bytes written. Encoding
// walks src backwards so the decoder can emit symbols in forward order.
// errDstTooSmall is reported when the stream would not fit, which callers
// treat as incompressible input.
func CompressUsingCTable[S Symbol](dst []byte, src []S, ct *CTable) (int, error) {
	if len(src) == 0 {
		return 0, fmt.Errorf("entropy: empty input")
	}

	w := newBitWriter(dst)
	tableSize := uint32(1) << ct.TableLog

	state := tableSize
	for i := len(src) - 1; i >= 0; i-- {
		sym := int(src[i])
		if sym >= len(ct.symbolTT) {
			return 0, fmt.Errorf("entropy: symbol %d outside table alphabet", sym)
		}
		tt := ct.symbolTT[sym]
		nbBits := uint8((state + tt.deltaNbBits) >> 16)
		w.addBits(state, nbBits)
		state = uint32(ct.stateTable[int32(state>>nbBits)+tt.deltaFindState])
		if err := w.flush(); err != nil {
			return 0, err
		}
	}

	w.addBits(state, uint8(ct.TableLog))
	return w.close()
}
