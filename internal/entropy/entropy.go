// Package entropy implements a finite-state entropy coder over byte and
// 16-bit symbol alphabets. It exposes the table pipeline as discrete steps
// (Count, NormalizeCount, BuildCTable, BuildDTable, and the apply-only
// CompressUsingCTable/DecompressUsingDTable) so callers can separate table
// construction cost from transform cost, plus whole-buffer Compress and
// Decompress that wrap the pipeline in a self-describing frame.
package entropy

import (
	"errors"
	"fmt"
	"math/bits"
)

// Symbol is the alphabet constraint: the coder works on bytes or on
// 16-bit units of a byte stream.
type Symbol interface {
	~uint8 | ~uint16
}

// Table precision limits. Larger logs improve ratio at the cost of cache
// footprint; 14 keeps the decode table within L1 on current hardware.
const (
	MinTableLog     = 5
	MaxTableLog     = 14
	DefaultTableLog = 11
)

// Sentinel errors mirroring the degenerate outcomes of compression.
var (
	// ErrIncompressible reports that coding would not shrink the input;
	// callers should store the block verbatim.
	ErrIncompressible = errors.New("entropy: input is not compressible")

	// ErrUseRLE reports that the input is a single repeated symbol;
	// callers should store it as a run-length block.
	ErrUseRLE = errors.New("entropy: input is a single symbol run")
)

// Count builds the symbol histogram of src. It returns the counts indexed
// by symbol value up to the largest symbol observed, and the count of the
// most frequent symbol (equal to len(src) exactly when the input is a
// single-symbol run).
func Count[S Symbol](src []S) (counts []uint32, maxCount uint32) {
	maxSymbol := S(0)
	for _, s := range src {
		if s > maxSymbol {
			maxSymbol = s
		}
	}
	counts = make([]uint32, int(maxSymbol)+1)
	for _, s := range src {
		counts[s]++
	}
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	return counts, maxCount
}

// OptimalTableLog clamps a requested table log to the useful range for the
// given input length and alphabet. A zero request selects the default.
func OptimalTableLog(tableLog, srcLen, maxSymbol int) int {
	if tableLog == 0 {
		tableLog = DefaultTableLog
	}
	if srcLen > 1 {
		if maxBitsSrc := bits.Len(uint(srcLen-1)) - 3; maxBitsSrc < tableLog {
			tableLog = maxBitsSrc
		}
	}
	if minBits := bits.Len(uint(maxSymbol)) + 1; minBits > tableLog {
		tableLog = minBits
	}
	if tableLog < MinTableLog {
		tableLog = MinTableLog
	}
	if tableLog > MaxTableLog {
		tableLog = MaxTableLog
	}
	return tableLog
}

// NormalizeCount scales a histogram so the normalized counts sum exactly
// to 1<<tableLog, with every present symbol keeping at least one slot.
// Scaling drift is settled by largest-count adjustment, stealing slots
// back from the most frequent symbols when the proportional shares
// overshoot.
func NormalizeCount(counts []uint32, tableLog, srcLen int) ([]uint16, error) {
	if tableLog < MinTableLog || tableLog > MaxTableLog {
		return nil, fmt.Errorf("entropy: table log %d out of range [%d,%d]", tableLog, MinTableLog, MaxTableLog)
	}
	if srcLen <= 1 {
		return nil, fmt.Errorf("entropy: cannot normalize over %d samples", srcLen)
	}

	tableSize := 1 << tableLog
	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	if distinct == 0 {
		return nil, fmt.Errorf("entropy: empty histogram")
	}
	if distinct > tableSize {
		return nil, fmt.Errorf("entropy: table log %d too small for %d distinct symbols", tableLog, distinct)
	}

	norm := make([]uint16, len(counts))
	assigned := 0
	for s, c := range counts {
		if c == 0 {
			continue
		}
		n := int(uint64(c) * uint64(tableSize) / uint64(srcLen))
		if n == 0 {
			n = 1
		}
		norm[s] = uint16(n)
		assigned += n
	}

	for assigned < tableSize {
		// Grant the remaining slots to the most frequent symbol; it can
		// absorb precision loss with the least ratio impact.
		best, bestCount := -1, uint32(0)
		for s, c := range counts {
			if c > bestCount {
				best, bestCount = s, c
			}
		}
		norm[best] += uint16(tableSize - assigned)
		assigned = tableSize
	}

	for assigned > tableSize {
		best, bestNorm := -1, uint16(1)
		for s := range norm {
			if norm[s] > bestNorm {
				best, bestNorm = s, norm[s]
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("entropy: normalization cannot settle %d excess slots", assigned-tableSize)
		}
		take := assigned - tableSize
		if max := int(bestNorm) - 1; take > max {
			take = max
		}
		norm[best] -= uint16(take)
		assigned -= take
	}

	return norm, nil
}

// spreadSymbols distributes symbols over the state table using an odd
// stride, which visits every slot of the power-of-two table exactly once.
func spreadSymbols(norm []uint16, tableLog int) ([]uint16, error) {
	tableSize := 1 << tableLog
	tableMask := tableSize - 1
	step := (tableSize >> 1) + (tableSize >> 3) + 3

	spread := make([]uint16, tableSize)
	position := 0
	for s, n := range norm {
		for i := 0; i < int(n); i++ {
			spread[position] = uint16(s)
			position = (position + step) & tableMask
		}
	}
	if position != 0 {
		return nil, fmt.Errorf("entropy: normalized counts do not fill the table")
	}
	return spread, nil
}
