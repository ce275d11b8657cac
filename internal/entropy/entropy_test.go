package entropy

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skewedBytes produces a compressible stream over a small alphabet with a
// heavily weighted zero symbol.
func skewedBytes(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	for i := range out {
		if r.Intn(10) < 7 {
			out[i] = 0
		} else {
			out[i] = byte(1 + r.Intn(7))
		}
	}
	return out
}

func TestCount(t *testing.T) {
	src := []byte{3, 1, 3, 3, 0, 1}
	counts, maxCount := Count(src)

	require.Len(t, counts, 4)
	assert.Equal(t, uint32(1), counts[0])
	assert.Equal(t, uint32(2), counts[1])
	assert.Equal(t, uint32(0), counts[2])
	assert.Equal(t, uint32(3), counts[3])
	assert.Equal(t, uint32(3), maxCount)
}

func TestOptimalTableLogClampsToInput(t *testing.T) {
	// Tiny inputs must not get a table larger than the data can fill.
	small := OptimalTableLog(0, 64, 7)
	assert.LessOrEqual(t, small, MaxTableLog)
	assert.GreaterOrEqual(t, small, MinTableLog)

	large := OptimalTableLog(0, 1<<20, 255)
	assert.Equal(t, DefaultTableLog, large)

	forced := OptimalTableLog(13, 1<<20, 255)
	assert.Equal(t, 13, forced)
}

func TestNormalizeCountSumsToTableSize(t *testing.T) {
	src := skewedBytes(1, 4096)
	counts, _ := Count(src)

	tableLog := OptimalTableLog(0, len(src), len(counts)-1)
	norm, err := NormalizeCount(counts, tableLog, len(src))
	require.NoError(t, err)

	sum := 0
	for s, n := range norm {
		if counts[s] > 0 {
			assert.GreaterOrEqual(t, n, uint16(1), "present symbol %d lost its slot", s)
		} else {
			assert.Zero(t, n)
		}
		sum += int(n)
	}
	assert.Equal(t, 1<<tableLog, sum)
}

func TestNormalizeCountRejectsOvercrowdedAlphabet(t *testing.T) {
	// 64 distinct symbols cannot share a 32-entry table.
	counts := make([]uint32, 64)
	for i := range counts {
		counts[i] = 1
	}
	_, err := NormalizeCount(counts, MinTableLog, 64)
	require.Error(t, err)
}

func TestSpreadSymbolsCoversTable(t *testing.T) {
	norm := []uint16{8, 4, 2, 2}
	tableLog := 4

	spread, err := spreadSymbols(norm, tableLog)
	require.NoError(t, err)
	require.Len(t, spread, 1<<tableLog)

	seen := make([]int, len(norm))
	for _, s := range spread {
		seen[s]++
	}
	for s, n := range norm {
		assert.Equal(t, int(n), seen[s], "symbol %d occupancy", s)
	}
}

func TestBuildDTableFastMode(t *testing.T) {
	balanced, err := BuildDTable([]uint16{8, 8, 8, 8}, 5)
	require.NoError(t, err)
	assert.True(t, balanced.FastMode)

	skewed, err := BuildDTable([]uint16{28, 2, 1, 1}, 5)
	require.NoError(t, err)
	assert.False(t, skewed.FastMode)
}

func TestBitstreamRoundTrip(t *testing.T) {
	w := newBitWriter(make([]byte, 32))
	w.addBits(0x15, 5)
	w.addBits(0x6A, 7)
	w.addBits(0x3FFF, 14)
	require.NoError(t, w.flush())
	n, err := w.close()
	require.NoError(t, err)

	var r bitReader
	require.NoError(t, r.init(w.dst[:n]))

	// Values come back in reverse write order.
	assert.Equal(t, uint32(0x3FFF), r.getBits(14))
	assert.Equal(t, uint32(0x6A), r.getBits(7))
	assert.Equal(t, uint32(0x15), r.getBits(5))
	assert.True(t, r.finished())
}

func TestCompressRejectsTrivialInput(t *testing.T) {
	dst := make([]byte, CompressBound(16))

	_, err := Compress(dst, []byte{}, 0)
	assert.ErrorIs(t, err, ErrIncompressible)

	_, err = Compress(dst, []byte{42}, 0)
	assert.ErrorIs(t, err, ErrIncompressible)

	constant := make([]byte, 512)
	for i := range constant {
		constant[i] = 7
	}
	_, err = Compress(dst, constant, 0)
	assert.ErrorIs(t, err, ErrUseRLE)
}

func TestCompressRoundTripBytes(t *testing.T) {
	src := skewedBytes(7, 8192)
	dst := make([]byte, CompressBound(len(src)))

	written, err := Compress(dst, src, 0)
	require.NoError(t, err)
	assert.Less(t, written, len(src))

	out := make([]byte, len(src))
	n, err := Decompress(out, dst[:written])
	require.NoError(t, err)
	require.Equal(t, len(src), n)
	assert.Equal(t, src, out)
}

func TestCompressRoundTripUint16(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	alphabet := []uint16{100, 5000, 60000, 3}
	src := make([]uint16, 4096)
	for i := range src {
		if r.Intn(4) > 0 {
			src[i] = alphabet[0]
		} else {
			src[i] = alphabet[1+r.Intn(3)]
		}
	}
	dst := make([]byte, CompressBound(2*len(src)))

	written, err := Compress(dst, src, 0)
	require.NoError(t, err)
	assert.Less(t, written, 2*len(src))

	out := make([]uint16, len(src))
	n, err := Decompress(out, dst[:written])
	require.NoError(t, err)
	require.Equal(t, len(src), n)
	assert.Equal(t, src, out)
}

func TestDecompressRejectsMalformedFrames(t *testing.T) {
	out := make([]byte, 64)

	_, err := Decompress(out, []byte{11, 1})
	assert.Error(t, err, "truncated header")

	frame := make([]byte, 32)
	frame[0] = 63 // table log past the precision ceiling
	frame[1] = 2
	_, err = Decompress(out, frame)
	assert.Error(t, err)
}

func TestProperty_CompressRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60

	properties := gopter.NewProperties(parameters)

	properties.Property("skewed streams survive a frame round trip", prop.ForAll(
		func(seed int64, size int) bool {
			src := skewedBytes(seed, size)
			dst := make([]byte, CompressBound(len(src)))

			written, err := Compress(dst, src, 0)
			if err != nil {
				return false
			}
			if written >= len(src) {
				return false
			}

			out := make([]byte, len(src))
			n, err := Decompress(out, dst[:written])
			if err != nil || n != len(src) {
				return false
			}
			for i := range src {
				if src[i] != out[i] {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<30),
		gen.IntRange(1024, 16384),
	))

	properties.Property("normalized counts always fill the table", prop.ForAll(
		func(seed int64) bool {
			src := skewedBytes(seed, 2048)
			counts, _ := Count(src)
			tableLog := OptimalTableLog(0, len(src), len(counts)-1)
			norm, err := NormalizeCount(counts, tableLog, len(src))
			if err != nil {
				return false
			}
			sum := 0
			for _, n := range norm {
				sum += int(n)
			}
			return sum == 1<<tableLog
		},
		gen.Int64Range(1, 1<<30),
	))

	properties.TestingRun(t)
}
