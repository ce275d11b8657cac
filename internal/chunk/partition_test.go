package chunk

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityBound(n int) int { return n + 64 }

func TestPartition_OneMiBFileAt32KiB(t *testing.T) {
	// 1 MiB divides evenly by 32 KiB: 32 full chunks plus the guaranteed
	// final zero-size chunk.
	input := bytes.Repeat([]byte("compressible text "), 1<<20/18+1)[:1<<20]

	set, err := Partition(input, 32*1024, identityBound)
	require.NoError(t, err)

	assert.Len(t, set.Chunks, 33)
	for i := 0; i < 32; i++ {
		assert.Equal(t, 32*1024, len(set.Chunks[i].Orig))
	}
	assert.Equal(t, 0, len(set.Chunks[32].Orig))
	assert.Equal(t, len(input), set.Len())
}

func TestPartition_RemainderChunk(t *testing.T) {
	input := make([]byte, 100_000)

	set, err := Partition(input, 32*1024, identityBound)
	require.NoError(t, err)

	// 100000 = 3*32768 + 1696
	require.Len(t, set.Chunks, 4)
	assert.Equal(t, 1696, len(set.Chunks[3].Orig))
}

func TestPartition_InvalidArguments(t *testing.T) {
	_, err := Partition(make([]byte, 10), 0, identityBound)
	assert.Error(t, err)

	_, err = Partition(make([]byte, 10), -3, identityBound)
	assert.Error(t, err)

	_, err = Partition(make([]byte, 10), 4, nil)
	assert.Error(t, err)
}

func TestPartition_ViewsShareNoMemory(t *testing.T) {
	input := make([]byte, 10_000)
	set, err := Partition(input, 1024, identityBound)
	require.NoError(t, err)

	for i := range set.Chunks {
		c := &set.Chunks[i]
		for j := range c.Compressed {
			c.Compressed[j] = byte(i)
		}
		for j := range c.Dest {
			c.Dest[j] = byte(i)
		}
	}

	// Writing each chunk's scratch regions must not have disturbed any
	// other chunk's regions.
	for i := range set.Chunks {
		c := &set.Chunks[i]
		for j := range c.Compressed {
			require.Equal(t, byte(i), c.Compressed[j], "compressed region of chunk %d aliased", i)
		}
		for j := range c.Dest {
			require.Equal(t, byte(i), c.Dest[j], "dest region of chunk %d aliased", i)
		}
	}
}

func TestReconstructed_IsContiguous(t *testing.T) {
	input := []byte("0123456789abcdef0123")
	set, err := Partition(input, 8, identityBound)
	require.NoError(t, err)

	for i := range set.Chunks {
		c := &set.Chunks[i]
		copy(c.Dest, c.Orig)
	}
	assert.Equal(t, input, set.Reconstructed())
}

func TestInvalidateDest(t *testing.T) {
	input := bytes.Repeat([]byte{0xFF}, 4096)
	set, err := Partition(input, 1024, identityBound)
	require.NoError(t, err)

	for i := range set.Chunks {
		copy(set.Chunks[i].Dest, set.Chunks[i].Orig)
	}
	set.InvalidateDest()
	assert.Equal(t, make([]byte, 4096), set.Reconstructed())
}

func TestCompressedTotal(t *testing.T) {
	set, err := Partition(make([]byte, 100), 32, identityBound)
	require.NoError(t, err)

	set.Chunks[0].CompressedSize = 10
	set.Chunks[1].CompressedSize = 0 // stored sentinel
	set.Chunks[2].CompressedSize = 1 // constant-fill sentinel
	set.Chunks[3].CompressedSize = 4

	assert.Equal(t, int64(15), set.CompressedTotal())
}

// TestProperty_PartitionInvariants validates that for all input and chunk
// sizes: chunk sizes sum to the benchmarked byte count, every chunk but the
// last has exactly the configured size, and the last chunk holds the
// remainder (zero when the input divides evenly).
func TestProperty_PartitionInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sizes sum and stride", prop.ForAll(
		func(n, s int) bool {
			set, err := Partition(make([]byte, n), s, identityBound)
			if err != nil {
				return false
			}

			if len(set.Chunks) != n/s+1 {
				return false
			}
			sum := 0
			for i, c := range set.Chunks {
				if i < len(set.Chunks)-1 && len(c.Orig) != s {
					return false
				}
				sum += len(c.Orig)
			}
			last := set.Chunks[len(set.Chunks)-1]
			return sum == n && len(last.Orig) == n%s
		},
		gen.IntRange(0, 1<<18),
		gen.IntRange(1, 1<<16),
	))

	properties.TestingRun(t)
}
