package codec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

func skewedChunk(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	for i := range out {
		if r.Intn(10) < 6 {
			out[i] = 'a'
		} else {
			out[i] = byte('a' + r.Intn(12))
		}
	}
	return out
}

func uniformChunk(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	r.Read(out)
	return out
}

func TestNamesAndNew(t *testing.T) {
	assert.Equal(t, []string{"entropy16", "fse", "huff0", "snappy"}, Names())

	for _, name := range Names() {
		c, err := New(name, Options{})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}

	_, err := New("lzturbo", Options{})
	require.Error(t, err)
	assert.Equal(t, benchErrors.CodeUnknownCodec, benchErrors.GetCode(err))
}

func TestRoundTripAllCodecs(t *testing.T) {
	src := skewedChunk(3, 32<<10)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, Options{})
			require.NoError(t, err)

			comp := make([]byte, c.Bound(len(src)))
			written, err := c.Compress(comp, src)
			require.NoError(t, err)
			assert.Less(t, written, len(src), "skewed data should shrink")

			dst := make([]byte, len(src))
			n, err := c.Decompress(dst, comp[:written])
			require.NoError(t, err)
			require.Equal(t, len(src), n)
			assert.True(t, bytes.Equal(src, dst))
		})
	}
}

func TestRoundTripOddLength(t *testing.T) {
	src := skewedChunk(5, (32<<10)-1)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, Options{})
			require.NoError(t, err)

			comp := make([]byte, c.Bound(len(src)))
			written, err := c.Compress(comp, src)
			require.NoError(t, err)

			dst := make([]byte, len(src))
			n, err := c.Decompress(dst, comp[:written])
			require.NoError(t, err)
			require.Equal(t, len(src), n)
			assert.True(t, bytes.Equal(src, dst))
		})
	}
}

func TestConstantChunkReportsRLE(t *testing.T) {
	src := bytes.Repeat([]byte{0x42}, 4096)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, Options{})
			require.NoError(t, err)

			comp := make([]byte, c.Bound(len(src)))
			_, err = c.Compress(comp, src)
			assert.ErrorIs(t, err, ErrUseRLE)
		})
	}
}

func TestWideRunIsNotAByteRun(t *testing.T) {
	// A repeating two-byte pattern is a single symbol to the 16-bit
	// coder, but the run sentinel only reproduces a one-byte fill.
	src := bytes.Repeat([]byte{0xCD, 0xAB}, 2048)

	c, err := New("entropy16", Options{})
	require.NoError(t, err)

	comp := make([]byte, c.Bound(len(src)))
	_, err = c.Compress(comp, src)
	assert.ErrorIs(t, err, ErrIncompressible)
}

func TestUniformChunkDoesNotShrink(t *testing.T) {
	src := uniformChunk(9, 4096)

	for _, name := range []string{"fse", "huff0", "entropy16", "snappy"} {
		t.Run(name, func(t *testing.T) {
			c, err := New(name, Options{})
			require.NoError(t, err)

			comp := make([]byte, c.Bound(len(src)))
			written, err := c.Compress(comp, src)
			if err != nil {
				assert.ErrorIs(t, err, ErrIncompressible)
				return
			}
			// A marginal win is acceptable; it must still round trip.
			dst := make([]byte, len(src))
			n, err := c.Decompress(dst, comp[:written])
			require.NoError(t, err)
			require.Equal(t, len(src), n)
			assert.True(t, bytes.Equal(src, dst))
		})
	}
}

func TestBounds(t *testing.T) {
	for _, name := range []string{"fse", "huff0", "entropy16"} {
		c, err := New(name, Options{})
		require.NoError(t, err)
		assert.Equal(t, 32<<10, c.Bound(32<<10))
	}

	sn, err := New("snappy", Options{})
	require.NoError(t, err)
	assert.Greater(t, sn.Bound(32<<10), 32<<10)
}

func TestConstantFill(t *testing.T) {
	assert.False(t, constantFill(nil))
	assert.True(t, constantFill([]byte{7}))
	assert.True(t, constantFill(bytes.Repeat([]byte{'x'}, 100)))
	assert.False(t, constantFill([]byte{1, 1, 2}))
}
