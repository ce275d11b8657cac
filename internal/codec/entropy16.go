package codec

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"

	"github.com/arkilian/codecbench/internal/entropy"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// entropy16Codec benchmarks the in-tree state coder over a 16-bit
// alphabet. Chunks are reinterpreted as little-endian 16-bit units; an odd
// trailing byte travels as a symbol of its own and the original chunk
// length disambiguates it on the way back.
type entropy16Codec struct {
	tableLog int
	wide     []uint16
}

func newEntropy16(opts Options) *entropy16Codec {
	return &entropy16Codec{tableLog: opts.TableLog}
}

func (c *entropy16Codec) Name() string { return "entropy16" }

func (c *entropy16Codec) Bound(srcLen int) int { return srcLen }

func (c *entropy16Codec) widen(src []byte) []uint16 {
	n := (len(src) + 1) / 2
	if cap(c.wide) < n {
		c.wide = make([]uint16, n)
	}
	wide := c.wide[:n]
	for i := 0; i+1 < len(src); i += 2 {
		wide[i/2] = binary.LittleEndian.Uint16(src[i:])
	}
	if len(src)%2 == 1 {
		wide[n-1] = uint16(src[len(src)-1])
	}
	return wide
}

func (c *entropy16Codec) Compress(dst, src []byte) (int, error) {
	wide := c.widen(src)
	n, err := entropy.Compress(dst, wide, c.tableLog)
	switch {
	case stderrors.Is(err, entropy.ErrUseRLE):
		// A repeated 16-bit unit is only a byte run when both halves
		// match; otherwise the chunk is kept verbatim.
		if constantFill(src) {
			return 0, ErrUseRLE
		}
		return 0, ErrIncompressible
	case stderrors.Is(err, entropy.ErrIncompressible):
		return 0, ErrIncompressible
	case err != nil:
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeCompressFailed,
			"16-bit entropy compression failed", err)
	}
	if n >= len(src) {
		return 0, ErrIncompressible
	}
	return n, nil
}

func (c *entropy16Codec) Decompress(dst, src []byte) (int, error) {
	wide := c.wide[:0]
	n := (len(dst) + 1) / 2
	if cap(wide) < n {
		wide = make([]uint16, n)
		c.wide = wide
	}
	wide = wide[:n]

	got, err := entropy.Decompress(wide, src)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"16-bit entropy decompression failed", err)
	}
	if got != n {
		return 0, benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
			fmt.Sprintf("decoded %d units, chunk holds %d", got, n))
	}

	for i := 0; i+1 < len(dst); i += 2 {
		binary.LittleEndian.PutUint16(dst[i:], wide[i/2])
	}
	if len(dst)%2 == 1 {
		dst[len(dst)-1] = byte(wide[n-1])
	}
	return len(dst), nil
}
