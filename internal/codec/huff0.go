package codec

import (
	stderrors "errors"
	"fmt"

	"github.com/klauspost/compress/huff0"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// huff0MaxTableLog is the precision ceiling of the Huffman coder, lower
// than the state coders allow.
const huff0MaxTableLog = 11

// huff0Codec benchmarks single-stream Huffman coding. Table reuse is
// disabled so every chunk carries its own table and decodes standalone.
type huff0Codec struct {
	comp   huff0.Scratch
	decomp huff0.Scratch
}

func newHuff0(opts Options) *huff0Codec {
	c := &huff0Codec{}
	c.comp.Reuse = huff0.ReusePolicyNone
	if opts.TableLog > 0 {
		tl := opts.TableLog
		if tl > huff0MaxTableLog {
			tl = huff0MaxTableLog
		}
		c.comp.TableLog = uint8(tl)
	}
	return c
}

func (c *huff0Codec) Name() string { return "huff0" }

func (c *huff0Codec) Bound(srcLen int) int { return srcLen }

func (c *huff0Codec) Compress(dst, src []byte) (int, error) {
	out, _, err := huff0.Compress1X(src, &c.comp)
	switch {
	case stderrors.Is(err, huff0.ErrIncompressible):
		return 0, ErrIncompressible
	case stderrors.Is(err, huff0.ErrUseRLE):
		return 0, ErrUseRLE
	case err != nil:
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeCompressFailed,
			"huff0 compression failed", err)
	}
	if len(out) > len(dst) {
		return 0, ErrIncompressible
	}
	return copy(dst, out), nil
}

func (c *huff0Codec) Decompress(dst, src []byte) (int, error) {
	c.decomp.MaxDecodedSize = len(dst)
	s, remain, err := huff0.ReadTable(src, &c.decomp)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"huff0 table read failed", err)
	}
	out, err := s.Decompress1X(remain)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"huff0 decompression failed", err)
	}
	if len(out) > len(dst) {
		return 0, benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
			fmt.Sprintf("huff0 decoded %d bytes into a %d byte chunk", len(out), len(dst)))
	}
	return copy(dst, out), nil
}
