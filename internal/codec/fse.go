package codec

import (
	stderrors "errors"
	"fmt"

	"github.com/klauspost/compress/fse"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// fseCodec benchmarks byte-oriented finite-state entropy coding. Separate
// scratch areas keep the compress and decompress tables from trampling
// each other across iterations.
type fseCodec struct {
	comp   fse.Scratch
	decomp fse.Scratch
}

func newFSE(opts Options) *fseCodec {
	c := &fseCodec{}
	if opts.TableLog > 0 {
		c.comp.TableLog = uint8(opts.TableLog)
	}
	return c
}

func (c *fseCodec) Name() string { return "fse" }

// Bound relies on the coder refusing to grow its input.
func (c *fseCodec) Bound(srcLen int) int { return srcLen }

func (c *fseCodec) Compress(dst, src []byte) (int, error) {
	out, err := fse.Compress(src, &c.comp)
	switch {
	case stderrors.Is(err, fse.ErrIncompressible):
		return 0, ErrIncompressible
	case stderrors.Is(err, fse.ErrUseRLE):
		return 0, ErrUseRLE
	case err != nil:
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeCompressFailed,
			"fse compression failed", err)
	}
	if len(out) > len(dst) {
		return 0, ErrIncompressible
	}
	return copy(dst, out), nil
}

func (c *fseCodec) Decompress(dst, src []byte) (int, error) {
	c.decomp.DecompressLimit = len(dst)
	out, err := fse.Decompress(src, &c.decomp)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"fse decompression failed", err)
	}
	if len(out) > len(dst) {
		return 0, benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
			fmt.Sprintf("fse decoded %d bytes into a %d byte chunk", len(out), len(dst)))
	}
	return copy(dst, out), nil
}
