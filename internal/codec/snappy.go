package codec

import (
	"fmt"

	"github.com/golang/snappy"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// snappyCodec benchmarks LZ-style block compression as a baseline against
// the entropy coders. Snappy never refuses input, so the stored and run
// sentinels are decided here rather than by the library.
type snappyCodec struct{}

func newSnappy() *snappyCodec { return &snappyCodec{} }

func (c *snappyCodec) Name() string { return "snappy" }

func (c *snappyCodec) Bound(srcLen int) int { return snappy.MaxEncodedLen(srcLen) }

func (c *snappyCodec) Compress(dst, src []byte) (int, error) {
	if constantFill(src) {
		return 0, ErrUseRLE
	}
	// Encode only writes into dst when it is at least MaxEncodedLen long;
	// otherwise it silently allocates, and the chunk arena never sees the
	// stream.
	if len(dst) < snappy.MaxEncodedLen(len(src)) {
		return 0, ErrIncompressible
	}
	out := snappy.Encode(dst, src)
	if len(out) >= len(src) {
		return 0, ErrIncompressible
	}
	return len(out), nil
}

func (c *snappyCodec) Decompress(dst, src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"snappy header unreadable", err)
	}
	if n > len(dst) {
		return 0, benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
			fmt.Sprintf("snappy stream decodes to %d bytes, chunk holds %d", n, len(dst)))
	}
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return 0, benchErrors.Wrap(benchErrors.ErrCategoryCodec, benchErrors.CodeDecompressFailed,
			"snappy decompression failed", err)
	}
	return len(out), nil
}
