// Package codec exposes the benchmarked compressors behind a single
// into-buffer interface. Each adapter owns its scratch state, so a
// Compressor is cheap to call repeatedly but not safe for concurrent use.
package codec

import (
	stderrors "errors"
	"fmt"
	"sort"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// Sentinel outcomes a Compress call can report instead of producing a
// stream. The harness records these as special block sizes rather than
// treating them as failures.
var (
	// ErrIncompressible means coding would not shrink the chunk; the
	// caller should keep the original bytes.
	ErrIncompressible = stderrors.New("codec: incompressible chunk")

	// ErrUseRLE means the chunk is a single repeated byte; the caller
	// can reproduce it from its first byte alone.
	ErrUseRLE = stderrors.New("codec: single-byte run")
)

// Compressor compresses and decompresses whole chunks into caller-provided
// buffers.
type Compressor interface {
	// Name returns the registry name of the codec.
	Name() string

	// Bound returns a destination size sufficient for any srcLen input.
	Bound(srcLen int) int

	// Compress encodes src into dst and returns the bytes written, or
	// ErrIncompressible/ErrUseRLE when a stream would be pointless.
	Compress(dst, src []byte) (int, error)

	// Decompress decodes src into dst, which must be sized to the exact
	// original chunk length, and returns the bytes produced.
	Decompress(dst, src []byte) (int, error)
}

// Options tune codec construction.
type Options struct {
	// TableLog overrides the entropy table precision where the codec
	// has one. Zero keeps the codec default.
	TableLog int
}

type factory func(Options) Compressor

var registry = map[string]factory{
	"fse":       func(o Options) Compressor { return newFSE(o) },
	"huff0":     func(o Options) Compressor { return newHuff0(o) },
	"entropy16": func(o Options) Compressor { return newEntropy16(o) },
	"snappy":    func(Options) Compressor { return newSnappy() },
}

// Names returns the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the named codec.
func New(name string, opts Options) (Compressor, error) {
	f, ok := registry[name]
	if !ok {
		return nil, benchErrors.NewCodecError(benchErrors.CodeUnknownCodec,
			fmt.Sprintf("unknown codec %q (have %v)", name, Names()))
	}
	return f(opts), nil
}

// constantFill reports whether every byte of src equals its first byte.
// Empty input does not count as a run.
func constantFill(src []byte) bool {
	if len(src) == 0 {
		return false
	}
	first := src[0]
	for _, b := range src[1:] {
		if b != first {
			return false
		}
	}
	return true
}
