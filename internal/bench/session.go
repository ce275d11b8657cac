package bench

import (
	stderrors "errors"
	"fmt"

	"github.com/arkilian/codecbench/internal/chunk"
	"github.com/arkilian/codecbench/internal/codec"
	"github.com/arkilian/codecbench/internal/config"
	"github.com/arkilian/codecbench/internal/corpus"
	"github.com/arkilian/codecbench/internal/digest"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
	"github.com/arkilian/codecbench/internal/membudget"
	"github.com/arkilian/codecbench/internal/timing"
)

// Phase tracks where a session is in its lifecycle, mostly for error
// reporting and tests.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSizing
	PhasePartitioning
	PhaseIterating
	PhaseReporting
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSizing:
		return "sizing"
	case PhasePartitioning:
		return "partitioning"
	case PhaseIterating:
		return "iterating"
	case PhaseReporting:
		return "reporting"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// arenasPerInput is how many input-sized buffers a chunked session needs:
// the loaded input, the compressed arena, and the reconstruction arena.
const arenasPerInput = 3

// Session benchmarks one file at a time with a fixed codec and
// configuration.
type Session struct {
	cfg    *config.Config
	comp   codec.Compressor
	loop   *timing.Loop
	rep    *Reporter
	prober *membudget.Prober
	phase  Phase
}

// NewSession wires a session from its parts. clock may be nil for the
// monotonic default.
func NewSession(cfg *config.Config, comp codec.Compressor, clock timing.Clock, rep *Reporter, prober *membudget.Prober) *Session {
	if prober == nil {
		prober = membudget.NewProber()
	}
	return &Session{
		cfg:    cfg,
		comp:   comp,
		loop:   timing.NewLoop(clock, cfg.CalibrationWindow),
		rep:    rep,
		prober: prober,
	}
}

// Phase returns the session's current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// RunFile benchmarks one file through the full chunked compress and
// decompress cycle and returns its measured result.
func (s *Session) RunFile(path string) (*FileResult, error) {
	s.phase = PhaseSizing
	fileSize, err := corpus.Size(path)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}

	// Budget for all three arenas, then keep the input's share.
	budget := s.prober.FindMaxMem(fileSize*arenasPerInput) / arenasPerInput

	s.phase = PhaseLoading
	s.rep.Loading(path)
	input, err := corpus.Load(path, budget)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}
	if input.Truncated {
		s.rep.Truncation(path, int64(len(input.Data)))
	}

	s.phase = PhasePartitioning
	set, err := chunk.Partition(input.Data, s.cfg.ChunkSize, s.comp.Bound)
	if err != nil {
		s.phase = PhaseAborted
		return nil, benchErrors.NewInternalError("cannot partition input", err)
	}

	res, err := s.iterate(path, set)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}

	s.phase = PhaseReporting
	s.rep.FileLine(res)
	return res, nil
}

// iterate runs the configured number of outer trials over a partitioned
// input, keeping the fastest per-pass time in each direction.
func (s *Session) iterate(path string, set *chunk.Set) (*FileResult, error) {
	s.phase = PhaseIterating

	benchedSize := int64(set.Len())
	crcOrig := digest.Sum32(set.Original(), 0)

	res := &FileResult{
		Name:        path,
		BenchedSize: benchedSize,
	}

	s.rep.ClearLine()
	for loop := 1; loop <= s.cfg.Iterations; loop++ {
		s.rep.TrialStart(loop, path, benchedSize)
		set.WarmCompressedArena()

		trial, err := s.loop.Run(func() error { return s.compressPass(set) })
		if err != nil {
			return nil, err
		}
		res.FastestCompress = timing.MinPerPass(res.FastestCompress, trial)
		res.CompressedSize = set.CompressedTotal()
		res.Ratio = float64(res.CompressedSize) / float64(benchedSize) * 100
		s.rep.TrialCompress(loop, path, res)

		set.InvalidateDest()
		trial, err = s.loop.Run(func() error { return s.decompressPass(set) })
		if err != nil {
			return nil, err
		}
		res.FastestDecompress = timing.MinPerPass(res.FastestDecompress, trial)
		s.rep.TrialFull(loop, path, res)

		if crcCheck := digest.Sum32(set.Reconstructed(), 0); crcCheck != crcOrig {
			pos := digest.FirstDivergence(set.Original(), set.Reconstructed())
			s.rep.Mismatch(path, pos, benchedSize)
			return nil, benchErrors.NewIntegrityError(benchErrors.CodeChecksumMismatch,
				fmt.Sprintf("%s: reconstruction diverges at byte %d of %d", path, pos, benchedSize))
		}
	}

	return res, nil
}

// compressPass compresses every chunk once, recording per-chunk sizes.
// Incompressible chunks record the stored sentinel and single-byte runs
// the fill sentinel; both are legitimate outcomes, not errors.
func (s *Session) compressPass(set *chunk.Set) error {
	for i := range set.Chunks {
		c := &set.Chunks[i]
		if len(c.Orig) == 0 {
			c.CompressedSize = 0
			continue
		}

		n, err := s.comp.Compress(c.Compressed, c.Orig)
		switch {
		case stderrors.Is(err, codec.ErrIncompressible):
			c.CompressedSize = 0
		case stderrors.Is(err, codec.ErrUseRLE):
			c.CompressedSize = 1
		case err != nil:
			return benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
				fmt.Sprintf("chunk %d: %v", c.ID, err))
		default:
			c.CompressedSize = n
		}
	}
	return nil
}

// decompressPass regenerates every chunk once. Sentinel chunks replay as
// a copy or a fill; everything else goes through the codec.
func (s *Session) decompressPass(set *chunk.Set) error {
	for i := range set.Chunks {
		c := &set.Chunks[i]
		dst := c.Dest[:len(c.Orig)]

		switch c.CompressedSize {
		case 0:
			copy(dst, c.Orig)
		case 1:
			fill := c.Orig[0]
			for j := range dst {
				dst[j] = fill
			}
		default:
			n, err := s.comp.Decompress(dst, c.Compressed[:c.CompressedSize])
			if err != nil {
				return benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
					fmt.Sprintf("chunk %d: %v", c.ID, err))
			}
			if n != len(c.Orig) {
				return benchErrors.NewIntegrityError(benchErrors.CodeSizeMismatch,
					fmt.Sprintf("chunk %d: regenerated %d bytes, want %d", c.ID, n, len(c.Orig)))
			}
		}
	}
	return nil
}
