package bench

import (
	"fmt"

	"github.com/arkilian/codecbench/internal/corpus"
	"github.com/arkilian/codecbench/internal/digest"
	"github.com/arkilian/codecbench/internal/entropy"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
	"github.com/arkilian/codecbench/internal/timing"
)

// Core-loop limits. Inputs are capped well below the chunked mode's
// budget since the whole buffer is coded in one table context; the
// default table precision matches the classic core evaluation.
const (
	coreSizeCap      = 16 << 20
	coreModeTableLog = 12
)

// RunCore benchmarks the raw state-coder transform over one file: the
// histogram, normalization, and both tables are built once up front, so
// the timed region contains nothing but table application.
func (s *Session) RunCore(path string) (*FileResult, error) {
	s.phase = PhaseSizing
	fileSize, err := corpus.Size(path)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}
	if fileSize > coreSizeCap {
		s.rep.CoreSizeNotice(coreSizeCap)
	}

	s.phase = PhaseLoading
	s.rep.Loading(path)
	input, err := corpus.Load(path, coreSizeCap)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}

	res, err := s.iterateCore(path, input.Data)
	if err != nil {
		s.phase = PhaseAborted
		return nil, err
	}

	s.phase = PhaseReporting
	s.rep.FileLine(res)
	return res, nil
}

func (s *Session) iterateCore(path string, data []byte) (*FileResult, error) {
	s.phase = PhaseIterating

	tableLog := s.cfg.TableLog
	if tableLog == 0 {
		tableLog = coreModeTableLog
	}

	counts, maxCount := entropy.Count(data)
	if int(maxCount) == len(data) {
		return nil, benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
			fmt.Sprintf("%s is a single-byte run; the core transform needs at least two symbols", path))
	}
	tableLog = entropy.OptimalTableLog(tableLog, len(data), len(counts)-1)
	norm, err := entropy.NormalizeCount(counts, tableLog, len(data))
	if err != nil {
		return nil, benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
			fmt.Sprintf("cannot normalize %s: %v", path, err))
	}
	ct, err := entropy.BuildCTable(norm, tableLog)
	if err != nil {
		return nil, benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
			fmt.Sprintf("cannot build encode table for %s: %v", path, err))
	}
	dt, err := entropy.BuildDTable(norm, tableLog)
	if err != nil {
		return nil, benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
			fmt.Sprintf("cannot build decode table for %s: %v", path, err))
	}

	benchedSize := int64(len(data))
	crcOrig := digest.Sum64(data, 0)

	// The headerless stream can exceed the input when the alphabet is
	// dense, so the scratch area leaves room for full expansion.
	comp := make([]byte, 2*len(data)+512)
	dest := make([]byte, len(data))

	res := &FileResult{
		Name:        path,
		BenchedSize: benchedSize,
	}

	s.rep.ClearLine()
	for loop := 1; loop <= s.cfg.Iterations; loop++ {
		s.rep.TrialStart(loop, path, benchedSize)
		for i := range comp {
			comp[i] = byte(i)
		}

		var cSize int
		trial, err := s.loop.Run(func() error {
			var passErr error
			cSize, passErr = entropy.CompressUsingCTable(comp, data, ct)
			return passErr
		})
		if err != nil {
			return nil, benchErrors.NewCodecError(benchErrors.CodeCompressFailed,
				fmt.Sprintf("core transform failed on %s: %v", path, err))
		}
		res.FastestCompress = timing.MinPerPass(res.FastestCompress, trial)
		res.CompressedSize = int64(cSize)
		res.Ratio = float64(cSize) / float64(benchedSize) * 100
		s.rep.TrialCompress(loop, path, res)

		clear(dest)
		trial, err = s.loop.Run(func() error {
			_, passErr := entropy.DecompressUsingDTable(dest, comp[:cSize], dt)
			return passErr
		})
		if err != nil {
			return nil, benchErrors.NewCodecError(benchErrors.CodeDecompressFailed,
				fmt.Sprintf("core inverse transform failed on %s: %v", path, err))
		}
		res.FastestDecompress = timing.MinPerPass(res.FastestDecompress, trial)
		s.rep.TrialFull(loop, path, res)

		if crcCheck := digest.Sum64(dest, 0); crcCheck != crcOrig {
			pos := digest.FirstDivergence(data, dest)
			s.rep.Mismatch(path, pos, benchedSize)
			return nil, benchErrors.NewIntegrityError(benchErrors.CodeChecksumMismatch,
				fmt.Sprintf("%s: core reconstruction diverges at byte %d of %d", path, pos, benchedSize))
		}
	}

	return res, nil
}
