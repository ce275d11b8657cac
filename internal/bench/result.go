// Package bench drives the benchmark itself: calibrated compression and
// decompression trials over partitioned inputs, correctness validation of
// every round trip, and aggregation across files.
package bench

import (
	"time"

	"github.com/arkilian/codecbench/internal/timing"
)

// FileResult is the measured outcome for one benchmarked file.
type FileResult struct {
	// Name is the display name of the input.
	Name string

	// BenchedSize is the number of input bytes actually benchmarked,
	// which is less than the file size when memory was tight.
	BenchedSize int64

	// CompressedSize is the total compressed size of the last trial.
	CompressedSize int64

	// Ratio is CompressedSize over BenchedSize, in percent.
	Ratio float64

	// FastestCompress is the best per-pass compression time observed.
	FastestCompress time.Duration

	// FastestDecompress is the best per-pass decompression time observed.
	FastestDecompress time.Duration
}

// CompressMBps returns the compression throughput in decimal MB/s.
func (r *FileResult) CompressMBps() float64 {
	return timing.ThroughputMBps(r.BenchedSize, r.FastestCompress)
}

// DecompressMBps returns the decompression throughput in decimal MB/s.
func (r *FileResult) DecompressMBps() float64 {
	return timing.ThroughputMBps(r.BenchedSize, r.FastestDecompress)
}

// Totals aggregates results across files. Throughput is total bytes over
// the sum of each file's fastest per-pass time, so one slow file weighs
// in by its size rather than dragging a plain average.
type Totals struct {
	Files           int
	BenchedBytes    int64
	CompressedBytes int64
	CompressTime    time.Duration
	DecompressTime  time.Duration
}

// Add folds one file's result into the running totals.
func (t *Totals) Add(r *FileResult) {
	t.Files++
	t.BenchedBytes += r.BenchedSize
	t.CompressedBytes += r.CompressedSize
	t.CompressTime += r.FastestCompress
	t.DecompressTime += r.FastestDecompress
}

// Ratio returns the aggregate compression ratio in percent.
func (t *Totals) Ratio() float64 {
	if t.BenchedBytes == 0 {
		return 0
	}
	return float64(t.CompressedBytes) / float64(t.BenchedBytes) * 100
}

// CompressMBps returns the aggregate compression throughput.
func (t *Totals) CompressMBps() float64 {
	return timing.ThroughputMBps(t.BenchedBytes, t.CompressTime)
}

// DecompressMBps returns the aggregate decompression throughput.
func (t *Totals) DecompressMBps() float64 {
	return timing.ThroughputMBps(t.BenchedBytes, t.DecompressTime)
}
