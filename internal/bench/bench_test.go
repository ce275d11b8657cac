package bench

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/codecbench/internal/codec"
	"github.com/arkilian/codecbench/internal/config"
	benchErrors "github.com/arkilian/codecbench/internal/errors"
	"github.com/arkilian/codecbench/internal/membudget"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Iterations = 2
	// Tiny trial window keeps tests fast; at least one pass always runs.
	cfg.CalibrationWindow = time.Millisecond
	return cfg
}

func writeCorpusFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func compressibleData(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	out := make([]byte, n)
	for i := range out {
		if r.Intn(10) < 6 {
			out[i] = 'e'
		} else {
			out[i] = byte('a' + r.Intn(16))
		}
	}
	return out
}

func newTestSession(t *testing.T, cfg *config.Config, rep *Reporter) *Session {
	t.Helper()
	comp, err := codec.New(cfg.Codec, codec.Options{TableLog: cfg.TableLog})
	require.NoError(t, err)
	return NewSession(cfg, comp, nil, rep, nil)
}

func TestRunFileChunkedRoundTrip(t *testing.T) {
	cfg := testConfig()
	path := writeCorpusFile(t, "input.bin", compressibleData(1, 1<<20))

	var out bytes.Buffer
	sess := newTestSession(t, cfg, NewReporter(&out))

	res, err := sess.RunFile(path)
	require.NoError(t, err)
	assert.Equal(t, PhaseReporting, sess.Phase())

	assert.Equal(t, int64(1<<20), res.BenchedSize)
	assert.Less(t, res.Ratio, 100.0, "skewed text should compress")
	assert.Greater(t, res.CompressMBps(), 0.0)
	assert.Greater(t, res.DecompressMBps(), 0.0)
	assert.Contains(t, out.String(), "input.bin")
}

func TestRunFileEmptyInput(t *testing.T) {
	cfg := testConfig()
	path := writeCorpusFile(t, "empty.bin", nil)

	sess := newTestSession(t, cfg, NewReporter(&bytes.Buffer{}))

	_, err := sess.RunFile(path)
	require.Error(t, err)
	assert.Equal(t, benchErrors.CodeFileEmpty, benchErrors.GetCode(err))
	assert.Equal(t, benchErrors.ExitCodeFileError, benchErrors.ExitCode(err))
	assert.Equal(t, PhaseAborted, sess.Phase())
}

func TestRunFileTruncatesUnderMemoryPressure(t *testing.T) {
	cfg := testConfig()
	data := compressibleData(2, 4096)
	path := writeCorpusFile(t, "big.bin", data)

	// A prober whose allocations always fail reports the floor budget,
	// so only the leading bytes of the file are benchmarked.
	prober := membudget.NewProberWith(membudget.Ceiling(), func(int64) []byte { return nil })
	comp, err := codec.New(cfg.Codec, codec.Options{})
	require.NoError(t, err)
	var out bytes.Buffer
	sess := NewSession(cfg, comp, nil, NewReporter(&out), prober)

	res, err := sess.RunFile(path)
	require.NoError(t, err)
	assert.Less(t, res.BenchedSize, int64(len(data)))
	assert.Contains(t, out.String(), "Not enough memory")
}

// corruptingCodec decompresses correctly and then flips one byte, to
// exercise the round-trip validator.
type corruptingCodec struct {
	codec.Compressor
}

func (c *corruptingCodec) Decompress(dst, src []byte) (int, error) {
	n, err := c.Compressor.Decompress(dst, src)
	if err == nil && n > 0 {
		dst[n/2] ^= 0x01
	}
	return n, err
}

func TestRunFileDetectsCorruption(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 1
	path := writeCorpusFile(t, "input.bin", compressibleData(3, 128<<10))

	inner, err := codec.New("fse", codec.Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	sess := NewSession(cfg, &corruptingCodec{inner}, nil, NewReporter(&out), nil)

	res, err := sess.RunFile(path)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, benchErrors.CodeChecksumMismatch, benchErrors.GetCode(err))
	assert.Equal(t, PhaseAborted, sess.Phase())
	assert.Contains(t, out.String(), "Invalid Checksum")
}

func TestRunCore(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = config.ModeCore
	path := writeCorpusFile(t, "core.bin", compressibleData(4, 256<<10))

	var out bytes.Buffer
	sess := newTestSession(t, cfg, NewReporter(&out))

	res, err := sess.RunCore(path)
	require.NoError(t, err)
	assert.Equal(t, int64(256<<10), res.BenchedSize)
	assert.Greater(t, res.CompressedSize, int64(0))
	assert.Less(t, res.Ratio, 100.0)
	assert.Greater(t, res.CompressMBps(), 0.0)
	assert.Greater(t, res.DecompressMBps(), 0.0)
}

func TestRunCoreRejectsSingleSymbolRun(t *testing.T) {
	cfg := testConfig()
	path := writeCorpusFile(t, "run.bin", bytes.Repeat([]byte{'z'}, 4096))

	sess := newTestSession(t, cfg, NewReporter(&bytes.Buffer{}))

	_, err := sess.RunCore(path)
	require.Error(t, err)
	assert.Equal(t, benchErrors.CodeCompressFailed, benchErrors.GetCode(err))
}

func TestRunnerAggregatesTotals(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 1
	pathA := writeCorpusFile(t, "a.bin", compressibleData(5, 64<<10))
	pathB := writeCorpusFile(t, "b.bin", compressibleData(6, 128<<10))

	var out bytes.Buffer
	runner, err := NewRunner(cfg, NewReporter(&out), nil, nil)
	require.NoError(t, err)

	results, totals, err := runner.Run([]string{pathA, pathB})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 2, totals.Files)
	assert.Equal(t, int64(192<<10), totals.BenchedBytes)
	assert.Equal(t, results[0].CompressedSize+results[1].CompressedSize, totals.CompressedBytes)
	assert.Greater(t, totals.CompressMBps(), 0.0)
	assert.Contains(t, out.String(), "TOTAL")
}

func TestRunnerSkipsFailedFiles(t *testing.T) {
	cfg := testConfig()
	cfg.Iterations = 1
	good := writeCorpusFile(t, "good.bin", compressibleData(7, 64<<10))
	empty := writeCorpusFile(t, "empty.bin", nil)
	never := filepath.Join(t.TempDir(), "never.bin")
	later := writeCorpusFile(t, "later.bin", compressibleData(9, 64<<10))

	var out bytes.Buffer
	runner, err := NewRunner(cfg, NewReporter(&out), nil, nil)
	require.NoError(t, err)

	results, totals, err := runner.Run([]string{good, empty, never, later})
	require.Error(t, err)
	// Failed files are skipped, the files after them still run, and the
	// error carried out is the first one hit.
	assert.Len(t, results, 2)
	assert.Equal(t, 2, totals.Files)
	assert.Equal(t, benchErrors.CodeFileEmpty, benchErrors.GetCode(err))
	assert.Contains(t, out.String(), "empty.bin")
	assert.Contains(t, out.String(), "TOTAL")
}

func TestReporterFormats(t *testing.T) {
	var out bytes.Buffer
	rep := NewReporter(&out)

	res := &FileResult{
		Name:              "/tmp/x/webster",
		BenchedSize:       1 << 20,
		CompressedSize:    600 << 10,
		Ratio:             58.59,
		FastestCompress:   2 * time.Millisecond,
		FastestDecompress: time.Millisecond,
	}
	rep.FileLine(res)

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "webster"))
	assert.Contains(t, line, "1048576")
	assert.Contains(t, line, "58.59%")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTotalsMath(t *testing.T) {
	var totals Totals
	totals.Add(&FileResult{
		BenchedSize:       1000,
		CompressedSize:    500,
		FastestCompress:   time.Millisecond,
		FastestDecompress: time.Millisecond,
	})
	totals.Add(&FileResult{
		BenchedSize:       3000,
		CompressedSize:    1500,
		FastestCompress:   time.Millisecond,
		FastestDecompress: 3 * time.Millisecond,
	})

	assert.Equal(t, 2, totals.Files)
	assert.InDelta(t, 50.0, totals.Ratio(), 0.001)
	// 4000 bytes over 2ms of compression time = 2 MB/s decimal.
	assert.InDelta(t, 2.0, totals.CompressMBps(), 0.001)
	assert.InDelta(t, 1.0, totals.DecompressMBps(), 0.001)
}
