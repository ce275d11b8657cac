package bench

import (
	"fmt"
	"io"
	"path/filepath"
)

// Reporter renders benchmark progress and results. Progress lines end in
// a carriage return so each trial overwrites the last; only final file
// lines and the grand total commit a newline.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w, typically stderr.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// displayName shortens a path to its base name for the fixed-width lines.
func displayName(path string) string {
	return filepath.Base(path)
}

// ClearLine blanks the current progress line.
func (r *Reporter) ClearLine() {
	fmt.Fprintf(r.w, "\r%79s\r", "")
}

// Iterations announces the trial count for the run.
func (r *Reporter) Iterations(n int) {
	fmt.Fprintf(r.w, "- %d iterations -\n", n)
}

// Loading announces that a file is being read into memory.
func (r *Reporter) Loading(path string) {
	fmt.Fprintf(r.w, "Loading %s...       \r", displayName(path))
}

// Truncation warns that memory limits shrank the benchmarked size.
func (r *Reporter) Truncation(path string, benchedSize int64) {
	fmt.Fprintf(r.w, "Not enough memory for '%s' full size; testing %d MB only...\n",
		displayName(path), benchedSize>>20)
}

// CoreSizeNotice announces the capped size of a core-loop evaluation.
func (r *Reporter) CoreSizeNotice(benchedSize int64) {
	fmt.Fprintf(r.w, "Core loop speed evaluation, testing %d KB ...\n", benchedSize>>10)
}

// TrialStart shows a trial's input size before any measurement exists.
func (r *Reporter) TrialStart(loop int, path string, benchedSize int64) {
	fmt.Fprintf(r.w, "%1d-%-14.14s : %9d ->\r", loop, displayName(path), benchedSize)
}

// TrialCompress shows a trial line once compression has been measured.
func (r *Reporter) TrialCompress(loop int, path string, res *FileResult) {
	fmt.Fprintf(r.w, "%1d-%-14.14s : %9d -> %9d (%5.2f%%),%7.1f MB/s\r",
		loop, displayName(path), res.BenchedSize, res.CompressedSize, res.Ratio, res.CompressMBps())
}

// TrialFull shows a trial line with both directions measured.
func (r *Reporter) TrialFull(loop int, path string, res *FileResult) {
	fmt.Fprintf(r.w, "%1d-%-14.14s : %9d -> %9d (%5.2f%%),%7.1f MB/s ,%7.1f MB/s\r",
		loop, displayName(path), res.BenchedSize, res.CompressedSize, res.Ratio,
		res.CompressMBps(), res.DecompressMBps())
}

// Mismatch reports a failed round-trip validation and where the
// reconstruction first diverges.
func (r *Reporter) Mismatch(path string, pos int, benchedSize int64) {
	fmt.Fprintf(r.w, "\n!!! %14s : Invalid Checksum !!! pos %d/%d\n",
		displayName(path), pos, benchedSize)
}

// FileError commits a line explaining why a file produced no result.
func (r *Reporter) FileError(path string, err error) {
	fmt.Fprintf(r.w, "%-16.16s : %v\n", displayName(path), err)
}

// FileLine commits the final line for one file.
func (r *Reporter) FileLine(res *FileResult) {
	if res.Ratio < 100 {
		fmt.Fprintf(r.w, "%-16.16s : %9d -> %9d (%5.2f%%),%7.1f MB/s ,%7.1f MB/s\n",
			displayName(res.Name), res.BenchedSize, res.CompressedSize, res.Ratio,
			res.CompressMBps(), res.DecompressMBps())
		return
	}
	fmt.Fprintf(r.w, "%-16.16s : %9d -> %9d (%5.1f%%),%7.1f MB/s ,%7.1f MB/s \n",
		displayName(res.Name), res.BenchedSize, res.CompressedSize, res.Ratio,
		res.CompressMBps(), res.DecompressMBps())
}

// TotalLine commits the grand total across all benchmarked files.
func (r *Reporter) TotalLine(t *Totals) {
	fmt.Fprintf(r.w, "%-16.16s :%10d ->%10d (%5.2f%%), %6.1f MB/s , %6.1f MB/s\n",
		"  TOTAL", t.BenchedBytes, t.CompressedBytes, t.Ratio(),
		t.CompressMBps(), t.DecompressMBps())
}
