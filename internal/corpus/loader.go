// Package corpus loads benchmark inputs, either straight from the local
// filesystem or fetched out of object storage first.
package corpus

import (
	"fmt"
	"io"
	"os"

	benchErrors "github.com/arkilian/codecbench/internal/errors"
)

// Input is one benchmark input held in memory.
type Input struct {
	// Path is the local filesystem path the bytes came from.
	Path string

	// Data holds the loaded bytes, possibly fewer than the file has.
	Data []byte

	// FileSize is the on-disk size.
	FileSize int64

	// Truncated reports that Data was capped by the memory budget.
	Truncated bool
}

// Size returns the on-disk size of path, rejecting missing and empty
// files the same way Load does.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, benchErrors.NewResourceError(benchErrors.CodeFileNotFound,
			fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.Size() == 0 {
		return 0, benchErrors.NewResourceError(benchErrors.CodeFileEmpty,
			fmt.Sprintf("%s is empty, nothing to benchmark", path), nil)
	}
	return info.Size(), nil
}

// Load reads path into memory, capping the read at budget bytes. A file
// larger than the budget is benchmarked on its leading bytes only, which
// the caller should surface to the user.
func Load(path string, budget int64) (*Input, error) {
	if budget <= 0 {
		return nil, benchErrors.NewInternalError(
			fmt.Sprintf("non-positive load budget %d", budget), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, benchErrors.NewResourceError(benchErrors.CodeFileNotFound,
			fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.Size() == 0 {
		return nil, benchErrors.NewResourceError(benchErrors.CodeFileEmpty,
			fmt.Sprintf("%s is empty, nothing to benchmark", path), nil)
	}

	readSize := info.Size()
	truncated := false
	if readSize > budget {
		readSize = budget
		truncated = true
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, benchErrors.NewResourceError(benchErrors.CodeFileNotFound,
			fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	data := make([]byte, readSize)
	n, err := io.ReadFull(f, data)
	if err != nil {
		return nil, benchErrors.NewResourceError(benchErrors.CodeShortRead,
			fmt.Sprintf("read %d of %d bytes from %s", n, readSize, path), err)
	}

	return &Input{
		Path:      path,
		Data:      data,
		FileSize:  info.Size(),
		Truncated: truncated,
	}, nil
}
