// Package chunk partitions a loaded input buffer into fixed-size units for
// independent compression and decompression. All scratch memory lives in
// three arenas owned by the Set; chunks hold offset-carved views into them,
// so no two chunks can alias and everything is released together when the
// session ends.
package chunk

import (
	"fmt"
)

// Chunk is the unit of independent (de)compression measurement.
type Chunk struct {
	// ID is the chunk's ordinal within its file.
	ID int

	// Orig is a view into the loaded input; not owned by the chunk.
	Orig []byte

	// Compressed is the owned scratch region for compressed output, sized
	// to the codec's worst-case expansion bound for one chunk.
	Compressed []byte

	// CompressedSize is set by each compression pass and consumed by the
	// matching decompression pass. Values 0 and 1 are the stored and
	// constant-fill sentinels.
	CompressedSize int

	// Dest is the owned scratch region for decompressed output; its
	// capacity is at least len(Orig).
	Dest []byte
}

// Set is the partitioned form of one benchmarked buffer.
type Set struct {
	Chunks []Chunk

	input      []byte
	compressed []byte
	dest       []byte
	chunkSize  int
}

// Partition splits input into ⌊N/S⌋+1 chunks of size chunkSize. The +1
// guarantees a final, possibly short, chunk; when N divides evenly the
// final chunk has size 0. bound maps an input size to the codec's
// worst-case compressed size and fixes each chunk's compressed capacity.
func Partition(input []byte, chunkSize int, bound func(int) int) (*Set, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if bound == nil {
		return nil, fmt.Errorf("nil compressed-size bound")
	}

	n := len(input)
	nbChunks := n/chunkSize + 1
	maxCompressed := bound(chunkSize)
	if maxCompressed < chunkSize {
		maxCompressed = chunkSize
	}

	s := &Set{
		Chunks:     make([]Chunk, nbChunks),
		input:      input,
		compressed: make([]byte, nbChunks*maxCompressed),
		dest:       make([]byte, nbChunks*chunkSize),
		chunkSize:  chunkSize,
	}

	remaining := n
	for i := range s.Chunks {
		size := chunkSize
		if remaining < size {
			size = remaining
		}
		inOff := i * chunkSize
		cOff := i * maxCompressed

		s.Chunks[i] = Chunk{
			ID:         i,
			Orig:       input[inOff : inOff+size],
			Compressed: s.compressed[cOff : cOff+maxCompressed],
			Dest:       s.dest[inOff : inOff+chunkSize],
		}
		remaining -= size
	}

	return s, nil
}

// Len returns the benchmarked byte count: the sum of all chunk sizes.
func (s *Set) Len() int {
	return len(s.input)
}

// Original returns the full original buffer, for whole-buffer checksums.
func (s *Set) Original() []byte {
	return s.input
}

// Reconstructed returns the concatenated decompressed output. Chunk
// destinations are laid out at chunkSize stride, and every chunk but the
// last is exactly chunkSize long, so the first Len() bytes of the dest
// arena are the contiguous reconstruction.
func (s *Set) Reconstructed() []byte {
	return s.dest[:len(s.input)]
}

// InvalidateDest zero-fills the reconstruction area so a no-op decoder
// cannot spuriously pass checksum validation.
func (s *Set) InvalidateDest() {
	clear(s.dest)
}

// WarmCompressedArena writes a rolling byte pattern over the compressed
// arena so first-touch page faults are not billed to the first trial.
func (s *Set) WarmCompressedArena() {
	for i := range s.compressed {
		s.compressed[i] = byte(i)
	}
}

// CompressedTotal sums the per-chunk compressed sizes of the last pass.
func (s *Set) CompressedTotal() int64 {
	var total int64
	for i := range s.Chunks {
		total += int64(s.Chunks[i].CompressedSize)
	}
	return total
}
