package entropy

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// CompressBound returns the worst-case frame size for srcLen input bytes.
// Mirrors the classic bound with fixed slack for the table header and the
// small-input cases where state bits outgrow the payload.
func CompressBound(srcLen int) int {
	return srcLen + (srcLen >> 7) + 512
}

// Frame layout: 1 byte table log, 2 bytes little-endian present-symbol
// count, then (symbol, normalized count) pairs of 2 bytes each, then the
// bitstream. The header keeps only present symbols so sparse 16-bit
// alphabets stay affordable.
const frameFixedHeader = 3

func headerSize(distinct int) int {
	return frameFixedHeader + 4*distinct
}

// Compress encodes src into dst as a self-describing frame and returns
// the frame length. maxTableLog of 0 selects the default precision.
// ErrUseRLE is returned for single-symbol runs and ErrIncompressible
// whenever the frame would not be smaller than the raw input; in both
// cases nothing useful is written to dst.
func Compress[S Symbol](dst []byte, src []S, maxTableLog int) (int, error) {
	if len(src) <= 1 {
		return 0, ErrIncompressible
	}

	counts, maxCount := Count(src)
	if int(maxCount) == len(src) {
		return 0, ErrUseRLE
	}

	maxSymbol := len(counts) - 1
	tableLog := OptimalTableLog(maxTableLog, len(src), maxSymbol)
	norm, err := NormalizeCount(counts, tableLog, len(src))
	if err != nil {
		return 0, err
	}

	distinct := 0
	for _, n := range norm {
		if n > 0 {
			distinct++
		}
	}

	rawLen := len(src) * int(unsafe.Sizeof(src[0]))

	hdr := headerSize(distinct)
	if hdr >= rawLen || hdr >= len(dst) {
		return 0, ErrIncompressible
	}

	dst[0] = byte(tableLog)
	binary.LittleEndian.PutUint16(dst[1:3], uint16(distinct))
	off := frameFixedHeader
	for s, n := range norm {
		if n == 0 {
			continue
		}
		binary.LittleEndian.PutUint16(dst[off:off+2], uint16(s))
		binary.LittleEndian.PutUint16(dst[off+2:off+4], n)
		off += 4
	}

	ct, err := BuildCTable(norm, tableLog)
	if err != nil {
		return 0, err
	}

	payload, err := CompressUsingCTable(dst[off:], src, ct)
	if err == errDstTooSmall {
		return 0, ErrIncompressible
	}
	if err != nil {
		return 0, err
	}

	total := off + payload
	if total >= rawLen-1 {
		return 0, ErrIncompressible
	}
	return total, nil
}

// Decompress decodes a frame produced by Compress into dst, which must be
// sized to the exact original symbol count. Returns the symbol count.
func Decompress[S Symbol](dst []S, src []byte) (int, error) {
	if len(src) < frameFixedHeader+4 {
		return 0, fmt.Errorf("entropy: frame too short (%d bytes)", len(src))
	}

	tableLog := int(src[0])
	if tableLog < MinTableLog || tableLog > MaxTableLog {
		return 0, fmt.Errorf("entropy: frame table log %d out of range", tableLog)
	}
	distinct := int(binary.LittleEndian.Uint16(src[1:3]))
	if distinct == 0 || len(src) < headerSize(distinct) {
		return 0, errCorrupt
	}

	maxSymbol := 0
	off := frameFixedHeader
	for i := 0; i < distinct; i++ {
		s := int(binary.LittleEndian.Uint16(src[off : off+2]))
		if s > maxSymbol {
			maxSymbol = s
		}
		off += 4
	}

	norm := make([]uint16, maxSymbol+1)
	total := 0
	off = frameFixedHeader
	for i := 0; i < distinct; i++ {
		s := int(binary.LittleEndian.Uint16(src[off : off+2]))
		n := binary.LittleEndian.Uint16(src[off+2 : off+4])
		if n == 0 || norm[s] != 0 {
			return 0, errCorrupt
		}
		norm[s] = n
		total += int(n)
		off += 4
	}
	if total != 1<<tableLog {
		return 0, errCorrupt
	}

	dt, err := BuildDTable(norm, tableLog)
	if err != nil {
		return 0, err
	}

	return DecompressUsingDTable(dst, src[off:], dt)
}
