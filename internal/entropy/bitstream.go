package entropy

import (
	"errors"
	"math/bits"
)

var (
	errDstTooSmall = errors.New("entropy: destination buffer too small")
	errCorrupt     = errors.New("entropy: corrupt bitstream")
)

var bitMask = [17]uint32{
	0, 1, 3, 7, 0xF, 0x1F, 0x3F, 0x7F, 0xFF,
	0x1FF, 0x3FF, 0x7FF, 0xFFF, 0x1FFF, 0x3FFF, 0x7FFF, 0xFFFF,
}

// bitWriter appends bits least-significant-first into a fixed-capacity
// destination. The matching reader consumes bits in reverse write order,
// which is what a finite-state coder needs: the decoder starts from the
// final flushed state and walks the stream backwards.
type bitWriter struct {
	bitContainer uint64
	nBits        uint8
	dst          []byte
	n            int
}

func newBitWriter(dst []byte) *bitWriter {
	return &bitWriter{dst: dst}
}

// addBits queues the low nb bits of value. Callers keep nb <= 16, so two
// adds always fit the container between flushes.
func (w *bitWriter) addBits(value uint32, nb uint8) {
	w.bitContainer |= uint64(value&bitMask[nb]) << (w.nBits & 63)
	w.nBits += nb
}

// flush drains whole bytes from the container into dst.
func (w *bitWriter) flush() error {
	for w.nBits >= 8 {
		if w.n >= len(w.dst) {
			return errDstTooSmall
		}
		w.dst[w.n] = byte(w.bitContainer)
		w.bitContainer >>= 8
		w.nBits -= 8
		w.n++
	}
	return nil
}

// close writes the end-of-stream marker bit and any trailing partial byte,
// returning the number of bytes written. The marker is always the highest
// set bit of the final byte, which lets the reader locate the true end of
// the bit sequence.
func (w *bitWriter) close() (int, error) {
	w.addBits(1, 1)
	if err := w.flush(); err != nil {
		return 0, err
	}
	if w.nBits > 0 {
		if w.n >= len(w.dst) {
			return 0, errDstTooSmall
		}
		w.dst[w.n] = byte(w.bitContainer)
		w.n++
	}
	return w.n, nil
}

// bitReader consumes a bitWriter stream from its end: the first getBits
// call returns the last bits written.
type bitReader struct {
	in       []byte
	off      int
	value    uint64
	bitsRead uint8
}

func (r *bitReader) init(in []byte) error {
	if len(in) == 0 {
		return errCorrupt
	}
	last := in[len(in)-1]
	if last == 0 {
		return errCorrupt // no end-of-stream marker
	}
	r.in = in
	r.off = len(in)
	r.value = 0
	r.bitsRead = 64
	if len(in) >= 8 {
		v := in[len(in)-8:]
		r.value = uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24 |
			uint64(v[4])<<32 | uint64(v[5])<<40 | uint64(v[6])<<48 | uint64(v[7])<<56
		r.bitsRead = 0
		r.off -= 8
	} else {
		for r.off > 0 {
			r.value = (r.value << 8) | uint64(r.in[r.off-1])
			r.bitsRead -= 8
			r.off--
		}
	}
	// Skip padding and the marker bit itself.
	r.bitsRead += 8 - uint8(bits.Len8(last)-1)
	return nil
}

// fill refills the container once at least 32 bits have been consumed.
func (r *bitReader) fill() {
	if r.bitsRead < 32 {
		return
	}
	if r.off >= 4 {
		v := r.in[r.off-4 : r.off]
		low := uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24
		r.value = (r.value << 32) | low
		r.bitsRead -= 32
		r.off -= 4
		return
	}
	for r.off > 0 {
		r.value = (r.value << 8) | uint64(r.in[r.off-1])
		r.bitsRead -= 8
		r.off--
	}
}

// getBits returns the next nb bits in reverse write order.
func (r *bitReader) getBits(nb uint8) uint32 {
	if nb == 0 || r.bitsRead >= 64 {
		return 0
	}
	v := uint32((r.value << (r.bitsRead & 63)) >> (64 - uint(nb)))
	r.bitsRead += nb
	return v
}

// finished reports whether every written bit has been consumed.
func (r *bitReader) finished() bool {
	return r.off == 0 && r.bitsRead >= 64
}
