// Package membudget determines the largest buffer the harness can safely
// allocate for a benchmark session. The request is rounded up to a fixed
// granularity, capped at an address-space ceiling, and then walked downward
// in fixed decrements until a real allocation attempt succeeds.
package membudget

import (
	"math/bits"
)

const (
	// Step is the probe granularity and decrement: 64 MiB.
	Step = 64 << 20

	// ceiling32 applies on 32-bit address spaces: 2 GiB minus one step.
	ceiling32 = (2 << 30) - Step

	// ceiling64 applies on 64-bit address spaces: 9 GiB.
	ceiling64 = 9 << 30
)

// Ceiling returns the platform allocation ceiling in bytes.
func Ceiling() int64 {
	if bits.UintSize == 32 {
		return ceiling32
	}
	return ceiling64
}

// AllocFunc attempts to allocate size bytes, returning nil on failure.
// The probe releases the buffer immediately; nothing is persisted.
type AllocFunc func(size int64) []byte

// systemAlloc is the default probe. A failed make() is not recoverable in
// Go the way a NULL malloc is in C, so the probe relies on the OS granting
// (and the runtime releasing) untouched pages, which is also how the
// original malloc-based probe behaved under overcommit.
func systemAlloc(size int64) []byte {
	if size <= 0 || uint64(size) > uint64(^uintptr(0)>>1) {
		return nil
	}
	return make([]byte, 0, size)
}

// Prober finds the largest usable allocation below the platform ceiling.
type Prober struct {
	ceiling int64
	alloc   AllocFunc
}

// NewProber creates a prober with the platform ceiling and real allocations.
func NewProber() *Prober {
	return &Prober{ceiling: Ceiling(), alloc: systemAlloc}
}

// NewProberWith creates a prober with an explicit ceiling and allocator.
// Used by tests and by callers that want to cap a run below the platform
// ceiling.
func NewProberWith(ceiling int64, alloc AllocFunc) *Prober {
	if ceiling <= 0 {
		ceiling = Ceiling()
	}
	if alloc == nil {
		alloc = systemAlloc
	}
	return &Prober{ceiling: ceiling, alloc: alloc}
}

// FindMaxMem returns the largest size at or below the ceiling for which an
// allocation attempt succeeds, starting from requiredMem rounded up to the
// probe granularity. The result is always positive and never exceeds the
// ceiling. One step of headroom is kept out of the returned budget.
func (p *Prober) FindMaxMem(requiredMem int64) int64 {
	if requiredMem < 0 {
		requiredMem = 0
	}

	// Round up to the granularity, then add two steps of slack: one is
	// consumed by the first decrement, one is kept as headroom.
	requiredMem = ((requiredMem >> 26) + 1) << 26
	requiredMem += 2 * Step
	if requiredMem > p.ceiling {
		requiredMem = p.ceiling
	}

	var probe []byte
	for probe == nil {
		requiredMem -= Step
		if requiredMem <= Step {
			requiredMem = Step + 64
			break
		}
		probe = p.alloc(requiredMem)
	}
	probe = nil

	return requiredMem - Step
}
