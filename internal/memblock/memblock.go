// Package memblock implements the reference-counted memory-block subsystem
// that backs every array value's raw byte buffer (spec §3 "Memory block",
// §4.1). Four disciplines are provided: Fixed (one allocation, no resize),
// Pod and Zeroinit bump allocators (ordered pages, bump-pointer allocation,
// resize-in-place of only the most recent allocation), and Preamble (the
// array's own root metadata/type/data-owner triple).
//
// Grounded on _examples/original_source/src/dynd/memblock/zeroinit_memory_block.cpp
// for the exact allocate/resize/finalize/reset contract, generalized here to
// cover both the pod and zeroinit disciplines with one implementation
// (bump.go) since they differ only in whether freshly returned bytes are
// zeroed.
package memblock

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"dynarray/internal/dyerr"
)

// Kind identifies a memory block's allocation discipline.
type Kind uint8

const (
	KindFixed Kind = iota
	KindPod
	KindZeroinit
	KindPreamble
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindPod:
		return "pod"
	case KindZeroinit:
		return "zeroinit"
	case KindPreamble:
		return "preamble"
	default:
		return "unknown"
	}
}

// Block is implemented by every memory-block discipline. Reference counts
// are atomic because types and blocks are shared across handles (spec §5);
// data reads/writes themselves still require external synchronization.
type Block interface {
	Kind() Kind
	Incref()
	Decref()
	// Unique reports whether the caller's reference is the only one live,
	// which permits in-place evaluation optimizations (spec §5).
	Unique() bool
}

// refcounted is embedded by every concrete block type and supplies the
// shared atomic-refcount bookkeeping; release is called exactly once, when
// the count transitions from 1 to 0.
type refcounted struct {
	count   int32 // starts at 1 for the reference returned by the constructor
	release func()
}

func (r *refcounted) Incref() {
	atomic.AddInt32(&r.count, 1)
}

func (r *refcounted) Decref() {
	if atomic.AddInt32(&r.count, -1) == 0 {
		if r.release != nil {
			r.release()
		}
	}
}

func (r *refcounted) Unique() bool {
	return atomic.LoadInt32(&r.count) <= 1
}

// FixedBlock is a single, fixed-size allocation with no resize support.
type FixedBlock struct {
	refcounted
	Data []byte
}

// NewFixed allocates a FixedBlock of the given size with a starting refcount
// of one.
func NewFixed(size int) *FixedBlock {
	b := &FixedBlock{Data: make([]byte, size)}
	b.count = 1
	return b
}

func (b *FixedBlock) Kind() Kind { return KindFixed }

// DebugStats renders a human-readable capacity summary for diagnostic
// printing; nothing on the hot allocate/resize path calls it.
func (b *FixedBlock) DebugStats() string {
	return "fixed: " + humanize.Bytes(uint64(len(b.Data)))
}

// PreambleBlock is the array's own root block: it carries the root type,
// the data pointer (which may point inside this same allocation for small
// values, or into another block), the data-owner reference, and the
// array's access flags (spec §3 "Memory block" / Preamble variant).
type PreambleBlock struct {
	refcounted
	Type      interface{} // dtype.Type; kept as interface{} to avoid an import cycle with internal/dtype
	Data      []byte
	DataOwner Block
	Flags     uint32
}

func (b *PreambleBlock) Kind() Kind { return KindPreamble }

// NewPreamble constructs a PreambleBlock whose data either lives inline
// (dataOwner == nil, meaning "this block") or is owned by a separate block.
func NewPreamble(typ interface{}, data []byte, dataOwner Block, flags uint32) *PreambleBlock {
	b := &PreambleBlock{Type: typ, Data: data, DataOwner: dataOwner, Flags: flags}
	b.count = 1
	if dataOwner != nil {
		dataOwner.Incref()
	}
	b.release = func() {
		if b.DataOwner != nil {
			b.DataOwner.Decref()
		}
	}
	return b
}

// ErrNotMostRecent names the invariant-violation taxonomy used by the bump
// allocators when Resize targets anything but the most recently returned
// allocation (spec §4.1, §9 "Bump allocators").
func errNotMostRecent() error {
	return dyerr.New(dyerr.InvariantViolation, "resize must be called only using the most recently allocated memory")
}

func errFinalized() error {
	return dyerr.New(dyerr.InvariantViolation, "allocate/resize called on a finalized memory block")
}
