package memblock

import "github.com/dustin/go-humanize"

// page is one malloc'd chunk of the bump allocator. Capacity is len(buf);
// the allocator never shrinks a page once it is appended.
type page struct {
	buf []byte
}

// Allocation is a handle to the most recently-or-previously returned range
// from a BumpBlock. Only the range returned by the last Allocate/Resize call
// may be passed to Resize again — passing any other Allocation is an
// invariant violation (spec §4.1), checked by comparing page+end against the
// allocator's live cursor rather than by raw pointer identity, since Go byte
// slices don't carry a stable address across reallocation anyway.
type Allocation struct {
	pageIdx    int
	begin, end int
}

// Bytes returns the current byte range for this allocation. It is only
// valid to call before the underlying BumpBlock performs another
// allocate/resize that invalidates earlier pages' addresses — in this
// allocator no page is ever moved or freed while referenced, so the slice
// stays valid for the allocation's lifetime.
func (a *Allocation) Bytes(b *BumpBlock) []byte {
	return b.pages[a.pageIdx].buf[a.begin:a.end]
}

// BumpBlock implements both the pod and zeroinit bump-allocator disciplines
// (spec §4.1). The only difference between them is whether newly returned
// bytes are zero-filled; zeroInit selects that behavior.
type BumpBlock struct {
	refcounted
	zeroInit bool

	pages         []page
	cursor        int   // offset into pages[len(pages)-1] where the next allocation starts
	totalCapacity int64 // accounting value tracked exactly as emb->m_total_allocated_capacity in the original

	lastPage       int
	lastBegin      int
	lastEnd        int
	hasAllocation  bool
	finalized      bool
}

// NewPod creates a pod bump-allocator block (no zero-fill guarantee).
func NewPod(initialCapacity int) *BumpBlock {
	return newBump(initialCapacity, false)
}

// NewZeroinit creates a zeroinit bump-allocator block: every byte range
// ever returned by Allocate or newly uncovered by Resize is zero-filled.
func NewZeroinit(initialCapacity int) *BumpBlock {
	return newBump(initialCapacity, true)
}

func newBump(initialCapacity int, zeroInit bool) *BumpBlock {
	if initialCapacity <= 0 {
		initialCapacity = 4096
	}
	b := &BumpBlock{zeroInit: zeroInit}
	b.count = 1
	b.appendPage(initialCapacity)
	b.release = func() {
		b.pages = nil
	}
	return b
}

func (b *BumpBlock) Kind() Kind {
	if b.zeroInit {
		return KindZeroinit
	}
	return KindPod
}

func (b *BumpBlock) appendPage(capacity int) {
	b.pages = append(b.pages, page{buf: make([]byte, capacity)})
	b.cursor = 0
	b.totalCapacity += int64(capacity)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Allocate returns size bytes of memory aligned to align. The current page's
// unused tail is abandoned (its capacity is deducted from the accounting
// total) once it no longer fits the request, and a new page is appended
// sized to the larger of the total capacity handed out so far and the
// requested size — the same doubling-growth rule as the original allocator.
func (b *BumpBlock) Allocate(size, align int) (*Allocation, error) {
	if b.finalized {
		return nil, errFinalized()
	}
	if align < 1 {
		align = 1
	}
	pageIdx := len(b.pages) - 1
	cur := &b.pages[pageIdx]

	begin := alignUp(b.cursor, align)
	end := begin + size
	if end > len(cur.buf) {
		// Go's make() doesn't expose alignment guarantees the way malloc
		// does; the original's own comment assumes malloc alignment is
		// good enough for anything, so a fresh page always starts at 0.
		wasted := int64(len(cur.buf) - b.cursor)
		b.totalCapacity -= wasted
		b.appendPage(int(max64(b.totalCapacity, int64(size))))
		pageIdx = len(b.pages) - 1
		cur = &b.pages[pageIdx]
		begin = 0
		end = size
	}
	b.cursor = end
	if b.zeroInit {
		zero(cur.buf[begin:end])
	}

	b.lastPage, b.lastBegin, b.lastEnd = pageIdx, begin, end
	b.hasAllocation = true
	return &Allocation{pageIdx: pageIdx, begin: begin, end: end}, nil
}

// Resize changes the size of a, which must be the most recently returned
// allocation from this block (by either Allocate or Resize). If the new
// size still fits within the current page, the cursor is simply advanced
// (or retreated) and a's end is updated in place — the returned range's
// start address is unchanged. Otherwise a fresh page is appended with the
// doubling rule, the old contents are copied, and a's page/offsets are
// rewritten; callers must re-fetch a.Bytes(b) after a growing resize.
func (b *BumpBlock) Resize(a *Allocation, newSize int) error {
	if b.finalized {
		return errFinalized()
	}
	if !b.hasAllocation || a.pageIdx != b.lastPage || a.end != b.lastEnd || a.begin != b.lastBegin {
		return errNotMostRecent()
	}
	cur := &b.pages[a.pageIdx]
	newEnd := a.begin + newSize
	if newEnd <= len(cur.buf) {
		if b.zeroInit && newEnd > a.end {
			zero(cur.buf[a.end:newEnd])
		}
		b.cursor = newEnd
		a.end = newEnd
		b.lastEnd = newEnd
		return nil
	}

	oldSize := a.end - a.begin
	b.appendPage(int(max64(b.totalCapacity, int64(newSize))))
	newPageIdx := len(b.pages) - 1
	newPage := &b.pages[newPageIdx]
	copy(newPage.buf[:oldSize], cur.buf[a.begin:a.end])
	if b.zeroInit {
		zero(newPage.buf[oldSize:newSize])
	}
	b.cursor = newSize
	b.totalCapacity -= int64(oldSize)

	a.pageIdx, a.begin, a.end = newPageIdx, 0, newSize
	b.lastPage, b.lastBegin, b.lastEnd = newPageIdx, 0, newSize
	return nil
}

// Finalize surrenders the remaining tail of the current page; further
// Allocate/Resize calls return an invariant-violation error.
func (b *BumpBlock) Finalize() {
	if b.finalized {
		return
	}
	if len(b.pages) > 0 {
		cur := &b.pages[len(b.pages)-1]
		if b.cursor < len(cur.buf) {
			b.totalCapacity -= int64(len(cur.buf) - b.cursor)
		}
	}
	b.finalized = true
	b.hasAllocation = false
}

// Reset frees every page except the most recently allocated one and
// rewinds the cursor to that page's start, so the block can be reused from
// scratch without a fresh malloc.
func (b *BumpBlock) Reset() {
	if len(b.pages) > 1 {
		last := b.pages[len(b.pages)-1]
		b.pages = []page{last}
	}
	b.cursor = 0
	if len(b.pages) > 0 {
		b.totalCapacity = int64(len(b.pages[0].buf))
	} else {
		b.totalCapacity = 0
	}
	b.finalized = false
	b.hasAllocation = false
}

// DebugStats renders a human-readable capacity summary.
func (b *BumpBlock) DebugStats() string {
	if b.finalized {
		return "finalized: " + humanize.Bytes(uint64(b.totalCapacity))
	}
	return "allocated: " + humanize.Bytes(uint64(b.totalCapacity))
}

func alignUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
