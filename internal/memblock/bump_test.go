package memblock

import "testing"

// Grounded on _examples/original_source/src/dynd/memblock/zeroinit_memory_block.cpp
// and spec §8: "after allocate(S, A) followed by resize to S' on the same
// range, the returned pointer equals the original iff S' still fits;
// otherwise the contents up to min(S, S') bytes are preserved byte-for-byte."

func TestPodResizeInPlaceWhenFits(t *testing.T) {
	b := NewPod(64)
	a, err := b.Allocate(8, 1)
	if err != nil {
		t.Fatal(err)
	}
	copy(a.Bytes(b), []byte("abcdefgh"))

	if err := b.Resize(a, 16); err != nil {
		t.Fatal(err)
	}
	got := a.Bytes(b)
	if len(got) != 16 {
		t.Fatalf("expected length 16, got %d", len(got))
	}
	if string(got[:8]) != "abcdefgh" {
		t.Fatalf("expected prefix preserved, got %q", got[:8])
	}
}

func TestPodResizeGrowsPastPage(t *testing.T) {
	b := NewPod(16)
	a, err := b.Allocate(8, 1)
	if err != nil {
		t.Fatal(err)
	}
	copy(a.Bytes(b), []byte("12345678"))

	if err := b.Resize(a, 64); err != nil {
		t.Fatal(err)
	}
	got := a.Bytes(b)
	if len(got) != 64 {
		t.Fatalf("expected length 64, got %d", len(got))
	}
	if string(got[:8]) != "12345678" {
		t.Fatalf("expected contents preserved across page growth, got %q", got[:8])
	}
}

func TestResizeOfNonMostRecentAllocationIsInvariantViolation(t *testing.T) {
	b := NewPod(64)
	first, _ := b.Allocate(8, 1)
	_, _ = b.Allocate(8, 1)

	if err := b.Resize(first, 16); err == nil {
		t.Fatal("expected an invariant-violation error resizing a non-most-recent allocation")
	}
}

func TestZeroinitZeroesFreshBytes(t *testing.T) {
	b := NewZeroinit(64)
	a, err := b.Allocate(16, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range a.Bytes(b) {
		if c != 0 {
			t.Fatalf("expected zero-filled allocation, found %d", c)
		}
	}

	if err := b.Resize(a, 32); err != nil {
		t.Fatal(err)
	}
	for _, c := range a.Bytes(b)[16:] {
		if c != 0 {
			t.Fatalf("expected newly uncovered bytes zero-filled, found %d", c)
		}
	}
}

func TestFinalizeRejectsFurtherAllocation(t *testing.T) {
	b := NewPod(64)
	b.Finalize()
	if _, err := b.Allocate(8, 1); err == nil {
		t.Fatal("expected finalize to reject further allocation")
	}
}

func TestResetKeepsLastPageOnly(t *testing.T) {
	b := NewPod(8)
	_, _ = b.Allocate(8, 1)
	_, _ = b.Allocate(64, 1) // forces growth to a second page
	if len(b.pages) < 2 {
		t.Fatalf("expected at least two pages before reset, got %d", len(b.pages))
	}
	b.Reset()
	if len(b.pages) != 1 {
		t.Fatalf("expected exactly one page after reset, got %d", len(b.pages))
	}
	a, err := b.Allocate(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Bytes(b)) != 4 {
		t.Fatalf("expected allocator usable after reset")
	}
}

func TestDoublingGrowthRule(t *testing.T) {
	b := NewPod(16)
	_, _ = b.Allocate(16, 1) // fills the first page exactly
	a, err := b.Allocate(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	// total_allocated_capacity was 16 before this call, so the new page
	// should be sized max(16, 4) = 16, not just 4.
	if got := len(b.pages[a.pageIdx].buf); got != 16 {
		t.Fatalf("expected doubling-rule page size 16, got %d", got)
	}
}
