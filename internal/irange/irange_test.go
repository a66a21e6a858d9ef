package irange

import "testing"

func TestAllResolvesToFullAxis(t *testing.T) {
	start, count, step, remove, err := All().Resolve(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 0 || count != 10 || step != 1 || remove {
		t.Fatalf("got start=%d count=%d step=%d remove=%v", start, count, step, remove)
	}
}

func TestIndexRemovesAxis(t *testing.T) {
	start, count, _, remove, err := Index(3).Resolve(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 3 || count != 1 || !remove {
		t.Fatalf("got start=%d count=%d remove=%v", start, count, remove)
	}
}

func TestIndexOutOfRangeErrors(t *testing.T) {
	if _, _, _, _, err := Index(20).Resolve(10); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestOutOfRangeFinishIsClamped(t *testing.T) {
	// spec §4.3: "Out-of-range finish is clamped to the axis size"
	_, count, _, _, err := All().From(2).To(1000).Resolve(10)
	if err != nil {
		t.Fatal(err)
	}
	if count != 8 {
		t.Fatalf("expected clamped count 8, got %d", count)
	}
}

func TestOutOfRangeStartYieldsEmpty(t *testing.T) {
	// spec §4.3: "Out-of-range start yields an empty result"
	_, count, _, _, err := All().From(50).Resolve(10)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected empty result, got count=%d", count)
	}
}

func TestSteppedSlice(t *testing.T) {
	// 3 <= irange() / 2 < 10  =>  {3, 5, 7, 9}
	start, count, step, _, err := All().From(3).To(10).By(2).Resolve(20)
	if err != nil {
		t.Fatal(err)
	}
	if start != 3 || step != 2 || count != 4 {
		t.Fatalf("got start=%d step=%d count=%d", start, step, count)
	}
}

func TestNegativeStepTieBreak(t *testing.T) {
	// spec §4.3: "when step < 0, finish is exclusive below start"
	start, count, step, _, err := All().From(8).To(3).By(-1).Resolve(10)
	if err != nil {
		t.Fatal(err)
	}
	if start != 8 || step != -1 || count != 5 { // 8,7,6,5,4
		t.Fatalf("got start=%d step=%d count=%d", start, step, count)
	}
}

func TestNegativeIndexIsRejected(t *testing.T) {
	if _, _, _, _, err := Index(-1).Resolve(10); err == nil {
		t.Fatal("expected negative index to be rejected per open question in spec §9")
	}
}
