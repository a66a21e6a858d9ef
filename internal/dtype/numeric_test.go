package dtype

import (
	"encoding/binary"
	"math"
	"testing"
)

func mustNotPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f()
}

func mustPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	f()
}

func TestConvertOneIdentityCopiesBytes(t *testing.T) {
	src := []byte{42}
	dst := make([]byte, 1)
	convertOne(Int8, Int8, dst, src, ErrorModeNone)
	if dst[0] != 42 {
		t.Fatalf("got %d want 42", dst[0])
	}
}

func TestConvertOneOverflowModeRejectsOutOfRange(t *testing.T) {
	src := make([]byte, 4)
	binary.LittleEndian.PutUint32(src, uint32(int32(300)))
	dst := make([]byte, 1)
	mustPanic(t, func() { convertOne(Int8, Int32, dst, src, ErrorModeOverflow) })
}

func TestConvertOneNoneModeAllowsOutOfRange(t *testing.T) {
	src := make([]byte, 4)
	binary.LittleEndian.PutUint32(src, uint32(int32(300)))
	dst := make([]byte, 1)
	mustNotPanic(t, func() { convertOne(Int8, Int32, dst, src, ErrorModeNone) })
}

func TestConvertOneFractionalModeRejectsNonIntegerFloat(t *testing.T) {
	src := make([]byte, 8)
	binary.LittleEndian.PutUint64(src, math.Float64bits(3.5))
	dst := make([]byte, 4)
	mustPanic(t, func() { convertOne(Int32, Float64, dst, src, ErrorModeFractional) })
}

func TestConvertOneFractionalModeAllowsIntegerValuedFloat(t *testing.T) {
	src := make([]byte, 8)
	binary.LittleEndian.PutUint64(src, math.Float64bits(4.0))
	dst := make([]byte, 4)
	mustNotPanic(t, func() { convertOne(Int32, Float64, dst, src, ErrorModeFractional) })
	if got := int32(binary.LittleEndian.Uint32(dst)); got != 4 {
		t.Fatalf("got %d want 4", got)
	}
}

func TestConvertOneWideningIntToFloatIsExact(t *testing.T) {
	src := make([]byte, 4)
	binary.LittleEndian.PutUint32(src, uint32(int32(-7)))
	dst := make([]byte, 8)
	mustNotPanic(t, func() { convertOne(Float64, Int32, dst, src, ErrorModeInexact) })
	got := math.Float64frombits(binary.LittleEndian.Uint64(dst))
	if got != -7 {
		t.Fatalf("got %v want -7", got)
	}
}

func TestClampToRangeGeneric(t *testing.T) {
	if !clampToRange[int8](100, -128, 127) {
		t.Fatal("expected 100 to be within int8 range")
	}
	if clampToRange[int8](200, -128, 127) {
		t.Fatal("expected 200 to be outside int8 range")
	}
}
