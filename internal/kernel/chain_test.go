package kernel

import (
	"encoding/binary"
	"math"
	"testing"
)

func float64ToBits(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux) {
	for i := 0; i < count; i++ {
		v := math.Float64frombits(binary.LittleEndian.Uint64(src[i*srcStride:]))
		binary.LittleEndian.PutUint64(dst[i*dstStride:], math.Float64bits(v*2))
	}
}

func addOne(dst []byte, dstStride int, src []byte, srcStride int, count int, aux Aux) {
	for i := 0; i < count; i++ {
		v := math.Float64frombits(binary.LittleEndian.Uint64(src[i*srcStride:]))
		binary.LittleEndian.PutUint64(dst[i*dstStride:], math.Float64bits(v+1))
	}
}

func encodeFloat64s(vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeFloat64s(buf []byte, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out
}

func TestChained2ComposesTwoKernels(t *testing.T) {
	src := encodeFloat64s([]float64{1, 2, 3, 4, 5})
	dst := make([]byte, 8*5)

	k1 := Unary{Fn: float64ToBits}
	k2 := Unary{Fn: addOne}
	chained := MakeChained2(&k1, &k2, 8)

	chained.Invoke(dst, 8, src, 8, 5)

	got := decodeFloat64s(dst, 5)
	want := []float64{3, 5, 7, 9, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestMakeChainedUnaryKernelEmptiesInputs(t *testing.T) {
	kernels := []Unary{{Fn: float64ToBits}, {Fn: addOne}, {Fn: addOne}}
	sizes := []int{8, 8}

	chained := MakeChainedUnaryKernel(&kernels, &sizes)

	if len(kernels) != 0 || len(sizes) != 0 {
		t.Fatalf("expected input slices emptied, got kernels=%d sizes=%d", len(kernels), len(sizes))
	}

	src := encodeFloat64s([]float64{10})
	dst := make([]byte, 8)
	chained.Invoke(dst, 8, src, 8, 1)
	got := decodeFloat64s(dst, 1)[0]
	if got != 22 {
		t.Fatalf("got %v want 22", got)
	}
}

func TestChainedBatchesAcrossManyElements(t *testing.T) {
	n := 2000 // large enough to force multiple batches at the 4096-byte budget
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i)
	}
	src := encodeFloat64s(vals)
	dst := make([]byte, 8*n)

	kernels := []Unary{{Fn: addOne}, {Fn: addOne}}
	sizes := []int{8}
	chained := MakeChainedUnaryKernel(&kernels, &sizes)
	chained.Invoke(dst, 8, src, 8, n)

	got := decodeFloat64s(dst, n)
	for i, v := range got {
		if v != vals[i]+2 {
			t.Fatalf("index %d: got %v want %v", i, v, vals[i]+2)
		}
	}
}
