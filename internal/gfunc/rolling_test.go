package gfunc

import (
	"math"
	"testing"

	"dynarray/internal/dtype"
	"dynarray/internal/node"
)

// adata is the literal fixture from
// _examples/original_source/tests/func/test_rolling.cpp's
// Rolling.BuiltinSum_Kernel / Rolling.BuiltinMean_Kernel cases.
var adata = []float64{1, 3, 7, 2, 9, 4, -5, 100, 2, -20, 3, 9, 18}

func adataNode() node.Node {
	return node.NewStridedArray(float64Bytes(adata...), []int64{8}, []int64{int64(len(adata))}, dtype.TFloat64, node.AccessRead)
}

func TestRollingBuiltinSumMatchesReferenceWidth4(t *testing.T) {
	rolling := MakeRollingArrfunc(BuiltinSum1D(), 4)
	result, err := rolling.Apply(adataNode())
	if err != nil {
		t.Fatal(err)
	}
	sn := result.(*node.StridedArrayNode)
	out, _ := sn.DataAndStrides()

	for i := 0; i < 3; i++ {
		v := readFloat64(out[i*8 : i*8+8])
		if !math.IsNaN(v) {
			t.Fatalf("index %d: expected NaN sentinel, got %v", i, v)
		}
	}
	for i := 3; i < len(adata); i++ {
		want := 0.0
		for j := i - 3; j <= i; j++ {
			want += adata[j]
		}
		got := readFloat64(out[i*8 : i*8+8])
		if got != want {
			t.Fatalf("index %d: got %v want %v", i, got, want)
		}
	}
}

func TestRollingBuiltinMeanMatchesReferenceWidth4(t *testing.T) {
	rolling := MakeRollingArrfunc(BuiltinMean1D(), 4)
	result, err := rolling.Apply(adataNode())
	if err != nil {
		t.Fatal(err)
	}
	sn := result.(*node.StridedArrayNode)
	out, _ := sn.DataAndStrides()

	for i := 0; i < 3; i++ {
		v := readFloat64(out[i*8 : i*8+8])
		if !math.IsNaN(v) {
			t.Fatalf("index %d: expected NaN sentinel, got %v", i, v)
		}
	}
	for i := 3; i < len(adata); i++ {
		sum := 0.0
		for j := i - 3; j <= i; j++ {
			sum += adata[j]
		}
		want := sum / 4
		got := readFloat64(out[i*8 : i*8+8])
		if got != want {
			t.Fatalf("index %d: got %v want %v", i, got, want)
		}
	}
}

func TestRollingRejectsNonRank1(t *testing.T) {
	matrix := node.NewStridedArray(float64Bytes(1, 2, 3, 4), []int64{16, 8}, []int64{2, 2}, dtype.TFloat64, node.AccessRead)
	rolling := MakeRollingArrfunc(BuiltinSum1D(), 2)
	if _, err := rolling.Apply(matrix); err == nil {
		t.Fatal("expected an error applying rolling to a rank-2 array")
	}
}

func TestRollingRejectsWindowLargerThanArray(t *testing.T) {
	rolling := MakeRollingArrfunc(BuiltinSum1D(), 100)
	if _, err := rolling.Apply(adataNode()); err == nil {
		t.Fatal("expected an error when window exceeds array length")
	}
}
