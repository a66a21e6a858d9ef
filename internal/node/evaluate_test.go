package node

import (
	"testing"

	"dynarray/internal/dtype"
)

func TestEvaluatePassesThroughConcreteStridedLeaf(t *testing.T) {
	n := NewStridedArray(int32Bytes(1, 2, 3), []int64{4}, []int64{3}, dtype.TInt32, AccessRead)
	result, err := Evaluate(n)
	if err != nil {
		t.Fatal(err)
	}
	if result.DType().IsExpression() {
		t.Fatal("evaluate must never return an expression-kind dtype")
	}
	sn := result.(*StridedArrayNode)
	data, _ := sn.DataAndStrides()
	if readInt32(data[0:4]) != 1 || readInt32(data[4:8]) != 2 || readInt32(data[8:12]) != 3 {
		t.Fatalf("unexpected data after evaluating a concrete leaf: %v", data)
	}
}

func TestEvaluateMaterializesConvertLeaf(t *testing.T) {
	// A leaf whose dtype is convert[float64, int32] must evaluate into a
	// concrete float64 strided array holding the converted values.
	convertType := dtype.MakeConvert(dtype.TFloat64, dtype.TInt32)
	n := NewStridedArray(int32Bytes(1, 2, 3, 4), []int64{4}, []int64{4}, convertType, AccessRead)

	result, err := Evaluate(n)
	if err != nil {
		t.Fatal(err)
	}
	if !result.DType().Equal(dtype.TFloat64) {
		t.Fatalf("expected evaluate to materialize to float64, got %s", result.DType())
	}
	sn := result.(*StridedArrayNode)
	data, strides := sn.DataAndStrides()
	if strides[0] != 8 {
		t.Fatalf("expected contiguous float64 stride 8, got %d", strides[0])
	}
	if len(data) != 32 {
		t.Fatalf("expected 4 float64 elements (32 bytes), got %d", len(data))
	}
}

func TestEvaluateUnaryKernelAppliesOp(t *testing.T) {
	operand := NewStridedArray(int32Bytes(1, 2, 3), []int64{4}, []int64{3}, dtype.TInt32, AccessRead)
	doubled := NewElementwiseUnaryKernel(operand, dtype.TInt32, doubleUnaryKernel())

	result, err := Evaluate(doubled)
	if err != nil {
		t.Fatal(err)
	}
	sn := result.(*StridedArrayNode)
	data, _ := sn.DataAndStrides()
	want := []int32{2, 4, 6}
	for i, w := range want {
		if got := readInt32(data[i*4 : i*4+4]); got != w {
			t.Fatalf("element %d: got %d want %d", i, got, w)
		}
	}
}

func TestEvaluateUnaryKernelOnSlicedOperandHonorsStride(t *testing.T) {
	// Operand is column 1 of a 2x2 matrix stored row-major: a strided,
	// non-contiguous view. evaluate must still read the right elements.
	data := int32Bytes(10, 20, 30, 40)
	matrix := NewStridedArray(data, []int64{8, 4}, []int64{2, 2}, dtype.TInt32, AccessRead)
	col, err := matrix.ApplyLinearIndex(LinearIndex{
		RemoveAxis: []bool{false, true},
		Start:      []int64{0, 1},
		Strides:    []int64{1, 0},
		Shape:      []int64{2, 0},
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	doubled := NewElementwiseUnaryKernel(col, dtype.TInt32, doubleUnaryKernel())
	result, err := Evaluate(doubled)
	if err != nil {
		t.Fatal(err)
	}
	sn := result.(*StridedArrayNode)
	out, _ := sn.DataAndStrides()
	if readInt32(out[0:4]) != 40 || readInt32(out[4:8]) != 80 {
		t.Fatalf("unexpected strided evaluate result: %v", out)
	}
}

func TestEvaluateBinaryKernelBroadcastsScalar(t *testing.T) {
	vec := NewStridedArray(int32Bytes(1, 2, 3), []int64{4}, []int64{3}, dtype.TInt32, AccessRead)
	scalar := NewImmutableScalar(int32Bytes(10), dtype.TInt32)
	sum := NewElementwiseBinaryKernel(vec, scalar, dtype.TInt32, addBinaryKernel())

	result, err := Evaluate(sum)
	if err != nil {
		t.Fatal(err)
	}
	sn := result.(*StridedArrayNode)
	data, _ := sn.DataAndStrides()
	want := []int32{11, 12, 13}
	for i, w := range want {
		if got := readInt32(data[i*4 : i*4+4]); got != w {
			t.Fatalf("element %d: got %d want %d", i, got, w)
		}
	}
}

func TestEvaluateOverflowingConvertLeafReturnsErrorInsteadOfPanicking(t *testing.T) {
	convertType := dtype.MakeConvertMode(dtype.TInt8, dtype.TInt32, dtype.ErrorModeOverflow)
	n := NewStridedArray(int32Bytes(300), []int64{4}, []int64{1}, convertType, AccessRead)

	if _, err := Evaluate(n); err == nil {
		t.Fatal("expected an error materializing an out-of-range int32->int8 convert leaf")
	}
}

func TestEvaluateIsIdempotentOnAlreadyConcreteResult(t *testing.T) {
	n := NewStridedArray(int32Bytes(5, 6), []int64{4}, []int64{2}, dtype.TInt32, AccessRead)
	first, err := Evaluate(n)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Evaluate(first)
	if err != nil {
		t.Fatal(err)
	}
	d1 := first.(*StridedArrayNode)
	d2 := second.(*StridedArrayNode)
	b1, _ := d1.DataAndStrides()
	b2, _ := d2.DataAndStrides()
	if readInt32(b1[0:4]) != readInt32(b2[0:4]) || readInt32(b1[4:8]) != readInt32(b2[4:8]) {
		t.Fatal("expected evaluate to be idempotent on an already-concrete node")
	}
}
