package gfunc

import (
	"testing"

	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
	"dynarray/internal/node"
)

func subtractBinary(dst []byte, dstStride int, src1 []byte, src1Stride int, src2 []byte, src2Stride int, count int, _ kernel.Aux) {
	for i := 0; i < count; i++ {
		a := getFloat64(src1[i*src1Stride : i*src1Stride+8])
		b := getFloat64(src2[i*src2Stride : i*src2Stride+8])
		putFloat64(dst[i*dstStride:i*dstStride+8], a-b)
	}
}

// subtractKernel is a non-commutative reduce kernel used only to exercise
// ReduceAllReverse's use of RightAssoc: dst <- op(dst, src) folds
// left-to-right (((id-a)-b)-c), dst <- op(src, dst) folds right-to-left
// (a-(b-(c-id))).
func subtractKernel() *ReduceKernel {
	identity := make([]byte, 8)
	putFloat64(identity, 0)
	return &ReduceKernel{
		ReturnType: dtype.TFloat64,
		ParamType:  dtype.TFloat64,
		Identity:   identity,
		LeftAssoc:  kernel.Binary{Fn: subtractBinary},
		RightAssoc: kernel.Binary{Fn: subtractBinary},
	}
}

func TestReduceAllSumsVector(t *testing.T) {
	vec := node.NewStridedArray(float64Bytes(1, 2, 3, 4), []int64{8}, []int64{4}, dtype.TFloat64, node.AccessRead)
	result, err := ReduceAll(BuiltinSum1D(), vec)
	if err != nil {
		t.Fatal(err)
	}
	scalar := result.(*node.ImmutableScalarNode)
	data, _ := scalar.DataAndStrides()
	if got := readFloat64(data); got != 10 {
		t.Fatalf("got %v want 10", got)
	}
}

func TestReduceAllMeanOfVector(t *testing.T) {
	vec := node.NewStridedArray(float64Bytes(2, 4, 6, 8), []int64{8}, []int64{4}, dtype.TFloat64, node.AccessRead)
	result, err := ReduceAll(BuiltinMean1D(), vec)
	if err != nil {
		t.Fatal(err)
	}
	scalar := result.(*node.ImmutableScalarNode)
	data, _ := scalar.DataAndStrides()
	if got := readFloat64(data); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
}

func TestReduceAllRejectsMultidimNonCommutative(t *testing.T) {
	matrix := node.NewStridedArray(float64Bytes(1, 2, 3, 4), []int64{16, 8}, []int64{2, 2}, dtype.TFloat64, node.AccessRead)
	k := BuiltinSum1D()
	k.Commutative = false
	if _, err := ReduceAll(k, matrix); err == nil {
		t.Fatal("expected an error reducing a rank-2 array with a non-commutative kernel")
	}
}

func TestReduceAllAcceptsMultidimCommutative(t *testing.T) {
	matrix := node.NewStridedArray(float64Bytes(1, 2, 3, 4), []int64{16, 8}, []int64{2, 2}, dtype.TFloat64, node.AccessRead)
	result, err := ReduceAll(BuiltinSum1D(), matrix)
	if err != nil {
		t.Fatal(err)
	}
	scalar := result.(*node.ImmutableScalarNode)
	data, _ := scalar.DataAndStrides()
	if got := readFloat64(data); got != 10 {
		t.Fatalf("got %v want 10", got)
	}
}

func TestReduceAllForwardFoldsLeftAssociatively(t *testing.T) {
	vec := node.NewStridedArray(float64Bytes(1, 2, 3), []int64{8}, []int64{3}, dtype.TFloat64, node.AccessRead)
	result, err := ReduceAll(subtractKernel(), vec)
	if err != nil {
		t.Fatal(err)
	}
	// ((0-1)-2)-3 = -6
	data, _ := result.(*node.ImmutableScalarNode).DataAndStrides()
	if got := readFloat64(data); got != -6 {
		t.Fatalf("got %v want -6", got)
	}
}

func TestReduceAllReverseUsesRightAssocKernel(t *testing.T) {
	vec := node.NewStridedArray(float64Bytes(1, 2, 3), []int64{8}, []int64{3}, dtype.TFloat64, node.AccessRead)
	result, err := ReduceAllReverse(subtractKernel(), vec)
	if err != nil {
		t.Fatal(err)
	}
	// 1-(2-(3-0)) = 2
	data, _ := result.(*node.ImmutableScalarNode).DataAndStrides()
	if got := readFloat64(data); got != 2 {
		t.Fatalf("got %v want 2", got)
	}
}

func TestReduceAllReverseRejectsNonCommutativeWithoutRightAssoc(t *testing.T) {
	vec := node.NewStridedArray(float64Bytes(1, 2, 3), []int64{8}, []int64{3}, dtype.TFloat64, node.AccessRead)
	k := BuiltinSum1D()
	k.Commutative = false
	if _, err := ReduceAllReverse(k, vec); err == nil {
		t.Fatal("expected an error: non-commutative kernel has no RightAssoc")
	}
}

func TestReduceDispatchTableFindsRegisteredKernel(t *testing.T) {
	table := NewReduce("sum")
	table.AddKernel(BuiltinSum1D())
	vec := node.NewStridedArray(float64Bytes(1, 1, 1), []int64{8}, []int64{3}, dtype.TFloat64, node.AccessRead)
	result, err := table.Apply(vec)
	if err != nil {
		t.Fatal(err)
	}
	scalar := result.(*node.ImmutableScalarNode)
	data, _ := scalar.DataAndStrides()
	if got := readFloat64(data); got != 3 {
		t.Fatalf("got %v want 3", got)
	}
}

func TestReduceDispatchTableRejectsUnregisteredType(t *testing.T) {
	table := NewReduce("sum")
	table.AddKernel(BuiltinSum1D())
	vec := node.NewStridedArray([]byte{1, 2, 3}, []int64{1}, []int64{3}, dtype.TInt8, node.AccessRead)
	if _, err := table.Apply(vec); err == nil {
		t.Fatal("expected an error for an unregistered parameter type")
	}
}
