package node

import (
	"encoding/binary"
	"testing"

	"dynarray/internal/dtype"
)

func int32Bytes(vs ...int32) []byte {
	buf := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func readInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func TestStridedArrayNodeBasics(t *testing.T) {
	data := int32Bytes(1, 2, 3, 4, 5, 6)
	n := NewStridedArray(data, []int64{12, 4}, []int64{2, 3}, dtype.TInt32, AccessRead|AccessWrite)

	if n.Category() != CategoryStridedArray {
		t.Fatalf("got category %v", n.Category())
	}
	if n.NodeType() != TypeStridedArray {
		t.Fatalf("got node type %v", n.NodeType())
	}
	if n.Ndim() != 2 {
		t.Fatalf("got ndim %d", n.Ndim())
	}
	if !n.AccessFlags().Writable() {
		t.Fatal("expected writable flag")
	}
}

func TestStridedArrayOperandPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	n := NewStridedArray(int32Bytes(1), []int64{4}, []int64{1}, dtype.TInt32, AccessRead)
	n.Operand(0)
}

func TestStridedArrayApplyLinearIndexSingleIndexRemovesAxis(t *testing.T) {
	// A 2x3 row-major int32 matrix; select row 1 with a fixed index,
	// leaving a length-3 vector starting at element 3.
	data := int32Bytes(1, 2, 3, 4, 5, 6)
	n := NewStridedArray(data, []int64{12, 4}, []int64{2, 3}, dtype.TInt32, AccessRead)

	idx := LinearIndex{
		RemoveAxis: []bool{true, false},
		Start:      []int64{1, 0},
		Strides:    []int64{0, 1},
		Shape:      []int64{0, 3},
	}
	result, err := n.ApplyLinearIndex(idx, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Ndim() != 1 {
		t.Fatalf("expected ndim 1 after removing an axis, got %d", result.Ndim())
	}
	sn := result.(*StridedArrayNode)
	rowData, _ := sn.DataAndStrides()
	if got := readInt32(rowData[0:4]); got != 4 {
		t.Fatalf("expected row 1 to start with 4, got %d", got)
	}
}

func TestStridedArrayApplyLinearIndexRankMismatch(t *testing.T) {
	n := NewStridedArray(int32Bytes(1, 2), []int64{4}, []int64{2}, dtype.TInt32, AccessRead)
	_, err := n.ApplyLinearIndex(LinearIndex{RemoveAxis: []bool{false, false}, Start: []int64{0, 0}, Strides: []int64{1, 1}, Shape: []int64{1, 1}}, false)
	if err == nil {
		t.Fatal("expected rank mismatch error")
	}
}

func TestStridedArrayAsDtypeWrapsConvert(t *testing.T) {
	n := NewStridedArray(int32Bytes(42), []int64{4}, []int64{1}, dtype.TInt32, AccessRead)
	wrapped, err := n.AsDtype(dtype.TFloat64, dtype.ErrorModeOverflow, false)
	if err != nil {
		t.Fatal(err)
	}
	if !wrapped.DType().IsExpression() {
		t.Fatal("expected as_dtype to layer a conversion, not replace the type outright")
	}
	if wrapped == Node(n) {
		t.Fatal("expected a new node when allowInPlace is false")
	}
}

func TestStridedArrayAsDtypeInPlaceWhenUnique(t *testing.T) {
	n := NewStridedArray(int32Bytes(42), []int64{4}, []int64{1}, dtype.TInt32, AccessRead)
	wrapped, err := n.AsDtype(dtype.TFloat64, dtype.ErrorModeOverflow, true)
	if err != nil {
		t.Fatal(err)
	}
	if wrapped != Node(n) {
		t.Fatal("expected in-place mutation when allowInPlace and Unique")
	}
}

func TestStridedArrayAsDtypeSameTypeReturnsSelf(t *testing.T) {
	n := NewStridedArray(int32Bytes(42), []int64{4}, []int64{1}, dtype.TInt32, AccessRead)
	same, err := n.AsDtype(dtype.TInt32, dtype.ErrorModeOverflow, false)
	if err != nil {
		t.Fatal(err)
	}
	if same != Node(n) {
		t.Fatal("expected as_dtype(same type) to return self")
	}
}

func TestImmutableScalarBroadcastsAndIgnoresIndex(t *testing.T) {
	n := NewImmutableScalar(int32Bytes(7), dtype.TInt32)
	if n.Ndim() != 0 {
		t.Fatalf("expected ndim 0, got %d", n.Ndim())
	}
	if !n.AccessFlags().Immutable() {
		t.Fatal("expected immutable_scalar to report immutable access")
	}
	result, err := n.ApplyLinearIndex(LinearIndex{RemoveAxis: []bool{false}, Start: []int64{3}, Strides: []int64{1}, Shape: []int64{5}}, false)
	if err != nil {
		t.Fatal(err)
	}
	if result != Node(n) {
		t.Fatal("expected indexing a scalar to be a no-op")
	}
}

func TestElementwiseUnaryKernelNodeRetainsOperand(t *testing.T) {
	operand := NewStridedArray(int32Bytes(1, 2), []int64{4}, []int64{2}, dtype.TInt32, AccessRead)
	un := NewElementwiseUnaryKernel(operand, dtype.TInt32, doubleUnaryKernel())
	if !operand.Unique() {
		// Retain bumped the count; Unique must now report false.
		t.Fatal("expected operand to no longer be unique after being wrapped")
	}
	if un.Nop() != 1 {
		t.Fatalf("expected nop 1, got %d", un.Nop())
	}
	if un.Operand(0) != Node(operand) {
		t.Fatal("expected operand 0 to be the wrapped node")
	}
}

func TestElementwiseBinaryKernelNodeShapeFollowsHigherRank(t *testing.T) {
	scalar := NewImmutableScalar(int32Bytes(10), dtype.TInt32)
	vec := NewStridedArray(int32Bytes(1, 2, 3), []int64{4}, []int64{3}, dtype.TInt32, AccessRead)
	bin := NewElementwiseBinaryKernel(vec, scalar, dtype.TInt32, addBinaryKernel())
	if bin.Ndim() != 1 {
		t.Fatalf("expected ndim 1 (from the vector operand), got %d", bin.Ndim())
	}
}
