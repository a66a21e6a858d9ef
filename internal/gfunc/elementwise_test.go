package gfunc

import (
	"testing"

	"dynarray/internal/dtype"
	"dynarray/internal/kernel"
	"dynarray/internal/node"
)

func doubleFloat64Unary(dst []byte, dstStride int, src []byte, srcStride int, count int, _ kernel.Aux) {
	for i := 0; i < count; i++ {
		putFloat64(dst[i*dstStride:i*dstStride+8], 2*getFloat64(src[i*srcStride:i*srcStride+8]))
	}
}

func TestElementwiseFindMatchingKernelRespectsRegistrationOrder(t *testing.T) {
	table := NewElementwise("double")
	first := &ElementwiseKernel{ParamTypes: []dtype.Type{dtype.TFloat64}, ReturnType: dtype.TFloat64, Unary: kernel.Unary{Fn: doubleFloat64Unary}}
	table.AddKernel(first)

	got, ok := table.FindMatchingKernel([]dtype.Type{dtype.TFloat64})
	if !ok || got != first {
		t.Fatal("expected to find the registered float64 kernel")
	}
	if _, ok := table.FindMatchingKernel([]dtype.Type{dtype.TInt32}); ok {
		t.Fatal("did not expect a match for an unregistered parameter type")
	}
}

func TestElementwiseApplyBuildsUnaryKernelNode(t *testing.T) {
	table := NewElementwise("double")
	table.AddKernel(&ElementwiseKernel{ParamTypes: []dtype.Type{dtype.TFloat64}, ReturnType: dtype.TFloat64, Unary: kernel.Unary{Fn: doubleFloat64Unary}})

	vec := node.NewStridedArray(float64Bytes(1, 2, 3), []int64{8}, []int64{3}, dtype.TFloat64, node.AccessRead)
	result, err := table.Apply(vec)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := node.Evaluate(result)
	if err != nil {
		t.Fatal(err)
	}
	sn := ev.(*node.StridedArrayNode)
	data, _ := sn.DataAndStrides()
	want := []float64{2, 4, 6}
	for i, w := range want {
		if got := readFloat64(data[i*8 : i*8+8]); got != w {
			t.Fatalf("element %d: got %v want %v", i, got, w)
		}
	}
}

func TestElementwiseApplyReturnsErrorWhenNoKernelMatches(t *testing.T) {
	table := NewElementwise("double")
	vec := node.NewStridedArray(float64Bytes(1), []int64{8}, []int64{1}, dtype.TFloat64, node.AccessRead)
	if _, err := table.Apply(vec); err == nil {
		t.Fatal("expected an error dispatching against an empty gfunc")
	}
}
